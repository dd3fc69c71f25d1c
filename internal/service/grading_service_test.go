package service

import (
	"testing"

	"github.com/lshigami/cbt-core/internal/model"
)

func TestGradeOneMCQ(t *testing.T) {
	g := NewGradingService()
	question := &model.Question{ID: 1, Type: model.QuestionTypeMCQ, AnswerKey: "A", Score: 5}

	tests := []struct {
		name     string
		selected string
		correct  bool
		awarded  int
	}{
		{"exact match", "A", true, 5},
		{"wrong choice", "B", false, 0},
		{"case sensitive", "a", false, 0},
		{"empty selection", "", false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isCorrect, awarded := g.GradeOne(question, &model.Answer{SelectedChoice: tt.selected})
			if isCorrect == nil {
				t.Fatalf("MCQ grading must never be indeterminate")
			}
			if *isCorrect != tt.correct || awarded != tt.awarded {
				t.Fatalf("got correct=%v awarded=%d, want correct=%v awarded=%d", *isCorrect, awarded, tt.correct, tt.awarded)
			}
		})
	}
}

func TestGradeOneSubjective(t *testing.T) {
	g := NewGradingService()
	question := &model.Question{ID: 2, Type: model.QuestionTypeSubjective, AnswerKeywords: "apple, banana", Score: 3}

	isCorrect, awarded := g.GradeOne(question, &model.Answer{ResponseText: "I like banana bread"})
	if isCorrect == nil || !*isCorrect || awarded != 3 {
		t.Fatalf("expected correct with 3 points, got correct=%v awarded=%d", isCorrect, awarded)
	}

	isCorrect, awarded = g.GradeOne(question, &model.Answer{ResponseText: "I like cherries"})
	if isCorrect == nil || *isCorrect || awarded != 0 {
		t.Fatalf("expected wrong with 0 points, got correct=%v awarded=%d", isCorrect, awarded)
	}
}

func TestGradeOneSubjectiveIsCaseSensitive(t *testing.T) {
	g := NewGradingService()
	question := &model.Question{Type: model.QuestionTypeSubjective, AnswerKeywords: "Apple", Score: 2}

	isCorrect, _ := g.GradeOne(question, &model.Answer{ResponseText: "apple pie"})
	if isCorrect == nil || *isCorrect {
		t.Fatalf("keyword matching is case-sensitive; 'apple' must not match 'Apple'")
	}
}

func TestGradeOneSubjectiveManualReview(t *testing.T) {
	g := NewGradingService()

	noKeywords := &model.Question{Type: model.QuestionTypeSubjective, AnswerKeywords: "  ", Score: 4}
	if isCorrect, awarded := g.GradeOne(noKeywords, &model.Answer{ResponseText: "anything"}); isCorrect != nil || awarded != 0 {
		t.Fatalf("question without keywords must be indeterminate with 0 points, got %v/%d", isCorrect, awarded)
	}

	withKeywords := &model.Question{Type: model.QuestionTypeSubjective, AnswerKeywords: "apple", Score: 4}
	if isCorrect, awarded := g.GradeOne(withKeywords, &model.Answer{ResponseText: ""}); isCorrect != nil || awarded != 0 {
		t.Fatalf("empty response must be indeterminate with 0 points, got %v/%d", isCorrect, awarded)
	}
}

func TestGradeAttemptAggregates(t *testing.T) {
	g := NewGradingService()
	questions := []model.Question{
		{ID: 1, Type: model.QuestionTypeMCQ, AnswerKey: "A", Score: 5},
		{ID: 2, Type: model.QuestionTypeMCQ, AnswerKey: "C", Score: 5},
		{ID: 3, Type: model.QuestionTypeSubjective, AnswerKeywords: "apple, banana", Score: 3},
	}
	answers := []model.Answer{
		{QuestionID: 1, SelectedChoice: "A"},
		{QuestionID: 2, SelectedChoice: "B"},
		{QuestionID: 3, ResponseText: "banana split"},
	}

	result := g.GradeAttempt(questions, answers)
	if result.TotalScore != 8 {
		t.Fatalf("expected total score 8, got %d", result.TotalScore)
	}
	if result.CorrectCount != 2 {
		t.Fatalf("expected 2 correct, got %d", result.CorrectCount)
	}
	if len(result.GradedAnswers) != 3 {
		t.Fatalf("expected 3 graded answers, got %d", len(result.GradedAnswers))
	}

	sum := 0
	for _, a := range result.GradedAnswers {
		sum += a.ScoreAwarded
	}
	if sum != result.TotalScore {
		t.Fatalf("total score %d does not equal sum of awarded scores %d", result.TotalScore, sum)
	}
}

func TestGradeAttemptSkipsRemovedQuestions(t *testing.T) {
	g := NewGradingService()
	questions := []model.Question{
		{ID: 1, Type: model.QuestionTypeMCQ, AnswerKey: "A", Score: 5},
	}
	answers := []model.Answer{
		{QuestionID: 1, SelectedChoice: "A"},
		{QuestionID: 99, SelectedChoice: "A"}, // question no longer in the exam
	}

	result := g.GradeAttempt(questions, answers)
	if len(result.GradedAnswers) != 1 {
		t.Fatalf("answer for removed question must be skipped, graded %d answers", len(result.GradedAnswers))
	}
	if result.TotalScore != 5 || result.CorrectCount != 1 {
		t.Fatalf("unexpected aggregate: score=%d correct=%d", result.TotalScore, result.CorrectCount)
	}
}

func TestGradeAttemptManualReviewNotCounted(t *testing.T) {
	g := NewGradingService()
	questions := []model.Question{
		{ID: 1, Type: model.QuestionTypeSubjective, AnswerKeywords: "", Score: 10},
	}
	answers := []model.Answer{
		{QuestionID: 1, ResponseText: "long essay"},
	}

	result := g.GradeAttempt(questions, answers)
	if result.TotalScore != 0 || result.CorrectCount != 0 {
		t.Fatalf("manual-review answers must award nothing, got score=%d correct=%d", result.TotalScore, result.CorrectCount)
	}
	if result.GradedAnswers[0].IsCorrect != nil {
		t.Fatalf("manual-review answer must keep IsCorrect nil")
	}
}

package service

import (
	"strings"

	"github.com/lshigami/cbt-core/internal/model"
)

// GradingService scores answers against question keys. It is pure: it fills
// in IsCorrect/ScoreAwarded on copies of the given answers and never touches
// persistence; AttemptService owns writing the results back.
type GradingService interface {
	GradeOne(question *model.Question, answer *model.Answer) (isCorrect *bool, scoreAwarded int)
	GradeAttempt(questions []model.Question, answers []model.Answer) GradingResult
}

type GradingResult struct {
	TotalScore    int
	CorrectCount  int
	GradedAnswers []model.Answer
}

type gradingService struct{}

func NewGradingService() GradingService {
	return &gradingService{}
}

// GradeOne scores a single answer.
//
// MCQ: correct iff the answer key equals the selected choice exactly.
// SUBJECTIVE: the keyword list is split on commas and each keyword trimmed;
// correct iff the response contains any keyword as a substring. Matching is
// case-sensitive throughout. A question with no keywords, or an answer with
// no response text, cannot be auto-graded: IsCorrect stays nil (manual
// review) and zero points are awarded provisionally.
func (s *gradingService) GradeOne(question *model.Question, answer *model.Answer) (*bool, int) {
	if question.Type == model.QuestionTypeMCQ {
		correct := question.AnswerKey == answer.SelectedChoice
		return &correct, scoreFor(correct, question.Score)
	}

	if strings.TrimSpace(question.AnswerKeywords) == "" || answer.ResponseText == "" {
		return nil, 0
	}

	correct := false
	for _, keyword := range strings.Split(question.AnswerKeywords, ",") {
		keyword = strings.TrimSpace(keyword)
		if keyword == "" {
			continue
		}
		if strings.Contains(answer.ResponseText, keyword) {
			correct = true
			break
		}
	}
	return &correct, scoreFor(correct, question.Score)
}

// GradeAttempt applies GradeOne to every answer whose question still exists
// in the exam. Answers referencing a since-removed question are skipped, not
// scored. CorrectCount counts only answers graded correct; manual-review
// answers contribute to neither the score nor the count.
func (s *gradingService) GradeAttempt(questions []model.Question, answers []model.Answer) GradingResult {
	questionMap := make(map[uint]*model.Question, len(questions))
	for i := range questions {
		questionMap[questions[i].ID] = &questions[i]
	}

	result := GradingResult{GradedAnswers: make([]model.Answer, 0, len(answers))}
	for _, ans := range answers {
		question, ok := questionMap[ans.QuestionID]
		if !ok {
			continue
		}
		isCorrect, awarded := s.GradeOne(question, &ans)
		ans.IsCorrect = isCorrect
		ans.ScoreAwarded = awarded

		result.TotalScore += awarded
		if isCorrect != nil && *isCorrect {
			result.CorrectCount++
		}
		result.GradedAnswers = append(result.GradedAnswers, ans)
	}
	return result
}

func scoreFor(correct bool, score int) int {
	if correct {
		return score
	}
	return 0
}

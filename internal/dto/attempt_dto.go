package dto

import "time"

// StartAttemptRequest starts a run through one exam. UserID is optional;
// guest attempts carry no owner.
type StartAttemptRequest struct {
	ExamID uint  `json:"exam_id" binding:"required"`
	UserID *uint `json:"user_id"`
}

// AttemptDTO is the bare attempt record returned right after start.
type AttemptDTO struct {
	ID          uint       `json:"id"`
	ExamID      uint       `json:"exam_id"`
	UserID      *uint      `json:"user_id,omitempty"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	TotalScore  *int       `json:"total_score,omitempty"`
}

// QuestionDTO is a question as shown to the candidate: answer key and
// keywords are stripped.
type QuestionDTO struct {
	ID      uint   `json:"id"`
	Type    string `json:"type"`
	Text    string `json:"text"`
	Choices string `json:"choices,omitempty"`
	Score   int    `json:"score"`
}

// AttemptDetailDTO carries exam metadata plus questions in the
// attempt-specific deterministic order.
type AttemptDetailDTO struct {
	AttemptID   uint          `json:"attempt_id"`
	ExamID      uint          `json:"exam_id"`
	ExamTitle   string        `json:"exam_title"`
	DurationSec int           `json:"duration_sec"`
	StartedAt   time.Time     `json:"started_at"`
	Status      string        `json:"status"`
	Questions   []QuestionDTO `json:"questions"`
}

// AnswerSaveDTO is one (question, response) pair in a save-answers call.
type AnswerSaveDTO struct {
	QuestionID     uint   `json:"question_id" binding:"required"`
	SelectedChoice string `json:"selected_choice"`
	ResponseText   string `json:"response_text"`
}

// SaveAnswersRequest upserts a batch of answers for an attempt.
type SaveAnswersRequest struct {
	UserID  *uint           `json:"user_id"`
	Answers []AnswerSaveDTO `json:"answers" binding:"required,dive"`
}

// SubmitResultDTO is the score summary returned by submit.
type SubmitResultDTO struct {
	AttemptID     uint `json:"attempt_id"`
	ExamID        uint `json:"exam_id"`
	TotalScore    int  `json:"total_score"`
	CorrectCount  int  `json:"correct_count"`
	WrongCount    int  `json:"wrong_count"`
	QuestionCount int  `json:"question_count"`
}

// ReviewItemDTO pairs one question (in attempt order) with the candidate's
// answer and the canonical correct answer for the post-grading review screen.
type ReviewItemDTO struct {
	QuestionID     uint   `json:"question_id"`
	Text           string `json:"text"`
	Type           string `json:"type"`
	Choices        string `json:"choices,omitempty"`
	SelectedChoice string `json:"selected_choice,omitempty"`
	ResponseText   string `json:"response_text,omitempty"`
	// CorrectAnswer is the MCQ answer key or the SUBJECTIVE keyword list.
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     *bool  `json:"is_correct"`
	Score         int    `json:"score"`
	ScoreAwarded  int    `json:"score_awarded"`
	Explanation   string `json:"explanation,omitempty"`
}

// AttemptHistoryDTO is one row of a user's attempt history.
type AttemptHistoryDTO struct {
	AttemptID   uint       `json:"attempt_id"`
	ExamID      uint       `json:"exam_id"`
	ExamTitle   string     `json:"exam_title"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	TotalScore  *int       `json:"total_score,omitempty"`
}

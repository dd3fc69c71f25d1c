package model

import (
	"time"
)

// Answer is the single row per (attempt, question) pair. The composite
// unique index backs the upsert in AnswerRepository: concurrent autosaves
// for the same pair converge on one row instead of duplicating it.
type Answer struct {
	ID         uint `gorm:"primarykey" json:"id"`
	AttemptID  uint `json:"attempt_id" gorm:"not null;uniqueIndex:idx_attempt_question"`
	QuestionID uint `json:"question_id" gorm:"not null;uniqueIndex:idx_attempt_question"`
	// SelectedChoice holds the MCQ selection.
	SelectedChoice string `json:"selected_choice,omitempty" gorm:"type:text"`
	// ResponseText holds the SUBJECTIVE free-text response.
	ResponseText string `json:"response_text,omitempty" gorm:"type:text"`
	// IsCorrect stays nil until graded; it also stays nil after grading when
	// the answer needs manual review (no keywords, or empty response).
	IsCorrect    *bool     `json:"is_correct,omitempty"`
	ScoreAwarded int       `json:"score_awarded"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

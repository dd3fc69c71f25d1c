package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	QuestionTypeMCQ        = "MCQ"
	QuestionTypeSubjective = "SUBJECTIVE"
)

type Question struct {
	ID     uint   `gorm:"primarykey" json:"id"`
	ExamID uint   `json:"exam_id" gorm:"not null;index"`
	Type   string `json:"type" gorm:"not null"` // "MCQ", "SUBJECTIVE"
	Text   string `json:"text" gorm:"type:text;not null"`
	// Choices holds the MCQ option list as a JSON array string.
	Choices string `json:"choices,omitempty" gorm:"type:text"`
	// AnswerKey is the exact correct choice for MCQ questions.
	AnswerKey string `json:"answer_key,omitempty"`
	// AnswerKeywords is a comma-separated keyword list for SUBJECTIVE questions.
	AnswerKeywords string         `json:"answer_keywords,omitempty" gorm:"type:text"`
	Score          int            `json:"score" gorm:"not null"`
	Explanation    string         `json:"explanation,omitempty" gorm:"type:text"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	// AttemptStatusInProgress is the initial state of every attempt.
	AttemptStatusInProgress = "IN_PROGRESS"
	// AttemptStatusGraded is terminal. Submit moves an attempt here with a
	// single compare-and-set, so there is no intermediate SUBMITTED state.
	AttemptStatusGraded = "GRADED"
)

type Attempt struct {
	ID     uint `gorm:"primarykey" json:"id"`
	ExamID uint `json:"exam_id" gorm:"not null;index"`
	Exam   Exam `json:"exam,omitempty" gorm:"foreignKey:ExamID"`
	// UserID is nil for guest attempts, which anyone holding the attempt id may access.
	UserID      *uint          `json:"user_id,omitempty" gorm:"index"`
	Status      string         `json:"status" gorm:"not null;default:'IN_PROGRESS'"`
	StartedAt   time.Time      `json:"started_at" gorm:"autoCreateTime"`
	SubmittedAt *time.Time     `json:"submitted_at,omitempty"`
	TotalScore  *int           `json:"total_score,omitempty"`
	Answers     []Answer       `json:"answers,omitempty" gorm:"foreignKey:AttemptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsGuest reports whether the attempt has no owning user.
func (a *Attempt) IsGuest() bool {
	return a.UserID == nil
}

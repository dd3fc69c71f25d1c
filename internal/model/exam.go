package model

import (
	"time"

	"gorm.io/gorm"
)

type Exam struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	Title       string         `json:"title" gorm:"not null"`
	DurationSec int            `json:"duration_sec" gorm:"not null"`
	TotalScore  int            `json:"total_score"`
	Published   bool           `json:"published" gorm:"default:false"`
	CreatedBy   uint           `json:"created_by" gorm:"not null;index"`
	Questions   []Question     `json:"questions,omitempty" gorm:"foreignKey:ExamID"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

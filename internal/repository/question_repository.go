package repository

import (
	"github.com/lshigami/cbt-core/internal/model"
	"gorm.io/gorm"
)

// QuestionRepository is read-only, same as ExamRepository.
type QuestionRepository interface {
	FindByExamID(examID uint) ([]model.Question, error)
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) FindByExamID(examID uint) ([]model.Question, error) {
	var questions []model.Question
	if err := r.db.Where("exam_id = ?", examID).Order("id ASC").Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

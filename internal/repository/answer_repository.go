package repository

import (
	"github.com/lshigami/cbt-core/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnswerRepository interface {
	// Upsert inserts the answer or, when a row for the same
	// (attempt, question) pair already exists, overwrites its selection and
	// response. The conflict target is the composite unique index, so
	// concurrent autosaves for the same pair cannot create duplicates.
	Upsert(answer *model.Answer) error
	FindByAttemptID(attemptID uint) ([]model.Answer, error)
}

type answerRepository struct {
	db *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) Upsert(answer *model.Answer) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"selected_choice", "response_text", "updated_at"}),
	}).Create(answer).Error
}

func (r *answerRepository) FindByAttemptID(attemptID uint) ([]model.Answer, error) {
	var answers []model.Answer
	if err := r.db.Where("attempt_id = ?", attemptID).Order("id ASC").Find(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}

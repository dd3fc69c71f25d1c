package repository

import (
	"errors"
	"time"

	"github.com/lshigami/cbt-core/internal/model"
	"gorm.io/gorm"
)

type AttemptRepository interface {
	Create(attempt *model.Attempt) error
	FindByID(id uint) (*model.Attempt, error)
	FindByUserID(userID uint, limit int) ([]model.Attempt, error)
	// FinalizeGrading moves the attempt from IN_PROGRESS to GRADED and
	// persists the graded answers in one transaction. The status change is a
	// compare-and-set: the second of two concurrent submits gets ok=false and
	// nothing is written, so an attempt can never be graded twice.
	FinalizeGrading(attemptID uint, totalScore int, submittedAt time.Time, answers []model.Answer) (bool, error)
}

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) Create(attempt *model.Attempt) error {
	return r.db.Create(attempt).Error
}

func (r *attemptRepository) FindByID(id uint) (*model.Attempt, error) {
	var attempt model.Attempt
	if err := r.db.Preload("Exam").First(&attempt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindByUserID(userID uint, limit int) ([]model.Attempt, error) {
	var attempts []model.Attempt
	query := r.db.Preload("Exam").Where("user_id = ?", userID).Order("started_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

func (r *attemptRepository) FinalizeGrading(attemptID uint, totalScore int, submittedAt time.Time, answers []model.Answer) (bool, error) {
	won := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Attempt{}).
			Where("id = ? AND status = ?", attemptID, model.AttemptStatusInProgress).
			Updates(map[string]interface{}{
				"status":       model.AttemptStatusGraded,
				"total_score":  totalScore,
				"submitted_at": submittedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// CAS lost: another submit already graded this attempt.
			return nil
		}
		won = true
		for i := range answers {
			if err := tx.Save(&answers[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return won, nil
}

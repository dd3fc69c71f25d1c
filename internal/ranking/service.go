package ranking

import (
	"context"
	"fmt"

	"github.com/lshigami/cbt-core/internal/dto"
	"github.com/lshigami/cbt-core/internal/repository"
	"github.com/rs/zerolog/log"
)

// placeholder rendered for leaderboard members whose user record is gone.
const deletedUserLabel = "(deleted user)"

// Service maintains the two leaderboards and answers top-N queries. Its
// write path is safe under at-least-once event delivery: the per-exam score
// is last-write-wins and the global counter is guarded by a per-attempt
// dedup marker.
type Service interface {
	RecordSubmission(ctx context.Context, attemptID, userID, examID uint, finalScore float64) error
	GetExamRanking(ctx context.Context, examID uint, limit int) ([]dto.RankDTO, error)
	GetGlobalSubmissionRanking(ctx context.Context, limit int) ([]dto.RankDTO, error)
	GetMySubmissionRank(ctx context.Context, userID uint) (*dto.RankDTO, error)
}

type service struct {
	store    *Store
	userRepo repository.UserRepository
}

func NewService(store *Store, userRepo repository.UserRepository) Service {
	return &service{store: store, userRepo: userRepo}
}

// RecordSubmission applies one graded attempt to both leaderboards. Repeat
// deliveries of the same attempt re-run the idempotent score write and skip
// the counter increment.
func (s *service) RecordSubmission(ctx context.Context, attemptID, userID, examID uint, finalScore float64) error {
	if err := s.store.SetExamScore(ctx, examID, userID, finalScore); err != nil {
		return fmt.Errorf("set exam score for exam %d: %w", examID, err)
	}

	first, err := s.store.MarkProcessed(ctx, attemptID)
	if err != nil {
		return fmt.Errorf("mark attempt %d processed: %w", attemptID, err)
	}
	if !first {
		log.Info().Uint("attemptID", attemptID).Msg("Ranking: duplicate grading event, submission counter unchanged")
		return nil
	}

	if err := s.store.IncrementSubmissions(ctx, userID); err != nil {
		// Roll the marker back so a redelivery can count this attempt.
		if delErr := s.store.UnmarkProcessed(ctx, attemptID); delErr != nil {
			log.Error().Err(delErr).Uint("attemptID", attemptID).Msg("Ranking: failed to release dedup marker after increment failure")
		}
		return fmt.Errorf("increment submissions for user %d: %w", userID, err)
	}

	log.Info().Uint("attemptID", attemptID).Uint("userID", userID).Uint("examID", examID).
		Float64("score", finalScore).Msg("Ranking: recorded graded submission")
	return nil
}

func (s *service) GetExamRanking(ctx context.Context, examID uint, limit int) ([]dto.RankDTO, error) {
	members, err := s.store.ExamTopN(ctx, examID, limit)
	if err != nil {
		return nil, fmt.Errorf("exam ranking for exam %d: %w", examID, err)
	}
	return s.toRankDTOs(members), nil
}

func (s *service) GetGlobalSubmissionRanking(ctx context.Context, limit int) ([]dto.RankDTO, error) {
	members, err := s.store.SubmissionsTopN(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("global submission ranking: %w", err)
	}
	return s.toRankDTOs(members), nil
}

func (s *service) GetMySubmissionRank(ctx context.Context, userID uint) (*dto.RankDTO, error) {
	rank, score, ok, err := s.store.SubmissionRank(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("submission rank for user %d: %w", userID, err)
	}
	if !ok {
		return nil, nil
	}
	return &dto.RankDTO{
		Rank:     int(rank),
		UserID:   userID,
		Username: s.usernameFor(userID),
		Score:    score,
	}, nil
}

// toRankDTOs resolves display names in one batch and assigns 1-based ranks
// from the descending-score result order.
func (s *service) toRankDTOs(members []MemberScore) []dto.RankDTO {
	ids := make([]uint, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}

	names := make(map[uint]string, len(ids))
	users, err := s.userRepo.FindByIDs(ids)
	if err != nil {
		log.Warn().Err(err).Msg("Ranking: could not resolve usernames, rendering placeholders")
	} else {
		for _, u := range users {
			names[u.ID] = u.Username
		}
	}

	ranks := make([]dto.RankDTO, 0, len(members))
	for i, m := range members {
		name, ok := names[m.UserID]
		if !ok {
			name = deletedUserLabel
		}
		ranks = append(ranks, dto.RankDTO{
			Rank:     i + 1,
			UserID:   m.UserID,
			Username: name,
			Score:    m.Score,
		})
	}
	return ranks
}

func (s *service) usernameFor(userID uint) string {
	user, err := s.userRepo.FindByID(userID)
	if err != nil || user == nil {
		return deletedUserLabel
	}
	return user.Username
}

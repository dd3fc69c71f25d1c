package ranking

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const (
	examKeyPrefix      = "ranking:exam:"
	submissionsKey     = "ranking:submissions"
	processedKeyPrefix = "ranking:processed:"
)

// MemberScore is one (member, score) pair out of a ranked set, in the order
// the store returned it.
type MemberScore struct {
	UserID uint
	Score  float64
}

// Store wraps the Redis sorted sets backing both leaderboards. Members are
// user ids encoded as decimal strings.
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// SetExamScore records the user's score for one exam. ZADD overwrites the
// member's previous score, which is exactly the last-write-wins the per-exam
// leaderboard needs: a re-submission replaces, it does not sum.
func (s *Store) SetExamScore(ctx context.Context, examID, userID uint, score float64) error {
	return s.client.ZAdd(ctx, examKey(examID), redis.Z{
		Score:  score,
		Member: member(userID),
	}).Err()
}

// IncrementSubmissions bumps the user's global submission counter by one.
// Callers must guard this with MarkProcessed; ZINCRBY itself is not
// idempotent under event redelivery.
func (s *Store) IncrementSubmissions(ctx context.Context, userID uint) error {
	return s.client.ZIncrBy(ctx, submissionsKey, 1, member(userID)).Err()
}

// MarkProcessed records that an attempt's grading event has been applied.
// It returns true only for the first caller; redelivered events see false
// and must skip the counter increment.
func (s *Store) MarkProcessed(ctx context.Context, attemptID uint) (bool, error) {
	return s.client.SetNX(ctx, processedKey(attemptID), "1", 0).Result()
}

// UnmarkProcessed removes the dedup marker so a failed ranking update can be
// retried by the next delivery of the same event.
func (s *Store) UnmarkProcessed(ctx context.Context, attemptID uint) error {
	return s.client.Del(ctx, processedKey(attemptID)).Err()
}

// ExamTopN returns the top limit members of an exam leaderboard by
// descending score.
func (s *Store) ExamTopN(ctx context.Context, examID uint, limit int) ([]MemberScore, error) {
	return s.topN(ctx, examKey(examID), limit)
}

// SubmissionsTopN returns the top limit members of the global submission
// counter by descending count.
func (s *Store) SubmissionsTopN(ctx context.Context, limit int) ([]MemberScore, error) {
	return s.topN(ctx, submissionsKey, limit)
}

// SubmissionRank returns the user's 1-based position on the global
// submission board and their count. ok is false when the user has no entry.
func (s *Store) SubmissionRank(ctx context.Context, userID uint) (rank int64, score float64, ok bool, err error) {
	rank, err = s.client.ZRevRank(ctx, submissionsKey, member(userID)).Result()
	if err == redis.Nil {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, err
	}
	score, err = s.client.ZScore(ctx, submissionsKey, member(userID)).Result()
	if err != nil && err != redis.Nil {
		return 0, 0, false, err
	}
	return rank + 1, score, true, nil
}

func (s *Store) topN(ctx context.Context, key string, limit int) ([]MemberScore, error) {
	zs, err := s.client.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	result := make([]MemberScore, 0, len(zs))
	for _, z := range zs {
		raw, _ := z.Member.(string)
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			continue
		}
		result = append(result, MemberScore{UserID: uint(id), Score: z.Score})
	}
	return result, nil
}

func examKey(examID uint) string {
	return examKeyPrefix + strconv.FormatUint(uint64(examID), 10)
}

func processedKey(attemptID uint) string {
	return processedKeyPrefix + strconv.FormatUint(uint64(attemptID), 10)
}

func member(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}

package event

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/lshigami/cbt-core/config"
	"github.com/lshigami/cbt-core/internal/model"
	"github.com/lshigami/cbt-core/internal/ranking"
	"github.com/redis/go-redis/v9"
)

type stubUserRepo struct{}

func (stubUserRepo) FindByID(id uint) (*model.User, error) {
	return &model.User{ID: id, Username: "user"}, nil
}

func (stubUserRepo) FindByIDs(ids []uint) ([]model.User, error) {
	users := make([]model.User, 0, len(ids))
	for _, id := range ids {
		users = append(users, model.User{ID: id, Username: "user"})
	}
	return users, nil
}

func newRankingService(t *testing.T) ranking.Service {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return ranking.NewService(ranking.NewStore(client), stubUserRepo{})
}

func TestSyncPropagatorAppliesEvent(t *testing.T) {
	svc := newRankingService(t)
	propagator := NewSyncPropagator(svc)
	ctx := context.Background()

	evt := GradingCompleted{AttemptID: 1, UserID: 10, ExamID: 5, FinalScore: 88}
	if err := propagator.Propagate(ctx, evt); err != nil {
		t.Fatalf("propagate: %v", err)
	}
	// Redelivery of the identical event must not double-count.
	if err := propagator.Propagate(ctx, evt); err != nil {
		t.Fatalf("repeat propagate: %v", err)
	}

	global, err := svc.GetGlobalSubmissionRanking(ctx, 10)
	if err != nil {
		t.Fatalf("global ranking: %v", err)
	}
	if len(global) != 1 || global[0].Score != 1 {
		t.Fatalf("expected one counted submission, got %+v", global)
	}

	exam, err := svc.GetExamRanking(ctx, 5, 10)
	if err != nil {
		t.Fatalf("exam ranking: %v", err)
	}
	if len(exam) != 1 || exam[0].Score != 88 {
		t.Fatalf("expected score 88 on exam board, got %+v", exam)
	}
}

func TestNewRankingPropagatorSelectsMode(t *testing.T) {
	svc := newRankingService(t)

	syncCfg := &config.Config{}
	syncCfg.Ranking.Propagation = "sync"
	if _, ok := NewRankingPropagator(syncCfg, svc).(*SyncPropagator); !ok {
		t.Fatalf("sync mode must select the synchronous propagator")
	}

	kafkaCfg := &config.Config{}
	kafkaCfg.Ranking.Propagation = "kafka"
	kafkaCfg.Kafka.Brokers = []string{"localhost:9092"}
	kafkaCfg.Kafka.Topic = "exam-graded"
	if _, ok := NewRankingPropagator(kafkaCfg, svc).(*KafkaPropagator); !ok {
		t.Fatalf("kafka mode must select the kafka propagator")
	}
}

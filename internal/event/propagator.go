package event

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/lshigami/cbt-core/config"
	"github.com/lshigami/cbt-core/internal/ranking"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// RankingPropagator carries a grading result toward the ranking store.
// Submit calls this after its transaction commits; implementations must
// never fail the submit path, so errors are for logging only.
type RankingPropagator interface {
	Propagate(ctx context.Context, evt GradingCompleted) error
}

// KafkaPropagator publishes GradingCompleted events. This is the default
// path: the ranking-store write happens in the consumer, off the
// candidate-facing request.
type KafkaPropagator struct {
	writer *kafka.Writer
}

func NewKafkaPropagator(cfg *config.Config) *KafkaPropagator {
	return &KafkaPropagator{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(cfg.Kafka.Brokers...),
			Topic:    cfg.Kafka.Topic,
			Balancer: &kafka.Hash{},
		},
	}
}

func (p *KafkaPropagator) Propagate(ctx context.Context, evt GradingCompleted) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	// Keying by user keeps one user's events in order within a partition.
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(evt.UserID), 10)),
		Value: payload,
	})
}

func (p *KafkaPropagator) Close() error {
	return p.writer.Close()
}

// SyncPropagator updates the ranking store inline. Degraded fallback for
// deployments without a broker: submit latency then depends on Redis, which
// is the documented trade-off of this mode.
type SyncPropagator struct {
	ranking ranking.Service
}

func NewSyncPropagator(rankingService ranking.Service) *SyncPropagator {
	return &SyncPropagator{ranking: rankingService}
}

func (p *SyncPropagator) Propagate(ctx context.Context, evt GradingCompleted) error {
	return p.ranking.RecordSubmission(ctx, evt.AttemptID, evt.UserID, evt.ExamID, evt.FinalScore)
}

// NewRankingPropagator picks the configured propagation mode.
func NewRankingPropagator(cfg *config.Config, rankingService ranking.Service) RankingPropagator {
	if cfg.Ranking.Propagation == "sync" {
		log.Info().Msg("Ranking propagation: synchronous (direct Redis updates from submit)")
		return NewSyncPropagator(rankingService)
	}
	log.Info().Str("topic", cfg.Kafka.Topic).Msg("Ranking propagation: asynchronous via Kafka")
	return NewKafkaPropagator(cfg)
}

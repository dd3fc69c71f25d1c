package event

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/lshigami/cbt-core/config"
	"github.com/lshigami/cbt-core/internal/ranking"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// Consumer reads GradingCompleted events and applies them to the ranking
// store. Consumer-group delivery is at-least-once; Service.RecordSubmission
// is idempotent per attempt, so redeliveries are harmless.
type Consumer struct {
	reader  *kafka.Reader
	ranking ranking.Service
}

func NewConsumer(cfg *config.Config, rankingService ranking.Service) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
			GroupID: cfg.Kafka.GroupID,
		}),
		ranking: rankingService,
	}
}

// Run blocks until ctx is cancelled or the reader is closed. A message that
// fails to apply is not committed, so the group redelivers it.
func (c *Consumer) Run(ctx context.Context) {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				log.Info().Msg("Ranking consumer stopped")
				return
			}
			log.Error().Err(err).Msg("Ranking consumer: fetch failed")
			continue
		}

		if err := c.handle(ctx, msg.Value); err != nil {
			log.Error().Err(err).Int64("offset", msg.Offset).Msg("Ranking consumer: event not applied, leaving uncommitted for redelivery")
			continue
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			log.Error().Err(err).Int64("offset", msg.Offset).Msg("Ranking consumer: commit failed")
		}
	}
}

func (c *Consumer) handle(ctx context.Context, payload []byte) error {
	var evt GradingCompleted
	if err := json.Unmarshal(payload, &evt); err != nil {
		// Malformed payloads would fail forever; log and drop.
		log.Error().Err(err).Str("payload", string(payload)).Msg("Ranking consumer: dropping malformed event")
		return nil
	}

	log.Info().Uint("attemptID", evt.AttemptID).Uint("userID", evt.UserID).Msg("Ranking consumer: received grading event")
	return c.ranking.RecordSubmission(ctx, evt.AttemptID, evt.UserID, evt.ExamID, evt.FinalScore)
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

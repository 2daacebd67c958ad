// Package ingest feeds readings arriving over message brokers into the analytics service.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sensor_analytics/internal/config"
	"sensor_analytics/internal/logger"
	"sensor_analytics/internal/models"
	"sensor_analytics/internal/service"

	"github.com/segmentio/kafka-go"
)

const defaultBackoff = 200 * time.Millisecond

var errEmptyPayload = errors.New("empty payload")

// messageReader is the subset of *kafka.Reader the consumer needs.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// KafkaConsumer reads JSON readings from a topic and ingests them one by one.
type KafkaConsumer struct {
	reader    messageReader
	analytics service.Analytics
	log       *logger.Logger
	backoff   time.Duration
}

// NewKafkaConsumer joins cfg.GroupID on cfg.Topic.
func NewKafkaConsumer(cfg config.KafkaConfig, an service.Analytics, log *logger.Logger) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1e3,
		MaxBytes: 10e6,
	})
	return newConsumer(reader, an, log)
}

func newConsumer(r messageReader, an service.Analytics, log *logger.Logger) *KafkaConsumer {
	return &KafkaConsumer{
		reader:    r,
		analytics: an,
		log:       log.Named("kafka"),
		backoff:   defaultBackoff,
	}
}

// Run consumes until ctx is cancelled, then closes the reader.
// Malformed messages are logged and skipped.
func (c *KafkaConsumer) Run(ctx context.Context) {
	defer func() {
		if err := c.reader.Close(); err != nil && c.log != nil {
			c.log.Warnw("kafka_close_failed", "err", err)
		}
	}()
	ctx = service.WithSource(ctx, service.SourceKafka)

	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if c.log != nil {
				c.log.Warnw("kafka_read_failed", "err", err)
			}
			if !sleep(ctx, c.backoff) {
				return
			}
			continue
		}
		if err := c.handle(ctx, m); err != nil && c.log != nil {
			c.log.Warnw("kafka_message_skipped",
				"err", err,
				"partition", m.Partition,
				"offset", m.Offset,
			)
		}
	}
}

func (c *KafkaConsumer) handle(ctx context.Context, m kafka.Message) error {
	r, err := decodeReading(m.Value)
	if err != nil {
		return err
	}
	c.analytics.Ingest(ctx, r)
	return nil
}

// decodeReading accepts the same JSON object as POST /api/analytics/process.
func decodeReading(b []byte) (models.Reading, error) {
	var payload map[string]any
	if err := json.Unmarshal(b, &payload); err != nil {
		return models.Reading{}, fmt.Errorf("decode reading: %w", err)
	}
	if len(payload) == 0 {
		return models.Reading{}, errEmptyPayload
	}
	return models.ReadingFromMap(payload)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

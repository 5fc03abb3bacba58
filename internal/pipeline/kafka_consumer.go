package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	v1 "github.com/aevon-lab/project-indica/internal/api/v1"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 10 * time.Second
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConsumerConfig selects the change topic and consumer group.
type KafkaConsumerConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// KafkaConsumer reads change events from a topic partitioned by source identity
// and handles them one at a time, committing each offset only after its change
// was handled.
type KafkaConsumer struct {
	topic   string
	reader  messageReader
	handle  Handler
	backoff time.Duration
}

func NewKafkaConsumer(cfg KafkaConsumerConfig, handle Handler) (*KafkaConsumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("no kafka brokers configured")
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		return nil, errors.New("kafka change topic must not be empty")
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		GroupTopics: []string{cfg.Topic},
		StartOffset: kafka.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
	})
	return newKafkaConsumer(cfg.Topic, reader, handle), nil
}

func newKafkaConsumer(topic string, reader messageReader, handle Handler) *KafkaConsumer {
	return &KafkaConsumer{topic: topic, reader: reader, handle: handle, backoff: initialBackoff}
}

// Run consumes until ctx is cancelled. A change whose handling fails is retried
// with backoff; undecodable messages are committed and skipped.
func (c *KafkaConsumer) Run(ctx context.Context) error {
	defer func() {
		if err := c.reader.Close(); err != nil {
			slog.Error("[KafkaConsumer] Failed to close reader", "error", err)
		}
	}()
	slog.Info("[KafkaConsumer] Starting", "topic", c.topic)

	backoff := c.backoff
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				slog.Info("[KafkaConsumer] Stopping (context cancelled)", "topic", c.topic)
				return nil
			}
			slog.Error("[KafkaConsumer] Fetch failed", "error", err)
			if !sleep(ctx, &backoff) {
				return nil
			}
			continue
		}
		backoff = c.backoff

		if !c.handleWithRetry(ctx, msg) {
			return nil
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			slog.Error("[KafkaConsumer] Commit failed", "error", err, "offset", msg.Offset, "partition", msg.Partition)
		}
	}
}

// handleWithRetry returns false only when ctx was cancelled before the message
// was handled.
func (c *KafkaConsumer) handleWithRetry(ctx context.Context, msg kafka.Message) bool {
	evt, err := decodeChange(msg)
	if err != nil {
		slog.Warn("[KafkaConsumer] Skipping undecodable message",
			"error", err,
			"offset", msg.Offset,
			"partition", msg.Partition,
		)
		return true
	}

	backoff := c.backoff
	for {
		err := c.handle(ctx, evt)
		if err == nil {
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		slog.Error("[KafkaConsumer] Handling failed, retrying",
			"error", err,
			"change_id", evt.ID,
			"source_id", evt.Document.ID,
			"retry_in", backoff,
		)
		if !sleep(ctx, &backoff) {
			return false
		}
	}
}

// decodeChange parses a message value as a ChangeEvent, filling in the id and
// receive time from the message when the producer left them out.
func decodeChange(msg kafka.Message) (*v1.ChangeEvent, error) {
	var evt v1.ChangeEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		return nil, fmt.Errorf("decode change: %w", err)
	}
	if err := evt.Validate(); err != nil {
		return nil, err
	}
	if evt.ID == "" {
		evt.ID = fmt.Sprintf("%s-%d-%d", msg.Topic, msg.Partition, msg.Offset)
	}
	if evt.ReceivedAt.IsZero() {
		evt.ReceivedAt = msg.Time.UTC()
	}
	return &evt, nil
}

func sleep(ctx context.Context, backoff *time.Duration) bool {
	select {
	case <-time.After(*backoff):
		if *backoff < maxBackoff {
			*backoff *= 2
		}
		return true
	case <-ctx.Done():
		return false
	}
}

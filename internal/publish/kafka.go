package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/aevon-lab/project-indica/internal/core/indicator"
)

const writeTimeout = 10 * time.Second

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConfig configures the diff topic writer.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// KafkaPublisher writes reports as JSON to a Kafka topic, keyed by document id so
// that every report for one document lands on the same partition in order.
type KafkaPublisher struct {
	topic  string
	writer messageWriter
}

func NewKafkaPublisher(cfg KafkaConfig) (*KafkaPublisher, error) {
	if strings.TrimSpace(cfg.Topic) == "" {
		return nil, errors.New("kafka diff topic must not be empty")
	}
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("at least one kafka broker is required")
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: false,
	}
	slog.Info("[KafkaPublisher] Writer configured", "topic", cfg.Topic, "brokers", cfg.Brokers)
	return newKafkaPublisher(cfg.Topic, w), nil
}

func newKafkaPublisher(topic string, w messageWriter) *KafkaPublisher {
	return &KafkaPublisher{topic: topic, writer: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, docID string, report *indicator.Report) error {
	value, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(docID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "indicator", Value: []byte(report.DocType)},
			{Key: "database", Value: []byte(report.Database)},
		},
	}
	if err := p.writer.WriteMessages(writeCtx, msg); err != nil {
		return fmt.Errorf("write report to %s: %w", p.topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

package queue

import (
	"context"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"
)

// KafkaConfig selects the topic and consumer group to read from.
type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// KafkaSource consumes readings from a Kafka topic. Offsets are committed on Ack.
type KafkaSource struct {
	reader *kafkago.Reader
}

// NewKafkaSource creates a consumer-group reader for cfg.
func NewKafkaSource(cfg KafkaConfig) (*KafkaSource, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka source: no brokers configured")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka source: topic is required")
	}
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &KafkaSource{reader: r}, nil
}

// Next fetches the next message without committing it.
func (s *KafkaSource) Next(ctx context.Context) (Delivery, error) {
	msg, err := s.reader.FetchMessage(ctx)
	if err != nil {
		return Delivery{}, fmt.Errorf("kafka fetch: %w", err)
	}
	return mapMessage(msg, s.reader.CommitMessages), nil
}

// Close closes the reader.
func (s *KafkaSource) Close() error {
	return s.reader.Close()
}

func mapMessage(msg kafkago.Message, commit func(context.Context, ...kafkago.Message) error) Delivery {
	return Delivery{
		Payload: msg.Value,
		Ack: func(ctx context.Context) error {
			return commit(ctx, msg)
		},
	}
}

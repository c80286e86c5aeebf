package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher pushes commands to a Kafka topic keyed by target so one recipient's
// commands stay ordered.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	logger *zap.Logger
}

// NewKafkaPublisher builds a publisher writing to topic on brokers.
func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireAll,
		MaxAttempts:            5,
		WriteBackoffMin:        100 * time.Millisecond,
		WriteBackoffMax:        time.Second,
	}
	logger.Info("kafka publisher created", zap.Strings("brokers", brokers), zap.String("topic", topic))
	return &KafkaPublisher{writer: writer, topic: topic, logger: logger}
}

// Publish serializes the command and writes it.
func (p *KafkaPublisher) Publish(ctx context.Context, cmd Command) error {
	msg, err := toMessage(cmd)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish command",
			zap.String("topic", p.topic),
			zap.String("kind", string(cmd.Kind)),
			zap.String("target", cmd.Target),
			zap.Error(err))
		return err
	}
	p.logger.Debug("command published",
		zap.String("topic", p.topic),
		zap.String("kind", string(cmd.Kind)),
		zap.String("target", cmd.Target))
	return nil
}

// Close flushes pending writes.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func toMessage(cmd Command) (kafka.Message, error) {
	if cmd.CreatedAt.IsZero() {
		cmd.CreatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(cmd)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal command: %w", err)
	}
	return kafka.Message{
		Key:   []byte(cmd.Target),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(cmd.Kind)},
		},
	}, nil
}

// LogPublisher stands in when no brokers are configured; commands are only logged.
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher builds the log-only publisher.
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, cmd Command) error {
	p.logger.Info("command not dispatched; no kafka brokers configured",
		zap.String("kind", string(cmd.Kind)),
		zap.String("target", cmd.Target),
		zap.String("template", cmd.Template))
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// NewPublisher picks Kafka when brokers are configured.
func NewPublisher(brokers []string, topic string, logger *zap.Logger) Publisher {
	if len(brokers) == 0 {
		logger.Warn("NOTIFY_KAFKA_BROKERS not provided; email and pdf commands are logged only")
		return NewLogPublisher(logger)
	}
	return NewKafkaPublisher(brokers, topic, logger)
}

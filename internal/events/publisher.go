package events

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/aristath/investsync/internal/syncer"
)

// Publisher sends run events somewhere
type Publisher interface {
	syncer.RunObserver
	Close() error
}

// messageWriter is the part of kafka.Writer the publisher uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes one JSON message per finished run, keyed by run id
type KafkaPublisher struct {
	writer  messageWriter
	topic   string
	timeout time.Duration
	log     zerolog.Logger
}

// NewKafkaPublisher creates a publisher writing to topic on brokers
func NewKafkaPublisher(brokers []string, topic string, log zerolog.Logger) *KafkaPublisher {
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}

	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      brokers,
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		Dialer:       dialer,
		BatchTimeout: 200 * time.Millisecond,
		RequiredAcks: int(kafka.RequireOne),
	})
	return newKafkaPublisher(w, topic, log)
}

func newKafkaPublisher(w messageWriter, topic string, log zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer:  w,
		topic:   topic,
		timeout: 10 * time.Second,
		log:     log.With().Str("component", "kafka_publisher").Str("topic", topic).Logger(),
	}
}

// RunFinished publishes the run event.
func (p *KafkaPublisher) RunFinished(ctx context.Context, report *syncer.Report) error {
	event := FromReport(report)
	payload, err := sonic.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.Type, err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(report.RunID),
		Value: payload,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}

	p.log.Debug().Str("run_id", report.RunID).Str("event_type", string(event.Type)).Msg("Published run event")
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher discards events. It is used when no brokers are configured.
type NopPublisher struct{}

// RunFinished does nothing.
func (NopPublisher) RunFinished(context.Context, *syncer.Report) error { return nil }

// Close does nothing.
func (NopPublisher) Close() error { return nil }

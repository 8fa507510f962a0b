package feed

import (
	"context"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"aviation_briefing/internal/registry"
)

// KafkaSink publishes processed reports to a Kafka topic.
type KafkaSink struct {
	writer *kafkago.Writer
}

// NewKafkaSink creates a producer for topic.
func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &KafkaSink{writer: w}
}

func (s *KafkaSink) Name() string { return "kafka" }

// Write publishes the batch in a single WriteMessages call.
func (s *KafkaSink) Write(ctx context.Context, batch []Processed) error {
	if len(batch) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(batch))
	for i := range batch {
		msg, err := serializeToMessage(batch[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return s.writer.WriteMessages(ctx, msgs...)
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

// serializeToMessage marshals a processed report into a Kafka message keyed
// by record ID.
func serializeToMessage(p Processed) (kafkago.Message, error) {
	data, err := p.marshal()
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize report %s: %w", p.Record.ID, err)
	}
	attrs := registry.AttributesOf(p.Result)
	return kafkago.Message{
		Key:   []byte(p.Record.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "kind", Value: []byte(p.Record.Kind.String())},
			{Key: "severity", Value: []byte(attrs.Severity)},
			{Key: "processed_at", Value: []byte(p.Record.CreatedAt.Format(time.RFC3339))},
		},
	}, nil
}

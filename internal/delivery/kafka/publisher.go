package kafka

import (
	"context"
	"time"

	kafka "github.com/segmentio/kafka-go"
)

// Publisher writes import reports to the report topic.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
	}
	return &Publisher{writer: w}
}

func (p *Publisher) Publish(ctx context.Context, payload []byte) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Value: payload,
	})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

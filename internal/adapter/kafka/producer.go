package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/895623789/fresh-store-backend/internal/usecase"
)

// Producer publishes order lifecycle events, keyed by order id so all
// events for one order land on the same partition in order.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewProducer(p sarama.SyncProducer, topic string) *Producer {
	return &Producer{producer: p, topic: topic}
}

var _ usecase.EventPublisher = (*Producer)(nil)

func (p *Producer) PublishOrderEvent(_ context.Context, msg usecase.OrderEventMsg) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}
	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(msg.OrderID),
		Value: sarama.ByteEncoder(body),
	})
	if err != nil {
		return fmt.Errorf("publish order event: %w", err)
	}
	return nil
}

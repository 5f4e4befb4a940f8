package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Domenick1991/hotelbooking/internal/domain"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Consumer struct {
	reader *kafka.Reader
	log    *zap.Logger
}

func NewConsumer(brokers []string, groupID, topic string, log *zap.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		log: log.Named("kafka.consumer"),
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, kafka.Message) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
}

// ConsumeEvents decodes every message as a domain.Event. Undecodable
// messages are logged and skipped.
func (c *Consumer) ConsumeEvents(ctx context.Context, handler func(context.Context, domain.Event) error) error {
	return c.Consume(ctx, func(ctx context.Context, msg kafka.Message) error {
		event, ok := DecodeEvent(msg.Value)
		if !ok {
			c.log.Warn("skip undecodable event", zap.Int64("offset", msg.Offset), zap.Int("partition", msg.Partition))
			return nil
		}
		return handler(ctx, event)
	})
}

func DecodeEvent(data []byte) (domain.Event, bool) {
	var event domain.Event
	if err := json.Unmarshal(data, &event); err != nil || event.Type == "" {
		return domain.Event{}, false
	}
	return event, true
}

package events

import (
	"context"
	"strconv"
	"time"

	"github.com/Domenick1991/hotelbooking/internal/domain"
	"go.uber.org/zap"
)

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// retryingProducer is implemented by producers that can retry a write.
// Customer notifications go through it when available.
type retryingProducer interface {
	PublishWithRetry(ctx context.Context, topic, key string, value interface{}, maxRetries int) error
}

const notificationRetries = 3

// Publisher sends domain events to Kafka. Failures are logged and never
// returned; listeners only use events as a hint to refetch.
type Publisher struct {
	producer           Producer
	topic              string
	notificationsTopic string
	log                *zap.Logger
}

type Option func(*Publisher)

func WithNotificationsTopic(topic string) Option {
	return func(p *Publisher) {
		p.notificationsTopic = topic
	}
}

func NewPublisher(producer Producer, topic string, log *zap.Logger, opts ...Option) *Publisher {
	p := &Publisher{producer: producer, topic: topic, log: log.Named("events")}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Publisher) PublishEvent(ctx context.Context, event domain.Event) {
	if p == nil || p.producer == nil || p.topic == "" {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	key := eventKey(event)
	if err := p.producer.Publish(ctx, p.topic, key, event); err != nil {
		p.log.Warn("publish event failed", zap.String("type", string(event.Type)), zap.String("key", key), zap.Error(err))
		return
	}
	if p.notificationsTopic != "" && notifies(event.Type) {
		if err := p.notify(ctx, key, event); err != nil {
			p.log.Warn("publish notification failed", zap.String("type", string(event.Type)), zap.Error(err))
		}
	}
}

func (p *Publisher) notify(ctx context.Context, key string, event domain.Event) error {
	if rp, ok := p.producer.(retryingProducer); ok {
		return rp.PublishWithRetry(ctx, p.notificationsTopic, key, event, notificationRetries)
	}
	return p.producer.Publish(ctx, p.notificationsTopic, key, event)
}

func eventKey(event domain.Event) string {
	switch {
	case event.BookingCode != "":
		return event.BookingCode
	case event.BookingID != 0:
		return strconv.FormatInt(event.BookingID, 10)
	case len(event.RoomIDs) > 0:
		return "room-" + strconv.FormatInt(event.RoomIDs[0], 10)
	default:
		return string(event.Type)
	}
}

// notifies reports whether customers get an email for this event type.
func notifies(t domain.EventType) bool {
	return t == domain.EventBookingCreated || t == domain.EventPaymentReceived || t == domain.EventBookingUpdated
}

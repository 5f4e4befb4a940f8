package events

import (
	"context"
	"errors"
	"testing"

	"github.com/Domenick1991/hotelbooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func TestPublisher_PublishEvent(t *testing.T) {
	producer := &MockProducer{}
	ctx := context.Background()
	p := NewPublisher(producer, "events", zap.NewNop(), WithNotificationsTopic("notify"))

	producer.On("Publish", ctx, "events", "BK1", mock.AnythingOfType("domain.Event")).Return(nil).Once()
	producer.On("Publish", ctx, "notify", "BK1", mock.AnythingOfType("domain.Event")).Return(nil).Once()

	p.PublishEvent(ctx, domain.Event{Type: domain.EventBookingCreated, BookingCode: "BK1"})

	producer.AssertExpectations(t)
}

func TestPublisher_RoomEventsSkipNotifications(t *testing.T) {
	producer := &MockProducer{}
	ctx := context.Background()
	p := NewPublisher(producer, "events", zap.NewNop(), WithNotificationsTopic("notify"))

	producer.On("Publish", ctx, "events", "room-4", mock.Anything).Return(nil).Once()

	p.PublishEvent(ctx, domain.Event{Type: domain.EventRoomStatusChanged, RoomIDs: []int64{4}})

	producer.AssertExpectations(t)
	producer.AssertNumberOfCalls(t, "Publish", 1)
}

func TestPublisher_SwallowsErrors(t *testing.T) {
	producer := &MockProducer{}
	ctx := context.Background()
	p := NewPublisher(producer, "events", zap.NewNop(), WithNotificationsTopic("notify"))

	producer.On("Publish", ctx, "events", "7", mock.Anything).Return(errors.New("broker down")).Once()

	assert.NotPanics(t, func() {
		p.PublishEvent(ctx, domain.Event{Type: domain.EventBookingUpdated, BookingID: 7})
	})
	producer.AssertNumberOfCalls(t, "Publish", 1)
}

func TestPublisher_NilSafe(t *testing.T) {
	var p *Publisher
	assert.NotPanics(t, func() { p.PublishEvent(context.Background(), domain.Event{Type: domain.EventServiceAdded}) })

	p = NewPublisher(nil, "events", zap.NewNop())
	assert.NotPanics(t, func() { p.PublishEvent(context.Background(), domain.Event{Type: domain.EventServiceAdded}) })
}

type MockRetryingProducer struct {
	MockProducer
}

func (m *MockRetryingProducer) PublishWithRetry(ctx context.Context, topic, key string, value interface{}, maxRetries int) error {
	args := m.Called(ctx, topic, key, value, maxRetries)
	return args.Error(0)
}

func TestPublisher_NotificationsUseRetry(t *testing.T) {
	producer := &MockRetryingProducer{}
	ctx := context.Background()
	p := NewPublisher(producer, "events", zap.NewNop(), WithNotificationsTopic("notify"))

	producer.On("Publish", ctx, "events", "BK2", mock.Anything).Return(nil).Once()
	producer.On("PublishWithRetry", ctx, "notify", "BK2", mock.Anything, 3).Return(nil).Once()

	p.PublishEvent(ctx, domain.Event{Type: domain.EventPaymentReceived, BookingCode: "BK2"})

	producer.AssertExpectations(t)
	producer.AssertNumberOfCalls(t, "Publish", 1)
}

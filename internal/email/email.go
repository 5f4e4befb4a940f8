package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/hotelbooking/internal/domain"
	"go.uber.org/zap"
)

type Message struct {
	CustomerID string
	Subject    string
	Body       string
}

// Sender turns booking events into customer notifications. Delivery is a
// structured log line; there is no mail transport wired in.
type Sender struct {
	log *zap.Logger
}

func NewSender(log *zap.Logger) *Sender {
	return &Sender{log: log.Named("email")}
}

func (s *Sender) Send(ctx context.Context, event domain.Event) error {
	msg, ok := Compose(event)
	if !ok {
		return nil
	}
	s.log.Info("send email",
		zap.String("customer_id", msg.CustomerID),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}

// Compose builds the notification for event. Events without a customer or
// of a type customers are not told about yield false.
func Compose(event domain.Event) (Message, bool) {
	if event.CustomerID == "" {
		return Message{}, false
	}

	msg := Message{CustomerID: event.CustomerID}
	switch event.Type {
	case domain.EventBookingCreated:
		msg.Subject = fmt.Sprintf("Booking %s received", event.BookingCode)
		msg.Body = fmt.Sprintf("We have your booking %s for %d room(s). Total: %d VND.", event.BookingCode, len(event.RoomIDs), event.Total)
	case domain.EventPaymentReceived:
		msg.Subject = fmt.Sprintf("Payment for %s confirmed", event.BookingCode)
		msg.Body = fmt.Sprintf("We received %d VND for booking %s.", event.Total, event.BookingCode)
	case domain.EventBookingUpdated:
		msg.Subject = fmt.Sprintf("Booking %s updated", event.BookingCode)
		msg.Body = fmt.Sprintf("Booking %s is now %s.", event.BookingCode, event.Status)
	default:
		return Message{}, false
	}
	return msg, true
}

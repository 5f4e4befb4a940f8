package domain

import "time"

type EventType string

const (
	EventBookingCreated    EventType = "booking_created"
	EventBookingUpdated    EventType = "booking_updated"
	EventRoomStatusChanged EventType = "room_status_changed"
	EventPaymentReceived   EventType = "payment_received"
	EventServiceAdded      EventType = "service_added"
)

// Event tells listeners that something changed. It carries identifiers
// only; consumers refetch state over REST.
type Event struct {
	Type        EventType `json:"type"`
	BookingID   int64     `json:"booking_id,omitempty"`
	BookingCode string    `json:"booking_code,omitempty"`
	CustomerID  string    `json:"customer_id,omitempty"`
	RoomIDs     []int64   `json:"room_ids,omitempty"`
	Status      string    `json:"status,omitempty"`
	Total       int64     `json:"total,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

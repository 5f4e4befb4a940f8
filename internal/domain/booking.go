package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusExpired   BookingStatus = "EXPIRED"
)

type PaymentMethod string

const (
	PaymentCash  PaymentMethod = "cash"
	PaymentVNPay PaymentMethod = "vnpay"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentVNPay
}

// Online reports whether the method needs a payment redirect.
func (m PaymentMethod) Online() bool {
	return m == PaymentVNPay
}

type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "UNPAID"
	PaymentStatusPaid   PaymentStatus = "PAID"
	PaymentStatusFailed PaymentStatus = "FAILED"
)

type BookingRoom struct {
	ID           int64
	BookingID    int64
	RoomID       int64
	CheckIn      time.Time
	CheckOut     time.Time
	NightlyPrice int64
}

type Booking struct {
	ID            int64
	Code          string
	CustomerID    string
	CheckIn       time.Time
	CheckOut      time.Time
	Status        BookingStatus
	PaymentMethod PaymentMethod
	PaymentStatus PaymentStatus
	Source        string
	VoucherCode   string
	BaseTotal     int64
	Discount      int64
	TotalPrice    int64
	Rooms         []BookingRoom
	ExpiresAt     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type SubmissionRoom struct {
	RoomID       int64     `json:"room_id"`
	CheckIn      time.Time `json:"check_in"`
	CheckOut     time.Time `json:"check_out"`
	NightlyPrice int64     `json:"price_per_night"`
}

// BookingSubmission is the fully resolved payload accepted by booking
// creation. Every room carries explicit dates.
type BookingSubmission struct {
	CustomerID    string           `json:"customer_id"`
	CheckIn       time.Time        `json:"check_in"`
	CheckOut      time.Time        `json:"check_out"`
	Rooms         []SubmissionRoom `json:"rooms"`
	PaymentMethod PaymentMethod    `json:"payment_method"`
	Source        string           `json:"source"`
	VoucherCode   string           `json:"voucher_code,omitempty"`
}

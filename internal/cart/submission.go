package cart

import (
	"fmt"
	"strings"

	"github.com/Domenick1991/hotelbooking/internal/domain"
)

const SourceWebsite = "website"

// Assemble turns a reconciled cart into the payload accepted by booking
// creation. Every room gets explicit dates; nothing inherits the master
// window past this point. It makes no calls and fails with a
// *ValidationError when anything required is missing.
func Assemble(c *domain.Cart, customerID string, method domain.PaymentMethod, source string) (*domain.BookingSubmission, error) {
	ve := newValidationError()

	if strings.TrimSpace(customerID) == "" {
		ve.add("customer_id", "is required")
	}
	switch {
	case method == "":
		ve.add("payment_method", "is required")
	case !method.Valid():
		ve.add("payment_method", fmt.Sprintf("unsupported payment method %q", method))
	}
	if c == nil || len(c.Rooms) == 0 {
		ve.add("rooms", "at least one room is required")
	}
	if !ve.empty() {
		return nil, ve
	}

	sub := &domain.BookingSubmission{
		CustomerID:    strings.TrimSpace(customerID),
		Rooms:         make([]domain.SubmissionRoom, 0, len(c.Rooms)),
		PaymentMethod: method,
		Source:        source,
	}
	if sub.Source == "" {
		sub.Source = SourceWebsite
	}

	for i, room := range c.Rooms {
		w := EffectiveDates(room, c.Master)
		field := fmt.Sprintf("rooms[%d]", i)
		if w.CheckIn.IsZero() || w.CheckOut.IsZero() {
			ve.add(field, fmt.Sprintf("room %d has no check-in/check-out dates", room.RoomID))
			continue
		}
		if Nights(w) <= 0 {
			ve.add(field, fmt.Sprintf("room %d: check-out must be after check-in", room.RoomID))
			continue
		}

		if len(sub.Rooms) == 0 || w.CheckIn.Before(sub.CheckIn) {
			sub.CheckIn = w.CheckIn
		}
		if len(sub.Rooms) == 0 || w.CheckOut.After(sub.CheckOut) {
			sub.CheckOut = w.CheckOut
		}
		sub.Rooms = append(sub.Rooms, domain.SubmissionRoom{
			RoomID:       room.RoomID,
			CheckIn:      w.CheckIn,
			CheckOut:     w.CheckOut,
			NightlyPrice: room.NightlyPrice,
		})
	}
	if !ve.empty() {
		return nil, ve
	}

	if c.Voucher != nil {
		sub.VoucherCode = c.Voucher.Code
	}
	return sub, nil
}

// ValidateSubmission checks a payload that did not come from Assemble,
// e.g. one posted by the admin booking form.
func ValidateSubmission(sub *domain.BookingSubmission) error {
	ve := newValidationError()
	if sub == nil {
		ve.add("payload", "is required")
		return ve
	}
	if strings.TrimSpace(sub.CustomerID) == "" {
		ve.add("customer_id", "is required")
	}
	switch {
	case sub.PaymentMethod == "":
		ve.add("payment_method", "is required")
	case !sub.PaymentMethod.Valid():
		ve.add("payment_method", fmt.Sprintf("unsupported payment method %q", sub.PaymentMethod))
	}
	if len(sub.Rooms) == 0 {
		ve.add("rooms", "at least one room is required")
	}
	seen := make(map[int64]bool, len(sub.Rooms))
	for i, room := range sub.Rooms {
		field := fmt.Sprintf("rooms[%d]", i)
		if seen[room.RoomID] {
			ve.add(field, fmt.Sprintf("room %d is listed twice", room.RoomID))
		}
		seen[room.RoomID] = true
		if err := validateWindow(domain.DateWindow{CheckIn: room.CheckIn, CheckOut: room.CheckOut}, field); err != nil {
			for k, msgs := range AsValidationError(err).Fields() {
				for _, m := range msgs {
					ve.add(k, m)
				}
			}
		}
	}
	if ve.empty() {
		return nil
	}
	return ve
}

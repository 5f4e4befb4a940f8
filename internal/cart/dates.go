package cart

import (
	"time"

	"github.com/Domenick1991/hotelbooking/internal/domain"
)

const day = 24 * time.Hour

// DefaultMaster is the window used while the cart holds no rooms.
func DefaultMaster(now time.Time) domain.DateWindow {
	today := domain.Date(now)
	return domain.DateWindow{CheckIn: today, CheckOut: today.Add(day)}
}

// EffectiveDates resolves the stay of a room: its override when set,
// otherwise the master window.
func EffectiveDates(room domain.CartRoom, master domain.DateWindow) domain.DateWindow {
	if room.HasOverride() {
		return domain.DateWindow{CheckIn: *room.CheckIn, CheckOut: *room.CheckOut}
	}
	return master
}

// ResolveMaster recomputes the master window from scratch as the envelope
// of every room's effective stay. The boolean is false when the result
// equals the current master, so callers can skip the write.
func ResolveMaster(rooms []domain.CartRoom, master domain.DateWindow) (domain.DateWindow, bool) {
	if len(rooms) == 0 {
		return master, false
	}

	var resolved domain.DateWindow
	for i, room := range rooms {
		w := EffectiveDates(room, master)
		if i == 0 || w.CheckIn.Before(resolved.CheckIn) {
			resolved.CheckIn = w.CheckIn
		}
		if i == 0 || w.CheckOut.After(resolved.CheckOut) {
			resolved.CheckOut = w.CheckOut
		}
	}

	if resolved.Equal(master) {
		return master, false
	}
	return resolved, true
}

func validateWindow(w domain.DateWindow, field string) error {
	ve := newValidationError()
	if w.CheckIn.IsZero() {
		ve.add(field+".check_in", "is required")
	}
	if w.CheckOut.IsZero() {
		ve.add(field+".check_out", "is required")
	}
	if ve.empty() && !w.CheckOut.After(w.CheckIn) {
		ve.add(field+".check_out", "must be after check-in")
	}
	if ve.empty() {
		return nil
	}
	return ve
}

func normalize(w domain.DateWindow) domain.DateWindow {
	return domain.DateWindow{CheckIn: domain.Date(w.CheckIn), CheckOut: domain.Date(w.CheckOut)}
}

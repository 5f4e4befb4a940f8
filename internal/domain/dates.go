package domain

import "time"

// DateLayout is the wire format for stay dates.
const DateLayout = "2006-01-02"

// DateWindow is a check-in/check-out pair. Both ends are calendar dates at
// midnight UTC.
type DateWindow struct {
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}

// Date truncates t to its calendar date in UTC.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

func (w DateWindow) Equal(o DateWindow) bool {
	return w.CheckIn.Equal(o.CheckIn) && w.CheckOut.Equal(o.CheckOut)
}

// Overlaps reports whether two half-open stays share at least one night.
func (w DateWindow) Overlaps(o DateWindow) bool {
	return w.CheckIn.Before(o.CheckOut) && o.CheckIn.Before(w.CheckOut)
}

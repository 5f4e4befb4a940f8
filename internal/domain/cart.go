package domain

import "time"

// CartRoom is one room selected for booking. CheckIn/CheckOut hold the
// per-room override; when either is nil the room follows the cart master
// window. Seeded marks an override copied from the master when the room
// was added and not edited since.
type CartRoom struct {
	RoomID       int64      `json:"room_id"`
	RoomNumber   string     `json:"room_number"`
	RoomTypeID   int64      `json:"room_type_id"`
	RoomTypeName string     `json:"room_type_name"`
	Capacity     int        `json:"capacity"`
	NightlyPrice int64      `json:"nightly_price"`
	CheckIn      *time.Time `json:"check_in,omitempty"`
	CheckOut     *time.Time `json:"check_out,omitempty"`
	Seeded       bool       `json:"seeded,omitempty"`
}

func (r CartRoom) HasOverride() bool {
	return r.CheckIn != nil && r.CheckOut != nil
}

type Cart struct {
	SessionID string     `json:"session_id"`
	Master    DateWindow `json:"master"`
	Rooms     []CartRoom `json:"rooms"`
	Voucher   *Voucher   `json:"voucher,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (c *Cart) Room(roomID int64) (*CartRoom, bool) {
	for i := range c.Rooms {
		if c.Rooms[i].RoomID == roomID {
			return &c.Rooms[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy so that a failed mutation never leaks into
// the stored cart.
func (c *Cart) Clone() *Cart {
	out := *c
	out.Rooms = make([]CartRoom, len(c.Rooms))
	for i, r := range c.Rooms {
		if r.CheckIn != nil {
			in := *r.CheckIn
			r.CheckIn = &in
		}
		if r.CheckOut != nil {
			o := *r.CheckOut
			r.CheckOut = &o
		}
		out.Rooms[i] = r
	}
	if c.Voucher != nil {
		v := *c.Voucher
		out.Voucher = &v
	}
	return &out
}

type RoomPrice struct {
	RoomID       int64     `json:"room_id"`
	CheckIn      time.Time `json:"check_in"`
	CheckOut     time.Time `json:"check_out"`
	Nights       int       `json:"nights"`
	NightlyPrice int64     `json:"nightly_price"`
	Subtotal     int64     `json:"subtotal"`
}

// PriceSummary is derived from a cart and never stored.
type PriceSummary struct {
	Rooms           []RoomPrice `json:"rooms"`
	BaseTotal       int64       `json:"base_total"`
	Discount        int64       `json:"discount"`
	DiscountedTotal int64       `json:"discounted_total"`
	VoucherCode     string      `json:"voucher_code,omitempty"`
}

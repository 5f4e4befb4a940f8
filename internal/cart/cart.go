package cart

import (
	"fmt"
	"time"

	"github.com/Domenick1991/hotelbooking/internal/domain"
)

// Reconciler applies cart mutations and keeps the master window equal to
// the envelope of all effective room stays after each of them.
type Reconciler struct {
	now func() time.Time
}

func NewReconciler(now func() time.Time) *Reconciler {
	if now == nil {
		now = time.Now
	}
	return &Reconciler{now: now}
}

func (r *Reconciler) NewCart(sessionID string) *domain.Cart {
	return &domain.Cart{
		SessionID: sessionID,
		Master:    DefaultMaster(r.now()),
		Rooms:     []domain.CartRoom{},
		UpdatedAt: r.now(),
	}
}

// AddRoom appends room to the cart, seeding its override with the current
// master dates so it has a concrete stay from the start.
func (r *Reconciler) AddRoom(c *domain.Cart, room domain.Room) error {
	if _, ok := c.Room(room.ID); ok {
		return fmt.Errorf("room %d: %w", room.ID, ErrRoomAlreadyInCart)
	}
	if len(c.Rooms) == 0 && c.Master.CheckIn.IsZero() {
		c.Master = DefaultMaster(r.now())
	}

	checkIn, checkOut := c.Master.CheckIn, c.Master.CheckOut
	c.Rooms = append(c.Rooms, domain.CartRoom{
		RoomID:       room.ID,
		RoomNumber:   room.Number,
		RoomTypeID:   room.RoomTypeID,
		RoomTypeName: room.RoomType.Name,
		Capacity:     room.RoomType.Capacity,
		NightlyPrice: room.NightlyPrice(),
		CheckIn:      &checkIn,
		CheckOut:     &checkOut,
		Seeded:       true,
	})
	r.touch(c)
	return nil
}

// RemoveRoom drops a room. An emptied cart falls back to today/tomorrow.
func (r *Reconciler) RemoveRoom(c *domain.Cart, roomID int64) error {
	idx := -1
	for i := range c.Rooms {
		if c.Rooms[i].RoomID == roomID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("room %d: %w", roomID, ErrRoomNotInCart)
	}

	c.Rooms = append(c.Rooms[:idx], c.Rooms[idx+1:]...)
	if len(c.Rooms) == 0 {
		c.Master = DefaultMaster(r.now())
	}
	r.touch(c)
	return nil
}

// SetRoomDates stores a per-room override.
func (r *Reconciler) SetRoomDates(c *domain.Cart, roomID int64, w domain.DateWindow) error {
	room, ok := c.Room(roomID)
	if !ok {
		return fmt.Errorf("room %d: %w", roomID, ErrRoomNotInCart)
	}
	if err := validateWindow(w, "dates"); err != nil {
		return err
	}

	w = normalize(w)
	room.CheckIn = &w.CheckIn
	room.CheckOut = &w.CheckOut
	room.Seeded = false
	r.touch(c)
	return nil
}

// ClearRoomDates removes the override so the room tracks the master window.
func (r *Reconciler) ClearRoomDates(c *domain.Cart, roomID int64) error {
	room, ok := c.Room(roomID)
	if !ok {
		return fmt.Errorf("room %d: %w", roomID, ErrRoomNotInCart)
	}
	room.CheckIn = nil
	room.CheckOut = nil
	room.Seeded = false
	r.touch(c)
	return nil
}

// SetMasterDates edits the master window directly. Rooms without an
// override follow it implicitly and rooms still on their seeded dates are
// moved to it. Rooms with dates set explicitly keep them, and the master is
// widened again if it no longer covers them.
func (r *Reconciler) SetMasterDates(c *domain.Cart, w domain.DateWindow) error {
	if err := validateWindow(w, "master"); err != nil {
		return err
	}
	c.Master = normalize(w)
	for i := range c.Rooms {
		room := &c.Rooms[i]
		if room.Seeded && room.HasOverride() {
			checkIn, checkOut := c.Master.CheckIn, c.Master.CheckOut
			room.CheckIn = &checkIn
			room.CheckOut = &checkOut
		}
	}
	r.touch(c)
	return nil
}

func (r *Reconciler) touch(c *domain.Cart) {
	if master, changed := ResolveMaster(c.Rooms, c.Master); changed {
		c.Master = master
	}
	c.UpdatedAt = r.now()
}

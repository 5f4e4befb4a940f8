package domain

import "time"

type RoomStatus string

const (
	RoomStatusAvailable   RoomStatus = "AVAILABLE"
	RoomStatusOccupied    RoomStatus = "OCCUPIED"
	RoomStatusMaintenance RoomStatus = "MAINTENANCE"
)

type RoomType struct {
	ID        int64
	Name      string
	BasePrice int64
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Room always carries its RoomType; repositories populate it with a join.
type Room struct {
	ID         int64
	Number     string
	RoomTypeID int64
	Status     RoomStatus
	RoomType   RoomType
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (r Room) NightlyPrice() int64 {
	return r.RoomType.BasePrice
}

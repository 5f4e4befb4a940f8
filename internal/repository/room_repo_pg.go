package repository

import (
	"context"

	"github.com/Domenick1991/hotelbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RoomRepository interface {
	List(ctx context.Context) ([]domain.Room, error)
	ListAvailable(ctx context.Context, w domain.DateWindow) ([]domain.Room, error)
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Room, error)
	UpdateStatus(ctx context.Context, id int64, status domain.RoomStatus) (*domain.Room, error)
}

type PGRoomRepository struct {
	db *pgxpool.Pool
}

func NewRoomRepository(db *pgxpool.Pool) RoomRepository {
	return &PGRoomRepository{db: db}
}

const roomColumns = `r.id, r.number, r.room_type_id, r.status, r.created_at, r.updated_at,
	t.id, t.name, t.base_price, t.capacity, t.created_at, t.updated_at`

const roomFrom = ` FROM rooms r JOIN room_types t ON t.id = r.room_type_id`

func scanRoom(row pgx.Row) (domain.Room, error) {
	var r domain.Room
	err := row.Scan(&r.ID, &r.Number, &r.RoomTypeID, &r.Status, &r.CreatedAt, &r.UpdatedAt,
		&r.RoomType.ID, &r.RoomType.Name, &r.RoomType.BasePrice, &r.RoomType.Capacity, &r.RoomType.CreatedAt, &r.RoomType.UpdatedAt)
	return r, err
}

func collectRooms(rows pgx.Rows) ([]domain.Room, error) {
	defer rows.Close()
	rooms := make([]domain.Room, 0)
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

func (r *PGRoomRepository) List(ctx context.Context) ([]domain.Room, error) {
	rows, err := r.db.Query(ctx, `SELECT `+roomColumns+roomFrom+` ORDER BY r.number`)
	if err != nil {
		return nil, err
	}
	return collectRooms(rows)
}

// ListAvailable returns rooms not in maintenance that have no active
// booking overlapping w.
func (r *PGRoomRepository) ListAvailable(ctx context.Context, w domain.DateWindow) ([]domain.Room, error) {
	rows, err := r.db.Query(ctx, `SELECT `+roomColumns+roomFrom+`
		WHERE r.status <> $1
		AND NOT EXISTS (
			SELECT 1 FROM booking_rooms br JOIN bookings b ON b.id = br.booking_id
			WHERE br.room_id = r.id
			AND b.status IN ($2, $3)
			AND br.check_in < $5 AND $4 < br.check_out
		)
		ORDER BY r.number`,
		domain.RoomStatusMaintenance, domain.BookingStatusPending, domain.BookingStatusConfirmed, w.CheckIn, w.CheckOut)
	if err != nil {
		return nil, err
	}
	return collectRooms(rows)
}

func (r *PGRoomRepository) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	room, err := scanRoom(r.db.QueryRow(ctx, `SELECT `+roomColumns+roomFrom+` WHERE r.id=$1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &room, nil
}

func (r *PGRoomRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Room, error) {
	rows, err := r.db.Query(ctx, `SELECT `+roomColumns+roomFrom+` WHERE r.id = ANY($1) ORDER BY r.id`, ids)
	if err != nil {
		return nil, err
	}
	return collectRooms(rows)
}

func (r *PGRoomRepository) UpdateStatus(ctx context.Context, id int64, status domain.RoomStatus) (*domain.Room, error) {
	res, err := r.db.Exec(ctx, `UPDATE rooms SET status=$1, updated_at=now() WHERE id=$2`, status, id)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

var _ RoomRepository = (*PGRoomRepository)(nil)

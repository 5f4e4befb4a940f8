package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/hotelbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByCode(ctx context.Context, code string) (*domain.Booking, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error)
	UpdatePayment(ctx context.Context, code string, payment domain.PaymentStatus, status domain.BookingStatus) (*domain.Booking, error)
	ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error)
	ReleaseVoucher(ctx context.Context, code string) error
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, code, customer_id, check_in, check_out, status, payment_method, payment_status, source,
	voucher_code, base_total, discount, total_price, expires_at, created_at, updated_at`

func scanBooking(row pgx.Row) (domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(&b.ID, &b.Code, &b.CustomerID, &b.CheckIn, &b.CheckOut, &b.Status, &b.PaymentMethod, &b.PaymentStatus, &b.Source,
		&b.VoucherCode, &b.BaseTotal, &b.Discount, &b.TotalPrice, &b.ExpiresAt, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

// Create stores the booking with its rooms and consumes one voucher use in
// a single transaction. Rooms are locked so two overlapping bookings for the
// same room cannot both commit.
func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, room := range booking.Rooms {
		var id int64
		if err := tx.QueryRow(ctx, `SELECT id FROM rooms WHERE id=$1 FOR UPDATE`, room.RoomID).Scan(&id); err != nil {
			return notFound(err)
		}

		var taken bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (
			SELECT 1 FROM booking_rooms br JOIN bookings b ON b.id = br.booking_id
			WHERE br.room_id = $1 AND b.status IN ($2, $3)
			AND br.check_in < $5 AND $4 < br.check_out)`,
			room.RoomID, domain.BookingStatusPending, domain.BookingStatusConfirmed, room.CheckIn, room.CheckOut).Scan(&taken); err != nil {
			return err
		}
		if taken {
			return ErrRoomUnavailable
		}
	}

	if booking.VoucherCode != "" {
		res, err := tx.Exec(ctx, `UPDATE vouchers SET used_count = used_count + 1
			WHERE upper(code) = upper($1) AND (usage_limit = 0 OR used_count < usage_limit)`, booking.VoucherCode)
		if err != nil {
			return err
		}
		if res.RowsAffected() == 0 {
			return ErrVoucherExhausted
		}
	}

	if err := tx.QueryRow(ctx, `INSERT INTO bookings (code, customer_id, check_in, check_out, status, payment_method, payment_status, source,
			voucher_code, base_total, discount, total_price, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at`,
		booking.Code, booking.CustomerID, booking.CheckIn, booking.CheckOut, booking.Status, booking.PaymentMethod, booking.PaymentStatus,
		booking.Source, booking.VoucherCode, booking.BaseTotal, booking.Discount, booking.TotalPrice, booking.ExpiresAt).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt); err != nil {
		return err
	}

	for i := range booking.Rooms {
		room := &booking.Rooms[i]
		room.BookingID = booking.ID
		if err := tx.QueryRow(ctx, `INSERT INTO booking_rooms (booking_id, room_id, check_in, check_out, price_per_night)
			VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			booking.ID, room.RoomID, room.CheckIn, room.CheckOut, room.NightlyPrice).Scan(&room.ID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.getOne(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
}

func (r *PGBookingRepository) GetByCode(ctx context.Context, code string) (*domain.Booking, error) {
	return r.getOne(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE code=$1`, code)
}

func (r *PGBookingRepository) getOne(ctx context.Context, query string, arg any) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, notFound(err)
	}
	if err := r.attachRooms(ctx, []*domain.Booking{&b}); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) ListByCustomer(ctx context.Context, customerID string) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE customer_id=$1 ORDER BY created_at DESC`, customerID)
	if err != nil {
		return nil, err
	}
	bookings, err := collectBookings(rows)
	if err != nil {
		return nil, err
	}

	refs := make([]*domain.Booking, len(bookings))
	for i := range bookings {
		refs[i] = &bookings[i]
	}
	if err := r.attachRooms(ctx, refs); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error) {
	res, err := r.db.Exec(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE id=$2`, status, id)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// UpdatePayment settles a pending booking. It only touches rows that are
// still PENDING, so a callback cannot revive a booking the expiry sweep or
// a cancel got to first; that case returns ErrNotPending.
func (r *PGBookingRepository) UpdatePayment(ctx context.Context, code string, payment domain.PaymentStatus, status domain.BookingStatus) (*domain.Booking, error) {
	res, err := r.db.Exec(ctx, `UPDATE bookings SET payment_status=$1, status=$2, expires_at=NULL, updated_at=now()
		WHERE code=$3 AND status=$4`, payment, status, code, domain.BookingStatusPending)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected() == 0 {
		if _, err := r.GetByCode(ctx, code); err != nil {
			return nil, err
		}
		return nil, ErrNotPending
	}
	return r.GetByCode(ctx, code)
}

func (r *PGBookingRepository) ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `UPDATE bookings SET status=$1, updated_at=now()
		WHERE status=$2 AND payment_status=$3 AND expires_at IS NOT NULL AND expires_at <= $4
		RETURNING `+bookingColumns,
		domain.BookingStatusExpired, domain.BookingStatusPending, domain.PaymentStatusUnpaid, deadline)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *PGBookingRepository) ReleaseVoucher(ctx context.Context, code string) error {
	if code == "" {
		return nil
	}
	_, err := r.db.Exec(ctx, `UPDATE vouchers SET used_count = used_count - 1 WHERE upper(code) = upper($1) AND used_count > 0`, code)
	return err
}

func collectBookings(rows pgx.Rows) ([]domain.Booking, error) {
	defer rows.Close()
	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (r *PGBookingRepository) attachRooms(ctx context.Context, bookings []*domain.Booking) error {
	if len(bookings) == 0 {
		return nil
	}
	ids := make([]int64, len(bookings))
	byID := make(map[int64]*domain.Booking, len(bookings))
	for i, b := range bookings {
		ids[i] = b.ID
		byID[b.ID] = b
	}

	rows, err := r.db.Query(ctx, `SELECT id, booking_id, room_id, check_in, check_out, price_per_night
		FROM booking_rooms WHERE booking_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var br domain.BookingRoom
		if err := rows.Scan(&br.ID, &br.BookingID, &br.RoomID, &br.CheckIn, &br.CheckOut, &br.NightlyPrice); err != nil {
			return err
		}
		if b, ok := byID[br.BookingID]; ok {
			b.Rooms = append(b.Rooms, br)
		}
	}
	return rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)

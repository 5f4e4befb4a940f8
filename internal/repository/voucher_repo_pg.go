package repository

import (
	"context"
	"strings"
	"time"

	"github.com/Domenick1991/hotelbooking/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type VoucherRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.Voucher, error)
}

type PGVoucherRepository struct {
	db *pgxpool.Pool
}

func NewVoucherRepository(db *pgxpool.Pool) VoucherRepository {
	return &PGVoucherRepository{db: db}
}

func (r *PGVoucherRepository) GetByCode(ctx context.Context, code string) (*domain.Voucher, error) {
	var (
		v               domain.Voucher
		validFrom, till *time.Time
	)
	err := r.db.QueryRow(ctx, `SELECT id, code, discount_type, discount_value::float8, min_order_value, usage_limit, used_count, valid_from, valid_to, active
		FROM vouchers WHERE upper(code) = $1`, strings.ToUpper(strings.TrimSpace(code))).
		Scan(&v.ID, &v.Code, &v.DiscountType, &v.DiscountValue, &v.MinOrderValue, &v.UsageLimit, &v.UsedCount, &validFrom, &till, &v.Active)
	if err != nil {
		return nil, notFound(err)
	}
	if validFrom != nil {
		v.ValidFrom = *validFrom
	}
	if till != nil {
		v.ValidTo = *till
	}
	return &v, nil
}

var _ VoucherRepository = (*PGVoucherRepository)(nil)

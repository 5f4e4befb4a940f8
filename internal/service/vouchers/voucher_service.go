package vouchers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/hotelbooking/internal/domain"
	"github.com/Domenick1991/hotelbooking/internal/repository"
)

var (
	ErrCodeRequired  = errors.New("voucher code is required")
	ErrNotFound      = errors.New("voucher not found")
	ErrExpired       = errors.New("voucher is expired or not yet valid")
	ErrExhausted     = errors.New("voucher usage limit reached")
	ErrNotApplicable = errors.New("voucher is not applicable")
)

type VoucherUseCase interface {
	Validate(ctx context.Context, code string, orderValue int64) (*domain.Voucher, error)
}

type VoucherService struct {
	repo repository.VoucherRepository
	now  func() time.Time
}

func NewVoucherService(repo repository.VoucherRepository) *VoucherService {
	return &VoucherService{repo: repo, now: time.Now}
}

// Validate looks code up and checks it can be used for an order of
// orderValue right now.
func (s *VoucherService) Validate(ctx context.Context, code string, orderValue int64) (*domain.Voucher, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrCodeRequired
	}

	v, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", code, ErrNotFound)
		}
		return nil, err
	}

	switch {
	case !v.Active:
		return nil, fmt.Errorf("%s is disabled: %w", v.Code, ErrNotApplicable)
	case !v.ValidAt(s.now()):
		return nil, fmt.Errorf("%s: %w", v.Code, ErrExpired)
	case v.Exhausted():
		return nil, fmt.Errorf("%s: %w", v.Code, ErrExhausted)
	case v.DiscountType != domain.DiscountPercentage && v.DiscountType != domain.DiscountFixed:
		return nil, fmt.Errorf("%s has unknown discount type %q: %w", v.Code, v.DiscountType, ErrNotApplicable)
	case orderValue < v.MinOrderValue:
		return nil, fmt.Errorf("%s needs an order of at least %d: %w", v.Code, v.MinOrderValue, ErrNotApplicable)
	}
	return v, nil
}

var _ VoucherUseCase = (*VoucherService)(nil)

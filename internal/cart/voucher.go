package cart

import (
	"context"

	"github.com/Domenick1991/hotelbooking/internal/domain"
)

// VoucherLookup validates a code against the current order value.
type VoucherLookup interface {
	Validate(ctx context.Context, code string, orderValue int64) (*domain.Voucher, error)
}

// ResolveVoucher looks code up and makes it the only voucher on the cart.
// On failure the previously applied voucher is dropped as well, so the
// cart never shows a discount the customer did not just confirm.
func ResolveVoucher(ctx context.Context, c *domain.Cart, lookup VoucherLookup, code string) (*domain.Voucher, error) {
	summary := Aggregate(c.Rooms, c.Master, nil)
	v, err := lookup.Validate(ctx, code, summary.BaseTotal)
	if err != nil {
		c.Voucher = nil
		return nil, err
	}
	ApplyVoucher(c, *v)
	return c.Voucher, nil
}

// ApplyVoucher replaces whatever voucher the cart holds in one assignment.
func ApplyVoucher(c *domain.Cart, v domain.Voucher) {
	c.Voucher = &v
}

func RemoveVoucher(c *domain.Cart) {
	c.Voucher = nil
}

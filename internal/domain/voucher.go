package domain

import "time"

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

type Voucher struct {
	ID            int64        `json:"id"`
	Code          string       `json:"code"`
	DiscountType  DiscountType `json:"discount_type"`
	DiscountValue float64      `json:"discount_value"`
	MinOrderValue int64        `json:"min_order_value"`
	UsageLimit    int          `json:"usage_limit"`
	UsedCount     int          `json:"used_count"`
	ValidFrom     time.Time    `json:"valid_from"`
	ValidTo       time.Time    `json:"valid_to"`
	Active        bool         `json:"active"`
}

// Exhausted reports whether the usage limit is reached. A zero limit means
// unlimited.
func (v Voucher) Exhausted() bool {
	return v.UsageLimit > 0 && v.UsedCount >= v.UsageLimit
}

func (v Voucher) ValidAt(t time.Time) bool {
	if !v.ValidFrom.IsZero() && t.Before(v.ValidFrom) {
		return false
	}
	if !v.ValidTo.IsZero() && t.After(v.ValidTo) {
		return false
	}
	return true
}

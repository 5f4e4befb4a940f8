package cart

import (
	"math"

	"github.com/Domenick1991/hotelbooking/internal/domain"
)

// Nights counts whole nights in w, never less than zero.
func Nights(w domain.DateWindow) int {
	n := int(domain.Date(w.CheckOut).Sub(domain.Date(w.CheckIn)) / day)
	if n < 0 {
		return 0
	}
	return n
}

// Aggregate prices every room for its effective stay, sums the subtotals and
// applies the voucher once to the sum. Stays of zero or negative length
// contribute nothing. An empty base total is never discounted.
func Aggregate(rooms []domain.CartRoom, master domain.DateWindow, voucher *domain.Voucher) domain.PriceSummary {
	summary := domain.PriceSummary{Rooms: make([]domain.RoomPrice, 0, len(rooms))}

	for _, room := range rooms {
		w := EffectiveDates(room, master)
		nights := Nights(w)
		var subtotal int64
		if nights > 0 {
			subtotal = room.NightlyPrice * int64(nights)
		}
		summary.Rooms = append(summary.Rooms, domain.RoomPrice{
			RoomID:       room.RoomID,
			CheckIn:      w.CheckIn,
			CheckOut:     w.CheckOut,
			Nights:       nights,
			NightlyPrice: room.NightlyPrice,
			Subtotal:     subtotal,
		})
		summary.BaseTotal += subtotal
	}

	summary.DiscountedTotal = summary.BaseTotal
	if summary.BaseTotal <= 0 || voucher == nil {
		return summary
	}

	summary.DiscountedTotal = ApplyDiscount(summary.BaseTotal, *voucher)
	summary.Discount = summary.BaseTotal - summary.DiscountedTotal
	summary.VoucherCode = voucher.Code
	return summary
}

// ApplyDiscount returns the total after voucher v. Percentage discounts are
// floored to the whole currency unit; fixed discounts are clamped at zero.
func ApplyDiscount(base int64, v domain.Voucher) int64 {
	if base <= 0 {
		return 0
	}

	switch v.DiscountType {
	case domain.DiscountPercentage:
		pct := math.Min(math.Max(v.DiscountValue, 0), 100)
		if pct == math.Trunc(pct) {
			return base * (100 - int64(pct)) / 100
		}
		return int64(math.Floor(float64(base) * (100 - pct) / 100))
	case domain.DiscountFixed:
		off := int64(math.Round(math.Max(v.DiscountValue, 0)))
		if off >= base {
			return 0
		}
		return base - off
	default:
		return base
	}
}

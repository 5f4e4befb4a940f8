package cart

import (
	"testing"
	"time"

	"github.com/Domenick1991/hotelbooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoRoomCart holds Room A for two nights at 500,000 and Room B for one
// night at 800,000.
func twoRoomCart(t *testing.T) *domain.Cart {
	t.Helper()
	r := NewReconciler(fixedNow)
	c := r.NewCart("s1")
	require.NoError(t, r.AddRoom(c, roomA))
	require.NoError(t, r.AddRoom(c, roomB))
	require.NoError(t, r.SetRoomDates(c, roomA.ID, window("2026-03-10", "2026-03-12")))
	require.NoError(t, r.SetRoomDates(c, roomB.ID, window("2026-03-10", "2026-03-11")))
	return c
}

func TestNights(t *testing.T) {
	assert.Equal(t, 2, Nights(window("2026-03-10", "2026-03-12")))
	assert.Equal(t, 0, Nights(window("2026-03-10", "2026-03-10")))
	assert.Equal(t, 0, Nights(window("2026-03-12", "2026-03-10")))
	assert.Equal(t, 0, Nights(domain.DateWindow{}))

	// Time of day does not change the night count.
	in := time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC)
	out := time.Date(2026, 3, 11, 6, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, Nights(domain.DateWindow{CheckIn: in, CheckOut: out}))
}

func TestAggregate_Scenarios(t *testing.T) {
	c := twoRoomCart(t)

	cases := []struct {
		name     string
		voucher  *domain.Voucher
		total    int64
		discount int64
	}{
		{name: "no voucher", total: 1_800_000},
		{
			name:     "ten percent",
			voucher:  &domain.Voucher{Code: "TEN", DiscountType: domain.DiscountPercentage, DiscountValue: 10},
			total:    1_620_000,
			discount: 180_000,
		},
		{
			name:     "fixed 200,000",
			voucher:  &domain.Voucher{Code: "FLAT", DiscountType: domain.DiscountFixed, DiscountValue: 200_000},
			total:    1_600_000,
			discount: 200_000,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Aggregate(c.Rooms, c.Master, tc.voucher)
			assert.Equal(t, int64(1_800_000), s.BaseTotal)
			assert.Equal(t, tc.total, s.DiscountedTotal)
			assert.Equal(t, tc.discount, s.Discount)
			require.Len(t, s.Rooms, 2)
			assert.Equal(t, int64(1_000_000), s.Rooms[0].Subtotal)
			assert.Equal(t, int64(800_000), s.Rooms[1].Subtotal)
		})
	}
}

func TestAggregate_EmptyCartIgnoresVoucher(t *testing.T) {
	v := &domain.Voucher{Code: "TEN", DiscountType: domain.DiscountPercentage, DiscountValue: 10}
	s := Aggregate(nil, window("2026-03-10", "2026-03-11"), v)

	assert.Zero(t, s.BaseTotal)
	assert.Zero(t, s.DiscountedTotal)
	assert.Zero(t, s.Discount)
	assert.Empty(t, s.VoucherCode)
}

func TestAggregate_ZeroLengthStaysContributeNothing(t *testing.T) {
	ptr := func(s string) *time.Time { v := d(s); return &v }
	rooms := []domain.CartRoom{
		{RoomID: 1, NightlyPrice: 500_000, CheckIn: ptr("2026-03-10"), CheckOut: ptr("2026-03-10")},
		{RoomID: 2, NightlyPrice: 800_000, CheckIn: ptr("2026-03-12"), CheckOut: ptr("2026-03-10")},
		{RoomID: 3, NightlyPrice: 300_000, CheckIn: ptr("2026-03-10"), CheckOut: ptr("2026-03-11")},
	}

	var s domain.PriceSummary
	assert.NotPanics(t, func() {
		s = Aggregate(rooms, window("2026-03-10", "2026-03-11"), nil)
	})
	assert.Equal(t, int64(300_000), s.BaseTotal)
	assert.Zero(t, s.Rooms[0].Subtotal)
	assert.Zero(t, s.Rooms[1].Subtotal)
	assert.Zero(t, s.Rooms[1].Nights)
}

func TestAggregate_RoomsWithoutOverrideUseMaster(t *testing.T) {
	rooms := []domain.CartRoom{{RoomID: 1, NightlyPrice: 100_000}}
	s := Aggregate(rooms, window("2026-03-10", "2026-03-13"), nil)
	assert.Equal(t, int64(300_000), s.BaseTotal)
	assert.Equal(t, 3, s.Rooms[0].Nights)
}

func TestApplyDiscount(t *testing.T) {
	pct := func(v float64) domain.Voucher {
		return domain.Voucher{DiscountType: domain.DiscountPercentage, DiscountValue: v}
	}
	fixed := func(v float64) domain.Voucher {
		return domain.Voucher{DiscountType: domain.DiscountFixed, DiscountValue: v}
	}

	cases := []struct {
		name string
		base int64
		v    domain.Voucher
		want int64
	}{
		{"percentage exact", 1_800_000, pct(10), 1_620_000},
		{"percentage floors", 999, pct(33), 669},
		{"fractional percentage floors", 1_001, pct(12.5), 875},
		{"percentage above 100 clamps", 5_000, pct(150), 0},
		{"negative percentage ignored", 5_000, pct(-10), 5_000},
		{"fixed", 1_800_000, fixed(200_000), 1_600_000},
		{"fixed larger than base", 100_000, fixed(200_000), 0},
		{"fixed equal to base", 100_000, fixed(100_000), 0},
		{"unknown type", 100_000, domain.Voucher{DiscountType: "bogus", DiscountValue: 10}, 100_000},
		{"zero base", 0, fixed(10), 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ApplyDiscount(tc.base, tc.v)
			assert.Equal(t, tc.want, got)
			assert.GreaterOrEqual(t, got, int64(0))
		})
	}
}

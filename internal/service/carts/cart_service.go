package carts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Domenick1991/hotelbooking/internal/cart"
	"github.com/Domenick1991/hotelbooking/internal/domain"
	"github.com/Domenick1991/hotelbooking/internal/service/booking"
	"go.uber.org/zap"
)

var ErrSessionRequired = errors.New("cart session id is required")

type CartUseCase interface {
	Get(ctx context.Context, sessionID string) (*CartView, error)
	AddRoom(ctx context.Context, sessionID string, roomID int64) (*CartView, error)
	RemoveRoom(ctx context.Context, sessionID string, roomID int64) (*CartView, error)
	SetRoomDates(ctx context.Context, sessionID string, roomID int64, w domain.DateWindow) (*CartView, error)
	ClearRoomDates(ctx context.Context, sessionID string, roomID int64) (*CartView, error)
	SetMasterDates(ctx context.Context, sessionID string, w domain.DateWindow) (*CartView, error)
	ApplyVoucher(ctx context.Context, sessionID, code string) (*CartView, error)
	RemoveVoucher(ctx context.Context, sessionID string) (*CartView, error)
	Checkout(ctx context.Context, sessionID string, input CheckoutInput) (*booking.CreateBookingResult, error)
}

type RoomLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
}

type BookingCreator interface {
	CreateBooking(ctx context.Context, input booking.CreateBookingInput) (*booking.CreateBookingResult, error)
}

// CartView is a cart together with its current price quote.
type CartView struct {
	Cart    *domain.Cart        `json:"cart"`
	Summary domain.PriceSummary `json:"summary"`
}

type CheckoutInput struct {
	CustomerID    string
	PaymentMethod domain.PaymentMethod
	Source        string
	ClientIP      string
}

type CartService struct {
	store         cart.Store
	rooms         RoomLookup
	vouchers      cart.VoucherLookup
	bookings      BookingCreator
	reconciler    *cart.Reconciler
	defaultSource string
	log           *zap.Logger
}

type CartServiceOption func(*CartService)

func WithClock(now func() time.Time) CartServiceOption {
	return func(s *CartService) {
		s.reconciler = cart.NewReconciler(now)
	}
}

// WithDefaultSource sets the booking source used when checkout gives none.
func WithDefaultSource(source string) CartServiceOption {
	return func(s *CartService) {
		s.defaultSource = source
	}
}

func NewCartService(store cart.Store, rooms RoomLookup, vouchers cart.VoucherLookup, bookings BookingCreator, log *zap.Logger, opts ...CartServiceOption) *CartService {
	service := &CartService{
		store:      store,
		rooms:      rooms,
		vouchers:   vouchers,
		bookings:   bookings,
		reconciler: cart.NewReconciler(nil),
		log:        log.Named("carts"),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Get returns the stored cart or a fresh one. A fresh cart is not persisted
// until the first mutation.
func (s *CartService) Get(ctx context.Context, sessionID string) (*CartView, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return view(c), nil
}

func (s *CartService) AddRoom(ctx context.Context, sessionID string, roomID int64) (*CartView, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.Status == domain.RoomStatusMaintenance {
		return nil, booking.ErrRoomUnavailable
	}
	return s.mutate(ctx, sessionID, func(c *domain.Cart) error {
		return s.reconciler.AddRoom(c, *room)
	})
}

func (s *CartService) RemoveRoom(ctx context.Context, sessionID string, roomID int64) (*CartView, error) {
	return s.mutate(ctx, sessionID, func(c *domain.Cart) error {
		return s.reconciler.RemoveRoom(c, roomID)
	})
}

func (s *CartService) SetRoomDates(ctx context.Context, sessionID string, roomID int64, w domain.DateWindow) (*CartView, error) {
	return s.mutate(ctx, sessionID, func(c *domain.Cart) error {
		return s.reconciler.SetRoomDates(c, roomID, w)
	})
}

func (s *CartService) ClearRoomDates(ctx context.Context, sessionID string, roomID int64) (*CartView, error) {
	return s.mutate(ctx, sessionID, func(c *domain.Cart) error {
		return s.reconciler.ClearRoomDates(c, roomID)
	})
}

func (s *CartService) SetMasterDates(ctx context.Context, sessionID string, w domain.DateWindow) (*CartView, error) {
	return s.mutate(ctx, sessionID, func(c *domain.Cart) error {
		return s.reconciler.SetMasterDates(c, w)
	})
}

// ApplyVoucher validates code against the current cart total. A rejected
// code also removes the voucher that was applied before, and that cleared
// state is saved before the error is returned.
func (s *CartService) ApplyVoucher(ctx context.Context, sessionID, code string) (*CartView, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	next := c.Clone()
	if _, err := cart.ResolveVoucher(ctx, next, s.vouchers, strings.TrimSpace(code)); err != nil {
		if c.Voucher != nil {
			if saveErr := s.store.Set(ctx, next); saveErr != nil {
				s.log.Warn("persist cleared voucher failed", zap.String("session", sessionID), zap.Error(saveErr))
			}
		}
		return nil, err
	}

	if err := s.store.Set(ctx, next); err != nil {
		return nil, err
	}
	return view(next), nil
}

func (s *CartService) RemoveVoucher(ctx context.Context, sessionID string) (*CartView, error) {
	return s.mutate(ctx, sessionID, func(c *domain.Cart) error {
		cart.RemoveVoucher(c)
		return nil
	})
}

// Checkout assembles the cart into a booking submission and hands it to
// booking creation. Nothing is sent when assembly fails. The cart is
// cleared once the booking exists.
func (s *CartService) Checkout(ctx context.Context, sessionID string, input CheckoutInput) (*booking.CreateBookingResult, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	source := input.Source
	if source == "" {
		source = s.defaultSource
	}
	sub, err := cart.Assemble(c, input.CustomerID, input.PaymentMethod, source)
	if err != nil {
		return nil, err
	}

	result, err := s.bookings.CreateBooking(ctx, booking.CreateBookingInput{Submission: *sub, ClientIP: input.ClientIP})
	if err != nil {
		return nil, err
	}

	if err := s.store.Clear(ctx, sessionID); err != nil {
		s.log.Warn("clear cart after checkout failed", zap.String("session", sessionID), zap.Error(err))
	}
	s.log.Info("cart checked out",
		zap.String("session", sessionID),
		zap.String("booking", result.Booking.Code),
		zap.Int64("total", result.Booking.TotalPrice))
	return result, nil
}

// mutate applies fn to a copy of the stored cart and saves the copy only
// when fn succeeds. An emptied cart is removed from the store.
func (s *CartService) mutate(ctx context.Context, sessionID string, fn func(c *domain.Cart) error) (*CartView, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	next := c.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}

	if len(next.Rooms) == 0 && next.Voucher == nil {
		if err := s.store.Clear(ctx, sessionID); err != nil {
			return nil, err
		}
		return view(next), nil
	}
	if err := s.store.Set(ctx, next); err != nil {
		return nil, err
	}
	return view(next), nil
}

func (s *CartService) load(ctx context.Context, sessionID string) (*domain.Cart, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrSessionRequired
	}
	c, err := s.store.Get(ctx, sessionID)
	if errors.Is(err, cart.ErrCartNotFound) {
		return s.reconciler.NewCart(sessionID), nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func view(c *domain.Cart) *CartView {
	return &CartView{Cart: c, Summary: cart.Aggregate(c.Rooms, c.Master, c.Voucher)}
}

var _ CartUseCase = (*CartService)(nil)

package booking

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Domenick1991/hotelbooking/internal/cart"
	"github.com/Domenick1991/hotelbooking/internal/domain"
	"github.com/Domenick1991/hotelbooking/internal/payment"
	"github.com/Domenick1991/hotelbooking/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomUnavailable  = errors.New("room is not available")
	ErrAmountMismatch   = errors.New("paid amount does not match booking total")
	ErrNotCancellable   = errors.New("booking can no longer be cancelled")
	ErrCustomerRequired = errors.New("customer id is required")
	// ErrBookingClosed is returned for a successful payment on a booking
	// that already expired or was cancelled. The money has to be refunded.
	ErrBookingClosed = errors.New("booking is no longer awaiting payment")
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*CreateBookingResult, error)
	GetBooking(ctx context.Context, id int64) (*domain.Booking, error)
	ListCustomerBookings(ctx context.Context, customerID string) ([]domain.Booking, error)
	CancelBooking(ctx context.Context, id int64) (*domain.Booking, error)
	ConfirmPayment(ctx context.Context, query url.Values) (*domain.Booking, error)
	ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error)
}

type RoomLookup interface {
	GetByIDs(ctx context.Context, ids []int64) ([]domain.Room, error)
}

type PaymentGateway interface {
	PaymentURL(req payment.PaymentRequest) (string, error)
	VerifyReturn(query url.Values) (*payment.Result, error)
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, event domain.Event)
}

type BookingService struct {
	bookings   repository.BookingRepository
	rooms      RoomLookup
	vouchers   cart.VoucherLookup
	payments   PaymentGateway
	events     EventPublisher
	paymentTTL time.Duration
	now        func() time.Time
	log        *zap.Logger
}

type CreateBookingInput struct {
	Submission domain.BookingSubmission
	ClientIP   string
}

type CreateBookingResult struct {
	Booking    *domain.Booking
	Summary    domain.PriceSummary
	PaymentURL string
}

type BookingServiceOption func(*BookingService)

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	rooms RoomLookup,
	vouchers cart.VoucherLookup,
	payments PaymentGateway,
	events EventPublisher,
	paymentTTL time.Duration,
	log *zap.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:   bookings,
		rooms:      rooms,
		vouchers:   vouchers,
		payments:   payments,
		events:     events,
		paymentTTL: paymentTTL,
		now:        time.Now,
		log:        log.Named("booking"),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateBooking prices the submission again from stored room rates with the
// same aggregator the cart uses, persists it and, for online payment,
// returns the VNPay redirect URL.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*CreateBookingResult, error) {
	sub := input.Submission
	if err := cart.ValidateSubmission(&sub); err != nil {
		return nil, err
	}

	cartRooms, err := s.priceRooms(ctx, sub)
	if err != nil {
		return nil, err
	}

	master, _ := cart.ResolveMaster(cartRooms, domain.DateWindow{CheckIn: *cartRooms[0].CheckIn, CheckOut: *cartRooms[0].CheckOut})
	summary := cart.Aggregate(cartRooms, master, nil)

	var voucherCode string
	if code := strings.TrimSpace(sub.VoucherCode); code != "" {
		v, err := s.vouchers.Validate(ctx, code, summary.BaseTotal)
		if err != nil {
			return nil, err
		}
		summary = cart.Aggregate(cartRooms, master, v)
		voucherCode = v.Code
	}

	now := s.now()
	booking := &domain.Booking{
		Code:          newBookingCode(),
		CustomerID:    strings.TrimSpace(sub.CustomerID),
		CheckIn:       master.CheckIn,
		CheckOut:      master.CheckOut,
		Status:        domain.BookingStatusConfirmed,
		PaymentMethod: sub.PaymentMethod,
		PaymentStatus: domain.PaymentStatusUnpaid,
		Source:        sub.Source,
		VoucherCode:   voucherCode,
		BaseTotal:     summary.BaseTotal,
		Discount:      summary.Discount,
		TotalPrice:    summary.DiscountedTotal,
		Rooms:         make([]domain.BookingRoom, 0, len(cartRooms)),
	}
	if booking.Source == "" {
		booking.Source = cart.SourceWebsite
	}
	if sub.PaymentMethod.Online() && booking.TotalPrice > 0 {
		expires := now.Add(s.paymentTTL)
		booking.Status = domain.BookingStatusPending
		booking.ExpiresAt = &expires
	}
	for _, r := range cartRooms {
		booking.Rooms = append(booking.Rooms, domain.BookingRoom{
			RoomID:       r.RoomID,
			CheckIn:      *r.CheckIn,
			CheckOut:     *r.CheckOut,
			NightlyPrice: r.NightlyPrice,
		})
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		if errors.Is(err, repository.ErrRoomUnavailable) {
			return nil, fmt.Errorf("%w: %v", ErrRoomUnavailable, err)
		}
		return nil, err
	}

	result := &CreateBookingResult{Booking: booking, Summary: summary}
	if booking.ExpiresAt != nil {
		link, err := s.payments.PaymentURL(payment.PaymentRequest{
			TxnRef:    booking.Code,
			Amount:    booking.TotalPrice,
			ClientIP:  input.ClientIP,
			ExpiresAt: *booking.ExpiresAt,
		})
		if err != nil {
			s.log.Error("payment link failed, cancelling booking", zap.String("code", booking.Code), zap.Error(err))
			if _, cancelErr := s.cancel(ctx, booking); cancelErr != nil {
				s.log.Error("cancel after payment link failure", zap.String("code", booking.Code), zap.Error(cancelErr))
			}
			return nil, fmt.Errorf("create payment link: %w", err)
		}
		result.PaymentURL = link
	}

	s.publish(ctx, domain.EventBookingCreated, booking)
	return result, nil
}

// priceRooms loads the rooms of sub and returns them as cart rooms with
// explicit dates and stored nightly rates.
func (s *BookingService) priceRooms(ctx context.Context, sub domain.BookingSubmission) ([]domain.CartRoom, error) {
	ids := make([]int64, len(sub.Rooms))
	for i, r := range sub.Rooms {
		ids[i] = r.RoomID
	}

	stored, err := s.rooms.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]domain.Room, len(stored))
	for _, r := range stored {
		byID[r.ID] = r
	}

	out := make([]domain.CartRoom, 0, len(sub.Rooms))
	for _, r := range sub.Rooms {
		room, ok := byID[r.RoomID]
		if !ok {
			return nil, fmt.Errorf("room %d: %w", r.RoomID, ErrRoomNotFound)
		}
		if room.Status == domain.RoomStatusMaintenance {
			return nil, fmt.Errorf("room %s is under maintenance: %w", room.Number, ErrRoomUnavailable)
		}
		if r.NightlyPrice != 0 && r.NightlyPrice != room.NightlyPrice() {
			s.log.Warn("submitted nightly price differs from stored rate",
				zap.Int64("room_id", room.ID), zap.Int64("submitted", r.NightlyPrice), zap.Int64("stored", room.NightlyPrice()))
		}

		checkIn, checkOut := domain.Date(r.CheckIn), domain.Date(r.CheckOut)
		out = append(out, domain.CartRoom{
			RoomID:       room.ID,
			RoomNumber:   room.Number,
			RoomTypeID:   room.RoomTypeID,
			RoomTypeName: room.RoomType.Name,
			Capacity:     room.RoomType.Capacity,
			NightlyPrice: room.NightlyPrice(),
			CheckIn:      &checkIn,
			CheckOut:     &checkOut,
		})
	}
	return out, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

func (s *BookingService) ListCustomerBookings(ctx context.Context, customerID string) ([]domain.Booking, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, ErrCustomerRequired
	}
	return s.bookings.ListByCustomer(ctx, customerID)
}

func (s *BookingService) CancelBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	current, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == domain.BookingStatusCancelled || current.Status == domain.BookingStatusExpired {
		return current, nil
	}
	if current.PaymentStatus == domain.PaymentStatusPaid {
		return nil, ErrNotCancellable
	}
	return s.cancel(ctx, current)
}

func (s *BookingService) cancel(ctx context.Context, current *domain.Booking) (*domain.Booking, error) {
	updated, err := s.bookings.UpdateStatus(ctx, current.ID, domain.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}
	if err := s.bookings.ReleaseVoucher(ctx, updated.VoucherCode); err != nil {
		s.log.Warn("release voucher failed", zap.String("code", updated.Code), zap.Error(err))
	}
	s.publish(ctx, domain.EventBookingUpdated, updated)
	return updated, nil
}

// ConfirmPayment handles a VNPay return. Only PENDING bookings change
// state: repeated callbacks for a paid booking and declines for a closed
// one are no-ops, and a successful payment for a closed booking is
// rejected with ErrBookingClosed.
func (s *BookingService) ConfirmPayment(ctx context.Context, query url.Values) (*domain.Booking, error) {
	res, err := s.payments.VerifyReturn(query)
	if err != nil {
		return nil, err
	}

	current, err := s.bookings.GetByCode(ctx, res.TxnRef)
	if err != nil {
		return nil, err
	}
	if current.PaymentStatus == domain.PaymentStatusPaid {
		return current, nil
	}
	if current.Status != domain.BookingStatusPending {
		return s.closedCallback(current, res)
	}

	if !res.Success {
		updated, err := s.bookings.UpdatePayment(ctx, current.Code, domain.PaymentStatusFailed, domain.BookingStatusCancelled)
		if errors.Is(err, repository.ErrNotPending) {
			return s.bookings.GetByCode(ctx, current.Code)
		}
		if err != nil {
			return nil, err
		}
		if err := s.bookings.ReleaseVoucher(ctx, updated.VoucherCode); err != nil {
			s.log.Warn("release voucher failed", zap.String("code", updated.Code), zap.Error(err))
		}
		s.publish(ctx, domain.EventBookingUpdated, updated)
		return updated, nil
	}

	if res.Amount != current.TotalPrice {
		s.log.Error("vnpay amount mismatch", zap.String("code", current.Code), zap.Int64("paid", res.Amount), zap.Int64("total", current.TotalPrice))
		return nil, ErrAmountMismatch
	}

	updated, err := s.bookings.UpdatePayment(ctx, current.Code, domain.PaymentStatusPaid, domain.BookingStatusConfirmed)
	if errors.Is(err, repository.ErrNotPending) {
		s.logRefund(current.Code, res.Amount)
		return nil, ErrBookingClosed
	}
	if err != nil {
		return nil, err
	}
	s.publish(ctx, domain.EventPaymentReceived, updated)
	return updated, nil
}

func (s *BookingService) closedCallback(current *domain.Booking, res *payment.Result) (*domain.Booking, error) {
	if !res.Success {
		return current, nil
	}
	s.logRefund(current.Code, res.Amount)
	return nil, ErrBookingClosed
}

func (s *BookingService) logRefund(code string, amount int64) {
	s.log.Error("payment received for closed booking, refund required",
		zap.String("code", code), zap.Int64("amount", amount))
}

func (s *BookingService) ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error) {
	expired, err := s.bookings.ExpirePendingBefore(ctx, s.now())
	if err != nil {
		return nil, err
	}
	for i := range expired {
		b := &expired[i]
		if err := s.bookings.ReleaseVoucher(ctx, b.VoucherCode); err != nil {
			s.log.Warn("release voucher failed", zap.String("code", b.Code), zap.Error(err))
		}
		s.publish(ctx, domain.EventBookingUpdated, b)
	}
	return expired, nil
}

func (s *BookingService) publish(ctx context.Context, eventType domain.EventType, b *domain.Booking) {
	if s.events == nil {
		return
	}
	roomIDs := make([]int64, 0, len(b.Rooms))
	for _, r := range b.Rooms {
		roomIDs = append(roomIDs, r.RoomID)
	}
	s.events.PublishEvent(ctx, domain.Event{
		Type:        eventType,
		BookingID:   b.ID,
		BookingCode: b.Code,
		CustomerID:  b.CustomerID,
		RoomIDs:     roomIDs,
		Status:      string(b.Status),
		Total:       b.TotalPrice,
		OccurredAt:  s.now().UTC(),
	})
}

func newBookingCode() string {
	return "BK" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

var _ BookingUseCase = (*BookingService)(nil)

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/Domenick1991/hotelbooking/internal/domain"
	"github.com/Domenick1991/hotelbooking/internal/payment"
	"github.com/Domenick1991/hotelbooking/internal/repository"
	"github.com/Domenick1991/hotelbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockBookingUseCase is a mock implementation of booking.BookingUseCase
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, input booking.CreateBookingInput) (*booking.CreateBookingResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.CreateBookingResult), args.Error(1)
}

func (m *MockBookingUseCase) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ListCustomerBookings(ctx context.Context, customerID string) ([]domain.Booking, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CancelBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ConfirmPayment(ctx context.Context, query url.Values) (*domain.Booking, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ExpirePendingBookings(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func date(s string) time.Time {
	t, _ := domain.ParseDate(s)
	return t
}

func sampleBooking(status domain.BookingStatus) *domain.Booking {
	return &domain.Booking{
		ID:            1,
		Code:          "BK0123456789AB",
		CustomerID:    "cust-1",
		CheckIn:       date("2026-03-10"),
		CheckOut:      date("2026-03-12"),
		Status:        status,
		PaymentMethod: domain.PaymentCash,
		PaymentStatus: domain.PaymentStatusUnpaid,
		Source:        "website",
		BaseTotal:     1_800_000,
		TotalPrice:    1_800_000,
		Rooms: []domain.BookingRoom{
			{RoomID: 1, CheckIn: date("2026-03-10"), CheckOut: date("2026-03-12"), NightlyPrice: 500_000},
			{RoomID: 2, CheckIn: date("2026-03-10"), CheckOut: date("2026-03-11"), NightlyPrice: 800_000},
		},
	}
}

func TestBookingHandler_create(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body := `{"customer_id":"cust-1","check_in":"2026-03-10","check_out":"2026-03-12","payment_method":"cash",
		"rooms":[{"room_id":1,"check_in":"2026-03-10","check_out":"2026-03-12","price_per_night":500000},
		         {"room_id":2,"check_in":"2026-03-10","check_out":"2026-03-11","price_per_night":800000}]}`
	c.Request = httptest.NewRequest("POST", "/api/bookings", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockService.On("CreateBooking", c.Request.Context(), mock.MatchedBy(func(in booking.CreateBookingInput) bool {
		sub := in.Submission
		return sub.CustomerID == "cust-1" &&
			sub.PaymentMethod == domain.PaymentCash &&
			len(sub.Rooms) == 2 &&
			sub.Rooms[1].CheckOut.Equal(date("2026-03-11")) &&
			sub.Rooms[0].NightlyPrice == 500_000
	})).Return(&booking.CreateBookingResult{Booking: sampleBooking(domain.BookingStatusConfirmed)}, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response createdBookingResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "BK0123456789AB", response.Booking.Code)
	assert.Equal(t, int64(1_800_000), response.Booking.TotalPrice)
	assert.Equal(t, "2026-03-11", response.Booking.Rooms[1].CheckOut)
	assert.Empty(t, response.PaymentURL)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_create_BadDate(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body := `{"customer_id":"cust-1","payment_method":"cash","rooms":[{"room_id":1,"check_in":"10/03/2026","check_out":"2026-03-12"}]}`
	c.Request = httptest.NewRequest("POST", "/api/bookings", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
}

func TestBookingHandler_get(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "1"}}
	c.Request = httptest.NewRequest("GET", "/api/bookings/1", nil)

	mockService.On("GetBooking", c.Request.Context(), int64(1)).Return(sampleBooking(domain.BookingStatusConfirmed), nil)

	handler.get(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response bookingResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "2026-03-10", response.CheckIn)
	assert.Equal(t, "2026-03-12", response.CheckOut)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_get_NotFound(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "9"}}
	c.Request = httptest.NewRequest("GET", "/api/bookings/9", nil)

	mockService.On("GetBooking", c.Request.Context(), int64(9)).Return(nil, repository.ErrNotFound)

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookingHandler_cancel(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "1"}}
	c.Request = httptest.NewRequest("DELETE", "/api/bookings/1", nil)

	mockService.On("CancelBooking", c.Request.Context(), int64(1)).Return(sampleBooking(domain.BookingStatusCancelled), nil)

	handler.cancel(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response bookingResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, string(domain.BookingStatusCancelled), response.Status)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_cancel_Paid(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "1"}}
	c.Request = httptest.NewRequest("DELETE", "/api/bookings/1", nil)

	mockService.On("CancelBooking", c.Request.Context(), int64(1)).Return(nil, booking.ErrNotCancellable)

	handler.cancel(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBookingHandler_history(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: "cust-1"}}
	c.Request = httptest.NewRequest("GET", "/api/customers/cust-1/bookings", nil)

	mockService.On("ListCustomerBookings", c.Request.Context(), "cust-1").
		Return([]domain.Booking{*sampleBooking(domain.BookingStatusConfirmed)}, nil)

	handler.history(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response []bookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response, 1)
}

func TestBookingHandler_history_BlankCustomer(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Params = gin.Params{{Key: "id", Value: " "}}
	c.Request = httptest.NewRequest("GET", "/api/customers/%20/bookings", nil)

	mockService.On("ListCustomerBookings", c.Request.Context(), " ").
		Return([]domain.Booking(nil), booking.ErrCustomerRequired)

	handler.history(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, c.Errors)
}

func TestBookingHandler_vnpayReturn(t *testing.T) {
	testCases := []struct {
		name     string
		result   *domain.Booking
		err      error
		wantCode int
	}{
		{"paid", &domain.Booking{Code: "BK1", Status: domain.BookingStatusConfirmed, PaymentStatus: domain.PaymentStatusPaid}, nil, http.StatusOK},
		{"bad signature", nil, payment.ErrInvalidSignature, http.StatusBadRequest},
		{"unknown booking", nil, repository.ErrNotFound, http.StatusNotFound},
		{"booking already closed", nil, booking.ErrBookingClosed, http.StatusConflict},
		{"database down", nil, errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockService := &MockBookingUseCase{}
			handler := NewBookingHandler(mockService)

			gin.SetMode(gin.TestMode)
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", "/api/payments/vnpay/return?vnp_TxnRef=BK1&vnp_ResponseCode=00", nil)

			mockService.On("ConfirmPayment", c.Request.Context(), c.Request.URL.Query()).Return(tc.result, tc.err)

			handler.vnpayReturn(c)

			assert.Equal(t, tc.wantCode, w.Code)
			if tc.wantCode == http.StatusInternalServerError {
				assert.NotContains(t, w.Body.String(), "connection refused")
				assert.Len(t, c.Errors, 1)
			}
		})
	}
}

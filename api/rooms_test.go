package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Domenick1991/hotelbooking/internal/domain"
	"github.com/Domenick1991/hotelbooking/internal/service/vouchers"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockRoomUseCase struct {
	mock.Mock
}

func (m *MockRoomUseCase) List(ctx context.Context) ([]domain.Room, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Room), args.Error(1)
}

func (m *MockRoomUseCase) ListAvailable(ctx context.Context, w domain.DateWindow) ([]domain.Room, error) {
	args := m.Called(ctx, w)
	return args.Get(0).([]domain.Room), args.Error(1)
}

func (m *MockRoomUseCase) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Room), args.Error(1)
}

func (m *MockRoomUseCase) GetByIDs(ctx context.Context, ids []int64) ([]domain.Room, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]domain.Room), args.Error(1)
}

func (m *MockRoomUseCase) UpdateStatus(ctx context.Context, id int64, status domain.RoomStatus) (*domain.Room, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Room), args.Error(1)
}

type MockVoucherUseCase struct {
	mock.Mock
}

func (m *MockVoucherUseCase) Validate(ctx context.Context, code string, orderValue int64) (*domain.Voucher, error) {
	args := m.Called(ctx, code, orderValue)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Voucher), args.Error(1)
}

var standardRoom = domain.Room{
	ID:         1,
	Number:     "101",
	RoomTypeID: 10,
	Status:     domain.RoomStatusAvailable,
	RoomType:   domain.RoomType{ID: 10, Name: "Standard", BasePrice: 500_000, Capacity: 2},
}

func TestRoomHandler_list(t *testing.T) {
	mockService := &MockRoomUseCase{}
	handler := NewRoomHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/rooms", nil)

	mockService.On("List", c.Request.Context()).Return([]domain.Room{standardRoom}, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response []roomResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response, 1)
	assert.Equal(t, int64(500_000), response[0].NightlyPrice)
	assert.Equal(t, "Standard", response[0].RoomTypeName)
	mockService.AssertNotCalled(t, "ListAvailable", mock.Anything, mock.Anything)
}

func TestRoomHandler_list_Available(t *testing.T) {
	mockService := &MockRoomUseCase{}
	handler := NewRoomHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/rooms?check_in=2026-03-10&check_out=2026-03-12", nil)

	want := domain.DateWindow{CheckIn: date("2026-03-10"), CheckOut: date("2026-03-12")}
	mockService.On("ListAvailable", c.Request.Context(), want).Return([]domain.Room{standardRoom}, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestRoomHandler_list_InvalidWindow(t *testing.T) {
	for _, query := range []string{
		"check_in=2026-03-12&check_out=2026-03-10",
		"check_in=2026-03-10",
		"check_in=tomorrow&check_out=2026-03-10",
	} {
		t.Run(query, func(t *testing.T) {
			mockService := &MockRoomUseCase{}
			handler := NewRoomHandler(mockService)

			gin.SetMode(gin.TestMode)
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", "/api/rooms?"+query, nil)

			handler.list(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestRoomHandler_get(t *testing.T) {
	mockService := &MockRoomUseCase{}
	handler := NewRoomHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	c.Request = httptest.NewRequest("GET", "/api/rooms/1", nil)

	mockService.On("GetByID", c.Request.Context(), int64(1)).Return(&standardRoom, nil)

	handler.get(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoomHandler_updateStatus(t *testing.T) {
	mockService := &MockRoomUseCase{}
	handler := NewRoomHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	c.Request = httptest.NewRequest("PUT", "/api/rooms/1/status", strings.NewReader(`{"status":"maintenance"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	updated := standardRoom
	updated.Status = domain.RoomStatusMaintenance
	mockService.On("UpdateStatus", c.Request.Context(), int64(1), domain.RoomStatusMaintenance).Return(&updated, nil)

	handler.updateStatus(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response roomResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "MAINTENANCE", response.Status)
	mockService.AssertExpectations(t)
}

func TestRoomHandler_updateStatus_Invalid(t *testing.T) {
	mockService := &MockRoomUseCase{}
	handler := NewRoomHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "1"}}
	c.Request = httptest.NewRequest("PUT", "/api/rooms/1/status", strings.NewReader(`{"status":"cleaning"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.updateStatus(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestVoucherHandler_validate(t *testing.T) {
	testCases := []struct {
		name     string
		voucher  *domain.Voucher
		err      error
		wantCode int
	}{
		{"valid", &domain.Voucher{Code: "TEN", DiscountType: domain.DiscountPercentage, DiscountValue: 10}, nil, http.StatusOK},
		{"unknown", nil, vouchers.ErrNotFound, http.StatusNotFound},
		{"expired", nil, vouchers.ErrExpired, http.StatusUnprocessableEntity},
		{"used up", nil, vouchers.ErrExhausted, http.StatusUnprocessableEntity},
		{"below minimum", nil, vouchers.ErrNotApplicable, http.StatusUnprocessableEntity},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockService := &MockVoucherUseCase{}
			handler := NewVoucherHandler(mockService)

			gin.SetMode(gin.TestMode)
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Params = gin.Params{{Key: "code", Value: "TEN"}}
			c.Request = httptest.NewRequest("GET", "/api/vouchers/TEN?order_value=1800000", nil)

			mockService.On("Validate", c.Request.Context(), "TEN", int64(1_800_000)).Return(tc.voucher, tc.err)

			handler.validate(c)

			assert.Equal(t, tc.wantCode, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestRateLimiter_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockService := &MockVoucherUseCase{}
	mockService.On("Validate", mock.Anything, "TEN", int64(0)).
		Return(&domain.Voucher{Code: "TEN", DiscountType: domain.DiscountFixed, DiscountValue: 1000}, nil)

	router := gin.New()
	limiter := NewRateLimiter(0.001, 2, zap.NewNop())
	NewVoucherHandler(mockService).Register(router.Group("/api/vouchers"), limiter.Middleware())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/vouchers/TEN", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/vouchers/TEN", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiter_SweepsIdleClients(t *testing.T) {
	start := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)
	now := start
	limiter := NewRateLimiter(1, 1, zap.NewNop())
	limiter.now = func() time.Time { return now }
	limiter.lastSweep = start

	limiter.limiter("10.0.0.1")
	now = start.Add(limiterIdleTTL - time.Minute)
	limiter.limiter("10.0.0.2")
	require.Len(t, limiter.visitors, 2)

	// 10.0.0.1 has been idle past the TTL, 10.0.0.2 has not.
	now = start.Add(limiterIdleTTL + time.Second)
	limiter.limiter("10.0.0.3")

	assert.Len(t, limiter.visitors, 2)
	assert.NotContains(t, limiter.visitors, "10.0.0.1")
	assert.Contains(t, limiter.visitors, "10.0.0.2")
	assert.Contains(t, limiter.visitors, "10.0.0.3")
}

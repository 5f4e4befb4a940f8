package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/hotelbooking/internal/domain"
	"github.com/Domenick1991/hotelbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type bookingRoomRequest struct {
	RoomID       int64  `json:"room_id"`
	CheckIn      string `json:"check_in"`
	CheckOut     string `json:"check_out"`
	NightlyPrice int64  `json:"price_per_night"`
}

type createBookingRequest struct {
	CustomerID    string               `json:"customer_id"`
	CheckIn       string               `json:"check_in"`
	CheckOut      string               `json:"check_out"`
	Rooms         []bookingRoomRequest `json:"rooms"`
	PaymentMethod string               `json:"payment_method"`
	Source        string               `json:"source"`
	VoucherCode   string               `json:"voucher_code"`
}

type bookingRoomResponse struct {
	RoomID       int64  `json:"room_id"`
	CheckIn      string `json:"check_in"`
	CheckOut     string `json:"check_out"`
	NightlyPrice int64  `json:"price_per_night"`
}

type bookingResponse struct {
	ID            int64                 `json:"id"`
	Code          string                `json:"code"`
	CustomerID    string                `json:"customer_id"`
	CheckIn       string                `json:"check_in"`
	CheckOut      string                `json:"check_out"`
	Status        string                `json:"status"`
	PaymentMethod string                `json:"payment_method"`
	PaymentStatus string                `json:"payment_status"`
	Source        string                `json:"source"`
	VoucherCode   string                `json:"voucher_code,omitempty"`
	BaseTotal     int64                 `json:"base_total"`
	Discount      int64                 `json:"discount"`
	TotalPrice    int64                 `json:"total_price"`
	Rooms         []bookingRoomResponse `json:"rooms"`
	ExpiresAt     string                `json:"expires_at,omitempty"`
	CreatedAt     string                `json:"created_at,omitempty"`
}

type createdBookingResponse struct {
	Booking    bookingResponse `json:"booking"`
	PaymentURL string          `json:"payment_url,omitempty"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("/:id", h.get)
	router.DELETE("/:id", h.cancel)
}

func (h *BookingHandler) RegisterCustomers(router *gin.RouterGroup) {
	router.GET("/:id/bookings", h.history)
}

func (h *BookingHandler) RegisterPayments(router *gin.RouterGroup) {
	router.GET("/vnpay/return", h.vnpayReturn)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	master, ok := parseWindow(c, req.CheckIn, req.CheckOut)
	if !ok {
		return
	}
	sub := domain.BookingSubmission{
		CustomerID:    req.CustomerID,
		CheckIn:       master.CheckIn,
		CheckOut:      master.CheckOut,
		Rooms:         make([]domain.SubmissionRoom, 0, len(req.Rooms)),
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		Source:        req.Source,
		VoucherCode:   req.VoucherCode,
	}
	for _, r := range req.Rooms {
		w, ok := parseWindow(c, r.CheckIn, r.CheckOut)
		if !ok {
			return
		}
		sub.Rooms = append(sub.Rooms, domain.SubmissionRoom{
			RoomID:       r.RoomID,
			CheckIn:      w.CheckIn,
			CheckOut:     w.CheckOut,
			NightlyPrice: r.NightlyPrice,
		})
	}

	res, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		Submission: sub,
		ClientIP:   c.ClientIP(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCreatedResponse(res.Booking, res.PaymentURL))
}

func (h *BookingHandler) get(c *gin.Context) {
	id, ok := bookingParam(c)
	if !ok {
		return
	}
	b, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	id, ok := bookingParam(c)
	if !ok {
		return
	}
	b, err := h.service.CancelBooking(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) history(c *gin.Context) {
	list, err := h.service.ListCustomerBookings(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]bookingResponse, 0, len(list))
	for i := range list {
		out = append(out, toBookingResponse(&list[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *BookingHandler) vnpayReturn(c *gin.Context) {
	b, err := h.service.ConfirmPayment(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func bookingParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}

func toCreatedResponse(b *domain.Booking, paymentURL string) createdBookingResponse {
	return createdBookingResponse{Booking: toBookingResponse(b), PaymentURL: paymentURL}
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	out := bookingResponse{
		ID:            b.ID,
		Code:          b.Code,
		CustomerID:    b.CustomerID,
		CheckIn:       formatDate(b.CheckIn),
		CheckOut:      formatDate(b.CheckOut),
		Status:        string(b.Status),
		PaymentMethod: string(b.PaymentMethod),
		PaymentStatus: string(b.PaymentStatus),
		Source:        b.Source,
		VoucherCode:   b.VoucherCode,
		BaseTotal:     b.BaseTotal,
		Discount:      b.Discount,
		TotalPrice:    b.TotalPrice,
		Rooms:         make([]bookingRoomResponse, 0, len(b.Rooms)),
	}
	for _, r := range b.Rooms {
		out.Rooms = append(out.Rooms, bookingRoomResponse{
			RoomID:       r.RoomID,
			CheckIn:      formatDate(r.CheckIn),
			CheckOut:     formatDate(r.CheckOut),
			NightlyPrice: r.NightlyPrice,
		})
	}
	if b.ExpiresAt != nil {
		out.ExpiresAt = b.ExpiresAt.Format(time.RFC3339)
	}
	if !b.CreatedAt.IsZero() {
		out.CreatedAt = b.CreatedAt.Format(time.RFC3339)
	}
	return out
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(domain.DateLayout)
}

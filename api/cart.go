package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/hotelbooking/internal/cart"
	"github.com/Domenick1991/hotelbooking/internal/domain"
	"github.com/Domenick1991/hotelbooking/internal/service/carts"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionHeader carries the cart session id in both directions.
const SessionHeader = "X-Cart-Session"

type CartHandler struct {
	service carts.CartUseCase
}

type addRoomRequest struct {
	RoomID int64 `json:"room_id" binding:"required"`
}

type datesRequest struct {
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
}

type voucherRequest struct {
	Code string `json:"code" binding:"required"`
}

type checkoutRequest struct {
	CustomerID    string `json:"customer_id"`
	PaymentMethod string `json:"payment_method"`
	Source        string `json:"source"`
}

type cartRoomResponse struct {
	RoomID       int64  `json:"room_id"`
	RoomNumber   string `json:"room_number"`
	RoomTypeName string `json:"room_type_name"`
	Capacity     int    `json:"capacity"`
	NightlyPrice int64  `json:"nightly_price"`
	CheckIn      string `json:"check_in"`
	CheckOut     string `json:"check_out"`
	CustomDates  bool   `json:"custom_dates"`
	Nights       int    `json:"nights"`
	Subtotal     int64  `json:"subtotal"`
}

type cartResponse struct {
	SessionID string             `json:"session_id"`
	CheckIn   string             `json:"check_in"`
	CheckOut  string             `json:"check_out"`
	Rooms     []cartRoomResponse `json:"rooms"`
	Voucher   *voucherResponse   `json:"voucher,omitempty"`
	BaseTotal int64              `json:"base_total"`
	Discount  int64              `json:"discount"`
	Total     int64              `json:"total"`
}

func NewCartHandler(service carts.CartUseCase) *CartHandler {
	return &CartHandler{service: service}
}

func (h *CartHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.get)
	router.POST("/rooms", h.addRoom)
	router.DELETE("/rooms/:id", h.removeRoom)
	router.PUT("/rooms/:id/dates", h.setRoomDates)
	router.DELETE("/rooms/:id/dates", h.clearRoomDates)
	router.PUT("/dates", h.setMasterDates)
	router.PUT("/voucher", h.applyVoucher)
	router.DELETE("/voucher", h.removeVoucher)
	router.POST("/checkout", h.checkout)
}

// session returns the caller's cart session id, issuing a new one when the
// header is missing. The id is always echoed back.
func session(c *gin.Context) string {
	id := c.GetHeader(SessionHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Header(SessionHeader, id)
	return id
}

func (h *CartHandler) get(c *gin.Context) {
	view, err := h.service.Get(c.Request.Context(), session(c))
	h.respond(c, view, err)
}

func (h *CartHandler) addRoom(c *gin.Context) {
	sid := session(c)
	var req addRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	view, err := h.service.AddRoom(c.Request.Context(), sid, req.RoomID)
	h.respond(c, view, err)
}

func (h *CartHandler) removeRoom(c *gin.Context) {
	sid := session(c)
	roomID, ok := roomParam(c)
	if !ok {
		return
	}
	view, err := h.service.RemoveRoom(c.Request.Context(), sid, roomID)
	h.respond(c, view, err)
}

func (h *CartHandler) setRoomDates(c *gin.Context) {
	sid := session(c)
	roomID, ok := roomParam(c)
	if !ok {
		return
	}
	w, ok := bindDates(c)
	if !ok {
		return
	}
	view, err := h.service.SetRoomDates(c.Request.Context(), sid, roomID, w)
	h.respond(c, view, err)
}

func (h *CartHandler) clearRoomDates(c *gin.Context) {
	sid := session(c)
	roomID, ok := roomParam(c)
	if !ok {
		return
	}
	view, err := h.service.ClearRoomDates(c.Request.Context(), sid, roomID)
	h.respond(c, view, err)
}

func (h *CartHandler) setMasterDates(c *gin.Context) {
	sid := session(c)
	w, ok := bindDates(c)
	if !ok {
		return
	}
	view, err := h.service.SetMasterDates(c.Request.Context(), sid, w)
	h.respond(c, view, err)
}

func (h *CartHandler) applyVoucher(c *gin.Context) {
	sid := session(c)
	var req voucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	view, err := h.service.ApplyVoucher(c.Request.Context(), sid, req.Code)
	h.respond(c, view, err)
}

func (h *CartHandler) removeVoucher(c *gin.Context) {
	view, err := h.service.RemoveVoucher(c.Request.Context(), session(c))
	h.respond(c, view, err)
}

func (h *CartHandler) checkout(c *gin.Context) {
	sid := session(c)
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	res, err := h.service.Checkout(c.Request.Context(), sid, carts.CheckoutInput{
		CustomerID:    req.CustomerID,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		Source:        req.Source,
		ClientIP:      c.ClientIP(),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCreatedResponse(res.Booking, res.PaymentURL))
}

func (h *CartHandler) respond(c *gin.Context, view *carts.CartView, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartResponse(view))
}

func roomParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid room id")
		return 0, false
	}
	return id, true
}

func bindDates(c *gin.Context) (domain.DateWindow, bool) {
	var req datesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return domain.DateWindow{}, false
	}
	return parseWindow(c, req.CheckIn, req.CheckOut)
}

func toCartResponse(view *carts.CartView) cartResponse {
	c := view.Cart
	out := cartResponse{
		SessionID: c.SessionID,
		CheckIn:   formatDate(c.Master.CheckIn),
		CheckOut:  formatDate(c.Master.CheckOut),
		Rooms:     make([]cartRoomResponse, 0, len(c.Rooms)),
		Voucher:   toVoucherResponse(c.Voucher),
		BaseTotal: view.Summary.BaseTotal,
		Discount:  view.Summary.Discount,
		Total:     view.Summary.DiscountedTotal,
	}
	for i, room := range c.Rooms {
		w := cart.EffectiveDates(room, c.Master)
		item := cartRoomResponse{
			RoomID:       room.RoomID,
			RoomNumber:   room.RoomNumber,
			RoomTypeName: room.RoomTypeName,
			Capacity:     room.Capacity,
			NightlyPrice: room.NightlyPrice,
			CheckIn:      formatDate(w.CheckIn),
			CheckOut:     formatDate(w.CheckOut),
			CustomDates:  room.HasOverride(),
		}
		if i < len(view.Summary.Rooms) {
			item.Nights = view.Summary.Rooms[i].Nights
			item.Subtotal = view.Summary.Rooms[i].Subtotal
		}
		out.Rooms = append(out.Rooms, item)
	}
	return out
}

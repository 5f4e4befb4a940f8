package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Domenick1991/hotelbooking/internal/domain"
	"github.com/Domenick1991/hotelbooking/internal/service/rooms"
	"github.com/gin-gonic/gin"
)

type RoomHandler struct {
	service rooms.RoomUseCase
}

type roomResponse struct {
	ID           int64  `json:"id"`
	Number       string `json:"number"`
	Status       string `json:"status"`
	RoomTypeID   int64  `json:"room_type_id"`
	RoomTypeName string `json:"room_type_name"`
	Capacity     int    `json:"capacity"`
	NightlyPrice int64  `json:"nightly_price"`
}

func NewRoomHandler(service rooms.RoomUseCase) *RoomHandler {
	return &RoomHandler{service: service}
}

func (h *RoomHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.PUT("/:id/status", h.updateStatus)
}

type updateRoomStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// list returns every room, or only the free ones when both check_in and
// check_out are given.
func (h *RoomHandler) list(c *gin.Context) {
	var (
		list []domain.Room
		err  error
	)
	if c.Query("check_in") != "" || c.Query("check_out") != "" {
		w, ok := parseWindow(c, c.Query("check_in"), c.Query("check_out"))
		if !ok {
			return
		}
		if !w.CheckOut.After(w.CheckIn) {
			badRequest(c, "check_out must be after check_in")
			return
		}
		list, err = h.service.ListAvailable(c.Request.Context(), w)
	} else {
		list, err = h.service.List(c.Request.Context())
	}
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]roomResponse, 0, len(list))
	for _, r := range list {
		out = append(out, toRoomResponse(r))
	}
	c.JSON(http.StatusOK, out)
}

func (h *RoomHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid id")
		return
	}
	room, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRoomResponse(*room))
}

func (h *RoomHandler) updateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid id")
		return
	}
	var req updateRoomStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}
	status := domain.RoomStatus(strings.ToUpper(req.Status))
	switch status {
	case domain.RoomStatusAvailable, domain.RoomStatusOccupied, domain.RoomStatusMaintenance:
	default:
		badRequest(c, "status must be one of AVAILABLE, OCCUPIED, MAINTENANCE")
		return
	}

	room, err := h.service.UpdateStatus(c.Request.Context(), id, status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRoomResponse(*room))
}

func toRoomResponse(r domain.Room) roomResponse {
	return roomResponse{
		ID:           r.ID,
		Number:       r.Number,
		Status:       string(r.Status),
		RoomTypeID:   r.RoomTypeID,
		RoomTypeName: r.RoomType.Name,
		Capacity:     r.RoomType.Capacity,
		NightlyPrice: r.NightlyPrice(),
	}
}

// parseWindow reads two YYYY-MM-DD strings. Empty strings stay zero so
// the domain validation can report them per field.
func parseWindow(c *gin.Context, checkIn, checkOut string) (domain.DateWindow, bool) {
	var w domain.DateWindow
	if checkIn != "" {
		t, err := domain.ParseDate(checkIn)
		if err != nil {
			badRequest(c, "check_in must be a date in YYYY-MM-DD format")
			return w, false
		}
		w.CheckIn = t
	}
	if checkOut != "" {
		t, err := domain.ParseDate(checkOut)
		if err != nil {
			badRequest(c, "check_out must be a date in YYYY-MM-DD format")
			return w, false
		}
		w.CheckOut = t
	}
	return w, true
}

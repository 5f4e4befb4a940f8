package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/hotelbooking/internal/cart"
	"github.com/Domenick1991/hotelbooking/internal/payment"
	"github.com/Domenick1991/hotelbooking/internal/repository"
	"github.com/Domenick1991/hotelbooking/internal/service/booking"
	"github.com/Domenick1991/hotelbooking/internal/service/carts"
	"github.com/Domenick1991/hotelbooking/internal/service/vouchers"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// respondError maps service errors onto HTTP statuses. Unknown errors are
// attached to the gin context for the request logger and hidden from the
// client.
func respondError(c *gin.Context, err error) {
	if ve := cart.AsValidationError(err); ve != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: ve.Fields()})
		return
	}

	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, errorResponse{Error: "internal server error"})
		return
	}
	c.JSON(status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, carts.ErrSessionRequired),
		errors.Is(err, vouchers.ErrCodeRequired),
		errors.Is(err, payment.ErrInvalidSignature),
		errors.Is(err, payment.ErrMissingTxnRef),
		errors.Is(err, booking.ErrAmountMismatch),
		errors.Is(err, booking.ErrCustomerRequired):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, vouchers.ErrNotFound),
		errors.Is(err, booking.ErrRoomNotFound),
		errors.Is(err, cart.ErrRoomNotInCart):
		return http.StatusNotFound
	case errors.Is(err, booking.ErrRoomUnavailable),
		errors.Is(err, booking.ErrNotCancellable),
		errors.Is(err, booking.ErrBookingClosed),
		errors.Is(err, cart.ErrRoomAlreadyInCart):
		return http.StatusConflict
	case errors.Is(err, vouchers.ErrExpired),
		errors.Is(err, vouchers.ErrExhausted),
		errors.Is(err, vouchers.ErrNotApplicable),
		errors.Is(err, repository.ErrVoucherExhausted):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}

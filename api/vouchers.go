package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/hotelbooking/internal/domain"
	"github.com/Domenick1991/hotelbooking/internal/service/vouchers"
	"github.com/gin-gonic/gin"
)

type VoucherHandler struct {
	service vouchers.VoucherUseCase
}

type voucherResponse struct {
	Code          string  `json:"code"`
	DiscountType  string  `json:"discount_type"`
	DiscountValue float64 `json:"discount_value"`
	MinOrderValue int64   `json:"min_order_value"`
	ValidTo       string  `json:"valid_to,omitempty"`
}

func NewVoucherHandler(service vouchers.VoucherUseCase) *VoucherHandler {
	return &VoucherHandler{service: service}
}

func (h *VoucherHandler) Register(router *gin.RouterGroup, middleware ...gin.HandlerFunc) {
	handlers := append(middleware, h.validate)
	router.GET("/:code", handlers...)
}

func (h *VoucherHandler) validate(c *gin.Context) {
	var orderValue int64
	if raw := c.Query("order_value"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			badRequest(c, "order_value must be a non-negative integer")
			return
		}
		orderValue = v
	}

	v, err := h.service.Validate(c.Request.Context(), c.Param("code"), orderValue)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toVoucherResponse(v))
}

func toVoucherResponse(v *domain.Voucher) *voucherResponse {
	if v == nil {
		return nil
	}
	out := &voucherResponse{
		Code:          v.Code,
		DiscountType:  string(v.DiscountType),
		DiscountValue: v.DiscountValue,
		MinOrderValue: v.MinOrderValue,
	}
	if !v.ValidTo.IsZero() {
		out.ValidTo = v.ValidTo.Format(domain.DateLayout)
	}
	return out
}

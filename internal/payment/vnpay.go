// Package payment builds VNPay redirect URLs and verifies VNPay return
// callbacks.
package payment

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/hotelbooking/config"
)

const (
	vnpVersion    = "2.1.0"
	vnpTimeLayout = "20060102150405"
	successCode   = "00"
)

var (
	ErrInvalidSignature = errors.New("invalid vnpay signature")
	ErrMissingTxnRef    = errors.New("vnpay callback has no transaction reference")
)

// VNPay timestamps are Vietnam local time.
var vietnam = time.FixedZone("ICT", 7*60*60)

type VNPay struct {
	cfg config.VNPayConfig
	now func() time.Time
}

func NewVNPay(cfg config.VNPayConfig) *VNPay {
	return &VNPay{cfg: cfg, now: time.Now}
}

type PaymentRequest struct {
	TxnRef    string
	Amount    int64
	OrderInfo string
	ClientIP  string
	ExpiresAt time.Time
}

// Result is a verified VNPay callback.
type Result struct {
	TxnRef        string
	Amount        int64
	TransactionNo string
	ResponseCode  string
	Success       bool
}

// PaymentURL returns the signed redirect URL for req.
func (v *VNPay) PaymentURL(req PaymentRequest) (string, error) {
	if req.TxnRef == "" {
		return "", ErrMissingTxnRef
	}
	if req.Amount <= 0 {
		return "", fmt.Errorf("vnpay amount must be positive, got %d", req.Amount)
	}

	ip := req.ClientIP
	if ip == "" {
		ip = "127.0.0.1"
	}
	info := req.OrderInfo
	if info == "" {
		info = "Thanh toan dat phong " + req.TxnRef
	}

	params := url.Values{}
	params.Set("vnp_Version", vnpVersion)
	params.Set("vnp_Command", "pay")
	params.Set("vnp_TmnCode", v.cfg.TmnCode)
	params.Set("vnp_Amount", strconv.FormatInt(req.Amount*100, 10))
	params.Set("vnp_CurrCode", "VND")
	params.Set("vnp_TxnRef", req.TxnRef)
	params.Set("vnp_OrderInfo", info)
	params.Set("vnp_OrderType", "other")
	params.Set("vnp_Locale", v.cfg.Locale)
	params.Set("vnp_ReturnUrl", v.cfg.ReturnURL)
	params.Set("vnp_IpAddr", ip)
	params.Set("vnp_CreateDate", v.now().In(vietnam).Format(vnpTimeLayout))
	if !req.ExpiresAt.IsZero() {
		params.Set("vnp_ExpireDate", req.ExpiresAt.In(vietnam).Format(vnpTimeLayout))
	}

	query := params.Encode()
	return v.cfg.PayURL + "?" + query + "&vnp_SecureHash=" + v.sign(query), nil
}

// VerifyReturn checks the signature of a VNPay return or IPN query.
func (v *VNPay) VerifyReturn(query url.Values) (*Result, error) {
	got := query.Get("vnp_SecureHash")
	if got == "" {
		return nil, ErrInvalidSignature
	}

	signed := url.Values{}
	for k, vals := range query {
		if !strings.HasPrefix(k, "vnp_") || k == "vnp_SecureHash" || k == "vnp_SecureHashType" {
			continue
		}
		for _, val := range vals {
			signed.Add(k, val)
		}
	}

	want := v.sign(signed.Encode())
	if !hmac.Equal([]byte(strings.ToLower(got)), []byte(want)) {
		return nil, ErrInvalidSignature
	}

	res := &Result{
		TxnRef:        query.Get("vnp_TxnRef"),
		TransactionNo: query.Get("vnp_TransactionNo"),
		ResponseCode:  query.Get("vnp_ResponseCode"),
	}
	if res.TxnRef == "" {
		return nil, ErrMissingTxnRef
	}
	if amount, err := strconv.ParseInt(query.Get("vnp_Amount"), 10, 64); err == nil {
		res.Amount = amount / 100
	}
	status := query.Get("vnp_TransactionStatus")
	res.Success = res.ResponseCode == successCode && (status == "" || status == successCode)
	return res, nil
}

func (v *VNPay) sign(data string) string {
	mac := hmac.New(sha512.New, []byte(v.cfg.HashSecret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// Package vnpay implements the hosted-redirect contract of the VNPay
// gateway: building signed pay URLs and verifying signed return/IPN
// callbacks. The canonical query-string signing is an external wire
// contract and must stay byte-for-byte compatible with the gateway.
package vnpay

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Request field names echoed by the gateway on both callback paths.
const (
	FieldVersion        = "vnp_Version"
	FieldCommand        = "vnp_Command"
	FieldTmnCode        = "vnp_TmnCode"
	FieldAmount         = "vnp_Amount"
	FieldCurrCode       = "vnp_CurrCode"
	FieldTxnRef         = "vnp_TxnRef"
	FieldOrderInfo      = "vnp_OrderInfo"
	FieldOrderType      = "vnp_OrderType"
	FieldLocale         = "vnp_Locale"
	FieldIPAddr         = "vnp_IpAddr"
	FieldCreateDate     = "vnp_CreateDate"
	FieldReturnURL      = "vnp_ReturnUrl"
	FieldResponseCode   = "vnp_ResponseCode"
	FieldSecureHash     = "vnp_SecureHash"
	FieldSecureHashType = "vnp_SecureHashType"
)

// ResponseCodeSuccess is the gateway result code for a captured payment.
// Any other vnp_ResponseCode value is a failed attempt (e.g. "24" means the
// customer cancelled at the gateway).
const ResponseCodeSuccess = "00"

// IPN acknowledgement codes. The gateway retries until it receives a body
// with one of these RspCodes, so every processing outcome must map to one.
const (
	RspOK               = "00"
	RspOrderNotFound    = "01"
	RspInvalidSignature = "97"
	RspUnknownError     = "99"
)

const (
	version   = "2.1.0"
	command   = "pay"
	currency  = "VND"
	locale    = "vn"
	orderType = "other"

	txnRefTimeFormat = "20060102150405"
)

type Config struct {
	TmnCode    string
	HashSecret string
	PayURL     string
	ReturnURL  string
}

type Client struct {
	cfg Config
}

func New(cfg Config) *Client {
	return &Client{cfg: cfg}
}

type PayParams struct {
	TxnRef     string
	Amount     decimal.Decimal
	OrderInfo  string
	ClientIP   string
	CreateTime time.Time
}

// BuildPayURL returns the absolute redirect URL for a hosted payment. The
// amount is sent in minor units (VND x100 per the protocol).
func (c *Client) BuildPayURL(p PayParams) string {
	fields := map[string]string{
		FieldVersion:    version,
		FieldCommand:    command,
		FieldTmnCode:    c.cfg.TmnCode,
		FieldAmount:     p.Amount.Mul(decimal.NewFromInt(100)).StringFixed(0),
		FieldCurrCode:   currency,
		FieldTxnRef:     p.TxnRef,
		FieldOrderInfo:  p.OrderInfo,
		FieldOrderType:  orderType,
		FieldLocale:     locale,
		FieldIPAddr:     p.ClientIP,
		FieldCreateDate: p.CreateTime.Format(txnRefTimeFormat),
		FieldReturnURL:  c.cfg.ReturnURL,
	}

	query := hashData(fields)
	return fmt.Sprintf("%s?%s&%s=%s", c.cfg.PayURL, query, FieldSecureHash, Sign(fields, c.cfg.HashSecret))
}

// VerifyCallback checks the gateway signature over a received query-parameter
// mapping. All trust in the callback paths rests on this check.
func (c *Client) VerifyCallback(fields map[string]string) bool {
	return Verify(fields, fields[FieldSecureHash], c.cfg.HashSecret)
}

// FormatTxnRef builds the per-attempt transaction reference. The payment id
// plus a timestamp keeps retried attempts distinct while the id stays
// recoverable from the prefix.
func FormatTxnRef(paymentID string, t time.Time) string {
	return paymentID + "_" + t.Format(txnRefTimeFormat)
}

// ParseTxnRef recovers the payment id from a transaction reference by taking
// the substring before the first separator. This is the only correlation key
// the gateway echoes back.
func ParseTxnRef(ref string) (string, bool) {
	id, _, _ := strings.Cut(ref, "_")
	if id == "" {
		return "", false
	}
	return id, true
}

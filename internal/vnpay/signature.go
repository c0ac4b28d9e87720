package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// hashData builds the canonical signing payload: fields sorted by key
// (byte-wise ascending), joined as key=url_encoded_value with '&'.
// url.QueryEscape encodes space as '+', which is what the gateway expects.
// The signature fields themselves and empty values are excluded.
func hashData(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k, v := range fields {
		if k == FieldSecureHash || k == FieldSecureHashType || v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(fields[k]))
	}
	return sb.String()
}

// Sign computes the hex-encoded HMAC-SHA512 signature over the canonical
// representation of fields.
func Sign(fields map[string]string, secret string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(hashData(fields)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the signature over every field except the signature
// fields and compares it against provided in constant time. A missing or
// empty provided signature fails closed.
func Verify(fields map[string]string, provided, secret string) bool {
	if provided == "" {
		return false
	}
	expected := Sign(fields, secret)
	return hmac.Equal([]byte(strings.ToLower(provided)), []byte(expected))
}

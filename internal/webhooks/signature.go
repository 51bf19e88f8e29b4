package webhooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Deliveries with a subscription secret carry an X-Signature header:
// HMAC-SHA256 over the exact payload bytes that were enqueued, hex-encoded.
// Receivers recompute it over the raw request body before trusting a
// solve.completed or solve.failed event.

// SignHMAC returns the lowercase hex signature for the X-Signature header.
func SignHMAC(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return fmt.Sprintf("%x", mac.Sum(nil))
}

// VerifyHMAC checks a received signature against the raw body in constant
// time. Malformed hex is rejected, not treated as a mismatch error.
func VerifyHMAC(secret string, body []byte, provided string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := mac.Sum(nil)
	b, err := hex.DecodeString(provided)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, b)
}

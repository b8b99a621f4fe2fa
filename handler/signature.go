package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SignatureHeader is the HTTP header carrying the HMAC signature of the raw
// webhook body.
const SignatureHeader = "X-Webhook-Signature"

// Sign produces the hex-encoded HMAC-SHA256 of the payload.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature checks the signature against the raw body in constant
// time. A "sha256=" prefix on the inbound value is tolerated.
func VerifySignature(secret string, payload []byte, signature string) bool {
	signature = strings.TrimPrefix(strings.TrimSpace(signature), "sha256=")
	expected := Sign(secret, payload)
	return hmac.Equal([]byte(expected), []byte(signature))
}

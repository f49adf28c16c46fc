package alerting

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignatureHeader carries the HMAC signature on outbound webhook requests.
const SignatureHeader = "X-Hub-Signature-256"

// Sign returns the hex-encoded HMAC-SHA256 signature of body, prefixed with
// the hash name so receivers can dispatch on scheme.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether header matches the signature of body.
// Comparison is constant time.
func VerifySignature(secret, body []byte, header string) bool {
	expected := Sign(secret, body)
	return hmac.Equal([]byte(expected), []byte(header))
}

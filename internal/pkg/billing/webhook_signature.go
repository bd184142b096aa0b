package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// VerifyRazorpayWebhookSignature checks the X-Razorpay-Signature header
// against the exact raw request body bytes. The body must not be parsed (or
// reserialized) before this check passes; the HMAC is computed by the
// provider over the bytes as sent.
func VerifyRazorpayWebhookSignature(payload []byte, signatureHeader, webhookSecret string) bool {
	sig := strings.TrimSpace(signatureHeader)
	secret := strings.TrimSpace(webhookSecret)
	if sig == "" || secret == "" {
		return false
	}

	decodedSig, err := hex.DecodeString(strings.ToLower(sig))
	if err != nil {
		return false
	}

	// Razorpay signs webhook bodies with HMAC-SHA256 of the webhook secret.
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hmac.Equal(mac.Sum(nil), decodedSig)
}

// Package security holds the callback verification boundary. A forged
// callback that slips through here would mark an unpaid order as paid, so
// verification is pure, constant-time, and refuses malformed input instead
// of erroring.
package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifyPaymentSignature checks that signature is the hex-encoded
// HMAC-SHA256 of "gatewayOrderID|gatewayPaymentID" under secret.
//
// The comparison is constant-time (hmac.Equal over the raw MAC bytes);
// plain string equality here would leak a byte-at-a-time timing oracle to
// anyone who can post callbacks. Any malformed input returns false.
func VerifyPaymentSignature(gatewayOrderID, gatewayPaymentID, signature, secret string) bool {
	if gatewayOrderID == "" || gatewayPaymentID == "" || signature == "" || secret == "" {
		return false
	}
	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	want := SignPayment(gatewayOrderID, gatewayPaymentID, secret)
	return hmac.Equal(got, want)
}

// SignPayment computes the raw MAC over the gateway's canonical
// "orderID|paymentID" message. Exposed for tests and for signing outbound
// test callbacks; production signatures come from the gateway.
func SignPayment(gatewayOrderID, gatewayPaymentID, secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	return mac.Sum(nil)
}

// SignPaymentHex is SignPayment hex-encoded, the wire form the gateway
// delivers in callbacks.
func SignPaymentHex(gatewayOrderID, gatewayPaymentID, secret string) string {
	return hex.EncodeToString(SignPayment(gatewayOrderID, gatewayPaymentID, secret))
}

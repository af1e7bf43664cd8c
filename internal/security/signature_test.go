package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const testSecret = "test-gateway-secret"

func TestVerifyPaymentSignature_RoundTrip(t *testing.T) {
	cases := []struct {
		orderID, paymentID string
	}{
		{"order_Nf8FFHkbdyO0Wc", "pay_Nf8GhLqZ1a2b3c"},
		{"order_a", "pay_b"},
		{"order_with|pipe", "pay_x"},
	}
	for _, tc := range cases {
		sig := SignPaymentHex(tc.orderID, tc.paymentID, testSecret)
		assert.True(t, VerifyPaymentSignature(tc.orderID, tc.paymentID, sig, testSecret),
			"genuine signature for %s/%s must verify", tc.orderID, tc.paymentID)
	}
}

func TestVerifyPaymentSignature_SingleByteMutation(t *testing.T) {
	sig := SignPaymentHex("order_Nf8FFHkbdyO0Wc", "pay_Nf8GhLqZ1a2b3c", testSecret)

	for i := 0; i < len(sig); i++ {
		mutated := []byte(sig)
		if mutated[i] == 'a' {
			mutated[i] = 'b'
		} else {
			mutated[i] = 'a'
		}
		if string(mutated) == sig {
			continue
		}
		assert.False(t, VerifyPaymentSignature("order_Nf8FFHkbdyO0Wc", "pay_Nf8GhLqZ1a2b3c", string(mutated), testSecret),
			"mutation at byte %d must reject", i)
	}
}

func TestVerifyPaymentSignature_WrongInputs(t *testing.T) {
	sig := SignPaymentHex("order_1", "pay_1", testSecret)

	assert.False(t, VerifyPaymentSignature("order_2", "pay_1", sig, testSecret), "different order id")
	assert.False(t, VerifyPaymentSignature("order_1", "pay_2", sig, testSecret), "different payment id")
	assert.False(t, VerifyPaymentSignature("order_1", "pay_1", sig, "other-secret"), "different secret")
}

func TestVerifyPaymentSignature_Malformed(t *testing.T) {
	assert.False(t, VerifyPaymentSignature("", "pay_1", "aa", testSecret), "empty order id")
	assert.False(t, VerifyPaymentSignature("order_1", "", "aa", testSecret), "empty payment id")
	assert.False(t, VerifyPaymentSignature("order_1", "pay_1", "", testSecret), "empty signature")
	assert.False(t, VerifyPaymentSignature("order_1", "pay_1", "not-hex!!", testSecret), "non-hex signature")
	assert.False(t, VerifyPaymentSignature("order_1", "pay_1", "abcd", ""), "empty secret")
}

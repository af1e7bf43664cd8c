package entity

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const (
	bookingPrefix  = "BK"
	deliveryPrefix = "DL"
	codeSuffixLen  = 4
)

const base36Upper = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewBookingCode returns a human-shareable booking code:
// BK + millisecond timestamp + 4 random upper base36 chars.
func NewBookingCode(now time.Time) string { return newCode(bookingPrefix, now) }

// NewDeliveryCode returns the matching delivery code with the DL prefix.
func NewDeliveryCode(now time.Time) string { return newCode(deliveryPrefix, now) }

func newCode(prefix string, now time.Time) string {
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(strconv.FormatInt(now.UnixMilli(), 10))
	for i := 0; i < codeSuffixLen; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(base36Upper))))
		if err != nil {
			// crypto/rand only fails if the OS entropy source is broken;
			// fall back to a time-derived character rather than panic.
			b.WriteByte(base36Upper[now.UnixNano()%int64(len(base36Upper))])
			continue
		}
		b.WriteByte(base36Upper[n.Int64()])
	}
	return b.String()
}

package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReceiptNumber returns RCP-YYYYMMDD-XXXXXXXX with a random UUID suffix.
func ReceiptNumber(now time.Time) string {
	return fmt.Sprintf("RCP-%s-%s", now.Format("20060102"), strings.ToUpper(randomHex(8)))
}

// OrderNumber returns ORD-YYYYMMDD-XXXXXX.
func OrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), strings.ToUpper(randomHex(6)))
}

// MemberCode formats a datastore-issued id as a zero-padded member code.
func MemberCode(prefix string, id uint) string {
	return fmt.Sprintf("%s%05d", prefix, id)
}

func randomHex(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}

func roundMoney(v float64) float64 {
	if v < 0 {
		return -roundMoney(-v)
	}
	return float64(int64(v*100+0.5)) / 100
}

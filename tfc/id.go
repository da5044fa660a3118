package tfc

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// IDs are opaque to callers. The timestamp prefix keeps rows roughly
// chronological in storage; the random suffix keeps them unique.

func NewChildID() ChildID {
	return ChildID(fmt.Sprintf("chd-%s", randomSuffix()))
}

func newPaymentID(date time.Time) PaymentID {
	return PaymentID(fmt.Sprintf("pay-%s-%s", date.Format("20060102"), randomSuffix()))
}

func randomSuffix() string {
	b := make([]byte, 6)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

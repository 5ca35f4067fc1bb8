package payments

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// NewTransactionID generates an id of the form TXN-<unix millis>-<random>.
// It is stamped on the booking before the gateway round trip so callbacks can
// correlate independently of provider ids.
func NewTransactionID() string {
	var b [4]byte
	_, _ = rand.Read(b[:])
	return fmt.Sprintf("TXN-%d-%s", time.Now().UnixMilli(), hex.EncodeToString(b[:]))
}

// ValidTransactionID reports whether s looks like an id we issued.
func ValidTransactionID(s string) bool {
	parts := strings.Split(s, "-")
	return len(parts) == 3 && parts[0] == "TXN" && parts[1] != "" && parts[2] != ""
}

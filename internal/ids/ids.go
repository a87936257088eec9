// Package ids generates opaque task identifiers and wall-clock timestamps.
//
// Task ids are 8 characters from the fixed alphabet [0-9a-z], drawn from a
// crypto-uniform source. Collision is checked by the caller at insert time
// (against the current store); Generate itself never consults a store.
package ids

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

const (
	alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	idLength = 8
)

// Generate returns a new 8-character id drawn uniformly from alphabet.
func Generate() (string, error) {
	b := make([]byte, idLength)
	max := big.NewInt(int64(len(alphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate id: %w", err)
		}
		b[i] = alphabet[n.Int64()]
	}
	return string(b), nil
}

// Now returns the current instant formatted as ISO-8601 UTC with
// millisecond precision, the timestamp format used throughout the store.
func Now() string {
	return FormatTime(time.Now())
}

// FormatTime renders t as ISO-8601 UTC with millisecond precision.
func FormatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// ParseTime parses a timestamp previously produced by FormatTime/Now.
func ParseTime(s string) (time.Time, error) {
	return time.Parse("2006-01-02T15:04:05.000Z", s)
}

// NewCorrelationID mints a short-lived id used only to correlate one
// GitHub-sync attempt's log lines and metric labels. It is never persisted
// on a Task and never appears in any wire format — a purely ambient,
// additive piece of instrumentation.
func NewCorrelationID() string {
	return uuid.NewString()
}

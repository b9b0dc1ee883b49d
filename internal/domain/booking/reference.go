package booking

import (
	"time"

	"github.com/lithammer/shortuuid/v3"
)

const (
	referencePrefix = "CTF"
	suffixLength    = 10
)

// NewReference returns a booking reference such as CTF-20250314-7mKq2ZxR4b.
// Collisions are possible but negligible; the storage layer's primary key
// is what actually guarantees uniqueness.
func NewReference(at time.Time) string {
	return referencePrefix + "-" + at.UTC().Format("20060102") + "-" + shortuuid.New()[:suffixLength]
}

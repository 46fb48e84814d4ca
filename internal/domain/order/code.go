package order

import (
	"math/rand/v2"
	"strconv"
	"time"
)

const codeAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewCode generates a human-readable order code of the form
// ORD-<epoch_ms>-<4 base36 chars>. Collisions are possible but rare; the
// unique index on order_code is the actual guarantee, and a collision
// surfaces to the caller as a conflict error.
func NewCode(now time.Time) string {
	suffix := make([]byte, 4)
	for i := range suffix {
		suffix[i] = codeAlphabet[rand.IntN(len(codeAlphabet))]
	}
	return "ORD-" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + string(suffix)
}

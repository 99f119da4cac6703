package models

import (
	"math/rand/v2"
	"strconv"
	"time"
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewID returns an identifier of the form <unix-millis>-<base36 suffix>.
// Unique in practice, not cryptographically.
func NewID() string {
	suffix := make([]byte, 7)
	for i := range suffix {
		suffix[i] = idAlphabet[rand.IntN(len(idAlphabet))]
	}
	return strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + string(suffix)
}

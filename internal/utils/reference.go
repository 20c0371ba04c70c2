package utils

import (
	"crypto/rand"
	"fmt"
	"strings"
)

const refAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewBookingReference returns an externally visible purchase identifier of
// the form "BKG-XXXXXXXXXX". The alphabet omits easily confused characters
// (0/O, 1/I). Uniqueness is enforced by the store's index; on the rare
// collision the caller regenerates.
func NewBookingReference() (string, error) {
	buf := make([]byte, 10)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate booking reference: %w", err)
	}
	var sb strings.Builder
	sb.WriteString("BKG-")
	for _, b := range buf {
		sb.WriteByte(refAlphabet[int(b)%len(refAlphabet)])
	}
	return sb.String(), nil
}

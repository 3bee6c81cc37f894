package application

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const referenceLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewReference produces a short human-readable application code: two
// uppercase letters, a hyphen, four zero-padded digits (e.g. QK-0413).
// Collisions are possible; the unique constraint on the applications table
// is the backstop and the submit path retries on conflict.
func NewReference() (string, error) {
	letters := make([]byte, 2)
	for i := range letters {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(referenceLetters))))
		if err != nil {
			return "", err
		}
		letters[i] = referenceLetters[n.Int64()]
	}
	digits, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%04d", letters, digits.Int64()), nil
}

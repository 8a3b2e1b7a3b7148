package admin

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// passwordAlphabet drops l, I, O, 0, and 1.
const passwordAlphabet = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GeneratedPasswordLength is the length of a seeded admin password.
const GeneratedPasswordLength = 16

// GeneratePassword returns n characters drawn uniformly from
// passwordAlphabet.
func GeneratePassword(n int) (string, error) {
	max := big.NewInt(int64(len(passwordAlphabet)))
	out := make([]byte, n)
	for i := range out {
		j, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		out[i] = passwordAlphabet[j.Int64()]
	}
	return string(out), nil
}

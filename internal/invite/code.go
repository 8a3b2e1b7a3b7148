package invite

import (
	"crypto/rand"
	"fmt"
)

// Alphabet omits 0/O and 1/I so codes survive being read aloud or
// handwritten.  Its length (32) divides 256, so byte%len is unbiased.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// DefaultCodeLength applies when no length is configured.
const DefaultCodeLength = 6

// maxAttempts bounds the collision retry loop.
const maxAttempts = 10

// Generate returns a random code of length n drawn from Alphabet.
func Generate(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	for i, b := range buf {
		buf[i] = Alphabet[int(b)%len(Alphabet)]
	}
	return string(buf), nil
}

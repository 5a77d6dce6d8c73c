package cardnum

import (
	"crypto/rand"
	"strings"
)

// Generator produces candidate raw card numbers. A single call gives no
// uniqueness guarantee; callers run the generate-encode-check loop against
// the store and retry on collision.
type Generator struct{}

// NewGenerator builds a card number generator backed by crypto/rand.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate returns a random 16-digit numeric string.
func (g *Generator) Generate() (string, error) {
	return randomDigits(Length)
}

// randomDigits draws uniform digits via rejection sampling: only bytes below
// 250 are accepted before the mod 10, avoiding modulo bias.
func randomDigits(count int) (string, error) {
	const threshold = 250 // 256 - (256 % 10)
	var sb strings.Builder
	sb.Grow(count)
	buf := make([]byte, 32)
	for sb.Len() < count {
		n, err := rand.Read(buf)
		if err != nil {
			return "", err
		}
		for i := 0; i < n && sb.Len() < count; i++ {
			if buf[i] < threshold {
				sb.WriteByte('0' + buf[i]%10)
			}
		}
	}
	return sb.String(), nil
}

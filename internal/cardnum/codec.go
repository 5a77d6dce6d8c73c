package cardnum

import (
	"crypto/aes"
	"encoding/base64"
	"errors"
	"fmt"
)

// Length is the number of digits in a raw card number.
const Length = 16

var (
	// ErrBadToken indicates a stored token was not produced by this codec/key.
	ErrBadToken = errors.New("card number token is not decodable")

	// ErrInvalidNumber indicates a raw card number of the wrong shape.
	ErrInvalidNumber = errors.New("invalid card number")
)

// Codec encrypts raw card numbers for storage and masks them for display.
// Encoding is deterministic per key: the same raw number always yields the
// same token, which lets the store enforce uniqueness and run substring
// filters on the encoded form. The key is loaded once at process start and
// never mutated, so a single Codec is safe for concurrent use.
type Codec struct {
	key []byte
}

// NewCodec validates the key material and builds a codec. The key must be
// 16, 24 or 32 bytes (AES-128/192/256).
func NewCodec(key []byte) (*Codec, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("card encoder key must be 16, 24 or 32 bytes, got %d", len(key))
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &Codec{key: k}, nil
}

// Encode encrypts a raw 16-digit number into the token persisted at rest.
func (c *Codec) Encode(raw string) (string, error) {
	if !isDigits(raw) || len(raw) != Length {
		return "", fmt.Errorf("%w: want %d digits", ErrInvalidNumber, Length)
	}
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}
	// 16 digits are exactly one AES block.
	ct := make([]byte, aes.BlockSize)
	block.Encrypt(ct, []byte(raw))
	return base64.StdEncoding.EncodeToString(ct), nil
}

// Decode is the exact inverse of Encode. Tokens that were not produced by
// this codec and key fail with ErrBadToken; corrupted stored data must never
// decode into a plausible-looking number.
func (c *Codec) Decode(token string) (string, error) {
	ct, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadToken, err)
	}
	if len(ct) != aes.BlockSize {
		return "", fmt.Errorf("%w: unexpected length %d", ErrBadToken, len(ct))
	}
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("create cipher: %w", err)
	}
	pt := make([]byte, aes.BlockSize)
	block.Decrypt(pt, ct)
	raw := string(pt)
	if !isDigits(raw) {
		return "", fmt.Errorf("%w: plaintext is not a card number", ErrBadToken)
	}
	return raw, nil
}

// Mask returns the fixed-width display form exposing only the last four
// digits. It is one-way; the raw number cannot be recovered from it.
func Mask(raw string) (string, error) {
	if len(raw) != Length {
		return "", fmt.Errorf("%w: want %d characters, got %d", ErrInvalidNumber, Length, len(raw))
	}
	return "**** **** **** " + raw[Length-4:], nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

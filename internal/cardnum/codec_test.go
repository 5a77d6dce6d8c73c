package cardnum

import (
	"errors"
	"strings"
	"testing"
)

var testKey = []byte("0123456789abcdef")

func TestCodecRoundTrip(t *testing.T) {
	codec, err := NewCodec(testKey)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	for _, raw := range []string{"4276550011223344", "0000000000000000", "9999999999999999"} {
		token, err := codec.Encode(raw)
		if err != nil {
			t.Fatalf("encode %s: %v", raw, err)
		}
		if token == raw {
			t.Fatalf("token must not equal raw number")
		}
		got, err := codec.Decode(token)
		if err != nil {
			t.Fatalf("decode %s: %v", token, err)
		}
		if got != raw {
			t.Fatalf("round trip mismatch: want %s got %s", raw, got)
		}
	}
}

func TestCodecDeterministic(t *testing.T) {
	codec, err := NewCodec(testKey)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	a, err := codec.Encode("4276550011223344")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	b, err := codec.Encode("4276550011223344")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if a != b {
		t.Fatalf("encoding must be deterministic per key: %s != %s", a, b)
	}
}

func TestCodecRejectsBadKey(t *testing.T) {
	if _, err := NewCodec([]byte("short")); err == nil {
		t.Fatalf("expected error for short key")
	}
	if _, err := NewCodec(nil); err == nil {
		t.Fatalf("expected error for empty key")
	}
}

func TestEncodeRejectsMalformedNumbers(t *testing.T) {
	codec, err := NewCodec(testKey)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	for _, raw := range []string{"", "1234", "12345678901234567", "427655001122334x"} {
		if _, err := codec.Encode(raw); !errors.Is(err, ErrInvalidNumber) {
			t.Fatalf("encode %q: expected ErrInvalidNumber, got %v", raw, err)
		}
	}
}

func TestDecodeRejectsForeignTokens(t *testing.T) {
	codec, err := NewCodec(testKey)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	for _, token := range []string{"", "not-base64!!", "QUJD", "AAAAAAAAAAAAAAAAAAAAAA=="} {
		if _, err := codec.Decode(token); !errors.Is(err, ErrBadToken) {
			t.Fatalf("decode %q: expected ErrBadToken, got %v", token, err)
		}
	}
}

func TestDecodeRejectsTokenFromOtherKey(t *testing.T) {
	codec, err := NewCodec(testKey)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	other, err := NewCodec([]byte("fedcba9876543210"))
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	token, err := other.Encode("4276550011223344")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	// Decrypting with the wrong key yields garbage, which must fail closed
	// rather than surface as a wrong card number.
	if raw, err := codec.Decode(token); err == nil {
		if len(raw) == Length && raw == "4276550011223344" {
			t.Fatalf("foreign token decoded to the original number")
		}
		t.Fatalf("expected ErrBadToken for foreign token, got %q", raw)
	} else if !errors.Is(err, ErrBadToken) {
		t.Fatalf("expected ErrBadToken, got %v", err)
	}
}

func TestMask(t *testing.T) {
	masked, err := Mask("4276550011223344")
	if err != nil {
		t.Fatalf("mask: %v", err)
	}
	if masked != "**** **** **** 3344" {
		t.Fatalf("unexpected mask: %s", masked)
	}
}

func TestMaskRejectsWrongLength(t *testing.T) {
	for _, raw := range []string{"", "1234", "123456789012345", "12345678901234567"} {
		if _, err := Mask(raw); !errors.Is(err, ErrInvalidNumber) {
			t.Fatalf("mask %q: expected ErrInvalidNumber, got %v", raw, err)
		}
	}
}

func TestGenerate(t *testing.T) {
	gen := NewGenerator()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		raw, err := gen.Generate()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if len(raw) != Length {
			t.Fatalf("expected %d digits, got %d", Length, len(raw))
		}
		if strings.TrimLeft(raw, "0123456789") != "" {
			t.Fatalf("non-digit output: %s", raw)
		}
		seen[raw] = true
	}
	// 50 draws from a 10^16 space colliding would point at a broken source.
	if len(seen) < 45 {
		t.Fatalf("suspiciously many collisions: %d unique of 50", len(seen))
	}
}

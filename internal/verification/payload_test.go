package verification_test

import (
	"bytes"
	"crypto/rand"
	"errors"
	"strings"
	"testing"

	"keybridge/internal/encoding"
	"keybridge/internal/verification"
)

// randB64 returns n random bytes and their unpadded base64 form.
func randB64(t *testing.T, n int) ([]byte, string) {
	t.Helper()
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}
	return b, encoding.B64(b)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, mode := range []byte{
		verification.ModeCrossUser,
		verification.ModeSelfTrusted,
		verification.ModeSelfUntrusted,
	} {
		first, firstB64 := randB64(t, 32)
		second, secondB64 := randB64(t, 32)
		secret, secretB64 := randB64(t, 16)
		flowID := "$someEventID:example.org"

		data, err := verification.Encode(mode, flowID, firstB64, secondB64, secretB64)
		if err != nil {
			t.Fatalf("mode %d: Encode: %v", mode, err)
		}
		p, err := verification.Decode(data)
		if err != nil {
			t.Fatalf("mode %d: Decode: %v", mode, err)
		}

		if p.Mode != mode {
			t.Fatalf("mode: got %d, want %d", p.Mode, mode)
		}
		if p.FlowID != flowID {
			t.Fatalf("flow id: got %q, want %q", p.FlowID, flowID)
		}
		if !bytes.Equal(p.FirstKey, first) {
			t.Fatalf("first key: got %x, want %x", p.FirstKey, first)
		}
		if !bytes.Equal(p.SecondKey, second) {
			t.Fatalf("second key: got %x, want %x", p.SecondKey, second)
		}
		if !bytes.Equal(p.SharedSecret, secret) {
			t.Fatalf("secret: got %x, want %x", p.SharedSecret, secret)
		}
	}
}

func TestEncodeLongFlowID(t *testing.T) {
	_, firstB64 := randB64(t, 32)
	_, secondB64 := randB64(t, 32)
	_, secretB64 := randB64(t, 16)

	// Largest flow id a u16 length prefix can carry.
	atLimit := strings.Repeat("a", 65535)
	data, err := verification.Encode(0, atLimit, firstB64, secondB64, secretB64)
	if err != nil {
		t.Fatalf("Encode at limit: %v", err)
	}
	p, err := verification.Decode(data)
	if err != nil {
		t.Fatalf("Decode at limit: %v", err)
	}
	if p.FlowID != atLimit {
		t.Fatal("flow id mismatch at the length limit")
	}

	if _, err := verification.Encode(0, atLimit+"a", firstB64, secondB64, secretB64); err == nil {
		t.Fatal("expected an error for a flow id past the u16 limit")
	}
}

func TestEncodeRejectsBadBase64(t *testing.T) {
	_, good := randB64(t, 32)
	if _, err := verification.Encode(0, "flow", "not base64!!", good, good); err == nil {
		t.Fatal("expected an error for an invalid first key")
	}
	if _, err := verification.Encode(0, "flow", good, "not base64!!", good); err == nil {
		t.Fatal("expected an error for an invalid second key")
	}
	if _, err := verification.Encode(0, "flow", good, good, "not base64!!"); err == nil {
		t.Fatal("expected an error for an invalid shared secret")
	}
}

func TestDecodeRejectsBadTag(t *testing.T) {
	_, firstB64 := randB64(t, 32)
	_, secondB64 := randB64(t, 32)
	_, secretB64 := randB64(t, 16)

	data, err := verification.Encode(0, "flow", firstB64, secondB64, secretB64)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	data[0] = 'X'

	if _, err := verification.Decode(data); !errors.Is(err, verification.ErrTag) {
		t.Fatalf("got %v, want ErrTag", err)
	}
	if _, err := verification.Decode([]byte("short")); !errors.Is(err, verification.ErrTag) {
		t.Fatalf("short buffer: got %v, want ErrTag", err)
	}
}

func TestDecodeRejectsBadVersionAndMode(t *testing.T) {
	_, firstB64 := randB64(t, 32)
	_, secondB64 := randB64(t, 32)
	_, secretB64 := randB64(t, 16)

	data, err := verification.Encode(0, "flow", firstB64, secondB64, secretB64)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	bad := append([]byte(nil), data...)
	bad[6] = 0x1
	if _, err := verification.Decode(bad); !errors.Is(err, verification.ErrVersion) {
		t.Fatalf("got %v, want ErrVersion", err)
	}

	bad = append([]byte(nil), data...)
	bad[7] = verification.MaxMode + 1
	if _, err := verification.Decode(bad); !errors.Is(err, verification.ErrMode) {
		t.Fatalf("got %v, want ErrMode", err)
	}
}

func TestDecodeRejectsTruncation(t *testing.T) {
	_, firstB64 := randB64(t, 32)
	_, secondB64 := randB64(t, 32)
	_, secretB64 := randB64(t, 16)

	data, err := verification.Encode(0, "flow", firstB64, secondB64, secretB64)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// Whole suffixes: lost secret bytes below the minimum, lost keys, lost
	// flow id, lost length prefix.
	for _, n := range []int{9, 40, 70, len(data) - 9} {
		if _, err := verification.Decode(data[:len(data)-n]); err == nil {
			t.Fatalf("expected an error with %d trailing bytes removed", n)
		}
	}
}

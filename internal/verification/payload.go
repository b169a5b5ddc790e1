package verification

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"keybridge/internal/encoding"
)

// Wire layout, big-endian:
//
//	"MATRIX" | version | mode | flow id length (u16) | flow id |
//	first key (32) | second key (32) | shared secret (remainder)
const (
	// Version is the only record version this codec reads or writes.
	Version byte = 0x2
	// MaxMode is the highest mode byte the decoder accepts.
	MaxMode byte = 0x2

	keySize = 32
	// minSecretLen is the smallest shared secret the decoder accepts; a
	// shorter secret is trivially guessable by the other side.
	minSecretLen = 8
)

// magic tags every verification record. A scanned payload that does not
// start with it is not ours.
var magic = []byte("MATRIX")

// Verification modes.
const (
	// ModeCrossUser verifies another user's device.
	ModeCrossUser byte = 0x0
	// ModeSelfTrusted verifies one of our own devices when the scanning
	// device already trusts the cross-signing identity.
	ModeSelfTrusted byte = 0x1
	// ModeSelfUntrusted verifies one of our own devices when the scanning
	// device does not yet trust the cross-signing identity.
	ModeSelfUntrusted byte = 0x2
)

var (
	// ErrTag is returned when a buffer does not start with the magic tag.
	ErrTag = errors.New("verification payload does not start with the MATRIX tag")
	// ErrVersion is returned for any record version other than Version.
	ErrVersion = errors.New("unsupported verification payload version")
	// ErrMode is returned when the mode byte exceeds MaxMode.
	ErrMode = errors.New("unsupported verification mode")
)

// Payload is a decoded verification record. It is a transient handshake
// artifact: built once per attempt, sent or shown, then discarded.
type Payload struct {
	Mode   byte
	FlowID string

	// FirstKey and SecondKey are the two ed25519 device/master keys being
	// cross-checked; which is which depends on Mode.
	FirstKey  []byte
	SecondKey []byte

	// SharedSecret proves to the shown side that the scanning side really
	// scanned this code.
	SharedSecret []byte
}

// Encode frames a verification record. The key and secret arguments are
// unpadded base64 as they appear in device keys; the wire format carries
// their raw bytes.
func Encode(mode byte, flowID, firstKey, secondKey, sharedSecret string) ([]byte, error) {
	if len(flowID) > math.MaxUint16 {
		return nil, fmt.Errorf("flow id too long for a u16 length prefix: %d bytes", len(flowID))
	}
	first, err := encoding.DecodeB64(firstKey)
	if err != nil {
		return nil, fmt.Errorf("first key is not valid base64: %w", err)
	}
	second, err := encoding.DecodeB64(secondKey)
	if err != nil {
		return nil, fmt.Errorf("second key is not valid base64: %w", err)
	}
	secret, err := encoding.DecodeB64(sharedSecret)
	if err != nil {
		return nil, fmt.Errorf("shared secret is not valid base64: %w", err)
	}

	data := make([]byte, 0, len(magic)+2+2+len(flowID)+len(first)+len(second)+len(secret))
	data = append(data, magic...)
	data = append(data, Version, mode)
	data = encoding.PutU16(data, uint16(len(flowID)))
	data = append(data, flowID...)
	data = append(data, first...)
	data = append(data, second...)
	data = append(data, secret...)
	return data, nil
}

// Decode parses a verification record and validates its structure.
//
// The two key fields carry no length prefixes on the wire; they are fixed at
// 32 bytes (raw ed25519 keys) and the remainder of the buffer is the shared
// secret. If key sizes ever become variable the format needs a revision, as
// nothing in the record can disambiguate the boundaries.
func Decode(data []byte) (*Payload, error) {
	if len(data) < len(magic)+2 || !bytes.HasPrefix(data, magic) {
		return nil, ErrTag
	}
	if data[6] != Version {
		return nil, ErrVersion
	}
	mode := data[7]
	if mode > MaxMode {
		return nil, ErrMode
	}

	rest := data[8:]
	if len(rest) < 2 {
		return nil, fmt.Errorf("verification payload truncated before the flow id length")
	}
	flowIDLen := int(encoding.U16(rest))
	rest = rest[2:]
	if len(rest) < flowIDLen+2*keySize+minSecretLen {
		return nil, fmt.Errorf("verification payload truncated: %d bytes after the header", len(rest))
	}
	if !utf8.Valid(rest[:flowIDLen]) {
		return nil, fmt.Errorf("verification flow id is not valid UTF-8")
	}
	flowID := string(rest[:flowIDLen])
	rest = rest[flowIDLen:]

	p := &Payload{
		Mode:         mode,
		FlowID:       flowID,
		FirstKey:     append([]byte(nil), rest[:keySize]...),
		SecondKey:    append([]byte(nil), rest[keySize:2*keySize]...),
		SharedSecret: append([]byte(nil), rest[2*keySize:]...),
	}
	return p, nil
}

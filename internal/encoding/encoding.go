package encoding

import (
	"encoding/base64"
	"encoding/binary"
	"strings"
)

// B64 returns unpadded standard-alphabet base64.
func B64(b []byte) string { return base64.RawStdEncoding.EncodeToString(b) }

// DecodeB64 decodes standard-alphabet base64, padded or not.
func DecodeB64(s string) ([]byte, error) {
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}

// PutU16 appends v to b in big-endian order.
func PutU16(b []byte, v uint16) []byte { return binary.BigEndian.AppendUint16(b, v) }

// PutU32 appends v to b in big-endian order.
func PutU32(b []byte, v uint32) []byte { return binary.BigEndian.AppendUint32(b, v) }

// U16 reads a big-endian uint16 from the front of b.
func U16(b []byte) uint16 { return binary.BigEndian.Uint16(b) }

// U32 reads a big-endian uint32 from the front of b.
func U32(b []byte) uint32 { return binary.BigEndian.Uint32(b) }

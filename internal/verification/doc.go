// Package verification encodes and decodes the binary record exchanged
// during interactive device verification, both as a raw buffer and as a QR
// code shown on one device and scanned by the other.
//
// The record is a fixed header (MATRIX tag, version, mode, length-prefixed
// flow id) followed by two raw ed25519 keys and a shared secret. Structure
// is validated strictly on decode; what the keys and the mode mean is the
// verification flow's business, not this package's.
package verification

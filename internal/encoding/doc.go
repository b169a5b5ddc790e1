// Package encoding holds the framing primitives shared by the wire codecs:
// unpadded standard base64 and fixed-width big-endian integers.
package encoding

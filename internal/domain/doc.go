// Package domain defines the plain identifier and record types shared across
// the exchange core. It contains data only; behaviour lives in the codec and
// request packages.
package domain

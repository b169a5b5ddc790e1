// Package transport implements the HTTP side of the exchange service: one
// endpoint per outgoing request kind, JSON bodies, typed responses back.
package transport

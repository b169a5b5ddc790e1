// Package exchange tracks in-flight outgoing requests and resolves them
// against the responses a Transport returns, keyed by request id.
package exchange

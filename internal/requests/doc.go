// Package requests models the outgoing network operations of the exchange
// core and the identity scheme that correlates each asynchronously delivered
// response back to the operation that triggered it.
//
// The request and response kinds are sealed sums: every variant lives here,
// and dispatch is an exhaustive type switch, so adding a kind is a
// compile-time-visible change at every consumer. The package does no I/O and
// keeps no state; a response satisfies a request exactly when the transport
// call that was given the request returned it, and keeping that mapping is
// the caller's job (see services/exchange).
package requests

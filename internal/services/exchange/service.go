package exchange

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"keybridge/internal/requests"
)

// Transport performs one outgoing request against the homeserver and hands
// back the matching response view. Implementations do the network I/O; the
// exchange service only correlates.
type Transport interface {
	SendRequest(ctx context.Context, req *requests.OutgoingRequest) (requests.IncomingResponse, error)
}

// Service owns the mapping from request id to in-flight request. A request
// stays pending from Send until its transport call returns or the operation
// is abandoned, so a stalled flow (say, a verification waiting on a keys
// upload) can be resumed or cleaned up by id.
type Service struct {
	transport Transport

	mu      sync.Mutex
	pending map[uuid.UUID]*requests.OutgoingRequest
}

// New returns an exchange service sending through transport.
func New(transport Transport) *Service {
	return &Service{
		transport: transport,
		pending:   make(map[uuid.UUID]*requests.OutgoingRequest),
	}
}

// Send tracks req as pending, performs it, and resolves it when the
// transport call returns. On transport failure the request stays pending so
// the caller can retry or abandon it.
func (s *Service) Send(ctx context.Context, req *requests.OutgoingRequest) (requests.IncomingResponse, error) {
	s.mu.Lock()
	s.pending[req.RequestID()] = req
	s.mu.Unlock()

	resp, err := s.transport.SendRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	delete(s.pending, req.RequestID())
	s.mu.Unlock()
	return resp, nil
}

// Pending returns the requests still waiting on a response.
func (s *Service) Pending() []*requests.OutgoingRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*requests.OutgoingRequest, 0, len(s.pending))
	for _, req := range s.pending {
		out = append(out, req)
	}
	return out
}

// Abandon drops a pending request, reporting whether it was tracked.
func (s *Service) Abandon(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.pending[id]
	delete(s.pending, id)
	return ok
}

package requests

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"keybridge/internal/domain"
)

// OutgoingRequests is the closed set of request payloads the exchange core
// can emit. Every implementation lives in this package; dispatch sites type
// switch over the concrete types and treat an unknown type as a bug.
type OutgoingRequests interface {
	isOutgoingRequest()
}

// KeysUploadRequest publishes our device keys and fresh one-time keys.
type KeysUploadRequest struct {
	// DeviceKeys is the signed device key object, absent when only
	// one-time keys are being replenished.
	DeviceKeys json.RawMessage `json:"device_keys,omitempty"`
	// OneTimeKeys maps "algorithm:key_id" to a signed one-time key.
	OneTimeKeys map[string]json.RawMessage `json:"one_time_keys,omitempty"`
}

// KeysQueryRequest fetches device and cross-signing keys of other users.
type KeysQueryRequest struct {
	// Timeout bounds how long the server may spend fetching keys from
	// remote servers; zero means the server default.
	Timeout time.Duration
	// DeviceKeys lists the users to query. An empty device list requests
	// every device of that user.
	DeviceKeys map[domain.UserID][]domain.DeviceID
	// Token is the sync token that triggered this query, when the query is
	// a reaction to a device-change notification.
	Token string
}

// NewKeysQueryRequest queries the given users with no timeout and no token.
func NewKeysQueryRequest(deviceKeys map[domain.UserID][]domain.DeviceID) *KeysQueryRequest {
	return &KeysQueryRequest{DeviceKeys: deviceKeys}
}

// ToDeviceRequest sends an event directly to devices, bypassing rooms. It
// carries key requests, key forwards and interactive verification events.
type ToDeviceRequest struct {
	// EventType applies to every message in the request.
	EventType domain.EventType
	// TxnID deduplicates the request server-side and doubles as the
	// correlation id of the wrapping OutgoingRequest.
	TxnID uuid.UUID
	// Messages fans out per user and per device. Map semantics guarantee
	// each (user, device) pair appears at most once.
	Messages map[domain.UserID]map[domain.DeviceTarget]json.RawMessage
}

// NewToDeviceRequest builds a to-device request with a fresh transaction id
// for a single recipient device.
//
// The content value is produced by this client and must always serialize;
// failure to do so is a bug, so it panics rather than returning an error.
func NewToDeviceRequest(recipient domain.UserID, target domain.DeviceTarget, eventType domain.EventType, content any) *ToDeviceRequest {
	t := &ToDeviceRequest{
		EventType: eventType,
		TxnID:     uuid.New(),
		Messages:  make(map[domain.UserID]map[domain.DeviceTarget]json.RawMessage),
	}
	t.AddMessage(recipient, target, content)
	return t
}

// AddMessage fans the request out to another device. All messages in one
// request share the request's event type. Panics if content does not
// serialize, same as NewToDeviceRequest.
func (t *ToDeviceRequest) AddMessage(recipient domain.UserID, target domain.DeviceTarget, content any) {
	raw, err := json.Marshal(content)
	if err != nil {
		panic(fmt.Sprintf("requests: cannot serialize to-device content: %v", err))
	}
	if t.Messages[recipient] == nil {
		t.Messages[recipient] = make(map[domain.DeviceTarget]json.RawMessage)
	}
	t.Messages[recipient][target] = raw
}

// TxnIDString returns the transaction id in its wire form.
func (t *ToDeviceRequest) TxnIDString() string { return t.TxnID.String() }

// MessageCount is the number of (user, device) messages in the request. A
// wildcard device target still counts once, so this can be fewer than the
// number of devices that end up receiving the event.
func (t *ToDeviceRequest) MessageCount() int {
	n := 0
	for _, devices := range t.Messages {
		n += len(devices)
	}
	return n
}

// TransactionID implements OutgoingVerificationRequest.
func (t *ToDeviceRequest) TransactionID() uuid.UUID { return t.TxnID }

// SignatureUploadRequest uploads cross-signing signatures after a successful
// device or user verification.
type SignatureUploadRequest struct {
	// SignedKeys maps user id, then key id, to the signed key object.
	SignedKeys map[domain.UserID]map[string]json.RawMessage
}

// RoomMessageRequest sends an event into a room, used for in-room
// interactive verification.
type RoomMessageRequest struct {
	// RoomID is the room to send the event to.
	RoomID domain.RoomID
	// TxnID deduplicates the request server-side and doubles as the
	// correlation id of the wrapping OutgoingRequest.
	TxnID uuid.UUID
	// EventType of Content.
	EventType domain.EventType
	// Content is the serialized event content.
	Content json.RawMessage
}

// NewRoomMessageRequest builds a room message request with a fresh
// transaction id. Panics if content does not serialize; see
// NewToDeviceRequest.
func NewRoomMessageRequest(roomID domain.RoomID, eventType domain.EventType, content any) *RoomMessageRequest {
	raw, err := json.Marshal(content)
	if err != nil {
		panic(fmt.Sprintf("requests: cannot serialize room message content: %v", err))
	}
	return &RoomMessageRequest{
		RoomID:    roomID,
		TxnID:     uuid.New(),
		EventType: eventType,
		Content:   raw,
	}
}

// TransactionID implements OutgoingVerificationRequest.
func (r *RoomMessageRequest) TransactionID() uuid.UUID { return r.TxnID }

func (*KeysUploadRequest) isOutgoingRequest()      {}
func (*KeysQueryRequest) isOutgoingRequest()       {}
func (*ToDeviceRequest) isOutgoingRequest()        {}
func (*SignatureUploadRequest) isOutgoingRequest() {}
func (*RoomMessageRequest) isOutgoingRequest()     {}

// OutgoingVerificationRequest is the subset of payloads a verification flow
// can emit: to-device events or in-room messages. Its transaction id is the
// id the wrapping OutgoingRequest correlates on, so the remote party's echo
// can be matched by the messaging protocol as well.
type OutgoingVerificationRequest interface {
	OutgoingRequests
	TransactionID() uuid.UUID
}

// OutgoingRequest pairs a request payload with the unique id a response will
// be matched against. The id is minted at construction and never changes.
type OutgoingRequest struct {
	requestID uuid.UUID
	request   OutgoingRequests
}

// NewOutgoingRequest wraps a payload with a correlation id.
//
// To-device and room message payloads reuse their transaction id, so the
// protocol-level echo and the transport-level response correlate on the same
// value. Everything else gets a fresh random id. A v4 uuid is 122 random
// bits from the process CSPRNG: unique under concurrent generation without
// any shared counter, with negligible collision probability.
func NewOutgoingRequest(request OutgoingRequests) *OutgoingRequest {
	switch r := request.(type) {
	case *ToDeviceRequest:
		return &OutgoingRequest{requestID: r.TxnID, request: r}
	case *RoomMessageRequest:
		return &OutgoingRequest{requestID: r.TxnID, request: r}
	case *KeysUploadRequest, *KeysQueryRequest, *SignatureUploadRequest:
		return &OutgoingRequest{requestID: uuid.New(), request: request}
	}
	panic(fmt.Sprintf("requests: unknown outgoing request type %T", request))
}

// RequestID returns the unique id a response to this request carries.
func (r *OutgoingRequest) RequestID() uuid.UUID { return r.requestID }

// Request returns the underlying payload for dispatch.
func (r *OutgoingRequest) Request() OutgoingRequests { return r.request }

// ToDevice returns the payload as a to-device request. The second return is
// false for every other payload kind; this is a safe downcast, not an error.
func (r *OutgoingRequest) ToDevice() (*ToDeviceRequest, bool) {
	t, ok := r.request.(*ToDeviceRequest)
	return t, ok
}

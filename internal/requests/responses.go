package requests

import (
	"encoding/json"

	"keybridge/internal/domain"
)

// IncomingResponse is the closed set of response views the transport can
// hand back. Values are always pointers into transport-owned responses; the
// view borrows, it never owns, and is only valid while the owner keeps the
// response alive.
type IncomingResponse interface {
	isIncomingResponse()
}

// KeysUploadResponse reports how many one-time keys the server now holds
// for us, keyed by algorithm.
type KeysUploadResponse struct {
	OneTimeKeyCounts map[string]int `json:"one_time_key_counts"`
}

// KeysQueryResponse carries the device and cross-signing keys of the
// queried users.
type KeysQueryResponse struct {
	DeviceKeys      map[domain.UserID]map[domain.DeviceID]json.RawMessage `json:"device_keys,omitempty"`
	MasterKeys      map[domain.UserID]json.RawMessage                     `json:"master_keys,omitempty"`
	SelfSigningKeys map[domain.UserID]json.RawMessage                     `json:"self_signing_keys,omitempty"`
	UserSigningKeys map[domain.UserID]json.RawMessage                     `json:"user_signing_keys,omitempty"`
	// Failures maps unreachable remote servers to their error.
	Failures map[string]json.RawMessage `json:"failures,omitempty"`
}

// ToDeviceResponse is empty; the server acknowledges and nothing more.
type ToDeviceResponse struct{}

// KeysClaimResponse hands out claimed one-time keys of other users so new
// sessions can be established.
type KeysClaimResponse struct {
	OneTimeKeys map[domain.UserID]map[domain.DeviceID]json.RawMessage `json:"one_time_keys,omitempty"`
	Failures    map[string]json.RawMessage                            `json:"failures,omitempty"`
}

// SigningKeysUploadResponse acknowledges the upload of the public
// cross-signing identity.
type SigningKeysUploadResponse struct{}

// SignatureUploadResponse lists the signatures the server rejected.
type SignatureUploadResponse struct {
	Failures map[domain.UserID]map[string]json.RawMessage `json:"failures,omitempty"`
}

// RoomMessageResponse carries the event id of the sent room message.
type RoomMessageResponse struct {
	EventID string `json:"event_id"`
}

func (*KeysUploadResponse) isIncomingResponse()        {}
func (*KeysQueryResponse) isIncomingResponse()         {}
func (*ToDeviceResponse) isIncomingResponse()          {}
func (*KeysClaimResponse) isIncomingResponse()         {}
func (*SigningKeysUploadResponse) isIncomingResponse() {}
func (*SignatureUploadResponse) isIncomingResponse()   {}
func (*RoomMessageResponse) isIncomingResponse()       {}

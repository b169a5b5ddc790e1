package domain

// UserID identifies a user on the homeserver, e.g. "@alice:example.org".
type UserID string

// DeviceID identifies one device belonging to a user.
type DeviceID string

// RoomID identifies a room, e.g. "!test:localhost".
type RoomID string

// EventType names an event schema, e.g. "m.room.encrypted".
type EventType string

// DeviceTarget addresses either a single device or every device of a user
// inside a to-device request.
type DeviceTarget string

// AllDevices targets every device of a user in one to-device message.
const AllDevices DeviceTarget = "*"

// Target wraps a DeviceID as a to-device recipient.
func (d DeviceID) Target() DeviceTarget { return DeviceTarget(d) }

// ExportedRoomKey is one room decryption key as produced by the group-session
// engine. The JSON shape is the portable key-export record; this package only
// carries it, the export codec seals and opens lists of them.
type ExportedRoomKey struct {
	Algorithm         string            `json:"algorithm"`
	RoomID            RoomID            `json:"room_id"`
	SenderKey         string            `json:"sender_key"`
	SessionID         string            `json:"session_id"`
	SessionKey        string            `json:"session_key"`
	SenderClaimedKeys map[string]string `json:"sender_claimed_keys"`
	// ForwardingChains lists the curve25519 keys of everyone who forwarded
	// this session to us, oldest first. Empty for sessions we created.
	ForwardingChains []string `json:"forwarding_curve25519_key_chain"`
}

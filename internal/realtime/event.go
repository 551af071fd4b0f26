package realtime

import "encoding/json"

// Envelope is the wire frame for every real-time event, inbound and
// outbound. Data is kept raw so the relay can forward payloads without
// interpreting them.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Inbound event names handled by the socket layer itself rather than the
// relay forwarding table.
const (
	EventRegisterUsername = "register-username"
	EventJoin             = "join"
	EventSendMessage      = "send_message"
	EventReceiveMessage   = "receive_message"
)

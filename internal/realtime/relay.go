package realtime

import (
	"encoding/json"
	"log/slog"
)

// forwardAs maps each inbound signaling event to the name it is
// delivered under on the target's connection. Every entry follows the
// same one-hop rule: look up data.to in the registry and forward the
// payload untouched. The events differ only in meaning to the two
// peers, not in relay mechanics.
var forwardAs = map[string]string{
	"call-user":     "call-made",
	"call-accepted": "call-accepted",
	"call-rejected": "call-rejected",
	"offer":         "offer",
	"answer":        "answer",
	"ice-candidate": "ice-candidate",
	"end-call":      "end-call",
}

// Relay forwards real-time events between live connections. It holds no
// state of its own: a target without a registered connection means the
// event is dropped. Durable records, if any, are written by the request
// path, never here.
type Relay struct {
	Registry *Registry
	Rooms    *RoomHub
	Logger   *slog.Logger
}

type targetPayload struct {
	To string `json:"to"`
}

type chatPayload struct {
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
}

// HandleEvent dispatches one inbound event from the connection owned by
// `from`. Unknown event names are ignored.
func (r *Relay) HandleEvent(from string, env Envelope) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if env.Event == EventSendMessage {
		var p chatPayload
		if err := json.Unmarshal(env.Data, &p); err != nil || p.Sender == "" || p.Receiver == "" {
			logger.Debug("relay: malformed chat payload", "from", from)
			return
		}
		// The sender field must match the identity authenticated at the
		// handshake. A connection never speaks for anyone else.
		if p.Sender != from {
			logger.Warn("relay: sender mismatch", "from", from, "claimed", p.Sender)
			return
		}
		r.Rooms.Broadcast(RoomKey(p.Sender, p.Receiver), Envelope{
			Event: EventReceiveMessage,
			Data:  env.Data,
		})
		return
	}

	out, ok := forwardAs[env.Event]
	if !ok {
		logger.Debug("relay: unknown event", "event", env.Event, "from", from)
		return
	}

	var p targetPayload
	if err := json.Unmarshal(env.Data, &p); err != nil || p.To == "" {
		logger.Debug("relay: missing target", "event", env.Event, "from", from)
		return
	}

	conn, ok := r.Registry.Lookup(p.To)
	if !ok {
		// Target not connected: drop. No buffering, no retry.
		logger.Debug("relay: target offline", "event", env.Event, "from", from, "to", p.To)
		return
	}

	if err := conn.Send(Envelope{Event: out, Data: env.Data}); err != nil {
		logger.Debug("relay: send failed", "event", out, "to", p.To, "err", err)
	}
}

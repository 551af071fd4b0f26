package realtime

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Handler upgrades authenticated HTTP requests to websocket sessions and
// wires them into the registry, room hub and relay.
//
// Identity is established at handshake time from the web session; a
// client cannot speak for a username it did not authenticate as.
type Handler struct {
	Registry *Registry
	Rooms    *RoomHub
	Relay    *Relay
	Logger   *slog.Logger

	// Identify resolves the request's session to a username. Injected
	// by the caller to keep this package free of cookie mechanics.
	Identify func(r *http.Request) (string, error)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}

	username, err := h.Identify(r)
	if err != nil || username == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Debug("websocket upgrade failed", "err", err)
		return
	}

	c := &client{
		id:       uuid.NewString(),
		username: username,
		conn:     ws,
		send:     make(chan []byte, sendBuffer),
		logger:   logger,
	}

	h.Registry.Register(username, c)
	logger.Debug("websocket connected", "user", username, "conn", c.id)

	go c.writePump()
	go c.readPump(h.dispatch, h.disconnect)
}

type registerPayload struct {
	Username string `json:"username"`
}

type joinPayload struct {
	With string `json:"with"`
}

func (h *Handler) dispatch(c *client, env Envelope) {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}

	switch env.Event {
	case EventRegisterUsername:
		// Honored only when it matches the handshake identity; the
		// client cannot re-register as someone else.
		var p registerPayload
		if err := json.Unmarshal(env.Data, &p); err != nil || p.Username != c.username {
			logger.Warn("websocket: register-username mismatch", "user", c.username)
			return
		}
		h.Registry.Register(c.username, c)
	case EventJoin:
		var p joinPayload
		if err := json.Unmarshal(env.Data, &p); err != nil || p.With == "" {
			return
		}
		h.Rooms.Join(RoomKey(c.username, p.With), c)
	default:
		h.Relay.HandleEvent(c.username, env)
	}
}

func (h *Handler) disconnect(c *client) {
	h.Registry.UnregisterConn(c)
	h.Rooms.LeaveAll(c)
	if h.Logger != nil {
		h.Logger.Debug("websocket disconnected", "user", c.username, "conn", c.id)
	}
}

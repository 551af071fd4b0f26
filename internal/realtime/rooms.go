package realtime

import (
	"sort"
	"strings"
	"sync"
)

// RoomKey derives the broadcast channel shared by exactly two users. The
// key is order-independent so both sides compute the same room.
func RoomKey(user1, user2 string) string {
	pair := []string{user1, user2}
	sort.Strings(pair)
	return strings.Join(pair, "__")
}

// RoomHub tracks which connections are subscribed to which two-party
// rooms. Membership follows the transport: connections join explicitly
// and are dropped wholesale on disconnect.
type RoomHub struct {
	mu    sync.RWMutex
	rooms map[string]map[string]Conn // room key -> conn ID -> conn
}

func NewRoomHub() *RoomHub {
	return &RoomHub{rooms: make(map[string]map[string]Conn)}
}

func (h *RoomHub) Join(room string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[string]Conn)
	}
	h.rooms[room][c.ID()] = c
}

func (h *RoomHub) Leave(room string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[room]; ok {
		delete(conns, c.ID())
		if len(conns) == 0 {
			delete(h.rooms, room)
		}
	}
}

// LeaveAll removes c from every room it joined.
func (h *RoomHub) LeaveAll(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room, conns := range h.rooms {
		delete(conns, c.ID())
		if len(conns) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Broadcast sends env to every connection subscribed to room. Send
// failures are ignored here; broken connections are reaped by their own
// read/write pumps.
func (h *RoomHub) Broadcast(room string, env Envelope) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.rooms[room] {
		_ = c.Send(env)
	}
}

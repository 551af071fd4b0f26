package realtime

import "sync"

// Conn is a live connection handle. The registry stores and compares
// handles by ID; it never opens or closes the underlying connection.
type Conn interface {
	ID() string
	Send(Envelope) error
}

// Registry maps usernames to their active connection. At most one entry
// per username: a later registration (say, a second browser tab)
// replaces the earlier one.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]Conn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]Conn)}
}

// Register binds username to c, overwriting any previous binding.
func (r *Registry) Register(username string, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[username] = c
}

// UnregisterConn removes the entry currently bound to c, if any. It is a
// no-op when c was already replaced by a newer connection for the same
// user, so a late disconnect cannot evict the new session.
func (r *Registry) UnregisterConn(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for username, cur := range r.conns {
		if cur.ID() == c.ID() {
			delete(r.conns, username)
			return
		}
	}
}

// Lookup returns the connection registered for username, if any.
func (r *Registry) Lookup(username string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[username]
	return c, ok
}

// Clear drops every binding. Called at server shutdown.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns = make(map[string]Conn)
}

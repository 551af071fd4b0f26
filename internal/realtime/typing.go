package realtime

import (
	"context"
	"sync"
	"time"
)

// TypingWindow is how long a keystroke signal counts as "still typing".
const TypingWindow = 3 * time.Second

// TypingStore records the last keystroke signal per ordered
// (sender, recipient) pair. An entry older than TypingWindow reads as
// not typing; eviction is a memory concern, not a correctness one.
type TypingStore interface {
	MarkTyping(ctx context.Context, sender, recipient string) error
	IsTyping(ctx context.Context, sender, recipient string) (bool, error)
}

type typingKey struct {
	sender    string
	recipient string
}

// MemoryTypingStore keeps typing timestamps in process memory. A
// periodic sweep bounds growth; reads never depend on the sweep having
// run.
type MemoryTypingStore struct {
	mu      sync.Mutex
	entries map[typingKey]time.Time
	now     func() time.Time
}

func NewMemoryTypingStore() *MemoryTypingStore {
	return &MemoryTypingStore{
		entries: make(map[typingKey]time.Time),
		now:     time.Now,
	}
}

func (s *MemoryTypingStore) MarkTyping(_ context.Context, sender, recipient string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[typingKey{sender, recipient}] = s.now()
	return nil
}

func (s *MemoryTypingStore) IsTyping(_ context.Context, sender, recipient string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.entries[typingKey{sender, recipient}]
	if !ok {
		return false, nil
	}
	return s.now().Sub(t) < TypingWindow, nil
}

// Sweep drops expired entries and reports how many were removed.
func (s *MemoryTypingStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-TypingWindow)
	removed := 0
	for k, t := range s.entries {
		if !t.After(cutoff) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

// RunSweeper sweeps on the given interval until ctx is canceled.
func (s *MemoryTypingStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

package httpapi

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"PartnerWebserver/internal/auth"
	"PartnerWebserver/internal/domain"
)

type authCtxKey int

const (
	authUserKey authCtxKey = iota
	authSessionKey
)

func (a *api) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(auth.SessionCookieName)
		if err != nil || c.Value == "" {
			WriteDomainError(w, domain.ErrUnauthorized)
			return
		}

		sessID, ok := a.cookieCodec.DecodeSessionID(c.Value)
		if !ok {
			WriteDomainError(w, domain.ErrUnauthorized)
			return
		}

		u, err := a.authSvc.GetUserForSession(r.Context(), sessID)
		if err != nil {
			WriteDomainError(w, err)
			return
		}

		a.touchLastSeen(r.Context(), u.Username)

		ctx := context.WithValue(r.Context(), authUserKey, u)
		ctx = context.WithValue(ctx, authSessionKey, sessID)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func CurrentUser(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(authUserKey).(domain.User)
	return u, ok
}

func CurrentSessionID(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(authSessionKey).(string)
	return s, ok
}

// lastSeenInterval throttles per-request presence writes. Anything well
// under the 120 s online window keeps the flag accurate.
const lastSeenInterval = 30 * time.Second

type lastSeenTracker struct {
	mu   sync.Mutex
	seen map[string]time.Time
}

// touchLastSeen updates the user's last-seen timestamp at most once per
// interval. Failures are ignored; presence is best effort.
func (a *api) touchLastSeen(ctx context.Context, username string) {
	if a.lastSeenStore == nil {
		return
	}

	now := time.Now()
	a.lastSeen.mu.Lock()
	if prev, ok := a.lastSeen.seen[username]; ok && now.Sub(prev) < lastSeenInterval {
		a.lastSeen.mu.Unlock()
		return
	}
	if a.lastSeen.seen == nil {
		a.lastSeen.seen = make(map[string]time.Time)
	}
	a.lastSeen.seen[username] = now
	a.lastSeen.mu.Unlock()

	_ = a.lastSeenStore.SetLastSeen(ctx, username, now)
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			ip := strings.TrimSpace(parts[0])
			if ip != "" {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

package auth

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Gate guards page routes that need a signed-in admin. Requests without a
// valid session are redirected to the sign-in page and the wrapped handler is
// never invoked.
//
// Gate is itself a SessionValidator: validations are cached per token for a
// short TTL and dropped as soon as a sign-out is published on the session
// events, so a signed-out token is rejected on the very next request. A
// validation that was in flight when a sign-out arrived is not cached.
type Gate struct {
	sv        SessionValidator
	loginPath string
	ttl       time.Duration
	now       func() time.Time

	mu    sync.Mutex
	cache map[string]cachedPrincipal
	// signOuts counts sign-out events; results from before the latest one are
	// not cached.
	signOuts uint64

	unsubscribe func()
}

type cachedPrincipal struct {
	p       *Principal
	validTo time.Time
}

const defaultGateCacheTTL = 30 * time.Second

// NewGate subscribes to events (which may be nil) for cache invalidation.
func NewGate(sv SessionValidator, events *SessionEvents, loginPath string) *Gate {
	g := &Gate{
		sv:        sv,
		loginPath: loginPath,
		ttl:       defaultGateCacheTTL,
		now:       time.Now,
		cache:     make(map[string]cachedPrincipal),
	}
	g.unsubscribe = func() {}
	if events != nil {
		g.unsubscribe = events.Subscribe(g.onSessionEvent)
	}
	return g
}

// Close detaches the gate from the session events.
func (g *Gate) Close() {
	g.unsubscribe()
}

func (g *Gate) onSessionEvent(ev SessionEvent) {
	if ev.Kind != SignedOut {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.signOuts++
	for token, c := range g.cache {
		if c.p.SessionID == ev.Principal.SessionID ||
			(ev.Principal.SessionID == "" && c.p.AdminID == ev.Principal.AdminID) {
			delete(g.cache, token)
		}
	}
}

// ValidateSession implements SessionValidator with caching.
func (g *Gate) ValidateSession(ctx context.Context, token string) (*Principal, error) {
	now := g.now()

	g.mu.Lock()
	c, ok := g.cache[token]
	if ok && now.Before(c.validTo) {
		g.mu.Unlock()
		return c.p, nil
	}
	delete(g.cache, token)
	gen := g.signOuts
	g.mu.Unlock()

	p, err := g.sv.ValidateSession(ctx, token)
	if err != nil {
		return nil, err
	}

	validTo := now.Add(g.ttl)
	if !p.ExpiresAt.IsZero() && p.ExpiresAt.Before(validTo) {
		validTo = p.ExpiresAt
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.signOuts != gen {
		// A sign-out landed during the check; p may already be revoked.
		return nil, ErrInvalidToken
	}
	g.cache[token] = cachedPrincipal{p: p, validTo: validTo}
	return p, nil
}

// Principal returns the signed-in admin for r, if any.
func (g *Gate) Principal(r *http.Request) (*Principal, bool) {
	cookie, err := r.Cookie(SessionCookieName())
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	p, err := g.ValidateSession(r.Context(), cookie.Value)
	if err != nil {
		return nil, false
	}
	return p, true
}

// Require redirects to the sign-in page unless a session is present.
func (g *Gate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := g.Principal(r)
		if !ok {
			http.Redirect(w, r, g.loginPath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}

// RedirectIfSignedIn sends an already signed-in admin to target (used by the
// sign-in page).
func (g *Gate) RedirectIfSignedIn(target string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := g.Principal(r); ok {
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

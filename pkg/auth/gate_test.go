package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gateRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName(), Value: token})
	}
	return req
}

func TestGate_Require_NoSessionRedirectsAndNeverRenders(t *testing.T) {
	g := NewGate(&mockValidator{}, nil, "/login")
	defer g.Close()

	rendered := false
	h := g.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rendered = true
		_, _ = w.Write([]byte("dashboard"))
	}))

	for _, token := range []string{"", "forged"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, gateRequest(token))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
		assert.NotContains(t, rec.Body.String(), "dashboard")
	}
	assert.False(t, rendered)
}

func TestGate_Require_WithSessionRendersWrappedView(t *testing.T) {
	p := &Principal{SessionID: "s1", AdminID: "a1", Email: "owner@example.com"}
	g := NewGate(validFor("tok", p), nil, "/login")
	defer g.Close()

	var got *Principal
	h := g.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = PrincipalFromContext(r.Context())
		_, _ = w.Write([]byte("dashboard"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, gateRequest("tok"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dashboard", rec.Body.String())
	require.NotNil(t, got)
	assert.Equal(t, "a1", got.AdminID)
}

func TestGate_CachesValidations(t *testing.T) {
	p := &Principal{SessionID: "s1", AdminID: "a1"}
	sv := validFor("tok", p)
	g := NewGate(sv, nil, "/login")
	defer g.Close()

	for i := 0; i < 3; i++ {
		_, ok := g.Principal(gateRequest("tok"))
		require.True(t, ok)
	}
	assert.Equal(t, 1, sv.calls)
}

func TestGate_CacheExpires(t *testing.T) {
	p := &Principal{SessionID: "s1", AdminID: "a1"}
	sv := validFor("tok", p)
	g := NewGate(sv, nil, "/login")
	defer g.Close()

	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return now }

	_, _ = g.Principal(gateRequest("tok"))
	now = now.Add(defaultGateCacheTTL + time.Second)
	_, _ = g.Principal(gateRequest("tok"))

	assert.Equal(t, 2, sv.calls)
}

func TestGate_SignOutEventEvictsAndReevaluates(t *testing.T) {
	events := NewSessionEvents()
	p := &Principal{SessionID: "s1", AdminID: "a1"}
	sv := validFor("tok", p)
	g := NewGate(sv, events, "/login")
	defer g.Close()

	_, ok := g.Principal(gateRequest("tok"))
	require.True(t, ok)

	// The session row is gone; only the published event tells the gate.
	sv.fn = func(context.Context, string) (*Principal, error) {
		return nil, errors.New("session revoked")
	}
	events.Publish(SessionEvent{Kind: SignedOut, Principal: *p})

	_, ok = g.Principal(gateRequest("tok"))
	assert.False(t, ok)
	assert.Equal(t, 2, sv.calls)
}

func TestGate_SignOutDuringValidationIsNotCached(t *testing.T) {
	events := NewSessionEvents()
	p := &Principal{SessionID: "s1", AdminID: "a1"}
	entered := make(chan struct{})
	release := make(chan struct{})
	revoked := false
	sv := &mockValidator{fn: func(context.Context, string) (*Principal, error) {
		if revoked {
			return nil, errors.New("session revoked")
		}
		close(entered)
		<-release
		return p, nil
	}}
	g := NewGate(sv, events, "/login")
	defer g.Close()

	rendered := false
	h := g.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rendered = true
	}))

	first := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.ServeHTTP(first, gateRequest("tok"))
	}()

	<-entered
	revoked = true
	events.Publish(SessionEvent{Kind: SignedOut, Principal: *p})
	close(release)
	<-done

	assert.Equal(t, http.StatusSeeOther, first.Code)

	second := httptest.NewRecorder()
	h.ServeHTTP(second, gateRequest("tok"))

	assert.Equal(t, http.StatusSeeOther, second.Code)
	assert.Equal(t, "/login", second.Header().Get("Location"))
	assert.False(t, rendered)
	assert.Equal(t, 2, sv.calls)
}

func TestGate_SignOutEverywhereEvictsAllSessionsOfAdmin(t *testing.T) {
	events := NewSessionEvents()
	revoked := false
	sv := &mockValidator{fn: func(_ context.Context, token string) (*Principal, error) {
		if revoked {
			return nil, errors.New("session revoked")
		}
		return &Principal{SessionID: "s-" + token, AdminID: "a1"}, nil
	}}
	g := NewGate(sv, events, "/login")
	defer g.Close()

	for _, tok := range []string{"laptop", "phone"} {
		_, ok := g.Principal(gateRequest(tok))
		require.True(t, ok)
	}

	revoked = true
	events.Publish(SessionEvent{Kind: SignedOut, Principal: Principal{AdminID: "a1"}})

	for _, tok := range []string{"laptop", "phone"} {
		_, ok := g.Principal(gateRequest(tok))
		assert.False(t, ok, tok)
	}
	assert.Equal(t, 4, sv.calls)
}

func TestGate_SignInEventKeepsCache(t *testing.T) {
	events := NewSessionEvents()
	p := &Principal{SessionID: "s1", AdminID: "a1"}
	sv := validFor("tok", p)
	g := NewGate(sv, events, "/login")
	defer g.Close()

	_, _ = g.Principal(gateRequest("tok"))
	events.Publish(SessionEvent{Kind: SignedIn, Principal: Principal{SessionID: "s2", AdminID: "a1"}})
	_, _ = g.Principal(gateRequest("tok"))

	assert.Equal(t, 1, sv.calls)
}

func TestGate_CloseUnsubscribes(t *testing.T) {
	events := NewSessionEvents()
	g := NewGate(&mockValidator{}, events, "/login")
	g.Close()

	events.mu.Lock()
	n := len(events.subs)
	events.mu.Unlock()
	assert.Zero(t, n)
}

func TestGate_RedirectIfSignedIn(t *testing.T) {
	p := &Principal{SessionID: "s1", AdminID: "a1"}
	g := NewGate(validFor("tok", p), nil, "/login")
	defer g.Close()

	h := g.RedirectIfSignedIn("/dashboard")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("login page"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, gateRequest("tok"))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, gateRequest(""))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "login page", rec.Body.String())
}

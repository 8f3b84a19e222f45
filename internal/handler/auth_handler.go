package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/webcraft/backend/internal/service"
	"github.com/webcraft/backend/pkg/auth"
)

// AuthConfig holds cookie settings for AuthHandler.
type AuthConfig struct {
	SessionTTL   time.Duration
	SecureCookie bool
}

// AuthHandler handles admin sign-in, sign-out and the current-user lookup.
type AuthHandler struct {
	authService service.AuthService
	cfg         AuthConfig
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authService service.AuthService, cfg AuthConfig) *AuthHandler {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = service.DefaultSessionTTL
	}
	return &AuthHandler{authService: authService, cfg: cfg}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName(),
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.cfg.SecureCookie,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.cfg.SecureCookie,
		Expires:  time.Unix(0, 0),
	})
}

// Login handles POST /api/auth/login.
// Bad credentials answer 401 with the provider's message as the error.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16<<10)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	res, err := h.authService.SignIn(r.Context(), req.Email, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "sign-in failed", "error", err)
		writeError(w, http.StatusInternalServerError, "login_failed")
		return
	}

	h.setSessionCookie(w, res.Token)
	writeJSON(w, http.StatusOK, res.Principal)
}

// Logout handles POST /api/auth/logout. With ?all=1 every session of the
// admin ends, not only this one. The cookie is cleared even when the session
// could not be deleted.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	signOut := h.authService.SignOut
	if r.URL.Query().Get("all") == "1" {
		signOut = h.authService.SignOutEverywhere
	}
	if cookie, err := r.Cookie(auth.SessionCookieName()); err == nil {
		if err := signOut(r.Context(), cookie.Value); err != nil {
			slog.ErrorContext(r.Context(), "sign-out failed", "error", err)
		}
	}
	h.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"ok": "true"})
}

// Session handles GET /api/auth/session.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(auth.SessionCookieName())
	if err != nil || cookie.Value == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	p, err := h.authService.CurrentUser(r.Context(), cookie.Value)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_session")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/webcraft/backend/internal/dashboard"
	"github.com/webcraft/backend/internal/model"
	"github.com/webcraft/backend/pkg/auth"
)

// ProfileStore loads and saves the admin display profile.
type ProfileStore interface {
	Load(ctx context.Context, email string) (model.AdminProfile, error)
	Save(ctx context.Context, p model.AdminProfile) error
	Updating() bool
}

// DashboardConfig holds the dashboard's collaborators.
type DashboardConfig struct {
	Visits   dashboard.VisitEstimator
	Location *time.Location
	Now      func() time.Time
}

// DashboardHandler serves the admin dashboard view.
type DashboardHandler struct {
	enquiries dashboard.Lister
	profiles  ProfileStore
	cfg       DashboardConfig
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(enquiries dashboard.Lister, profiles ProfileStore, cfg DashboardConfig) *DashboardHandler {
	if cfg.Visits == nil {
		cfg.Visits = dashboard.RandomEstimator{}
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &DashboardHandler{enquiries: enquiries, profiles: profiles, cfg: cfg}
}

type profileView struct {
	model.AdminProfile
	Email    string `json:"email"`
	Initials string `json:"initials"`
	Updating bool   `json:"updating"`
}

type dashboardResponse struct {
	Loading   bool              `json:"loading"`
	Error     string            `json:"error,omitempty"`
	Summary   dashboard.Summary `json:"summary"`
	Enquiries []dashboard.Row   `json:"enquiries"`
	Profile   *profileView      `json:"profile"`
}

// location resolves the viewer's time zone from ?tz=, falling back to the
// configured one.
func (h *DashboardHandler) location(r *http.Request) *time.Location {
	if tz := r.URL.Query().Get("tz"); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}
	return h.cfg.Location
}

// Dashboard handles GET /api/admin/dashboard.
// A failed enquiry fetch still answers 200 with an error message and an
// empty listing.
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	listing := dashboard.NewListing(h.enquiries)
	listing.Load(r.Context())

	loc := h.location(r)
	enquiries := listing.Enquiries()
	resp := dashboardResponse{
		Loading:   listing.Loading(),
		Error:     listing.Err(),
		Summary:   dashboard.Summarize(enquiries, h.cfg.Now().In(loc), h.cfg.Visits),
		Enquiries: dashboard.Rows(enquiries, loc),
	}

	profile, err := h.profiles.Load(r.Context(), p.Email)
	if err != nil {
		slog.ErrorContext(r.Context(), "load profile failed", "error", err)
		profile = model.DefaultAdminProfile(p.Email)
	}
	resp.Profile = newProfileView(profile, p.Email, h.profiles.Updating())

	writeJSON(w, http.StatusOK, resp)
}

func newProfileView(profile model.AdminProfile, email string, updating bool) *profileView {
	if profile.DisplayName == "" {
		profile.DisplayName = model.DisplayNameFromEmail(email)
	}
	return &profileView{
		AdminProfile: profile,
		Email:        email,
		Initials:     profile.Initials(),
		Updating:     updating,
	}
}

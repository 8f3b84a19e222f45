package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/webcraft/backend/internal/analytics"
	"github.com/webcraft/backend/internal/config"
	"github.com/webcraft/backend/internal/enquiryform"
	"github.com/webcraft/backend/internal/handler"
	"github.com/webcraft/backend/internal/kv"
	"github.com/webcraft/backend/internal/repository"
	"github.com/webcraft/backend/internal/repository/sqlite"
	"github.com/webcraft/backend/internal/service"
	"github.com/webcraft/backend/pkg/auth"
)

// app is the wired HTTP handler plus the resources it holds.
type app struct {
	handler http.Handler
	closers []func()
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// stores bundles the repositories of the selected driver.
type stores struct {
	db        repository.DB
	enquiries repository.EnquiryRepository
	admins    repository.AdminRepository
	sessions  repository.SessionRepository
	close     func()
}

// newApp opens the stores selected by cfg and builds the routed handler.
func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	st, err := openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, st.close)

	kvStore, closeKV, err := openKV(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeKV)

	events := auth.NewSessionEvents()
	sessionService := service.NewSessionService(st.sessions, auth.SessionSecretBytes(cfg.SessionSecret), cfg.SessionTTL)
	authService := service.NewAuthService(st.admins, sessionService, events)
	enquiryService := service.NewEnquiryService(st.enquiries)
	profiles := service.NewProfileStore(kvStore)

	if cfg.AdminEmail != "" {
		if err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return nil, fmt.Errorf("bootstrap admin: %w", err)
		}
	}

	gate := auth.NewGate(sessionService, events, "/login")
	a.closers = append(a.closers, gate.Close)

	forms := enquiryform.NewRegistry(enquiryService, cfg.FormIdleTTL, enquiryform.WithRevertDelay(cfg.FormRevertDelay))
	a.closers = append(a.closers, forms.Stop)

	var sink analytics.Sink = analytics.LogSink{}
	if cfg.AnalyticsEndpoint != "" {
		sink = analytics.NewHTTPSink(cfg.AnalyticsEndpoint)
	}

	submitLimiter := handler.NewRateLimiter(cfg.RateLimit.SubmitPerMinute)
	a.closers = append(a.closers, submitLimiter.Stop)
	loginLimiter := handler.NewRateLimiter(cfg.RateLimit.LoginPerMinute)
	a.closers = append(a.closers, loginLimiter.Stop)
	apiLimiter := handler.NewRateLimiter(cfg.RateLimit.APIPerMinute)
	a.closers = append(a.closers, apiLimiter.Stop)

	secure := cfg.IsProduction()
	h := handler.New(st.db, cfg.FrontendURL)
	enquiryHandler := handler.NewEnquiryHandler(forms, secure)
	authHandler := handler.NewAuthHandler(authService, handler.AuthConfig{
		SessionTTL:   cfg.SessionTTL,
		SecureCookie: secure,
	})
	dashboardHandler := handler.NewDashboardHandler(enquiryService, profiles, handler.DashboardConfig{
		Location: cfg.Location(),
	})
	profileHandler := handler.NewProfileHandler(profiles)
	legalHandler := handler.NewLegalHandler(handler.LegalConfig{DocsDir: cfg.LegalDocsDir})
	pagesHandler := handler.NewPagesHandler(cfg.StaticDir)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", h.Health)
	mux.HandleFunc("GET /api/legal/{type}", legalHandler.Legal)

	// Public enquiry form
	mux.Handle("GET /api/enquiry-form", apiLimiter.Middleware(http.HandlerFunc(enquiryHandler.Form)))
	mux.Handle("POST /api/enquiries", submitLimiter.Middleware(http.HandlerFunc(enquiryHandler.Submit)))

	// Sign-in
	mux.Handle("POST /api/auth/login", loginLimiter.Middleware(http.HandlerFunc(authHandler.Login)))
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)
	mux.Handle("GET /api/auth/session", auth.RequireAuth(gate)(http.HandlerFunc(authHandler.Session)))

	// Admin API
	admin := func(fn http.HandlerFunc) http.Handler {
		return apiLimiter.Middleware(auth.RequireAuth(gate)(fn))
	}
	mux.Handle("GET /api/admin/dashboard", admin(dashboardHandler.Dashboard))
	mux.Handle("GET /api/admin/profile", admin(profileHandler.Get))
	mux.Handle("PUT /api/admin/profile", admin(profileHandler.Put))
	mux.Handle("POST /api/admin/profile/image", admin(profileHandler.UploadImage))

	// Pages
	track := analytics.Track(sink)
	mux.Handle("GET /{$}", track(pagesHandler.Page("")))
	mux.Handle("GET /login", track(gate.RedirectIfSignedIn("/dashboard")(pagesHandler.Page("login"))))
	mux.Handle("GET /dashboard", track(gate.Require(pagesHandler.Page("dashboard"))))
	mux.Handle("GET /privacy", track(legalHandler.Page("privacy")))
	mux.Handle("GET /terms", track(legalHandler.Page("terms")))
	mux.Handle("GET /", pagesHandler.Assets())

	var root http.Handler = mux
	root = h.CORS(root)
	root = handler.SecurityHeaders(root)
	root = handler.RequestLogger(root)
	root = handler.Recover(root)

	a.handler = root
	ok = true
	return a, nil
}

func openStores(ctx context.Context, cfg config.Config) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverSQLite:
		if err := ensureDir(cfg.SQLitePath); err != nil {
			return nil, err
		}
		store, err := sqlite.NewStore(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		if err := store.ApplyMigrations(); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("migrate sqlite store: %w", err)
		}
		return &stores{
			db:        store,
			enquiries: store.Enquiries(),
			admins:    store.Admins(),
			sessions:  store.Sessions(),
			close:     func() { _ = store.Close() },
		}, nil
	default:
		pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		return &stores{
			db:        pool,
			enquiries: repository.NewPgEnquiryRepository(pool),
			admins:    repository.NewPgAdminRepository(pool),
			sessions:  repository.NewPgSessionRepository(pool),
			close:     pool.Close,
		}, nil
	}
}

func openKV(ctx context.Context, cfg config.Config) (kv.Store, func(), error) {
	if cfg.KVDriver != config.KVDriverSQLite {
		return kv.NewMemory(), func() {}, nil
	}
	if err := ensureDir(cfg.KVPath); err != nil {
		return nil, nil, err
	}
	store, err := kv.OpenSQLite(ctx, cfg.KVPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open kv store: %w", err)
	}
	return store, func() { _ = store.Close() }, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	return nil
}

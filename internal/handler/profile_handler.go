package handler

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/webcraft/backend/internal/model"
	"github.com/webcraft/backend/pkg/auth"
)

const maxProfileImageForm = 5 << 20 // 5 MB

// ProfileHandler loads and edits the admin display profile.
type ProfileHandler struct {
	profiles ProfileStore
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(profiles ProfileStore) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Get handles GET /api/admin/profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	profile, err := h.profiles.Load(r.Context(), p.Email)
	if err != nil {
		slog.ErrorContext(r.Context(), "load profile failed", "error", err)
		writeError(w, http.StatusInternalServerError, "profile_load_failed")
		return
	}
	writeJSON(w, http.StatusOK, newProfileView(profile, p.Email, h.profiles.Updating()))
}

// Put handles PUT /api/admin/profile. The body replaces the whole profile.
func (h *ProfileHandler) Put(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var profile model.AdminProfile
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxProfileImageForm*2)).Decode(&profile); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if err := h.profiles.Save(r.Context(), profile); err != nil {
		slog.ErrorContext(r.Context(), "save profile failed", "error", err)
		writeError(w, http.StatusInternalServerError, "profile_save_failed")
		return
	}
	writeJSON(w, http.StatusOK, newProfileView(profile, p.Email, false))
}

// UploadImage handles POST /api/admin/profile/image (multipart field
// "image"). The file is stored inline in the profile as a data: URL.
func (h *ProfileHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxProfileImageForm+1<<20)
	if err := r.ParseMultipartForm(maxProfileImageForm); err != nil {
		writeError(w, http.StatusBadRequest, "file_too_large")
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image_required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "image_unreadable")
		return
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		writeError(w, http.StatusBadRequest, "image_invalid")
		return
	}

	profile, err := h.profiles.Load(r.Context(), p.Email)
	if err != nil {
		slog.ErrorContext(r.Context(), "load profile failed", "error", err)
		writeError(w, http.StatusInternalServerError, "profile_load_failed")
		return
	}
	profile.ProfileImage = "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
	if err := h.profiles.Save(r.Context(), profile); err != nil {
		slog.ErrorContext(r.Context(), "save profile failed", "error", err)
		writeError(w, http.StatusInternalServerError, "profile_save_failed")
		return
	}
	writeJSON(w, http.StatusOK, newProfileView(profile, p.Email, false))
}

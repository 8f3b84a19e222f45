package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/webcraft/backend/internal/enquiryform"
	"github.com/webcraft/backend/internal/model"
	"github.com/webcraft/backend/pkg/idx"
)

const (
	visitorCookieName = "wc_visitor"
	maxEnquiryBody    = 64 << 10
)

// FormRegistry hands out the submission flow of a visitor.
type FormRegistry interface {
	Get(visitorID string) *enquiryform.Flow
}

// EnquiryHandler serves the public enquiry form.
type EnquiryHandler struct {
	forms        FormRegistry
	secureCookie bool
}

// NewEnquiryHandler creates an EnquiryHandler. secureCookie marks the visitor
// cookie Secure.
func NewEnquiryHandler(forms FormRegistry, secureCookie bool) *EnquiryHandler {
	return &EnquiryHandler{forms: forms, secureCookie: secureCookie}
}

type formResponse struct {
	enquiryform.View
	WebsiteTypes []string `json:"website_types"`
}

type submitResponse struct {
	ID                 string            `json:"id"`
	State              enquiryform.State `json:"state"`
	RevertAfterSeconds int               `json:"revert_after_seconds"`
}

// visitorID returns the visitor's id from the cookie, issuing a new one when
// the cookie is missing or malformed.
func (h *EnquiryHandler) visitorID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(visitorCookieName); err == nil {
		if id, err := idx.Parse(c.Value); err == nil {
			return id.String()
		}
	}
	id := idx.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     visitorCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int((24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.secureCookie,
	})
	return id
}

// Form handles GET /api/enquiry-form.
func (h *EnquiryHandler) Form(w http.ResponseWriter, r *http.Request) {
	flow := h.forms.Get(h.visitorID(w, r))
	writeJSON(w, http.StatusOK, formResponse{
		View:         flow.Snapshot(),
		WebsiteTypes: model.WebsiteTypes,
	})
}

// Submit handles POST /api/enquiries.
// name, email and website_type are required; message is optional.
func (h *EnquiryHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var draft model.EnquiryDraft
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEnquiryBody)).Decode(&draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	visitor := h.visitorID(w, r)
	flow := h.forms.Get(visitor)
	e, err := flow.Submit(r.Context(), draft)
	if errors.Is(err, enquiryform.ErrClosed) {
		// Evicted between Get and Submit; the registry hands out a fresh flow.
		flow = h.forms.Get(visitor)
		e, err = flow.Submit(r.Context(), draft)
	}

	var ve *model.ValidationError
	switch {
	case err == nil:
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Code)
		return
	case errors.Is(err, enquiryform.ErrSubmitInProgress), errors.Is(err, enquiryform.ErrConfirmationShown):
		writeError(w, http.StatusConflict, "submit_in_progress")
		return
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":  "submit_failed",
			"notice": enquiryform.FailureNotice,
		})
		return
	}

	resp := submitResponse{
		State:              enquiryform.StateSubmitted,
		RevertAfterSeconds: int(flow.RevertDelay().Seconds()),
	}
	if e != nil {
		resp.ID = e.ID
	}
	writeJSON(w, http.StatusCreated, resp)
}

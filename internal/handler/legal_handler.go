package handler

import (
	"bytes"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// legalTitles is the allowlist of legal document type names and their page
// titles. Only these values may be requested.
var legalTitles = map[string]string{
	"privacy": "Privacy Policy",
	"terms":   "Terms of Service",
}

// mdRenderer escapes raw HTML in the Markdown source (WithUnsafe is not set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

var legalPage = template.Must(template.New("legal").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} | WebCraft Solutions</title>
</head>
<body>
<main class="legal">
{{.Body}}
</main>
<footer><a href="/">Back to home</a></footer>
</body>
</html>
`))

// LegalConfig holds configuration for the LegalHandler.
type LegalConfig struct {
	// DocsDir is the directory from which legal Markdown files are read.
	// Corresponds to the LEGAL_DOCS_DIR environment variable.
	DocsDir string
}

// LegalHandler serves the privacy and terms documents.
type LegalHandler struct {
	cfg LegalConfig
}

// NewLegalHandler creates a LegalHandler with the given configuration.
func NewLegalHandler(cfg LegalConfig) *LegalHandler {
	return &LegalHandler{cfg: cfg}
}

// read returns the Markdown source of docType with the HTTP status to use
// when it cannot.
func (h *LegalHandler) read(docType string) ([]byte, int) {
	// Reject any traversal characters before the allowlist check.
	if strings.Contains(docType, "/") || strings.Contains(docType, "\\") || strings.Contains(docType, "..") {
		return nil, http.StatusBadRequest
	}
	if _, ok := legalTitles[docType]; !ok {
		return nil, http.StatusNotFound
	}

	absDir, err := filepath.Abs(h.cfg.DocsDir)
	if err != nil {
		return nil, http.StatusInternalServerError
	}
	filePath := filepath.Join(absDir, docType+".md")
	if !strings.HasPrefix(filePath, absDir+string(filepath.Separator)) {
		return nil, http.StatusBadRequest
	}

	content, err := os.ReadFile(filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, http.StatusNotFound
	}
	if err != nil {
		slog.Error("read legal document failed", "type", docType, "error", err)
		return nil, http.StatusInternalServerError
	}
	return content, http.StatusOK
}

// Legal handles GET /api/legal/{type}.
// Returns the Markdown content of the requested legal document.
// Responds 404 when the document does not exist.
// Rejects path traversal attempts with 400.
func (h *LegalHandler) Legal(w http.ResponseWriter, r *http.Request) {
	content, status := h.read(r.PathValue("type"))
	if status != http.StatusOK {
		http.Error(w, http.StatusText(status), status)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

// Page returns the handler of the static HTML page for docType
// (GET /privacy, GET /terms).
func (h *LegalHandler) Page(docType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		content, status := h.read(docType)
		if status != http.StatusOK {
			http.Error(w, http.StatusText(status), status)
			return
		}

		var body bytes.Buffer
		if err := mdRenderer.Convert(content, &body); err != nil {
			slog.ErrorContext(r.Context(), "render legal document failed", "type", docType, "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		var page bytes.Buffer
		err := legalPage.Execute(&page, struct {
			Title string
			Body  template.HTML
		}{
			Title: legalTitles[docType],
			Body:  template.HTML(body.String()),
		})
		if err != nil {
			slog.ErrorContext(r.Context(), "render legal page failed", "type", docType, "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = page.WriteTo(w)
	}
}

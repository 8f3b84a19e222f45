package handler

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
)

// PagesHandler serves the built frontend from a directory. A page is served
// from "<name>.html" when present and from index.html otherwise.
type PagesHandler struct {
	dir string
}

// NewPagesHandler creates a PagesHandler serving HTML files from dir.
func NewPagesHandler(dir string) *PagesHandler {
	return &PagesHandler{dir: dir}
}

// Page returns the handler of the HTML page called name ("" for the home page).
func (h *PagesHandler) Page(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		candidates := []string{"index.html"}
		if name != "" {
			candidates = []string{name + ".html", "index.html"}
		}
		for _, c := range candidates {
			p := filepath.Join(h.dir, c)
			info, err := os.Stat(p)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				slog.ErrorContext(r.Context(), "stat page failed", "page", c, "error", err)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			if info.IsDir() {
				continue
			}
			w.Header().Set("Cache-Control", "no-cache")
			http.ServeFile(w, r, p)
			return
		}
		http.NotFound(w, r)
	}
}

// Assets serves the remaining static files. Directory listings are not
// exposed.
func (h *PagesHandler) Assets() http.Handler {
	files := http.FileServer(http.Dir(h.dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := filepath.Join(h.dir, filepath.FromSlash(filepath.Clean("/"+r.URL.Path)))
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}

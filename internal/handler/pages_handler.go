package handler

import (
	"net/http"
	"path/filepath"
)

// PagesHandler serves the donor-facing static pages.
type PagesHandler struct {
	staticDir string
}

// NewPagesHandler creates a PagesHandler serving files from staticDir.
func NewPagesHandler(staticDir string) *PagesHandler {
	return &PagesHandler{staticDir: staticDir}
}

// Index handles GET /.
func (h *PagesHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "index.html")
}

// ThankYou handles GET /thank-you.
func (h *PagesHandler) ThankYou(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "thank-you.html")
}

// Error handles GET /error.
func (h *PagesHandler) Error(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "error.html")
}

// Static returns a file server for GET /static/.
func (h *PagesHandler) Static() http.Handler {
	return http.StripPrefix("/static/", http.FileServer(http.Dir(h.staticDir)))
}

func (h *PagesHandler) serve(w http.ResponseWriter, r *http.Request, name string) {
	http.ServeFile(w, r, filepath.Join(h.staticDir, name))
}

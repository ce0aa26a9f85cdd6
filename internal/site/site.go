// Package site serves the owner's CV website: a rendered index page, the
// resume PDF, and static files from a resources directory.
package site

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"

	"go.uber.org/zap"
)

//go:embed templates/index.html
var templateFS embed.FS

// Handler holds dependencies for the website handlers.
type Handler struct {
	tmpl         *template.Template
	resourcesDir string
	ownerName    string
	ownerTitle   string
	logger       *zap.Logger
}

// NewHandler parses the embedded templates and returns a website handler.
// resourcesDir is the on-disk directory holding resume.pdf and other static files.
func NewHandler(resourcesDir, ownerName, ownerTitle string, logger *zap.Logger) (*Handler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse site templates: %w", err)
	}
	return &Handler{
		tmpl:         tmpl,
		resourcesDir: resourcesDir,
		ownerName:    ownerName,
		ownerTitle:   ownerTitle,
		logger:       logger,
	}, nil
}

type indexData struct {
	OwnerName  string
	OwnerTitle string
}

// Index handles GET /. Renders the CV landing page.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := indexData{OwnerName: h.ownerName, OwnerTitle: h.ownerTitle}
	if err := h.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		// Headers are already written at this point, so just log
		h.logger.Error("render index", zap.Error(err))
	}
}

// ResumePDF handles GET /resume.pdf. Serves the resume from the resources directory.
func (h *Handler) ResumePDF(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(h.resourcesDir, "resume.pdf"))
}

// Resources returns a handler serving GET /resources/{path} from the resources
// directory. http.FileServer cleans the path, so entries outside the directory
// are not reachable.
func (h *Handler) Resources() http.Handler {
	return http.StripPrefix("/resources/", http.FileServer(http.Dir(h.resourcesDir)))
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

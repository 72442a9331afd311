// Package dashboard exposes a minimal HTTP server that renders the collision
// analytics: headline totals, the daily trend, per-borough breakdown, top
// contributing factors, and the most recent crashes.
//
// Routes:
//
//	GET /             → HTML dashboard (filterable by date range and borough)
//	GET /api/overview → machine-friendly JSON of the same sections
package dashboard

import (
	"context"
	_ "embed"
	"encoding/json"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"collisions/internal/analytics"
	"collisions/internal/schema"
)

// Config controls server startup.
type Config struct {
	Addr string
}

// Overviewer is the analytics surface the server renders; *analytics.Store
// satisfies it.
type Overviewer interface {
	Overview(ctx context.Context, f analytics.Filter) (analytics.Overview, error)
}

// Server wraps http.Server for convenience.
type Server struct {
	cfg   Config
	store Overviewer
	mux   *http.ServeMux
	tmpl  *template.Template
}

// NewServer constructs a Server with routes and the embedded template.
func NewServer(cfg Config, store Overviewer) *Server {
	s := &Server{
		cfg:   cfg,
		store: store,
		mux:   http.NewServeMux(),
		tmpl:  template.Must(template.New("index").Parse(indexHTML)),
	}
	s.routes()
	return s
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return http.ListenAndServe(s.cfg.Addr, s.mux)
}

// Handler returns the route mux, mainly for tests.
func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/api/overview", s.handleAPIOverview)
}

// filterFromQuery reads from/to (YYYY-MM-DD) and borough (lookup id) query
// parameters. Unparseable values are ignored rather than rejected.
func filterFromQuery(r *http.Request) analytics.Filter {
	q := r.URL.Query()
	var f analytics.Filter
	if s := strings.TrimSpace(q.Get("from")); s != "" {
		if t, err := time.Parse(schema.DateLayout, s); err == nil {
			f.From = &t
		}
	}
	if s := strings.TrimSpace(q.Get("to")); s != "" {
		if t, err := time.Parse(schema.DateLayout, s); err == nil {
			f.To = &t
		}
	}
	if s := strings.TrimSpace(q.Get("borough")); s != "" {
		if id, err := strconv.ParseInt(s, 10, 64); err == nil {
			f.BoroughID = &id
		}
	}
	return f
}

// handleIndex renders the dashboard page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	f := filterFromQuery(r)
	ov, err := s.store.Overview(r.Context(), f)
	if err != nil {
		log.Println("overview error:", err)
		http.Error(w, "overview failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	data := struct {
		From     string
		To       string
		Borough  string
		Overview analytics.Overview
	}{
		From:     r.URL.Query().Get("from"),
		To:       r.URL.Query().Get("to"),
		Borough:  r.URL.Query().Get("borough"),
		Overview: ov,
	}
	if err := s.tmpl.Execute(w, data); err != nil {
		log.Println("template error:", err)
	}
}

// handleAPIOverview returns the overview as JSON for scripts and curl.
func (s *Server) handleAPIOverview(w http.ResponseWriter, r *http.Request) {
	f := filterFromQuery(r)
	ov, err := s.store.Overview(r.Context(), f)
	if err != nil {
		http.Error(w, "overview failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(ov); err != nil {
		log.Println("encode error:", err)
	}
}

// indexHTML is an embedded, minimal page with vanilla styling.
//
//go:embed index.tmpl.html
var indexHTML string

// Package web declares the HTML-facing HTTP handlers and route
// registration helpers for the estimator form flow.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/nandira/taksir/internal/domain/model"
	"github.com/nandira/taksir/pkg/logger"
)

// Dependencies required by the HTTP handlers. Using an interface bundle
// keeps the handler layer loosely coupled to implementations in other
// packages.
type Dependencies interface {
	// Results returns the session's ledger, seeding it when empty. The
	// warning, when non-empty, is a user-visible message about a failed
	// seed and must be shown on the page.
	Results(ctx context.Context, token string) ([]model.PredictionResult, string, error)

	// Estimate runs the pipeline and stores the result on success.
	Estimate(ctx context.Context, token string, raw model.RawLineItem) (model.PredictionResult, error)

	// Ledger mutations.
	DeleteAt(ctx context.Context, token string, i int) error
	ClearAll(ctx context.Context, token string) error

	// Project metadata shown above the result table.
	ProjectInfo(ctx context.Context, token string) (model.ProjectInfo, error)
	SaveProjectInfo(ctx context.Context, token string, info model.ProjectInfo) error
}

//go:embed templates/*.html
var templateFS embed.FS

// Server wires HTTP routes for the estimator pages.
type Server struct {
	deps       Dependencies
	stats      StatsProvider
	cookieName string
	tmpl       *template.Template
	log        logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithCookieName overrides the session cookie name.
func WithCookieName(name string) Option {
	return func(s *Server) {
		if name != "" {
			s.cookieName = name
		}
	}
}

// WithLogger sets a custom logger for the server.
func WithLogger(log logger.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// NewServer creates a web server over the handler dependencies.
func NewServer(deps Dependencies, stats StatsProvider, opts ...Option) *Server {
	s := &Server{
		deps:       deps,
		stats:      stats,
		cookieName: "taksir_session",
		tmpl: template.Must(template.New("").
			Funcs(template.FuncMap{"rupiah": rupiah}).
			ParseFS(templateFS, "templates/*.html")),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get()
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.handleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.handleStats, "stats"))
	mux.HandleFunc("/estimate", MetricsMiddleware(s.withSession(s.handleEstimate), "estimate"))
	mux.HandleFunc("/project-info", MetricsMiddleware(s.withSession(s.handleProjectInfo), "project_info"))
	mux.HandleFunc("/delete/", MetricsMiddleware(s.withSession(s.handleDelete), "delete"))
	mux.HandleFunc("/clear", MetricsMiddleware(s.withSession(s.handleClear), "clear"))
	mux.HandleFunc("/", MetricsMiddleware(s.withSession(s.handleIndex), "index"))
}

// indexView is the render model for the main page.
type indexView struct {
	Results  []model.PredictionResult
	Total    float64
	Info     model.ProjectInfo
	FormErr  string
	Warning  string
	HasRows  bool
	RowCount int
}

// render draws the main page for the session, optionally with an inline
// form error. Failures degrade to a plain 500; the page has no error
// template of its own.
func (s *Server) render(w http.ResponseWriter, r *http.Request, token, formErr string, status int) {
	ctx := r.Context()

	results, warning, err := s.deps.Results(ctx, token)
	if err != nil {
		s.log.Error(ctx, "loading session results failed", logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	info, err := s.deps.ProjectInfo(ctx, token)
	if err != nil {
		s.log.Error(ctx, "loading project info failed", logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var total float64
	for _, rec := range results {
		total += rec.Prediction
	}

	view := indexView{
		Results:  results,
		Total:    total,
		Info:     info,
		FormErr:  formErr,
		Warning:  warning,
		HasRows:  len(results) > 0,
		RowCount: len(results),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tmpl.ExecuteTemplate(w, "index.html", view); err != nil {
		s.log.Error(ctx, "rendering index failed", logger.Error(fmt.Errorf("%w: %w", ErrRender, err)))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// rupiah formats an amount the way the page shows prices: no decimals,
// dots as thousand separators.
func rupiah(v float64) string {
	digits := strconv.FormatFloat(v, 'f', 0, 64)
	neg := strings.HasPrefix(digits, "-")
	if neg {
		digits = digits[1:]
	}
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	out := "Rp " + b.String()
	if neg {
		out = "-" + out
	}
	return out
}

package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/nandira/taksir/pkg/logger"
)

// handleDelete handles GET /delete/{index} requests. Out-of-range
// indexes are tolerated silently; only the session ledger shrinks, the
// sinks keep their copy.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, token string) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	raw := strings.TrimPrefix(r.URL.Path, "/delete/")
	i, err := strconv.Atoi(raw)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := s.deps.DeleteAt(r.Context(), token, i); err != nil {
		s.log.Error(r.Context(), "deleting ledger row failed", logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleClear handles POST /clear requests, emptying the ledger and
// both sinks.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request, token string) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if err := s.deps.ClearAll(r.Context(), token); err != nil {
		s.log.Error(r.Context(), "clearing results failed", logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

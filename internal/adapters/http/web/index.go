package web

import "net/http"

// handleIndex handles GET / requests: the entry form, the project info
// block, and the session's result table with its running total.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request, token string) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	s.render(w, r, token, "", http.StatusOK)
}

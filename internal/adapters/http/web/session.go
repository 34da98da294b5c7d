package web

import (
	"net/http"

	"github.com/google/uuid"
)

// sessionHandler is an http.HandlerFunc that also receives the opaque
// session token.
type sessionHandler func(w http.ResponseWriter, r *http.Request, token string)

// withSession resolves the session token from the cookie, minting a new
// one for first-time visitors. The token is opaque; all session data
// stays server-side.
func (s *Server) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if c, err := r.Cookie(s.cookieName); err == nil && c.Value != "" {
			token = c.Value
		}
		if token == "" {
			token = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     s.cookieName,
				Value:    token,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next(w, r, token)
	}
}

package server

import (
	"crypto/subtle"
	"net/http"
	"time"
)

const (
	tokenCookieName = "lr_token"
	tokenCookieTTL  = 24 * time.Hour
)

// authMiddleware admits requests carrying the server token. A token in the
// query string is traded for a cookie and stripped from the URL.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if t := r.URL.Query().Get("token"); t != "" {
			s.exchangeToken(w, r, t)
			return
		}

		if !s.hasSession(r) {
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) exchangeToken(w http.ResponseWriter, r *http.Request, t string) {
	if !s.validToken(t) {
		unauthorized(w)
		return
	}

	http.SetCookie(w, s.sessionCookie())

	target := *r.URL
	params := target.Query()
	params.Del("token")
	target.RawQuery = params.Encode()
	http.Redirect(w, r, target.String(), http.StatusFound)
}

func (s *Server) sessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     tokenCookieName,
		Value:    s.token,
		Path:     "/",
		MaxAge:   int(tokenCookieTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *Server) hasSession(r *http.Request) bool {
	c, err := r.Cookie(tokenCookieName)
	return err == nil && s.validToken(c.Value)
}

func (s *Server) validToken(candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(s.token)) == 1
}

func unauthorized(w http.ResponseWriter) {
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}

package server

import (
	"net/http"

	"github.com/Sternrassler/dexview/internal/session"
)

const (
	sessionCookie = "dexview_session"
	sessionHeader = "X-Dexview-Session"
)

// sessionFor resolves the caller's session from the cookie or header,
// creating one when neither names a live session.
func (s *Server) sessionFor(w http.ResponseWriter, r *http.Request) *session.Session {
	id := r.Header.Get(sessionHeader)
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		id = c.Value
	}

	sess, created := s.deps.Sessions.GetOrCreate(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	w.Header().Set(sessionHeader, sess.ID)

	return sess
}

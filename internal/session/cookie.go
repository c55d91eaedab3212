package session

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const CookieName = "portal_session"

// cookieMaxAge keeps the browser identity for 30 days. Logging out does not
// rotate it; only the token and registry entry are cleared.
const cookieMaxAge = 30 * 24 * 60 * 60

// ReadID returns the session id carried by the request cookie, if it is a
// well-formed uuid.
func ReadID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", false
	}

	id := strings.TrimSpace(cookie.Value)
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// EnsureID returns the request's session id, issuing a fresh cookie when the
// browser does not have a valid one yet.
func EnsureID(w http.ResponseWriter, r *http.Request, secure bool) string {
	if id, ok := ReadID(r); ok {
		return id
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

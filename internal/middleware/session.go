package middleware

import (
	"context"
	"net/http"

	"school-portal/internal/model"
	"school-portal/internal/session"
)

type contextKey string

const sessionContextKey contextKey = "portal_session"

type sessionResolver interface {
	Resolve(ctx context.Context, id string) (model.Session, bool)
}

// SessionMiddleware attaches the portal session to every request and guards
// the protected pages.
type SessionMiddleware struct {
	resolver     sessionResolver
	secureCookie bool
}

func NewSessionMiddleware(resolver sessionResolver, secureCookie bool) *SessionMiddleware {
	return &SessionMiddleware{resolver: resolver, secureCookie: secureCookie}
}

// Load issues the session cookie when missing and stores the resolved
// session in the request context.
func (m *SessionMiddleware) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := session.EnsureID(w, r, m.secureCookie)

		s, _ := m.resolver.Resolve(r.Context(), id)
		s.ID = id

		ctx := context.WithValue(r.Context(), sessionContextKey, s)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireSession lets the request through only for a logged-in session.
// Anything else is redirected to /login before a byte of the page is written.
func (m *SessionMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, _ := SessionFromContext(r.Context())
		if !s.IsLoggedIn {
			if isAPIRequest(r) {
				writeFailure(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "login required")
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// RequireRole must run after RequireSession. A session of another role is
// sent to its own dashboard.
func (m *SessionMiddleware) RequireRole(role model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, _ := SessionFromContext(r.Context())
			if s.UserType != role {
				if isAPIRequest(r) {
					writeFailure(w, r, http.StatusForbidden, "FORBIDDEN", "this area belongs to another role")
					return
				}
				http.Redirect(w, r, s.UserType.DashboardPath(), http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SessionFromContext returns the session placed by Load. The bool is false
// when Load did not run.
func SessionFromContext(ctx context.Context) (model.Session, bool) {
	s, ok := ctx.Value(sessionContextKey).(model.Session)
	return s, ok
}

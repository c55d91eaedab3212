package router

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"school-portal/internal/config"
	"school-portal/internal/handler"
	"school-portal/internal/middleware"
	"school-portal/internal/model"
)

type Handlers struct {
	Auth      *handler.AuthHandler
	Register  *handler.RegisterHandler
	Dashboard *handler.DashboardHandler
	Session   *handler.SessionHandler
	Docs      *handler.DocsHandler
}

// New builds the route table. Every page outside /login and /register sits
// behind the session gate; "/" and unknown paths land on /login.
func New(cfg *config.Config, sessions *middleware.SessionMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()
	clientIP := middleware.NewClientIPResolver(cfg.TrustedProxies)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM, clientIP)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging(clientIP))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/static/*", handler.StaticHandler())
	r.Get("/openapi.yaml", h.Docs.OpenAPI)
	r.Get("/swagger", h.Docs.SwaggerUI)

	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	r.Group(func(pages chi.Router) {
		pages.Use(sessions.Load)
		pages.Use(middleware.PageTimeout(cfg.RequestTimeout))

		pages.Get("/", toLogin)
		pages.Get("/login", h.Auth.LoginPage)
		pages.Post("/login", h.Auth.Login)
		pages.Post("/logout", h.Auth.Logout)
		pages.Get("/register", h.Register.AccountPage)
		pages.Post("/register", h.Register.CreateAccount)

		pages.Group(func(protected chi.Router) {
			protected.Use(sessions.RequireSession)

			protected.With(sessions.RequireRole(model.RoleStudent)).Get("/student", h.Dashboard.Student)

			protected.Group(func(teacher chi.Router) {
				teacher.Use(sessions.RequireRole(model.RoleTeacher))

				teacher.Get("/teacher", h.Dashboard.Teacher)
				teacher.Get("/register-grade", h.Register.GradePage)
				teacher.Post("/register-grade", h.Register.CreateGrade)
				teacher.Get("/register-subject", h.Register.SubjectPage)
				teacher.Post("/register-subject", h.Register.CreateSubject)
			})
		})
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(sessions.Load)
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Get("/session", h.Session.Current)
		api.Post("/session/login", h.Session.Login)
		api.Delete("/session", h.Session.Logout)
		api.With(sessions.RequireSession, sessions.RequireRole(model.RoleStudent)).Get("/student/summary", h.Session.StudentSummary)
	})

	return r
}

func toLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"error":{"code":"NOT_FOUND","message":"route not found"}}`))
		return
	}
	toLogin(w, r)
}

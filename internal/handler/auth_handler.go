package handler

import (
	"net/http"
	"strings"
	"time"

	"school-portal/internal/model"
	"school-portal/internal/portalapi"
	"school-portal/internal/service"
	"school-portal/pkg/apierror"
)

type AuthHandler struct {
	service   *service.AuthService
	renderer  *Renderer
	bannerTTL time.Duration
}

func NewAuthHandler(service *service.AuthService, renderer *Renderer, bannerTTL time.Duration) *AuthHandler {
	return &AuthHandler{service: service, renderer: renderer, bannerTTL: bannerTTL}
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, r, http.StatusOK, loginPage{})
}

// Login handles both login forms; the hidden role field says which one was
// submitted.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, http.StatusBadRequest, loginPage{Error: "invalid form submission"})
		return
	}

	creds := model.Credentials{
		Email:    strings.TrimSpace(r.PostForm.Get("email")),
		Password: r.PostForm.Get("password"),
		Role:     model.Role(r.PostForm.Get("role")),
	}

	sess := currentSession(r)
	started, err := h.service.Login(r.Context(), sess.ID, creds)
	if err != nil {
		h.renderLogin(w, r, pageStatus(err), loginPage{
			Error:        apierror.MessageOf(err),
			Unauthorized: portalapi.IsUnauthorized(err),
			Email:        creds.Email,
			Role:         strings.ToLower(string(creds.Role)),
		})
		return
	}

	http.Redirect(w, r, started.UserType.DashboardPath(), http.StatusSeeOther)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), currentSession(r).ID); err != nil {
		status, body := classify(err)
		http.Error(w, body.Message, status)
		return
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, status int, page loginPage) {
	page.pageBase = pageBase{Session: currentSession(r)}
	if page.Unauthorized {
		// The rejected login has just ended the session.
		page.Session.IsLoggedIn = false
	}
	page.Roles = loginRoles
	page.BannerMillis = h.bannerTTL.Milliseconds()
	h.renderer.Render(w, status, "login", page)
}

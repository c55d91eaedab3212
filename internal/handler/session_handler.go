package handler

import (
	"net/http"

	"school-portal/internal/model"
	"school-portal/internal/service"
)

// SessionHandler is the JSON counterpart of the login pages, for front-ends
// that render on their own and only need the portal session.
type SessionHandler struct {
	auth       *service.AuthService
	dashboards *service.DashboardService
}

func NewSessionHandler(auth *service.AuthService, dashboards *service.DashboardService) *SessionHandler {
	return &SessionHandler{auth: auth, dashboards: dashboards}
}

type sessionResponse struct {
	model.Session
	Redirect string `json:"redirect,omitempty"`
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials
	if err := decodeJSON(w, r, &creds); err != nil {
		writeError(w, err)
		return
	}

	started, err := h.auth.Login(r.Context(), currentSession(r).ID, creds)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, sessionResponse{Session: started, Redirect: started.UserType.DashboardPath()})
}

func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), currentSession(r).ID); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.Session{})
}

func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	resp := sessionResponse{Session: sess}
	if sess.IsLoggedIn {
		resp.Redirect = sess.UserType.DashboardPath()
	}

	writeSuccess(w, http.StatusOK, resp)
}

func (h *SessionHandler) StudentSummary(w http.ResponseWriter, r *http.Request) {
	view, err := h.dashboards.Student(r.Context(), currentSession(r).ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, view)
}

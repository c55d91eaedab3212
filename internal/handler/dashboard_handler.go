package handler

import (
	"net/http"

	"school-portal/internal/portalapi"
	"school-portal/internal/service"
	"school-portal/pkg/apierror"
)

type DashboardHandler struct {
	service  *service.DashboardService
	renderer *Renderer
}

func NewDashboardHandler(service *service.DashboardService, renderer *Renderer) *DashboardHandler {
	return &DashboardHandler{service: service, renderer: renderer}
}

func (h *DashboardHandler) Student(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)

	view, err := h.service.Student(r.Context(), sess.ID)
	if err != nil {
		page := studentPage{
			Error:      apierror.MessageOf(err),
			LoginAgain: portalapi.IsUnauthorized(err),
		}
		// A rejected token has just ended the session.
		if page.LoginAgain {
			sess.IsLoggedIn = false
		}
		page.pageBase = pageBase{Session: sess}
		h.renderer.Render(w, pageStatus(err), "student", page)
		return
	}

	h.renderer.Render(w, http.StatusOK, "student", studentPage{
		pageBase: pageBase{Session: sess},
		View:     view,
	})
}

func (h *DashboardHandler) Teacher(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	h.renderer.Render(w, http.StatusOK, "teacher", teacherPage{
		pageBase: pageBase{Session: sess},
		View:     h.service.Teacher(r.Context(), sess.ID),
	})
}

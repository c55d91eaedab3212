package handler

import (
	"net/http"
	"strings"

	"school-portal/internal/model"
	"school-portal/internal/service"
	"school-portal/pkg/apierror"
)

// RegisterHandler serves the public account form and the two teacher-only
// forms for subjects and grades.
type RegisterHandler struct {
	service  *service.RegistrationService
	renderer *Renderer
}

func NewRegisterHandler(service *service.RegistrationService, renderer *Renderer) *RegisterHandler {
	return &RegisterHandler{service: service, renderer: renderer}
}

func (h *RegisterHandler) AccountPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "register", registerPage{
		pageBase: pageBase{Session: currentSession(r)},
		Role:     string(model.RoleStudent),
	})
}

func (h *RegisterHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	page := registerPage{pageBase: pageBase{Session: currentSession(r)}}
	if err := r.ParseForm(); err != nil {
		page.Error = "invalid form submission"
		h.renderer.Render(w, http.StatusBadRequest, "register", page)
		return
	}

	req := model.RegisterRequest{
		Name:     r.PostForm.Get("name"),
		Email:    r.PostForm.Get("email"),
		Password: r.PostForm.Get("password"),
		Role:     model.Role(strings.ToLower(strings.TrimSpace(r.PostForm.Get("role")))),
	}
	page.Name, page.Email, page.Role = req.Name, req.Email, string(req.Role)

	if err := h.service.Register(r.Context(), page.Session.ID, req); err != nil {
		page.Error = apierror.MessageOf(err)
		h.renderer.Render(w, pageStatus(err), "register", page)
		return
	}

	h.renderer.Render(w, http.StatusCreated, "register", registerPage{
		pageBase: page.pageBase,
		Role:     page.Role,
		Success:  "Account created. You can log in now.",
	})
}

func (h *RegisterHandler) SubjectPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "subject", subjectPage{pageBase: pageBase{Session: currentSession(r)}})
}

func (h *RegisterHandler) CreateSubject(w http.ResponseWriter, r *http.Request) {
	page := subjectPage{pageBase: pageBase{Session: currentSession(r)}}
	if err := r.ParseForm(); err != nil {
		page.Error = "invalid form submission"
		h.renderer.Render(w, http.StatusBadRequest, "subject", page)
		return
	}

	page.Name = r.PostForm.Get("name")
	if err := h.service.CreateSubject(r.Context(), page.Session.ID, model.CreateSubjectRequest{Name: page.Name}); err != nil {
		page.Error = apierror.MessageOf(err)
		h.renderer.Render(w, pageStatus(err), "subject", page)
		return
	}

	page.Name = ""
	page.Success = "Subject created successfully!"
	h.renderer.Render(w, http.StatusCreated, "subject", page)
}

func (h *RegisterHandler) GradePage(w http.ResponseWriter, r *http.Request) {
	page := gradePage{pageBase: pageBase{Session: currentSession(r)}}
	status := http.StatusOK
	if inputs, err := h.service.GradeInputs(r.Context()); err != nil {
		page.Error = apierror.MessageOf(err)
		status = pageStatus(err)
	} else {
		page.Inputs = inputs
	}

	h.renderer.Render(w, status, "grade", page)
}

func (h *RegisterHandler) CreateGrade(w http.ResponseWriter, r *http.Request) {
	page := gradePage{pageBase: pageBase{Session: currentSession(r)}}
	if err := r.ParseForm(); err != nil {
		page.Error = "invalid form submission"
		h.renderer.Render(w, http.StatusBadRequest, "grade", page)
		return
	}

	page.Form = model.GradeForm{
		CourseID:  r.PostForm.Get("courseId"),
		StudentID: r.PostForm.Get("studentId"),
		Grade:     r.PostForm.Get("grade"),
	}

	status := http.StatusCreated
	if _, err := h.service.CreateGrade(r.Context(), page.Session.ID, page.Form); err != nil {
		page.Error = apierror.MessageOf(err)
		status = pageStatus(err)
	} else {
		page.Success = "Grade recorded successfully!"
		page.Form = model.GradeForm{}
	}

	// The selects need their options again whatever the outcome.
	if inputs, err := h.service.GradeInputs(r.Context()); err == nil {
		page.Inputs = inputs
	} else if page.Error == "" {
		page.Error = apierror.MessageOf(err)
	}

	h.renderer.Render(w, status, "grade", page)
}

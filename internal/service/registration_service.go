package service

import (
	"context"
	"strconv"
	"strings"

	"school-portal/internal/event"
	"school-portal/internal/model"
	"school-portal/pkg/apierror"
)

type formAPI interface {
	CreateAccount(ctx context.Context, role model.Role, payload model.RegisterRequest) error
	CreateSubject(ctx context.Context, payload model.CreateSubjectRequest) error
	CreateGrade(ctx context.Context, payload model.CreateGradeRequest) error
	InputInfo(ctx context.Context) (model.InputInfo, error)
}

// RegistrationService validates the account, subject and grade forms and
// forwards each valid submission to the API exactly once.
type RegistrationService struct {
	api formAPI
	bus event.Bus
}

func NewRegistrationService(api formAPI, bus event.Bus) *RegistrationService {
	return &RegistrationService{api: api, bus: bus}
}

var registerMessages = fieldMessages{
	"Name":     "name is required",
	"Email":    "invalid email",
	"Password": "password must have at least 6 characters",
	"Role":     "select an account type",
}

func (s *RegistrationService) Register(ctx context.Context, sessionID string, req model.RegisterRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	if role, ok := model.ParseRole(string(req.Role)); ok {
		req.Role = role
	}
	if err := checkStruct(req, registerMessages); err != nil {
		return err
	}

	if err := s.api.CreateAccount(ctx, req.Role, req); err != nil {
		return err
	}

	s.publish(event.TypeAccountCreated, sessionID, map[string]any{"role": string(req.Role), "email": req.Email})
	return nil
}

var subjectMessages = fieldMessages{
	"Name": "subject name is required",
}

func (s *RegistrationService) CreateSubject(ctx context.Context, sessionID string, req model.CreateSubjectRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	if err := checkStruct(req, subjectMessages); err != nil {
		return err
	}

	if err := s.api.CreateSubject(ctx, req); err != nil {
		return err
	}

	s.publish(event.TypeSubjectCreated, sessionID, map[string]any{"name": req.Name})
	return nil
}

// GradeInputs loads the course and student options for the grade form.
func (s *RegistrationService) GradeInputs(ctx context.Context) (model.InputInfo, error) {
	return s.api.InputInfo(ctx)
}

const gradeRangeMessage = "grade must be a number between 0.0 and 10.0"

var gradeFormMessages = fieldMessages{
	"CourseID":  "select a course",
	"StudentID": "select a student",
	"Grade":     "grade is required",
}

var gradeMessages = fieldMessages{
	"Grade": gradeRangeMessage,
}

func (s *RegistrationService) CreateGrade(ctx context.Context, sessionID string, form model.GradeForm) (model.CreateGradeRequest, error) {
	req, err := ParseGradeForm(form)
	if err != nil {
		return model.CreateGradeRequest{}, err
	}

	if err := s.api.CreateGrade(ctx, req); err != nil {
		return model.CreateGradeRequest{}, err
	}

	s.publish(event.TypeGradeCreated, sessionID, map[string]any{
		"course_id":  req.CourseID,
		"student_id": req.StudentID,
		"grade":      req.Grade,
	})
	return req, nil
}

// ParseGradeForm checks the raw form values and converts the grade. Every
// failure is a validation error raised before any request is made.
func ParseGradeForm(form model.GradeForm) (model.CreateGradeRequest, error) {
	form.Grade = strings.TrimSpace(form.Grade)
	if err := checkStruct(form, gradeFormMessages); err != nil {
		return model.CreateGradeRequest{}, err
	}

	value, err := strconv.ParseFloat(form.Grade, 64)
	if err != nil {
		return model.CreateGradeRequest{}, invalidGrade()
	}

	req := model.CreateGradeRequest{
		CourseID:  form.CourseID,
		StudentID: form.StudentID,
		Grade:     value,
	}
	if err := checkStruct(req, gradeMessages); err != nil {
		return model.CreateGradeRequest{}, err
	}
	return req, nil
}

func invalidGrade() error {
	return apierror.Validation(model.ErrInvalidInput, gradeRangeMessage, "Grade")
}

func (s *RegistrationService) publish(t event.Type, sessionID string, payload map[string]any) {
	if s.bus != nil {
		s.bus.Publish(event.New(t, sessionID, payload))
	}
}

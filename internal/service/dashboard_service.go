package service

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"

	"school-portal/internal/model"
	"school-portal/internal/portalapi"
	"school-portal/internal/token"
	"school-portal/internal/tokenstore"
	"school-portal/pkg/apierror"
)

type studentAPI interface {
	StudentInfo(ctx context.Context, token string) (model.StudentInfo, error)
}

type tokenExpirer interface {
	ExpireToken(ctx context.Context, sessionID string)
}

type DashboardService struct {
	api     studentAPI
	tokens  tokenstore.Store
	expirer tokenExpirer
}

func NewDashboardService(api studentAPI, tokens tokenstore.Store, expirer tokenExpirer) *DashboardService {
	return &DashboardService{api: api, tokens: tokens, expirer: expirer}
}

// Student loads the grade summary for the session's token. A 401 from the API
// clears the token and ends the session before the error is returned.
func (s *DashboardService) Student(ctx context.Context, sessionID string) (model.StudentDashboard, error) {
	raw, err := s.tokens.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, model.ErrTokenNotFound) {
			return model.StudentDashboard{}, apierror.Unauthorized(model.ErrTokenNotFound, "token not found, please log in again")
		}
		return model.StudentDashboard{}, err
	}

	decoded, ok := token.Decode(raw)
	if !ok || decoded.ID() == "" {
		return model.StudentDashboard{}, apierror.Wrap(model.ErrNoIdentity, "NO_IDENTITY", "student id not found in token", "", http.StatusUnprocessableEntity)
	}

	info, err := s.api.StudentInfo(ctx, raw)
	if err != nil {
		if portalapi.IsUnauthorized(err) {
			s.expirer.ExpireToken(ctx, sessionID)
			return model.StudentDashboard{}, apierror.Unauthorized(err, "token expired or invalid, please log in again")
		}
		return model.StudentDashboard{}, err
	}

	view := BuildStudentDashboard(info)
	view.Identity = decoded.Identity()
	return view, nil
}

func (s *DashboardService) Teacher(ctx context.Context, sessionID string) model.TeacherDashboard {
	identity := model.Identity{Name: "Teacher", Role: model.RoleTeacher.Claim()}

	raw, err := s.tokens.Get(ctx, sessionID)
	if err != nil {
		return model.TeacherDashboard{Identity: identity}
	}
	if decoded, ok := token.Decode(raw); ok {
		identity = decoded.Identity()
		if decoded.Name == "" && decoded.Email == "" {
			identity.Name = "Teacher"
		}
	}
	return model.TeacherDashboard{Identity: identity}
}

// BuildStudentDashboard derives the display fields from the API summary.
func BuildStudentDashboard(info model.StudentInfo) model.StudentDashboard {
	view := model.StudentDashboard{
		StudentID:      info.StudentID,
		CourseCount:    info.CourseCount,
		OverallAverage: FormatAverage(info.OverallAverage),
		Courses:        make([]model.CourseView, 0, len(info.Summaries)),
	}

	for _, summary := range info.Summaries {
		view.TotalGrades += summary.GradeCount
		if summary.Average >= model.PassingAverage {
			view.PassingCourses++
		}

		view.Courses = append(view.Courses, model.CourseView{
			CourseSummary: summary,
			AverageText:   FormatAverage(summary.Average),
			Percentage:    AveragePercentage(summary.Average),
			Tier:          TierOf(summary.Average),
		})
	}

	if len(info.Summaries) > 0 {
		view.PassingRatio = float64(view.PassingCourses) / float64(len(info.Summaries))
	}

	return view
}

func FormatAverage(average float64) string {
	return strconv.FormatFloat(average, 'f', 2, 64)
}

// AveragePercentage maps a 0-10 average onto 0-100, capped at 100.
func AveragePercentage(average float64) float64 {
	return math.Min(average*10, 100)
}

func TierOf(average float64) model.Tier {
	switch {
	case average >= model.PassingAverage:
		return model.TierGood
	case average >= 5:
		return model.TierWarning
	default:
		return model.TierPoor
	}
}

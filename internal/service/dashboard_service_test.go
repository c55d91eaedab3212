package service

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"

	"school-portal/internal/event"
	"school-portal/internal/model"
	"school-portal/internal/session"
	"school-portal/internal/tokenstore"
	"school-portal/pkg/apierror"
)

type fakeStudentAPI struct {
	info  model.StudentInfo
	err   error
	token string
}

func (f *fakeStudentAPI) StudentInfo(_ context.Context, token string) (model.StudentInfo, error) {
	f.token = token
	return f.info, f.err
}

func studentToken(payload string) string {
	return "eyJhbGciOiJIUzI1NiJ9." + base64.RawURLEncoding.EncodeToString([]byte(payload)) + ".c2ln"
}

func TestBuildStudentDashboard(t *testing.T) {
	t.Parallel()

	view := BuildStudentDashboard(model.StudentInfo{
		StudentID:      "s1",
		CourseCount:    3,
		OverallAverage: 6.666,
		Summaries: []model.CourseSummary{
			{CourseID: "c1", Average: 9.5, GradeCount: 2},
			{CourseID: "c2", Average: 5, GradeCount: 3},
			{CourseID: "c3", Average: 4.999, GradeCount: 1},
		},
	})

	require.Equal(t, "6.67", view.OverallAverage)
	require.Equal(t, 6, view.TotalGrades)
	require.Equal(t, 1, view.PassingCourses)
	require.InDelta(t, 1.0/3.0, view.PassingRatio, 1e-9)

	require.Equal(t, model.TierGood, view.Courses[0].Tier)
	require.Equal(t, model.TierWarning, view.Courses[1].Tier)
	require.Equal(t, model.TierPoor, view.Courses[2].Tier)
	require.Equal(t, "9.50", view.Courses[0].AverageText)
	require.InDelta(t, 95.0, view.Courses[0].Percentage, 1e-9)
}

func TestAveragePercentageCaps(t *testing.T) {
	t.Parallel()

	require.Equal(t, 100.0, AveragePercentage(10.5))
	require.Equal(t, 0.0, AveragePercentage(0))
}

func TestDashboardStudent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	raw := studentToken(`{"sub":"u1","studentId":"st1","email":"ana@school.test","role":"Student"}`)

	newFixture := func(api *fakeStudentAPI) (*DashboardService, *tokenstore.Memory, *session.Registry) {
		tokens := tokenstore.NewMemory()
		sessions := session.NewRegistry()
		auth := NewAuthService(&fakeLoginAPI{}, tokens, sessions, event.NewBus())
		return NewDashboardService(api, tokens, auth), tokens, sessions
	}

	t.Run("loads the summary with the stored token", func(t *testing.T) {
		api := &fakeStudentAPI{info: model.StudentInfo{StudentID: "st1", OverallAverage: 8}}
		service, tokens, _ := newFixture(api)
		require.NoError(t, tokens.Set(ctx, "s1", raw))

		view, err := service.Student(ctx, "s1")
		require.NoError(t, err)
		require.Equal(t, raw, api.token)
		require.Equal(t, "st1", view.Identity.ID)
		require.Equal(t, "ana", view.Identity.Name)
		require.Equal(t, "8.00", view.OverallAverage)
	})

	t.Run("401 clears the token and ends the session", func(t *testing.T) {
		api := &fakeStudentAPI{err: apierror.Unauthorized(model.ErrUnauthorized, "token expired or invalid, please log in again")}
		service, tokens, sessions := newFixture(api)
		require.NoError(t, tokens.Set(ctx, "s1", raw))
		sessions.Start("s1", model.RoleStudent, false)

		_, err := service.Student(ctx, "s1")
		require.ErrorIs(t, err, model.ErrUnauthorized)
		require.Zero(t, tokens.Len())
		_, ok := sessions.Get("s1")
		require.False(t, ok)
	})

	t.Run("missing token is reported before any request", func(t *testing.T) {
		api := &fakeStudentAPI{}
		service, _, _ := newFixture(api)

		_, err := service.Student(ctx, "s1")
		require.ErrorIs(t, err, model.ErrTokenNotFound)
		require.Empty(t, api.token)
	})

	t.Run("token without an id is reported before any request", func(t *testing.T) {
		api := &fakeStudentAPI{}
		service, tokens, _ := newFixture(api)
		require.NoError(t, tokens.Set(ctx, "s1", studentToken(`{"email":"a@b"}`)))

		_, err := service.Student(ctx, "s1")
		require.ErrorIs(t, err, model.ErrNoIdentity)
		require.Empty(t, api.token)
	})
}

func TestDashboardTeacher(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tokens := tokenstore.NewMemory()
	service := NewDashboardService(&fakeStudentAPI{}, tokens, nil)

	require.Equal(t, "Teacher", service.Teacher(ctx, "s1").Identity.Name)

	require.NoError(t, tokens.Set(ctx, "s1", studentToken(`{"name":"Prof. Lima","role":"Teacher"}`)))
	require.Equal(t, "Prof. Lima", service.Teacher(ctx, "s1").Identity.Name)
}

package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"school-portal/internal/model"
	"school-portal/pkg/apierror"
)

func TestRendererPages(t *testing.T) {
	t.Parallel()

	renderer, err := NewRenderer()
	require.NoError(t, err)

	loggedIn := pageBase{Session: model.Session{IsLoggedIn: true, UserType: model.RoleStudent}}

	cases := []struct {
		page string
		data any
		want []string
	}{
		{"login", loginPage{Roles: loginRoles}, []string{"Log in as Student", "Log in as Teacher"}},
		{"register", registerPage{Error: "invalid email"}, []string{"banner-error", "invalid email"}},
		{"student", studentPage{pageBase: loggedIn, View: model.StudentDashboard{
			Identity:       model.Identity{Name: "Ana"},
			OverallAverage: "8.00",
			PassingRatio:   0.5,
			Courses: []model.CourseView{{
				CourseSummary: model.CourseSummary{CourseName: "Physics", GradeCount: 3},
				AverageText:   "8.00",
				Percentage:    80,
				Tier:          model.TierGood,
			}},
		}}, []string{"Hello, Ana!", "Passing (50%)", "tier-good", `value="80"`, "Log out"}},
		{"teacher", teacherPage{View: model.TeacherDashboard{Identity: model.Identity{Name: "Teacher"}}}, []string{"Welcome, Teacher!"}},
		{"grade", gradePage{Inputs: model.InputInfo{Courses: []model.Option{{ID: "c1", Name: "Art"}}}, Form: model.GradeForm{CourseID: "c1"}}, []string{`value="c1" selected`}},
		{"subject", subjectPage{Success: "Subject created successfully!"}, []string{"banner-success"}},
	}

	for _, tc := range cases {
		t.Run(tc.page, func(t *testing.T) {
			rec := httptest.NewRecorder()
			renderer.Render(rec, http.StatusOK, tc.page, tc.data)

			require.Equal(t, http.StatusOK, rec.Code)
			require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
			for _, fragment := range tc.want {
				require.Contains(t, rec.Body.String(), fragment)
			}
		})
	}

	t.Run("unknown page", func(t *testing.T) {
		rec := httptest.NewRecorder()
		renderer.Render(rec, http.StatusOK, "missing", nil)
		require.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("escapes user input", func(t *testing.T) {
		rec := httptest.NewRecorder()
		renderer.Render(rec, http.StatusBadRequest, "subject", subjectPage{Name: `"><script>x</script>`})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.NotContains(t, rec.Body.String(), "<script>x</script>")
	})
}

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"api error keeps its status", apierror.Validation(model.ErrInvalidInput, "grade is required", "grade"), http.StatusBadRequest, "VALIDATION_FAILED"},
		{"role mismatch", apierror.Unauthorized(model.ErrRoleMismatch, "nope"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"wrapped sentinel", fmt.Errorf("load: %w", model.ErrTokenNotFound), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"login in progress", model.ErrLoginInProgress, http.StatusConflict, "LOGIN_IN_PROGRESS"},
		{"upstream", model.ErrUpstream, http.StatusBadGateway, "UPSTREAM_ERROR"},
		{"upstream redirect is not passed through", apierror.Wrap(model.ErrUpstream, "UPSTREAM_ERROR", "moved", "", http.StatusFound), http.StatusBadGateway, "UPSTREAM_ERROR"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := classify(tc.err)
			require.Equal(t, tc.status, status)
			require.Equal(t, tc.code, body.Code)
		})
	}
}

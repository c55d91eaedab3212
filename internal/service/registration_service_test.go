package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"school-portal/internal/model"
	"school-portal/pkg/apierror"
)

type fakeFormAPI struct {
	accounts []model.RegisterRequest
	roles    []model.Role
	subjects []model.CreateSubjectRequest
	grades   []model.CreateGradeRequest
	info     model.InputInfo
	err      error
}

func (f *fakeFormAPI) CreateAccount(_ context.Context, role model.Role, payload model.RegisterRequest) error {
	f.roles = append(f.roles, role)
	f.accounts = append(f.accounts, payload)
	return f.err
}

func (f *fakeFormAPI) CreateSubject(_ context.Context, payload model.CreateSubjectRequest) error {
	f.subjects = append(f.subjects, payload)
	return f.err
}

func (f *fakeFormAPI) CreateGrade(_ context.Context, payload model.CreateGradeRequest) error {
	f.grades = append(f.grades, payload)
	return f.err
}

func (f *fakeFormAPI) InputInfo(context.Context) (model.InputInfo, error) {
	return f.info, f.err
}

func TestRegister(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("valid submit posts once to the role endpoint", func(t *testing.T) {
		api := &fakeFormAPI{}
		service := NewRegistrationService(api, nil)

		err := service.Register(ctx, "s1", model.RegisterRequest{Name: "  Ana ", Email: "ana@school.test", Password: "123456", Role: "Teacher"})
		require.NoError(t, err)
		require.Len(t, api.accounts, 1)
		require.Equal(t, []model.Role{model.RoleTeacher}, api.roles)
		require.Equal(t, "Ana", api.accounts[0].Name)
	})

	cases := []struct {
		name string
		req  model.RegisterRequest
		want string
	}{
		{"blank name", model.RegisterRequest{Name: "   ", Email: "a@b", Password: "123456", Role: model.RoleStudent}, "name is required"},
		{"email without at sign", model.RegisterRequest{Name: "Ana", Email: "ana.school", Password: "123456", Role: model.RoleStudent}, "invalid email"},
		{"short password", model.RegisterRequest{Name: "Ana", Email: "a@b", Password: "12345", Role: model.RoleStudent}, "password must have at least 6 characters"},
		{"unknown role", model.RegisterRequest{Name: "Ana", Email: "a@b", Password: "123456", Role: "admin"}, "select an account type"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := &fakeFormAPI{}
			err := NewRegistrationService(api, nil).Register(ctx, "s1", tc.req)
			require.ErrorIs(t, err, model.ErrInvalidInput)
			require.Equal(t, tc.want, apierror.MessageOf(err))
			require.Empty(t, api.accounts)
		})
	}

	t.Run("upstream message is returned as is", func(t *testing.T) {
		api := &fakeFormAPI{err: apierror.New("UPSTREAM_ERROR", "email already registered", "", 409)}
		err := NewRegistrationService(api, nil).Register(ctx, "s1", model.RegisterRequest{Name: "Ana", Email: "a@b", Password: "123456", Role: model.RoleStudent})
		require.Equal(t, "email already registered", apierror.MessageOf(err))
	})
}

func TestCreateSubject(t *testing.T) {
	t.Parallel()

	api := &fakeFormAPI{}
	service := NewRegistrationService(api, nil)

	err := service.CreateSubject(context.Background(), "s1", model.CreateSubjectRequest{Name: " "})
	require.Equal(t, "subject name is required", apierror.MessageOf(err))
	require.Empty(t, api.subjects)

	require.NoError(t, service.CreateSubject(context.Background(), "s1", model.CreateSubjectRequest{Name: "Physics"}))
	require.Equal(t, []model.CreateSubjectRequest{{Name: "Physics"}}, api.subjects)
}

func TestParseGradeForm(t *testing.T) {
	t.Parallel()

	valid := func(grade string) model.GradeForm {
		return model.GradeForm{CourseID: "c1", StudentID: "s1", Grade: grade}
	}

	for _, grade := range []string{"0", "10", "7.5", " 4.25 "} {
		t.Run("accepts "+grade, func(t *testing.T) {
			_, err := ParseGradeForm(valid(grade))
			require.NoError(t, err)
		})
	}

	rejected := []struct {
		form model.GradeForm
		want string
	}{
		{valid("-1"), gradeRangeMessage},
		{valid("10.1"), gradeRangeMessage},
		{valid("abc"), gradeRangeMessage},
		{valid("NaN"), gradeRangeMessage},
		{valid(""), "grade is required"},
		{model.GradeForm{StudentID: "s1", Grade: "5"}, "select a course"},
		{model.GradeForm{CourseID: "c1", Grade: "5"}, "select a student"},
	}

	for _, tc := range rejected {
		t.Run("rejects "+tc.form.Grade+" "+tc.want, func(t *testing.T) {
			_, err := ParseGradeForm(tc.form)
			require.ErrorIs(t, err, model.ErrInvalidInput)
			require.Equal(t, tc.want, apierror.MessageOf(err))
		})
	}
}

func TestCreateGrade(t *testing.T) {
	t.Parallel()

	api := &fakeFormAPI{}
	service := NewRegistrationService(api, nil)

	req, err := service.CreateGrade(context.Background(), "s1", model.GradeForm{CourseID: "c1", StudentID: "st1", Grade: "7.5"})
	require.NoError(t, err)
	require.Equal(t, model.CreateGradeRequest{CourseID: "c1", StudentID: "st1", Grade: 7.5}, req)
	require.Len(t, api.grades, 1)

	_, err = service.CreateGrade(context.Background(), "s1", model.GradeForm{CourseID: "c1", StudentID: "st1", Grade: "11"})
	require.Error(t, err)
	require.Len(t, api.grades, 1)
}

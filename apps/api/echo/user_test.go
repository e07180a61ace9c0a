package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillx/skillx/core/report"
	"github.com/skillx/skillx/core/user"
	"github.com/skillx/skillx/tests"
)

func Test_home(t *testing.T) {
	a := setup(t)
	req, rec := newRequest(http.MethodGet, "/")
	a.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to SkillX API!", rec.Body.String())
}

func Test_userApi_register(t *testing.T) {
	a := setup(t)
	testutil.CreateLearner(t, a.svcs.Users, "Ada", "ada@skillx.io")

	newUser := func(name, email, role, studentType string) []byte {
		return marchallObj(t, user.NewUser{
			Name:            name,
			Email:           email,
			Password:        testutil.DefaultPassword,
			PasswordConfirm: testutil.DefaultPassword,
			Role:            role,
			StudentType:     studentType,
		})
	}

	tests := []httpTest{
		{
			name: "missing fields", body: []byte(`{}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"name":             "this field is required",
				"email":            "this field is required",
				"password":         "this field is required",
				"password_confirm": "this field is required",
				"role":             "this field is required",
			}),
		},
		{
			name: "student without student type", body: newUser("Bob", "bob@skillx.io", user.RoleStudent, ""),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"student_type": "student type is required for students"}),
		},
		{
			name: "duplicate email", body: newUser("Ada 2", "ada@skillx.io", user.RoleStudent, user.StudentLearner),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": user.ErrEmailExists.Error()}),
		},
		{name: "student", body: newUser("Bob", "bob@skillx.io", user.RoleStudent, user.StudentBoth), wantCode: http.StatusCreated},
		{name: "faculty", body: newUser("Prof", "prof@skillx.io", user.RoleFaculty, user.StudentMentor), wantCode: http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.method = http.MethodPost
			tt.path = "/v1/users/register"
			rec := a.run(t, tt)
			checkCodeAndData(t, tt, rec)
		})
	}

	faculty, err := a.svcs.Users.Filter(ctxBg, user.QueryFilter{Roles: []string{user.RoleFaculty}})
	require.NoError(t, err)
	require.Len(t, faculty, 1)
	assert.Empty(t, faculty[0].StudentType)
}

func Test_userApi_loginLogout(t *testing.T) {
	a := setup(t)
	ada := testutil.CreateLearner(t, a.svcs.Users, "Ada", "ada@skillx.io")

	tests := []httpTest{
		{name: "missing credentials", body: []byte(`{}`), wantCode: http.StatusBadRequest},
		{
			name: "unknown email", body: []byte(`{"email": "nope@skillx.io", "password": "secret123"}`),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: user.ErrInvalidCredentials.Error()}),
		},
		{
			name: "wrong password", body: []byte(`{"email": "ada@skillx.io", "password": "nope"}`),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: user.ErrInvalidCredentials.Error()}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.method = http.MethodPost
			tt.path = "/v1/users/login"
			checkCodeAndData(t, tt, a.run(t, tt))
		})
	}

	token := a.getToken(t, ada)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, ada)}, a.run(t, httpTest{path: "/v1/users/me", token: token}))

	rec := a.run(t, httpTest{method: http.MethodPost, path: "/v1/users/logout", token: token})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	checkCodeAndData(
		t,
		httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "session expired"})},
		a.run(t, httpTest{path: "/v1/users/me", token: token}),
	)
}

func Test_userApi_authRequired(t *testing.T) {
	a := setup(t)
	paths := []string{
		"/v1/users/me", "/v1/skills", "/v1/enrollments", "/v1/payments",
		"/v1/notifications", "/v1/verifications", "/v1/reports/platform",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			tt := httpTest{path: path, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}
			checkCodeAndData(t, tt, a.run(t, tt))
		})
	}

	tt := httpTest{path: "/v1/users/me", token: "not.a.jwt", wantCode: http.StatusUnauthorized}
	checkCodeAndData(t, tt, a.run(t, tt))
}

func Test_userApi_stats(t *testing.T) {
	a := setup(t)
	prof := testutil.CreateFaculty(t, a.svcs.Users, "Prof", "prof@skillx.io")
	mentor := testutil.CreateMentor(t, a.svcs.Users, "Mia", "mia@skillx.io")
	learner := testutil.CreateLearner(t, a.svcs.Users, "Leo", "leo@skillx.io")
	s := testutil.CreateSkill(t, a.svcs, mentor, "Go", "Programming", 40, &prof)
	_, err := a.svcs.Enrollments.Enroll(ctxBg, learner, s.ID)
	require.NoError(t, err)

	tests := []httpTest{
		{
			name: "mentor", token: a.getToken(t, mentor), wantCode: http.StatusOK,
			wantData: marchallObj(t, report.ProfileStats{SkillsTaught: 1, TotalEarnings: 40, CanTeach: true}),
		},
		{
			name: "learner", token: a.getToken(t, learner), wantCode: http.StatusOK,
			wantData: marchallObj(t, report.ProfileStats{TotalSpent: 40}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.path = "/v1/users/me/stats"
			checkCodeAndData(t, tt, a.run(t, tt))
		})
	}
}

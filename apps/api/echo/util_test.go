package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	echoapi "github.com/skillx/skillx/apps/api/echo"
	"github.com/skillx/skillx/core"
	"github.com/skillx/skillx/core/enrollment"
	"github.com/skillx/skillx/core/user"
	"github.com/skillx/skillx/tests"
)

var (
	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	ctxBg           = context.Background()
)

type app struct {
	echoapi.Server
	svcs *testutil.Services
}

func setup(t *testing.T, gateway ...enrollment.PaymentGateway) *app {
	t.Helper()
	var gw enrollment.PaymentGateway
	if len(gateway) > 0 {
		gw = gateway[0]
	}
	svcs := testutil.NewServices(t, nil, gw)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:             core.NewTestConfig(),
			Logger:           new(testutil.NopLogger),
			Validate:         validate,
			Translator:       translator,
			UserSvc:          svcs.Users,
			SkillSvc:         svcs.Skills,
			EnrollmentSvc:    svcs.Enrollments,
			VideoSvc:         svcs.Videos,
			VerificationSvc:  svcs.Verifications,
			NotificationSvc:  svcs.Notifications,
			ReportSvc:        svcs.Reports,
			DisableReqLogs:   true,
			ShutdownSignalCh: make(chan os.Signal, 1),
		},
	)
	return &app{Server: server, svcs: svcs}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// getToken logs usr in through the API.
func (a *app) getToken(t *testing.T, usr user.User) string {
	t.Helper()
	req, rec := newRequest(http.MethodPost, "/v1/users/login", marchallObj(t, echoapi.LoginRequest{
		Email:    usr.Email,
		Password: testutil.DefaultPassword,
	}))
	a.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("getToken() failed: %d %s", rec.Code, rec.Body.String())
	}
	var res struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return res.Token
}

func (a *app) run(t *testing.T, tt httpTest) *httptest.ResponseRecorder {
	t.Helper()
	method := tt.method
	if method == "" {
		method = http.MethodGet
	}
	req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
	a.ServeHTTP(rec, req)
	return rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	l1, ok1 := j1.([]interface{})
	l2, ok2 := j2.([]interface{})
	if !(ok1 && ok2) {
		return false, nil
	}
	return assert.ElementsMatch(t, l1, l2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

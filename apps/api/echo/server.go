package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/kat-co/vala"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/skillx/skillx/core"
	"github.com/skillx/skillx/core/enrollment"
	"github.com/skillx/skillx/core/notification"
	"github.com/skillx/skillx/core/report"
	"github.com/skillx/skillx/core/skill"
	"github.com/skillx/skillx/core/user"
	"github.com/skillx/skillx/core/verification"
	"github.com/skillx/skillx/core/video"
)

type (
	ServerDeps struct {
		Conf             *core.Config
		Logger           core.Logger
		Validate         *validator.Validate
		Translator       ut.Translator
		UserSvc          *user.Service
		SkillSvc         *skill.Service
		EnrollmentSvc    *enrollment.Service
		VideoSvc         *video.Service
		VerificationSvc  *verification.Service
		NotificationSvc  *notification.Service
		ReportSvc        *report.Service
		DisableReqLogs   bool
		ShutdownSignalCh chan os.Signal // optional
	}

	Server interface {
		http.Handler
		Start()
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
		Shutdown(ctx context.Context) error
		Close() error
	}

	server struct {
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
		jwt      *jwtAuth
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	vala.BeginValidation().Validate(
		vala.IsNotNil(deps.Conf, "conf"),
		vala.IsNotNil(deps.Logger, "logger"),
		vala.IsNotNil(deps.Validate, "validate"),
		vala.IsNotNil(deps.Translator, "translator"),
		vala.IsNotNil(deps.UserSvc, "userSvc"),
		vala.IsNotNil(deps.SkillSvc, "skillSvc"),
		vala.IsNotNil(deps.EnrollmentSvc, "enrollmentSvc"),
		vala.IsNotNil(deps.VideoSvc, "videoSvc"),
		vala.IsNotNil(deps.VerificationSvc, "verificationSvc"),
		vala.IsNotNil(deps.NotificationSvc, "notificationSvc"),
		vala.IsNotNil(deps.ReportSvc, "reportSvc"),
	).CheckAndPanic()

	s := &server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: deps.ShutdownSignalCh,
		jwt:      newJWTAuth(deps.Conf),
	}
	if s.shutdown == nil {
		s.shutdown = make(chan os.Signal, 1)
		signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1")
	authed := []echo.MiddlewareFunc{s.jwt.middleware(), sessionMiddleware(s.deps.UserSvc)}

	registerUserAPI(v1, authed, s.deps.UserSvc, s.deps.ReportSvc, s.jwt, s.deps.Validate)
	registerSkillAPI(v1, authed, s.deps.SkillSvc, s.deps.EnrollmentSvc, s.deps.VideoSvc, s.deps.Validate)
	registerEnrollmentAPI(v1, authed, s.deps.EnrollmentSvc)
	registerVideoAPI(v1, authed, s.deps.VideoSvc)
	registerVerificationAPI(v1, authed, s.deps.VerificationSvc, s.deps.Validate)
	registerNotificationAPI(v1, authed, s.deps.NotificationSvc)
	registerReportAPI(v1, authed, s.deps.ReportSvc)
}

func (s *server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Host); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *server) Errors() <-chan error {
	return s.errors
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already shutting down
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.deps.Conf.AppName+" API!")
}

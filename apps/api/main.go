package main

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"time"

	"github.com/go-playground/validator/v10"

	echoapi "github.com/skillx/skillx/apps/api/echo"
	"github.com/skillx/skillx/core"
	"github.com/skillx/skillx/core/enrollment"
	"github.com/skillx/skillx/core/notification"
	"github.com/skillx/skillx/core/report"
	"github.com/skillx/skillx/core/skill"
	"github.com/skillx/skillx/core/user"
	"github.com/skillx/skillx/core/verification"
	"github.com/skillx/skillx/core/video"
	emailsvc "github.com/skillx/skillx/services/email"
	eventsvc "github.com/skillx/skillx/services/events"
	logsvc "github.com/skillx/skillx/services/logger"
	paymentsvc "github.com/skillx/skillx/services/payment"
	uploadsvc "github.com/skillx/skillx/services/upload"
	"github.com/skillx/skillx/storage/database"
	storerepos "github.com/skillx/skillx/storage/repos"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(os.Stdout, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")

	// set up storage
	store, err := database.OpenStore(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up storage: %v", err), err)
	}
	defer func() {
		if err = store.Close(); err != nil {
			logger.Error("closing storage", err)
		}
	}()

	// set up services
	events := eventsvc.New(conf, logger)
	defer func() {
		if err = events.Close(); err != nil {
			logger.Error("closing event publisher", err)
		}
	}()
	mailSvc := emailsvc.New(conf, logger)

	usrSvc := user.NewService(storerepos.NewUserRepository(store))
	notifSvc := notification.NewService(storerepos.NewNotificationRepository(store), mailSvc, events, logger)
	skillSvc := skill.NewService(storerepos.NewSkillRepository(store), usrSvc, notifSvc, events, logger)
	enrollSvc := enrollment.NewService(enrollment.Deps{
		Repo:           storerepos.NewEnrollmentRepository(store),
		Skills:         skillSvc,
		Users:          usrSvc,
		Notifier:       notifSvc,
		Gateway:        paymentsvc.NewSimulatedGateway(conf.Payment.Delay),
		Events:         events,
		Logger:         logger,
		PaymentTimeout: conf.Payment.Timeout,
	})
	videoSvc := video.NewService(
		storerepos.NewVideoRepository(store),
		skillSvc,
		uploadsvc.NewSimulatedUploader(conf.Upload.Delay),
		events,
		logger,
		conf.Upload.Timeout,
	)
	verifSvc := verification.NewService(storerepos.NewVerificationRepository(store), skillSvc, usrSvc, notifSvc, events, logger)
	reportSvc := report.NewService(usrSvc, skillSvc, enrollSvc, videoSvc, verifSvc)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("storage").Set(conf.Storage.Driver)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:            conf,
			Logger:          logger,
			Validate:        validate,
			Translator:      translator,
			UserSvc:         usrSvc,
			SkillSvc:        skillSvc,
			EnrollmentSvc:   enrollSvc,
			VideoSvc:        videoSvc,
			VerificationSvc: verifSvc,
			NotificationSvc: notifSvc,
			ReportSvc:       reportSvc,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Error(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		timeout := conf.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

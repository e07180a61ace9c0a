package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/skillx/skillx/core"
	"github.com/skillx/skillx/core/enrollment"
	"github.com/skillx/skillx/core/report"
	"github.com/skillx/skillx/core/skill"
	"github.com/skillx/skillx/core/user"
	"github.com/skillx/skillx/core/verification"
	"github.com/skillx/skillx/core/video"
	logsvc "github.com/skillx/skillx/services/logger"
	"github.com/skillx/skillx/storage/database"
	storerepos "github.com/skillx/skillx/storage/repos"
)

var ctxBg = context.Background()

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(os.Stderr, conf)

	store, err := database.OpenStore(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up storage: %v", err), err)
	}

	cli := newCommandLine(conf, store, os.Stdout)
	err = cli.run(os.Args)
	if cErr := store.Close(); cErr != nil {
		logger.Error("closing storage", cErr)
	}
	if err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %v", err), err)
		}
		os.Exit(1)
	}
}

// newCommandLine wires the read side services the admin commands need on top of store.
func newCommandLine(conf *core.Config, store core.Store, out io.Writer) *commandLine {
	usrSvc := user.NewService(storerepos.NewUserRepository(store))
	reportSvc := report.NewService(
		usrSvc,
		&readOnlySkills{storerepos.NewSkillRepository(store)},
		&readOnlyEnrollments{storerepos.NewEnrollmentRepository(store)},
		&readOnlyVideos{storerepos.NewVideoRepository(store)},
		&readOnlyVerifications{storerepos.NewVerificationRepository(store)},
	)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	cli := &commandLine{
		store:     store,
		usrSvc:    usrSvc,
		reportSvc: reportSvc,
		validate:  validate,
		out:       out,
	}
	if conf.Storage.Driver == core.StoragePostgres {
		cli.openDB = func() (*sql.DB, error) { return database.Open(conf) }
	}
	return cli
}

// The report sources below read straight from the repositories,
// so the CLI needs neither notifications nor event publishing.

type readOnlySkills struct{ repo skill.Repository }

func (r *readOnlySkills) ListAll(ctx context.Context) ([]skill.Skill, error) {
	return r.repo.QueryAllSkills(ctx)
}

type readOnlyEnrollments struct{ repo enrollment.Repository }

func (r *readOnlyEnrollments) ListAll(ctx context.Context) ([]enrollment.Enrollment, error) {
	return r.repo.QueryAllEnrollments(ctx)
}

func (r *readOnlyEnrollments) ListPayments(ctx context.Context) ([]enrollment.Payment, error) {
	return r.repo.QueryAllPayments(ctx)
}

type readOnlyVideos struct{ repo video.Repository }

func (r *readOnlyVideos) ListAll(ctx context.Context) ([]video.Video, error) {
	return r.repo.QueryAllVideos(ctx)
}

type readOnlyVerifications struct{ repo verification.Repository }

func (r *readOnlyVerifications) ListAll(ctx context.Context) ([]verification.Verification, error) {
	return r.repo.QueryAllVerifications(ctx)
}

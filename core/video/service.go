package video

import (
	"context"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/skillx/skillx/core"
	"github.com/skillx/skillx/core/skill"
	"github.com/skillx/skillx/core/user"
)

var (
	ErrNotFound = errors.New("video not found")
	ErrNotOwner = errors.New("videos can only be uploaded to your own approved skills")
)

type (
	Repository interface {
		CreateVideo(ctx context.Context, v Video) (Video, error)
		QueryAllVideos(ctx context.Context) ([]Video, error)
		FilterVideos(ctx context.Context, filter QueryFilter) ([]Video, error)
	}

	// Uploader stores a file and returns its stored name. Upload blocks until done or ctx is done.
	Uploader interface {
		Upload(ctx context.Context, fileName string) (string, error)
	}

	Skills interface {
		GetApproved(ctx context.Context, id string) (skill.Skill, error)
	}

	Service struct {
		repo          Repository
		skills        Skills
		uploader      Uploader
		events        core.EventPublisher
		logger        core.Logger
		uploadTimeout time.Duration
	}
)

func NewService(repo Repository, skills Skills, uploader Uploader, events core.EventPublisher, logger core.Logger, uploadTimeout time.Duration) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(skills, "skills"),
		vala.IsNotNil(uploader, "uploader"),
		vala.IsNotNil(events, "events"),
		vala.IsNotNil(logger, "logger"),
	).CheckAndPanic()
	return &Service{
		repo:          repo,
		skills:        skills,
		uploader:      uploader,
		events:        events,
		logger:        logger,
		uploadTimeout: uploadTimeout,
	}
}

// Upload attaches a video to one of the mentor's approved skills.
func (svc *Service) Upload(ctx context.Context, mentor user.User, nv NewVideo) (Video, error) {
	s, err := svc.skills.GetApproved(ctx, nv.SkillID)
	if err != nil {
		return Video{}, err
	}
	if s.MentorID != mentor.ID {
		return Video{}, ErrNotOwner
	}

	uctx := ctx
	if svc.uploadTimeout > 0 {
		var cancel context.CancelFunc
		uctx, cancel = context.WithTimeout(ctx, svc.uploadTimeout)
		defer cancel()
	}
	fileName, err := svc.uploader.Upload(uctx, nv.FileName)
	if err != nil {
		return Video{}, errors.Wrap(err, "uploading video")
	}

	v, err := svc.repo.CreateVideo(ctx, Video{
		SkillID:    s.ID,
		MentorID:   mentor.ID,
		Title:      nv.Title,
		FileName:   fileName,
		UploadedAt: core.Now(),
	})
	if err != nil {
		return Video{}, errors.Wrap(err, "creating video")
	}
	core.PublishOrLog(ctx, svc.events, svc.logger, core.NewEvent(core.EventVideoUploaded, v.ID, v))
	return v, nil
}

func (svc *Service) ListBySkill(ctx context.Context, skillID string) ([]Video, error) {
	return svc.repo.FilterVideos(ctx, QueryFilter{SkillID: skillID})
}

func (svc *Service) ListByMentor(ctx context.Context, mentorID string) ([]Video, error) {
	return svc.repo.FilterVideos(ctx, QueryFilter{MentorID: mentorID})
}

func (svc *Service) ListAll(ctx context.Context) ([]Video, error) {
	return svc.repo.QueryAllVideos(ctx)
}

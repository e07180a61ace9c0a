package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/skillx/skillx/core/enrollment"
	"github.com/skillx/skillx/core/skill"
	"github.com/skillx/skillx/core/video"
)

type skillApi struct {
	svc           *skill.Service
	enrollmentSvc *enrollment.Service
	videoSvc      *video.Service
	validate      *validator.Validate
}

func registerSkillAPI(
	g *echo.Group,
	authed []echo.MiddlewareFunc,
	svc *skill.Service,
	enrollmentSvc *enrollment.Service,
	videoSvc *video.Service,
	validate *validator.Validate,
) {
	api := skillApi{
		svc:           svc,
		enrollmentSvc: enrollmentSvc,
		videoSvc:      videoSvc,
		validate:      validate,
	}

	sg := g.Group("/skills", authed...)
	sg.GET("", api.query)
	sg.POST("", api.submit)
	sg.GET("/categories", api.categories)
	sg.GET("/mine", api.mine)
	sg.GET("/pending", api.pending, facultyMiddleware())

	// detail endpoints
	dg := sg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.POST("/approve", api.approve, facultyMiddleware())
	dg.POST("/reject", api.reject, facultyMiddleware())
	dg.GET("/enrollment", api.enrollmentStatus)
	dg.POST("/enroll", api.enroll)
	dg.GET("/videos", api.videos)
	dg.POST("/videos", api.uploadVideo)
}

// Handlers

func (api *skillApi) query(ctx echo.Context) error {
	filter := new(skill.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []skill.Skill{})
	}
	skills, err := api.svc.ListApproved(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying skills")
	}
	if skills == nil {
		skills = []skill.Skill{}
	}
	return ctx.JSON(http.StatusOK, skills)
}

func (api *skillApi) submit(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data skill.NewSkill
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSkill")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.Submit(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "submitting skill")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *skillApi) categories(ctx echo.Context) error {
	categories, err := api.svc.Categories(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing categories")
	}
	return ctx.JSON(http.StatusOK, categories)
}

func (api *skillApi) mine(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	skills, err := api.svc.ListByMentor(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "listing mentor skills")
	}
	if skills == nil {
		skills = []skill.Skill{}
	}
	return ctx.JSON(http.StatusOK, skills)
}

func (api *skillApi) pending(ctx echo.Context) error {
	skills, err := api.svc.ListPending(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing pending skills")
	}
	if skills == nil {
		skills = []skill.Skill{}
	}
	return ctx.JSON(http.StatusOK, skills)
}

// visibleSkill hides unapproved skills from everyone but their mentor and faculty.
func (api *skillApi) visibleSkill(ctx echo.Context) (skill.Skill, error) {
	usr, err := getContextUser(ctx)
	if err != nil {
		return skill.Skill{}, errors.Wrap(err, "getting context user")
	}
	s, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return skill.Skill{}, errors.Wrap(err, "finding skill")
	}
	if !(s.IsApproved() || s.MentorID == usr.ID || usr.IsFaculty()) {
		return skill.Skill{}, skill.ErrNotFound
	}
	return s, nil
}

func (api *skillApi) retrieve(ctx echo.Context) error {
	s, err := api.visibleSkill(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *skillApi) approve(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	s, err := api.svc.Approve(ctx.Request().Context(), usr, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "approving skill")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *skillApi) reject(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data skill.Rejection
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Rejection")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.Reject(ctx.Request().Context(), usr, ctx.Param("id"), data.Reason)
	if err != nil {
		return errors.Wrap(err, "rejecting skill")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *skillApi) enrollmentStatus(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	enrolled, err := api.enrollmentSvc.IsEnrolled(ctx.Request().Context(), usr.ID, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "checking enrollment")
	}
	return ctx.JSON(http.StatusOK, EnrollmentStatus{Enrolled: enrolled})
}

func (api *skillApi) enroll(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	e, err := api.enrollmentSvc.Enroll(ctx.Request().Context(), usr, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "enrolling")
	}
	return ctx.JSON(http.StatusCreated, e)
}

func (api *skillApi) videos(ctx echo.Context) error {
	s, err := api.visibleSkill(ctx)
	if err != nil {
		return err
	}
	videos, err := api.videoSvc.ListBySkill(ctx.Request().Context(), s.ID)
	if err != nil {
		return errors.Wrap(err, "listing skill videos")
	}
	if videos == nil {
		videos = []video.Video{}
	}
	return ctx.JSON(http.StatusOK, videos)
}

func (api *skillApi) uploadVideo(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data video.NewVideo
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewVideo")
	}
	data.SkillID = ctx.Param("id")
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	v, err := api.videoSvc.Upload(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "uploading video")
	}
	return ctx.JSON(http.StatusCreated, v)
}

type EnrollmentStatus struct {
	Enrolled bool `json:"enrolled"`
}

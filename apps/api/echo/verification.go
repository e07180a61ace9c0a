package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/skillx/skillx/core/verification"
)

type verificationApi struct {
	svc      *verification.Service
	validate *validator.Validate
}

func registerVerificationAPI(g *echo.Group, authed []echo.MiddlewareFunc, svc *verification.Service, validate *validator.Validate) {
	api := verificationApi{svc: svc, validate: validate}

	mw := append(append([]echo.MiddlewareFunc{}, authed...), facultyMiddleware())
	vg := g.Group("/verifications", mw...)
	vg.GET("", api.query)
	vg.POST("", api.schedule)
	vg.POST("/:id/complete", api.complete)
}

// Handlers

func (api *verificationApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	views, err := api.svc.ListForFaculty(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "listing verifications")
	}
	return ctx.JSON(http.StatusOK, views)
}

func (api *verificationApi) schedule(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data verification.NewVerification
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewVerification")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	v, err := api.svc.Schedule(ctx.Request().Context(), usr, data.SkillID, data.ScheduledDate)
	if err != nil {
		return errors.Wrap(err, "scheduling verification")
	}
	return ctx.JSON(http.StatusCreated, v)
}

func (api *verificationApi) complete(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data verification.Completion
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Completion")
	}

	v, err := api.svc.Complete(ctx.Request().Context(), usr, ctx.Param("id"), data.Remarks)
	if err != nil {
		return errors.Wrap(err, "completing verification")
	}
	return ctx.JSON(http.StatusOK, v)
}

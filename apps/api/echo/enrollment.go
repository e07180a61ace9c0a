package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/skillx/skillx/core/enrollment"
)

type enrollmentApi struct {
	svc *enrollment.Service
}

func registerEnrollmentAPI(g *echo.Group, authed []echo.MiddlewareFunc, svc *enrollment.Service) {
	api := enrollmentApi{svc: svc}

	eg := g.Group("/enrollments", authed...)
	eg.GET("", api.query)
	eg.POST("/:id/complete", api.complete)
	eg.POST("/:id/feedback", api.feedback)

	g.GET("/payments", api.payments, authed...)
}

// Handlers

// query lists the enrollments of the context user, as a learner or with `?as=mentor` as a mentor.
func (api *enrollmentApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var enrollments []enrollment.Enrollment
	if ctx.QueryParam("as") == "mentor" {
		enrollments, err = api.svc.ListForMentor(ctx.Request().Context(), usr.ID)
	} else {
		enrollments, err = api.svc.ListForLearner(ctx.Request().Context(), usr.ID)
	}
	if err != nil {
		return errors.Wrap(err, "listing enrollments")
	}
	if enrollments == nil {
		enrollments = []enrollment.Enrollment{}
	}
	return ctx.JSON(http.StatusOK, enrollments)
}

func (api *enrollmentApi) complete(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	e, err := api.svc.MarkCompleted(ctx.Request().Context(), usr, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "completing enrollment")
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *enrollmentApi) feedback(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data enrollment.Feedback
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Feedback")
	}

	e, err := api.svc.LeaveFeedback(ctx.Request().Context(), usr, ctx.Param("id"), data.Text)
	if err != nil {
		return errors.Wrap(err, "leaving feedback")
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *enrollmentApi) payments(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	payments, err := api.svc.ListPaymentsForUser(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "listing payments")
	}
	if payments == nil {
		payments = []enrollment.Payment{}
	}
	return ctx.JSON(http.StatusOK, payments)
}

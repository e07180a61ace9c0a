package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/skillx/skillx/core/report"
)

type reportApi struct {
	svc *report.Service
}

func registerReportAPI(g *echo.Group, authed []echo.MiddlewareFunc, svc *report.Service) {
	api := reportApi{svc: svc}

	mw := append(append([]echo.MiddlewareFunc{}, authed...), facultyMiddleware())
	rg := g.Group("/reports", mw...)
	rg.GET("/platform", api.platform)
}

func (api *reportApi) platform(ctx echo.Context) error {
	stats, err := api.svc.Platform(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "computing platform stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

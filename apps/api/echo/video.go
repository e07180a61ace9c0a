package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/skillx/skillx/core/video"
)

type videoApi struct {
	svc *video.Service
}

func registerVideoAPI(g *echo.Group, authed []echo.MiddlewareFunc, svc *video.Service) {
	api := videoApi{svc: svc}

	vg := g.Group("/videos", authed...)
	vg.GET("/mine", api.mine)
}

func (api *videoApi) mine(ctx echo.Context) error {
	usr, err := getContextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	videos, err := api.svc.ListByMentor(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "listing mentor videos")
	}
	if videos == nil {
		videos = []video.Video{}
	}
	return ctx.JSON(http.StatusOK, videos)
}

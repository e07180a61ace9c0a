package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

func facultyMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context user")
			}
			if usr.IsFaculty() {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/skillx/skillx/core"
	"github.com/skillx/skillx/core/enrollment"
	"github.com/skillx/skillx/core/notification"
	"github.com/skillx/skillx/core/skill"
	"github.com/skillx/skillx/core/user"
	"github.com/skillx/skillx/core/verification"
	"github.com/skillx/skillx/core/video"
	uploadsvc "github.com/skillx/skillx/services/upload"
)

var (
	errUnauthorized   = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errSessionExpired = echo.NewHTTPError(http.StatusUnauthorized, "session expired")
	errHttpForbidden  = echo.NewHTTPError(http.StatusForbidden, "permission denied")
)

// sentinelCodes maps domain errors to HTTP status codes.
var sentinelCodes = map[error]int{
	user.ErrNotFound:         http.StatusNotFound,
	skill.ErrNotFound:        http.StatusNotFound,
	enrollment.ErrNotFound:   http.StatusNotFound,
	video.ErrNotFound:        http.StatusNotFound,
	verification.ErrNotFound: http.StatusNotFound,
	notification.ErrNotFound: http.StatusNotFound,

	user.ErrInvalidCredentials: http.StatusUnauthorized,
	user.ErrSessionNotFound:    http.StatusUnauthorized,

	core.ErrForbidden:          http.StatusForbidden,
	skill.ErrNotMentor:         http.StatusForbidden,
	skill.ErrNotFaculty:        http.StatusForbidden,
	enrollment.ErrNotLearner:   http.StatusForbidden,
	enrollment.ErrOwnSkill:     http.StatusForbidden,
	video.ErrNotOwner:          http.StatusForbidden,
	verification.ErrNotFaculty: http.StatusForbidden,

	skill.ErrNotApproved:         http.StatusBadRequest,
	uploadsvc.ErrInvalidFileName: http.StatusBadRequest,

	user.ErrEmailExists:           http.StatusConflict,
	enrollment.ErrAlreadyEnrolled: http.StatusConflict,
	enrollment.ErrFeedbackExists:  http.StatusConflict,

	enrollment.ErrPaymentFailed: http.StatusPaymentRequired,

	context.DeadlineExceeded: http.StatusGatewayTimeout,
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		switch origErr := cause.(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			code = http.StatusBadRequest
			message = core.TranslateValidationErrors(origErr, translator)
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default:
			if sc, ok := sentinelCodes[cause]; ok {
				code = sc
				message = cause.Error()
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			args := []interface{}{errors.Wrap(err, msg)}
			if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
				args = append(args, usr)
			}
			logger.Error(msg, args...)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

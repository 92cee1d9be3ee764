package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/campusconnect/backend/core"
	"github.com/campusconnect/backend/core/announcement"
	"github.com/campusconnect/backend/core/assignment"
	"github.com/campusconnect/backend/core/enroll"
	"github.com/campusconnect/backend/core/user"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errPendingApproval      = echo.NewHTTPError(http.StatusForbidden, "account pending teacher approval")
	errRefreshExpired       = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
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
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(core.Translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
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
		case *core.PartialApplyError:
			// committed steps are not rolled back; surface what got through
			// so support can finish or undo the partial state
			code = http.StatusInternalServerError
			message = echo.Map{
				"error":           "the operation was only partially applied",
				"completed_steps": origErr.Completed,
				"failed_step":     origErr.Step,
			}
			logger.Error("partially applied operation", origErr)
		default:
			code, message = statusOf(errors.Cause(err))
			if code == http.StatusInternalServerError {
				var usr user.User
				if claims, cErr := getContextClaims(ctx); cErr == nil {
					usr.ID = claims.Subject
					usr.FullName = claims.FullName
					usr.Email = claims.Email
				}
				msg := message.(string)
				logger.Error(msg, errors.Wrap(err, msg), usr)

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		} else if m, ok := message.(string); ok {
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

// statusOf maps well-known service errors to HTTP statuses.
func statusOf(cause error) (int, interface{}) {
	switch cause {
	case core.ErrWeakPassword, core.ErrInvalidCredentials, assignment.ErrOfflineSubmission:
		return http.StatusBadRequest, cause.Error()
	case core.ErrEmailTaken, enroll.ErrCodeConflict:
		return http.StatusConflict, cause.Error()
	case enroll.ErrUnknownCode, enroll.ErrRequestNotFound,
		user.ErrNotFound, assignment.ErrNotFound, assignment.ErrSubmissionNotFound,
		announcement.ErrNotFound, core.ErrBlobNotFound:
		return http.StatusNotFound, cause.Error()
	case assignment.ErrUploadFailed:
		return http.StatusBadGateway, cause.Error()
	}
	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
}

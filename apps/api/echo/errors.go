package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/classsync/core"
	"github.com/trezcool/classsync/core/assignment"
	"github.com/trezcool/classsync/core/chat"
	"github.com/trezcool/classsync/core/user"
	"github.com/trezcool/classsync/core/voting"
)

var (
	errUnauthorized       = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAccountDeactivated = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired     = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden      = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound       = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// conflicts are domain rejections answered with 409 Conflict.
var conflicts = []error{
	voting.ErrSessionClosed,
	voting.ErrQuotaExceeded,
	voting.ErrDuplicateTarget,
	chat.ErrSessionInactive,
	assignment.ErrMasterInactive,
	assignment.ErrDeadlinePassed,
	assignment.ErrAlreadyGraded,
}

// errorResponse maps err to a status code and a JSON body.
// reported is true for unexpected errors that must be logged.
func errorResponse(err error, translator ut.Translator) (code int, message interface{}, reported bool) {
	var (
		httpErr *echo.HTTPError
		valErrs validator.ValidationErrors
		valErr  *core.ValidationError
	)

	switch {
	case errors.As(err, &httpErr):
		if httpErr == middleware.ErrJWTMissing || httpErr.Message == middleware.ErrJWTMissing.Message {
			return http.StatusUnauthorized, httpErr.Message, false
		}
		if herr, ok := httpErr.Internal.(*echo.HTTPError); ok {
			httpErr = herr
		}
		return httpErr.Code, httpErr.Message, false

	case errors.As(err, &valErrs):
		fldErrs := make(map[string]string, len(valErrs))
		for _, vErr := range valErrs {
			fldErrs[vErr.Field()] = vErr.Translate(translator)
		}
		return http.StatusBadRequest, fldErrs, false

	case errors.As(err, &valErr):
		if len(valErr.Fields) > 0 {
			fldErrs := make(map[string]string, len(valErr.Fields))
			for _, fErr := range valErr.Fields {
				fldErrs[fErr.Field] = fErr.Error
			}
			return http.StatusBadRequest, fldErrs, false
		}
		return http.StatusBadRequest, valErr.Error(), false

	case errors.Is(err, voting.ErrSelfVote), errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusBadRequest, errors.Cause(err).Error(), false

	case errors.Is(err, core.ErrForbidden):
		return http.StatusForbidden, core.ErrForbidden.Error(), false

	case core.IsNotFound(err):
		var nf *core.NotFoundError
		errors.As(err, &nf)
		return http.StatusNotFound, nf.Error(), false

	case errors.Is(err, voting.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, voting.ErrStoreUnavailable.Error(), true
	}

	for _, c := range conflicts {
		if errors.Is(err, c) {
			return http.StatusConflict, c.Error(), false
		}
	}
	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), true
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		code, message, reported := errorResponse(err, translator)

		if reported {
			var usr user.User
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				usr.ID = claims.Subject
				usr.Username = claims.Username
			}
			logger.Error(
				http.StatusText(code),
				err,
				usr,
				map[string]interface{}{"method": ctx.Request().Method, "path": ctx.Path()},
			)

			if core.IsShutdown(err) && signalShutdown != nil {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug && code >= http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead {
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

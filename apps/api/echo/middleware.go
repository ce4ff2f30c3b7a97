package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/trezcool/classsync/core/user"
)

// authedMiddleware loads the context user and rejects deactivated accounts.
func authedMiddleware(svc userGetter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if _, err := getContextUser(ctx, svc); err != nil {
				return err
			}
			return next(ctx)
		}
	}
}

func roleMiddleware(svc userGetter, has func(*user.User) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx, svc)
			if err != nil {
				return err
			}
			if !has(&usr) {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

func teacherMiddleware(svc userGetter) echo.MiddlewareFunc {
	return roleMiddleware(svc, (*user.User).IsTeacher)
}

func studentMiddleware(svc userGetter) echo.MiddlewareFunc {
	return roleMiddleware(svc, (*user.User).IsStudent)
}

// ctxUserOrTeacherMiddleware lets through teachers and the user whose ID is in the path param.
// Others get a 404 so existing IDs are not revealed.
func ctxUserOrTeacherMiddleware(svc userGetter, param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx, svc)
			if err != nil {
				return err
			}
			if !usr.CanView(ctx.Param(param)) {
				return errHttpNotFound
			}
			return next(ctx)
		}
	}
}

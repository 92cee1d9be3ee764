package echoapi

import (
	"github.com/labstack/echo/v4"
)

// teacherMiddleware restricts an endpoint to the TEACHER PORTAL.
func teacherMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			if !claims.IsTeacher {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

// studentMiddleware restricts an endpoint to the STUDENT PORTAL.
func studentMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			if !claims.IsStudent {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

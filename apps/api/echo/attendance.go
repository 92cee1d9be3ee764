package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campusconnect/backend/core"
)

const dayFormat = "2006-01-02"

type attendanceApi struct {
	opts *Options
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := attendanceApi{opts: opts}

	// TEACHER PORTAL
	ag := g.Group("/attendance", jwt, teacherMiddleware())
	ag.PUT("/:day", api.mark)
	ag.GET("/:day", api.sheet)
	ag.GET("/summary/:studentID", api.summary)

	// STUDENT PORTAL
	sg := g.Group("/classes/:teacherID/attendance", jwt, studentMiddleware())
	sg.GET("", api.mySummary)
}

// Handlers

func (api *attendanceApi) mark(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	day, err := parseDay(ctx.Param("day"))
	if err != nil {
		return err
	}

	var data MarkRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MarkRequest")
	}

	if err := api.opts.AttendanceSvc.Mark(ctx.Request().Context(), claims.Subject, day, data.Marks); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *attendanceApi) sheet(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	day, err := parseDay(ctx.Param("day"))
	if err != nil {
		return err
	}

	marks, err := api.opts.AttendanceSvc.SheetFor(ctx.Request().Context(), claims.Subject, day)
	if err != nil {
		return errors.Wrap(err, "reading attendance sheet")
	}
	return ctx.JSON(http.StatusOK, marks)
}

func (api *attendanceApi) summary(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	sum, err := api.opts.AttendanceSvc.SummaryOf(ctx.Request().Context(), claims.Subject, ctx.Param("studentID"))
	if err != nil {
		return errors.Wrap(err, "computing attendance summary")
	}
	return ctx.JSON(http.StatusOK, sum)
}

func (api *attendanceApi) mySummary(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	sum, err := api.opts.AttendanceSvc.SummaryOf(ctx.Request().Context(), ctx.Param("teacherID"), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "computing attendance summary")
	}
	return ctx.JSON(http.StatusOK, sum)
}

func parseDay(s string) (time.Time, error) {
	day, err := time.Parse(dayFormat, s)
	if err != nil {
		return time.Time{}, core.NewValidationError(nil,
			core.FieldError{Field: "day", Error: "must be a date in YYYY-MM-DD format"})
	}
	return day, nil
}

type MarkRequest struct {
	Marks map[string]bool `json:"marks"`
}

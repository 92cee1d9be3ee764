package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campusconnect/backend/core"
	"github.com/campusconnect/backend/core/assignment"
)

type assignmentApi struct {
	opts *Options
}

func registerAssignmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := assignmentApi{opts: opts}

	// TEACHER PORTAL
	ag := g.Group("/assignments", jwt, teacherMiddleware())
	ag.POST("", api.create)
	ag.GET("", api.list)
	ag.GET("/:id", api.retrieve)
	ag.GET("/:id/submissions", api.submissions)
	ag.PUT("/:id/submissions/:studentID/grade", api.setGrade)

	// STUDENT PORTAL; assignments are browsed per joined class
	sg := g.Group("/classes/:teacherID/assignments", jwt, studentMiddleware(), api.memberMiddleware())
	sg.GET("", api.listForStudent)
	sg.GET("/:id/submission", api.mySubmission)
	sg.POST("/:id/submission", api.submit)
	sg.DELETE("/:id/submission", api.withdraw)
}

// memberMiddleware rejects students browsing a class they are not a member
// of. Membership comes from the student-side mirror; after a partial
// approval the roster is authoritative but this check is intentionally
// cheap (one list read) rather than strictly consistent.
func (api *assignmentApi) memberMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return err
			}
			teacherIDs, err := api.opts.EnrollSvc.ClassesOf(ctx.Request().Context(), claims.Subject)
			if err != nil {
				return errors.Wrap(err, "listing student classes")
			}
			for _, id := range teacherIDs {
				if id == ctx.Param("teacherID") {
					return next(ctx)
				}
			}
			return errHttpNotFound
		}
	}
}

// Handlers

func (api *assignmentApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data assignment.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}

	asg, err := api.opts.AssignmentSvc.Create(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, asg)
}

func (api *assignmentApi) list(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	asgs, err := api.opts.AssignmentSvc.AssignmentsOf(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "listing assignments")
	}
	return ctx.JSON(http.StatusOK, asgs)
}

func (api *assignmentApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	asg, err := api.opts.AssignmentSvc.Get(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, asg)
}

func (api *assignmentApi) submissions(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	// scope the lookup to the teacher's own assignment
	if _, err := api.opts.AssignmentSvc.Get(reqCtx, claims.Subject, ctx.Param("id")); err != nil {
		return err
	}
	subs, err := api.opts.AssignmentSvc.SubmissionsFor(reqCtx, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "listing submissions")
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *assignmentApi) setGrade(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data GradeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	if _, err := api.opts.AssignmentSvc.Get(reqCtx, claims.Subject, ctx.Param("id")); err != nil {
		return err
	}
	sub, err := api.opts.AssignmentSvc.SetGrade(reqCtx, ctx.Param("id"), ctx.Param("studentID"), data.Grade)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *assignmentApi) listForStudent(ctx echo.Context) error {
	asgs, err := api.opts.AssignmentSvc.AssignmentsOf(ctx.Request().Context(), ctx.Param("teacherID"))
	if err != nil {
		return errors.Wrap(err, "listing assignments")
	}
	return ctx.JSON(http.StatusOK, asgs)
}

func (api *assignmentApi) mySubmission(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	sub, err := api.opts.AssignmentSvc.SubmissionOf(ctx.Request().Context(), claims.Subject, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *assignmentApi) submit(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	fh, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "file", Error: "this field is required"})
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer f.Close()

	sub, err := api.opts.AssignmentSvc.Submit(
		ctx.Request().Context(), claims.Subject, ctx.Param("teacherID"), ctx.Param("id"), fh.Filename, f)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *assignmentApi) withdraw(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	stale, err := api.opts.AssignmentSvc.Withdraw(
		ctx.Request().Context(), claims.Subject, ctx.Param("teacherID"), ctx.Param("id"))
	if err != nil {
		return err
	}
	if stale {
		return ctx.JSON(http.StatusOK, echo.Map{
			"warning": assignment.ErrStaleFileReference.Error(),
		})
	}
	return ctx.NoContent(http.StatusNoContent)
}

type GradeRequest struct {
	Grade string `json:"grade" validate:"required"`
}

func (gr *GradeRequest) Validate() error {
	gr.Grade = core.CleanString(gr.Grade)
	return core.Validate.Struct(gr)
}

package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campusconnect/backend/core"
	"github.com/campusconnect/backend/core/enroll"
)

// maxCodeGenerationAttempts bounds the generate-and-publish retry loop;
// generated codes are random, so conflicts should be rare.
const maxCodeGenerationAttempts = 5

type enrollApi struct {
	opts *Options
}

func registerEnrollAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := enrollApi{opts: opts}

	// TEACHER PORTAL
	cg := g.Group("/class", jwt, teacherMiddleware())
	cg.GET("/code", api.currentCode)
	cg.PUT("/code", api.publishCode)
	cg.POST("/code/generate", api.generateCode)
	cg.GET("/roster", api.roster)
	cg.GET("/requests", api.pendingRequests)
	cg.POST("/requests/:studentID/approve", api.approve)
	cg.POST("/requests/:studentID/deny", api.deny)

	// STUDENT PORTAL
	sg := g.Group("/student", jwt, studentMiddleware())
	sg.GET("/classes", api.studentClasses)
}

// Handlers

func (api *enrollApi) currentCode(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	code, err := api.opts.EnrollSvc.CurrentCodeOf(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "reading current class code")
	}
	return ctx.JSON(http.StatusOK, ClassCodeResponse{ClassCode: code})
}

func (api *enrollApi) publishCode(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data PublishCodeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PublishCodeRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.opts.EnrollSvc.PublishCode(ctx.Request().Context(), claims.Subject, data.ClassCode); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ClassCodeResponse{ClassCode: enroll.NormalizeCode(data.ClassCode)})
}

func (api *enrollApi) generateCode(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	for i := 0; i < maxCodeGenerationAttempts; i++ {
		code := enroll.GenerateCode()
		err := api.opts.EnrollSvc.PublishCode(reqCtx, claims.Subject, code)
		if err == nil {
			return ctx.JSON(http.StatusCreated, ClassCodeResponse{ClassCode: code})
		}
		if errors.Cause(err) != enroll.ErrCodeConflict {
			return err
		}
	}
	return enroll.ErrCodeConflict
}

func (api *enrollApi) roster(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	students, err := api.opts.EnrollSvc.Roster(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "listing roster")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *enrollApi) pendingRequests(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	reqs, err := api.opts.EnrollSvc.PendingRequests(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "listing join requests")
	}
	return ctx.JSON(http.StatusOK, reqs)
}

func (api *enrollApi) approve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	if err := api.opts.EnrollSvc.Approve(ctx.Request().Context(), claims.Subject, ctx.Param("studentID")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *enrollApi) deny(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	if err := api.opts.EnrollSvc.Deny(ctx.Request().Context(), claims.Subject, ctx.Param("studentID")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *enrollApi) studentClasses(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	teacherIDs, err := api.opts.EnrollSvc.ClassesOf(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "listing student classes")
	}
	return ctx.JSON(http.StatusOK, teacherIDs)
}

type (
	PublishCodeRequest struct {
		ClassCode string `json:"class_code" validate:"required,classcode"`
	}

	ClassCodeResponse struct {
		ClassCode string `json:"classCode"`
	}
)

func (pr *PublishCodeRequest) Validate() error {
	pr.ClassCode = enroll.NormalizeCode(pr.ClassCode)
	return core.Validate.Struct(pr)
}

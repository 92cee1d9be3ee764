package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/campusconnect/backend/core/announcement"
)

type announcementApi struct {
	opts *Options
}

func registerAnnouncementAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := announcementApi{opts: opts}

	// TEACHER PORTAL
	ag := g.Group("/announcements", jwt, teacherMiddleware())
	ag.POST("", api.post)
	ag.GET("", api.list)
	ag.DELETE("/:id", api.destroy)

	// STUDENT PORTAL
	sg := g.Group("/classes/:teacherID/announcements", jwt, studentMiddleware())
	sg.GET("", api.listForStudent)
}

// Handlers

func (api *announcementApi) post(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data announcement.NewAnnouncement
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnnouncement")
	}

	ann, err := api.opts.AnnouncementSvc.Post(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, ann)
}

func (api *announcementApi) list(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	anns, err := api.opts.AnnouncementSvc.ListFor(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "listing announcements")
	}
	return ctx.JSON(http.StatusOK, anns)
}

func (api *announcementApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	if err := api.opts.AnnouncementSvc.Delete(ctx.Request().Context(), claims.Subject, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *announcementApi) listForStudent(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	reqCtx := ctx.Request().Context()
	teacherIDs, err := api.opts.EnrollSvc.ClassesOf(reqCtx, claims.Subject)
	if err != nil {
		return errors.Wrap(err, "listing student classes")
	}
	for _, id := range teacherIDs {
		if id == ctx.Param("teacherID") {
			anns, err := api.opts.AnnouncementSvc.ListFor(reqCtx, id)
			if err != nil {
				return errors.Wrap(err, "listing announcements")
			}
			return ctx.JSON(http.StatusOK, anns)
		}
	}
	return errHttpNotFound
}

package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/classsync/core/assignment"
	"github.com/trezcool/classsync/core/user"
)

type assignmentApi struct {
	svc    *assignment.Service
	usrSvc *user.Service
}

func registerAssignmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := assignmentApi{svc: s.AssignmentSvc, usrSvc: s.UserSvc}

	ag := g.Group("/assignments", jwt, authedMiddleware(api.usrSvc))
	ag.GET("/masters", api.masters)
	ag.POST("/masters", api.createMaster, teacherMiddleware(api.usrSvc))
	ag.GET("/masters/:id", api.getMaster)
	ag.PATCH("/masters/:id", api.updateMaster, teacherMiddleware(api.usrSvc))
	ag.POST("/masters/:id/submissions", api.submit, studentMiddleware(api.usrSvc))
	ag.GET("/submissions", api.submissions)
	ag.PUT("/submissions/:id/grade", api.grade, teacherMiddleware(api.usrSvc))
	ag.PUT("/submissions/:id/reply", api.reply, teacherMiddleware(api.usrSvc))
}

func (api *assignmentApi) masters(ctx echo.Context) error {
	masters, err := api.svc.Masters(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing assignments")
	}
	return ctx.JSON(http.StatusOK, masters)
}

// createMaster godoc
// @Summary Post an assignment and announce it to the students
// @Tags assignments
// @Security Bearer
// @Param body body assignment.NewMaster true "assignment"
// @Success 201 {object} assignment.Master
// @Router /assignments/masters [post]
func (api *assignmentApi) createMaster(ctx echo.Context) error {
	var data assignment.NewMaster
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMaster")
	}
	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}
	m, err := api.svc.CreateMaster(ctx.Request().Context(), actor, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, m)
}

func (api *assignmentApi) getMaster(ctx echo.Context) error {
	m, err := api.svc.GetMaster(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *assignmentApi) updateMaster(ctx echo.Context) error {
	var data assignment.UpdateMaster
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateMaster")
	}
	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}
	m, err := api.svc.UpdateMaster(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, m)
}

// submit godoc
// @Summary Submit (or resubmit until graded) an answer to an assignment
// @Tags assignments
// @Security Bearer
// @Param id path string true "assignment ID"
// @Param body body assignment.NewSubmission true "content"
// @Success 201 {object} assignment.Assignment
// @Router /assignments/masters/{id}/submissions [post]
func (api *assignmentApi) submit(ctx echo.Context) error {
	var data assignment.NewSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}
	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}
	a, err := api.svc.Submit(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *assignmentApi) submissions(ctx echo.Context) error {
	var filter assignment.SubmissionFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to SubmissionFilter")
	}
	viewer, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}
	subs, err := api.svc.Submissions(ctx.Request().Context(), viewer, filter)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *assignmentApi) grade(ctx echo.Context) error {
	var data assignment.Grade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Grade")
	}
	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}
	a, err := api.svc.Grade(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *assignmentApi) reply(ctx echo.Context) error {
	var data assignment.Reply
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Reply")
	}
	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}
	a, err := api.svc.Reply(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, a)
}

package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/classsync/core/user"
	"github.com/trezcool/classsync/core/voting"
)

type votingApi struct {
	svc      *voting.Service
	usrSvc   *user.Service
	validate *validator.Validate
}

func registerVotingAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := votingApi{svc: s.VotingSvc, usrSvc: s.UserSvc, validate: s.Validate}

	vg := g.Group("/voting", jwt, authedMiddleware(api.usrSvc))
	vg.GET("/session", api.getSession)
	vg.PUT("/session", api.toggleSession, teacherMiddleware(api.usrSvc))
	vg.POST("/votes", api.castVote, studentMiddleware(api.usrSvc))
	vg.GET("/votes", api.queryVotes, teacherMiddleware(api.usrSvc))
	vg.GET("/results", api.results, teacherMiddleware(api.usrSvc))
	vg.GET("/me", api.myStatus, studentMiddleware(api.usrSvc))
}

// getSession godoc
// @Summary Current voting session
// @Tags voting
// @Security Bearer
// @Success 200 {object} voting.Session
// @Router /voting/session [get]
func (api *votingApi) getSession(ctx echo.Context) error {
	sess, err := api.svc.GetSession(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sess)
}

// toggleSession godoc
// @Summary Open or close the voting session; opening starts a new round
// @Tags voting
// @Security Bearer
// @Param body body voting.ToggleSessionRequest true "target state"
// @Success 200 {object} voting.Session
// @Router /voting/session [put]
func (api *votingApi) toggleSession(ctx echo.Context) error {
	var data voting.ToggleSessionRequest
	if err := bindAndValidate(ctx, api.validate, &data); err != nil {
		return err
	}
	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}
	sess, err := api.svc.ToggleSession(ctx.Request().Context(), actor, *data.IsActive)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sess)
}

// castVote godoc
// @Summary Vote for a classmate in the current round
// @Tags voting
// @Security Bearer
// @Param body body voting.CastVoteRequest true "target"
// @Success 201 {object} voting.Vote
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /voting/votes [post]
func (api *votingApi) castVote(ctx echo.Context) error {
	var data voting.CastVoteRequest
	if err := bindAndValidate(ctx, api.validate, &data); err != nil {
		return err
	}
	voter, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}
	vote, err := api.svc.CastVote(ctx.Request().Context(), voter.ID, data.TargetID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, vote)
}

func (api *votingApi) queryVotes(ctx echo.Context) error {
	var filter voting.VoteFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to VoteFilter")
	}
	votes, err := api.svc.Votes(ctx.Request().Context(), filter)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, votes)
}

// results godoc
// @Summary Vote tally of the current round or of all rounds
// @Tags voting
// @Security Bearer
// @Param scope query string false "current (default) or cumulative"
// @Success 200 {object} voting.Results
// @Router /voting/results [get]
func (api *votingApi) results(ctx echo.Context) error {
	scope, err := voting.ParseScope(ctx.QueryParam("scope"))
	if err != nil {
		return err
	}
	res, err := api.svc.Results(ctx.Request().Context(), scope)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *votingApi) myStatus(ctx echo.Context) error {
	voter, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}
	status, err := api.svc.MyStatus(ctx.Request().Context(), voter.ID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, status)
}

package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/classsync/core/chat"
	"github.com/trezcool/classsync/core/user"
)

type chatApi struct {
	svc    *chat.Service
	usrSvc *user.Service
}

func registerChatAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := chatApi{svc: s.ChatSvc, usrSvc: s.UserSvc}

	cg := g.Group("/chat/sessions", jwt, authedMiddleware(api.usrSvc))
	cg.GET("", api.sessions)
	cg.POST("", api.createSession, teacherMiddleware(api.usrSvc))
	cg.PATCH("/:id", api.updateSession, teacherMiddleware(api.usrSvc))
	cg.GET("/:id/messages", api.messages)
	cg.POST("/:id/messages", api.postMessage)
	cg.GET("/:id/nickname", api.membership, studentMiddleware(api.usrSvc))
	cg.PUT("/:id/nickname", api.join, studentMiddleware(api.usrSvc))
}

func (api *chatApi) sessions(ctx echo.Context) error {
	sessions, err := api.svc.Sessions(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing chat sessions")
	}
	return ctx.JSON(http.StatusOK, sessions)
}

// createSession godoc
// @Summary Open a chat room
// @Tags chat
// @Security Bearer
// @Param body body chat.NewSession true "topic"
// @Success 201 {object} chat.Session
// @Router /chat/sessions [post]
func (api *chatApi) createSession(ctx echo.Context) error {
	var data chat.NewSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSession")
	}
	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}
	sess, err := api.svc.CreateSession(ctx.Request().Context(), actor, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, sess)
}

func (api *chatApi) updateSession(ctx echo.Context) error {
	var data chat.UpdateSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSession")
	}
	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}
	sess, err := api.svc.UpdateSession(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sess)
}

// messages godoc
// @Summary Messages of a chat room, oldest first
// @Tags chat
// @Security Bearer
// @Param id path string true "session ID"
// @Success 200 {array} chat.Message
// @Router /chat/sessions/{id}/messages [get]
func (api *chatApi) messages(ctx echo.Context) error {
	viewer, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}
	msgs, err := api.svc.Messages(ctx.Request().Context(), viewer, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, msgs)
}

func (api *chatApi) postMessage(ctx echo.Context) error {
	var data chat.NewMessage
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMessage")
	}
	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}
	msg, err := api.svc.PostMessage(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, msg)
}

func (api *chatApi) membership(ctx echo.Context) error {
	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}
	m, err := api.svc.Membership(ctx.Request().Context(), actor, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *chatApi) join(ctx echo.Context) error {
	var data chat.JoinSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to JoinSession")
	}
	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}
	m, err := api.svc.Join(ctx.Request().Context(), actor, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, m)
}

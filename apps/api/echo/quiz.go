package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/classsync/core/quiz"
	"github.com/trezcool/classsync/core/user"
)

type quizApi struct {
	svc    *quiz.Service
	usrSvc *user.Service
}

type QuestionsResponse struct {
	Questions []quiz.Question `json:"questions"`
	Options   []quiz.Option   `json:"options"`
}

func registerQuizAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := quizApi{svc: s.QuizSvc, usrSvc: s.UserSvc}

	qg := g.Group("/quiz", jwt, authedMiddleware(api.usrSvc))
	qg.GET("/questions", api.questions)
	qg.POST("/results", api.submit, studentMiddleware(api.usrSvc))
	qg.GET("/results/:student_id", api.result, ctxUserOrTeacherMiddleware(api.usrSvc, "student_id"))
}

func (api *quizApi) questions(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, QuestionsResponse{Questions: quiz.Questions, Options: quiz.Options})
}

// submit godoc
// @Summary Answer every question and get the scored result
// @Tags quiz
// @Security Bearer
// @Param body body quiz.SubmitAnswers true "answers by question ID"
// @Success 201 {object} quiz.ResultSummary
// @Router /quiz/results [post]
func (api *quizApi) submit(ctx echo.Context) error {
	var data quiz.SubmitAnswers
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubmitAnswers")
	}
	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}
	res, err := api.svc.Submit(ctx.Request().Context(), actor, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *quizApi) result(ctx echo.Context) error {
	viewer, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}
	res, err := api.svc.GetResult(ctx.Request().Context(), viewer, ctx.Param("student_id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/classsync/core/ledger"
	"github.com/trezcool/classsync/core/user"
)

type ledgerApi struct {
	svc    *ledger.Service
	usrSvc *user.Service
}

func registerLedgerAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := ledgerApi{svc: s.LedgerSvc, usrSvc: s.UserSvc}

	lg := g.Group("/ledger", jwt, authedMiddleware(api.usrSvc))
	lg.POST("/transactions", api.apply, teacherMiddleware(api.usrSvc))
	lg.GET("/:student_id", api.statement, ctxUserOrTeacherMiddleware(api.usrSvc, "student_id"))
}

// apply godoc
// @Summary Record the same income or expense for several students
// @Tags ledger
// @Security Bearer
// @Param body body ledger.NewTransactions true "transaction"
// @Success 201 {array} ledger.BulkResult
// @Router /ledger/transactions [post]
func (api *ledgerApi) apply(ctx echo.Context) error {
	var data ledger.NewTransactions
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTransactions")
	}
	actor, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}
	res, err := api.svc.Apply(ctx.Request().Context(), actor, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, res)
}

// statement godoc
// @Summary Balance, transactions and balance history of a student
// @Tags ledger
// @Security Bearer
// @Param student_id path string true "student ID"
// @Success 200 {object} ledger.Statement
// @Router /ledger/{student_id} [get]
func (api *ledgerApi) statement(ctx echo.Context) error {
	viewer, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}
	st, err := api.svc.Statement(ctx.Request().Context(), viewer, ctx.Param("student_id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, st)
}

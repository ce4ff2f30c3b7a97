package echoapi

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/classsync/core"
)

const orderingParam = "ordering"

// bindOrdering reads `?ordering=-created_at,name` keeping only the allowed fields.
func bindOrdering(ctx echo.Context, allowed map[string]bool) []core.DBOrdering {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return nil
	}
	return core.ParseOrdering(allowed, strings.Split(val, ",")...)
}

// bindAndValidate binds the request into data then validates it.
func bindAndValidate(ctx echo.Context, validate *validator.Validate, data interface{}) error {
	if err := ctx.Bind(data); err != nil {
		return core.NewValidationError(errors.New("malformed request body"))
	}
	return validate.Struct(data)
}

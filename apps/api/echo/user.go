package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/classsync/core"
	"github.com/trezcool/classsync/core/user"
)

const errNoPermsToSetRoles = "not enough rights to set these roles"

type userApi struct {
	conf     *core.Config
	svc      *user.Service
	validate *validator.Validate
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := userApi{conf: s.Conf, svc: s.UserSvc, validate: s.Validate}

	ug := g.Group("/users")

	// un-authed endpoints
	ug.POST("/login", api.login)
	ug.POST("/register", api.register)

	// authed endpoints
	ag := ug.Group("", jwt, authedMiddleware(api.svc))
	ag.POST("/token-refresh", api.refreshToken)
	ag.GET("/students", api.students)
	ag.GET("", api.query, teacherMiddleware(api.svc))
	ag.GET("/roles", api.queryRoles, teacherMiddleware(api.svc))

	// detail endpoints
	dg := ag.Group("/:id", ctxUserOrTeacherMiddleware(api.svc, "id"), api.objectMiddleware)
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy, teacherMiddleware(api.svc))
}

type (
	LoginResponse struct {
		Token string     `json:"token"`
		User  *user.User `json:"user,omitempty"`
	}
)

func (api *userApi) tokenResponse(ctx echo.Context, code int, usr user.User) error {
	token, err := GenerateToken(api.conf, GetUserClaims(api.conf, usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(code, LoginResponse{Token: token, User: &usr})
}

// login godoc
// @Summary Log in with a username (or email) and password
// @Tags users
// @Param body body user.LoginCredentials true "credentials"
// @Success 200 {object} LoginResponse
// @Router /users/login [post]
func (api *userApi) login(ctx echo.Context) error {
	var data user.LoginCredentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginCredentials")
	}
	usr, err := api.svc.Authenticate(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return api.tokenResponse(ctx, http.StatusOK, usr)
}

// register godoc
// @Summary Self-register as a student or a teacher
// @Tags users
// @Param body body user.NewUser true "new user"
// @Success 201 {object} LoginResponse
// @Router /users/register [post]
func (api *userApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	usr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return api.tokenResponse(ctx, http.StatusCreated, usr)
}

func (api *userApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.conf, api.svc)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

// students godoc
// @Summary Active students ordered by name
// @Tags users
// @Security Bearer
// @Success 200 {array} user.User
// @Router /users/students [get]
func (api *userApi) students(ctx echo.Context) error {
	students, err := api.svc.Students(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *userApi) query(ctx echo.Context) error {
	filter := new(user.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []user.User{})
	}

	users, err := api.svc.Query(ctx.Request().Context(), filter, bindOrdering(ctx, user.OrderingFields)...)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	if users == nil {
		users = []user.User{}
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *userApi) queryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, user.Roles)
}

// objectMiddleware loads the user of the `:id` path param as the "object".
func (api *userApi) objectMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		usr, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			return err
		}
		ctx.Set("object", usr)
		return next(ctx)
	}
}

func (api *userApi) retrieve(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, ctx.Get("object").(user.User))
}

func (api *userApi) update(ctx echo.Context) error {
	usr := ctx.Get("object").(user.User)

	var data user.UpdateUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}

	ctxUsr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return err
	}
	if !ctxUsr.IsTeacher() {
		// `IsActive`, `Roles` and `Username` can only be changed by teachers
		if data.IsActive != nil || data.Roles != nil || (data.Username != "" && data.Username != usr.Username) {
			return errHttpForbidden
		}
	}
	// ctxUser cannot set a role > their own max role
	if user.MaxRolePriority(data.Roles) > user.MaxRolePriority(ctxUsr.Roles) {
		return core.NewValidationError(nil, core.FieldError{Field: "roles", Error: errNoPermsToSetRoles})
	}

	usr, err = api.svc.Update(ctx.Request().Context(), usr, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) destroy(ctx echo.Context) error {
	usr := ctx.Get("object").(user.User)

	ctxUsr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), ctxUsr, usr.ID); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

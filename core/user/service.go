package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/classsync/core"
)

var (
	// errors
	ErrNotFound           = core.NewNotFoundError("user")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrUsernameExists     = errors.New("a user with this username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrCannotDeleteSelf   = errors.New("you cannot delete your own account")

	// OrderingFields lists the fields users may be sorted by.
	OrderingFields = map[string]bool{"name": true, "username": true, "email": true, "created_at": true, "last_login": true}
)

type (
	Repository interface {
		// CheckUsernameUniqueness returns ErrUsernameExists or ErrEmailExists when another user holds them.
		CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		// QueryUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of User.Name, User.Username or User.Email.
		QueryUsers(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]User, error)
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		// UpdateUser saves the profile fields; nil Roles and PasswordHash are left unchanged.
		UpdateUser(ctx context.Context, usr User) (User, error)
		SetLastLogin(ctx context.Context, id string, at time.Time) error
		DeleteUsersByID(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) checkUniqueness(ctx context.Context, uname, email string, exclUsers ...User) error {
	if err := svc.repo.CheckUsernameUniqueness(ctx, uname, email, exclUsers...); err != nil {
		var field string
		switch err {
		case ErrUsernameExists:
			field = "username"
		case ErrEmailExists:
			field = "email"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	nu.Clean()
	if err := svc.validate.Struct(nu); err != nil {
		return User{}, err
	}
	if err := svc.checkUniqueness(ctx, nu.Username, nu.Email); err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	usr := User{
		Name:      nu.Name,
		Username:  nu.Username,
		Email:     nu.Email,
		IsActive:  true,
		Roles:     nu.Roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(ctx, usr)
}

// Authenticate checks the credentials of an active user and records the login time.
func (svc *Service) Authenticate(ctx context.Context, creds LoginCredentials) (User, error) {
	if err := svc.validate.Struct(creds); err != nil {
		return User{}, err
	}
	usr, err := svc.GetByUsernameOrEmail(ctx, creds.Username)
	if err != nil {
		if err == ErrNotFound {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if !usr.IsActive || usr.CheckPassword(creds.Password) != nil {
		return User{}, ErrInvalidCredentials
	}

	usr.LastLogin = time.Now().UTC()
	if err := svc.repo.SetLastLogin(ctx, usr.ID, usr.LastLogin); err != nil {
		return User{}, err
	}
	return usr, nil
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]User, error) {
	if filter != nil {
		filter.Clean()
	}
	return svc.repo.QueryUsers(ctx, filter, ordering)
}

// Students returns the active student roster ordered by name.
func (svc *Service) Students(ctx context.Context) ([]User, error) {
	active := true
	return svc.repo.QueryUsers(
		ctx,
		&QueryFilter{Roles: StudentRoles, IsActive: &active},
		[]core.DBOrdering{{Field: "name", Ascending: true}, {Field: "username", Ascending: true}},
	)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Username: core.CleanString(uname, true /* lower */)})
}

func (svc *Service) GetByUsernameOrEmail(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{UsernameOrEmail: core.CleanString(uname, true /* lower */)})
}

func (svc *Service) Update(ctx context.Context, origUsr User, uu UpdateUser) (User, error) {
	uu.Clean(origUsr)
	if err := svc.validate.Struct(uu); err != nil {
		return User{}, err
	}
	if err := svc.checkUniqueness(ctx, uu.Username, uu.Email, origUsr); err != nil {
		return User{}, err
	}

	usr := origUsr
	usr.Name = uu.Name
	usr.Username = uu.Username
	usr.Email = uu.Email
	usr.Roles = uu.Roles
	usr.PasswordHash = nil
	usr.UpdatedAt = time.Now().UTC()
	if uu.IsActive != nil {
		usr.IsActive = *uu.IsActive
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, err
		}
	}
	return svc.repo.UpdateUser(ctx, usr)
}

// SetPassword validates and stores a new password for usr, bypassing the confirmation step.
func (svc *Service) SetPassword(ctx context.Context, usr User, pwd string) (User, error) {
	return svc.Update(ctx, usr, UpdateUser{Password: pwd, PasswordConfirm: pwd})
}

// Delete removes users by ID; the actor may not delete themselves.
func (svc *Service) Delete(ctx context.Context, actor User, ids ...string) error {
	if !actor.Can(ActionManageUsers) {
		return core.ErrForbidden
	}
	for _, id := range ids {
		if id == actor.ID {
			return core.NewValidationError(ErrCannotDeleteSelf)
		}
	}
	return svc.repo.DeleteUsersByID(ctx, ids...)
}

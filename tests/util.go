// Package testutil holds helpers shared by the package tests.
package testutil

import (
	"context"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/classsync/core"
	"github.com/trezcool/classsync/core/ledger"
	"github.com/trezcool/classsync/core/user"
)

// Config returns a test-mode configuration with fast retries.
func Config() *core.Config {
	return &core.Config{
		AppName:         "ClassSync",
		Env:             "TEST",
		TestMode:        true,
		SecretKey:       "test-secret",
		FrontendBaseURL: "http://localhost:3000",
		Server: core.ServerConfig{
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: time.Hour,
		},
		Database: core.DatabaseConfig{Engine: "memory"},
		Voting:   core.VotingConfig{PollInterval: 10 * time.Millisecond},
		Retry:    core.RetryConfig{Attempts: 3, BaseDelay: time.Millisecond},
	}
}

// Validator returns a validator with every custom tag registered.
func Validator() *validator.Validate {
	validate, _ := ValidatorAndTranslator()
	return validate
}

// ValidatorAndTranslator returns a validator along with the translator its messages are registered on.
func ValidatorAndTranslator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	ledger.InitValidators(validate, translator)
	return validate, translator
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd == "" {
		pwd = "Pa$$w0rd!"
	}
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateStudent(t *testing.T, repo user.Repository, name, uname string) user.User {
	t.Helper()
	return CreateUser(t, repo, name, uname, "", "", []string{user.RoleStudent}, true)
}

func CreateTeacher(t *testing.T, repo user.Repository, name, uname string) user.User {
	t.Helper()
	return CreateUser(t, repo, name, uname, "", "", []string{user.RoleTeacher}, true)
}

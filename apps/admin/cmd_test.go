package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/classsync/core/user"
	"github.com/trezcool/classsync/core/voting"
	emailsvc "github.com/trezcool/classsync/services/email"
	inmemdb "github.com/trezcool/classsync/storage/database/inmem"
	testutil "github.com/trezcool/classsync/tests"
)

var usrRepo user.Repository

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	t.Helper()
	conf := testutil.Config()
	logger := testutil.NopLogger{}
	db := inmemdb.Open()
	usrRepo = inmemdb.NewUserRepository(db)
	usrSvc := user.NewService(usrRepo, testutil.Validator())

	var out bytes.Buffer
	return &commandLine{
		db:        new(sql.DB),
		usrSvc:    usrSvc,
		votingSvc: voting.NewService(inmemdb.NewVotingRepository(db), usrSvc, emailsvc.NewMockService(conf, logger), logger, conf),
		out:       &out,
	}, &out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func (tt cliTest) check(t *testing.T, err error) {
	t.Helper()
	switch {
	case err == nil:
		if tt.wantErr != nil || tt.wantErrStr != "" {
			t.Errorf("cli.run() error = nil, want an error")
		}
	case tt.wantErr != nil:
		if err != tt.wantErr {
			t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
		}
	case tt.wantErrStr != "":
		if err.Error() != tt.wantErrStr {
			t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
		}
	default:
		t.Errorf("cli.run() unexpected error = %v", err)
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	runMigrationFunc = func(_ context.Context, _ *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "badges", "sql"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(append([]string{"admin"}, tt.args...)))
		})
	}

	t.Run("memory engine", func(t *testing.T) {
		cli.db = nil
		assert.EqualError(t, cli.run([]string{"admin", "migrate", "up"}), "migrations need the postgres engine")
	})
}

func withPassword(pwd string) {
	readPasswordFunc = func(int) ([]byte, error) { return []byte(pwd), nil }
}

func Test_commandLine_addUser(t *testing.T) {
	cli, _ := setup(t)
	ctx := context.Background()

	withPassword("")
	cliTest{wantErr: errHelp}.check(t, cli.run([]string{"admin", "adduser", "-username", "amy", "-name", "Amy"}))
	cliTest{wantErr: errHelp}.check(t, cli.run([]string{"admin", "adduser", "-username", "amy"}))

	withPassword("Secr3t-pass!")
	require.NoError(t, cli.run([]string{"admin", "adduser", "-username", "amy", "-name", "Amy", "-email", "amy@test.com"}))
	usr, err := cli.usrSvc.GetByUsername(ctx, "amy")
	require.NoError(t, err)
	assert.Equal(t, "Amy", usr.Name)
	assert.True(t, usr.IsStudent())
	assert.NoError(t, usr.CheckPassword("Secr3t-pass!"))

	// running it again promotes and updates the existing user
	withPassword("n3w-secret")
	require.NoError(t, cli.run([]string{"admin", "adduser", "-username", "amy", "-name", "Amy T.", "-teacher"}))
	usr2, err := cli.usrSvc.GetByUsername(ctx, "amy")
	require.NoError(t, err)
	assert.Equal(t, usr.ID, usr2.ID)
	assert.Equal(t, "Amy T.", usr2.Name)
	assert.True(t, usr2.IsTeacher())
	assert.NoError(t, usr2.CheckPassword("n3w-secret"))
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, _ := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "User", "awe", "awe@test.cd", "mdr", nil, true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "-username", usr.Username}, extra: extra{pwd: "N3w-passw0rd"}},
		{name: "reset with email", args: []string{"resetpassword", "-username", usr.Email}, extra: extra{pwd: "An0ther-pass"}},
	}
	for _, tt := range tests {
		tt := tt
		pwd := ""
		if e, ok := tt.extra.(extra); ok {
			pwd = e.pwd
		}

		t.Run(tt.name, func(t *testing.T) {
			withPassword(pwd)
			err := cli.run(append([]string{"admin"}, tt.args...))
			tt.check(t, err)
			if err == nil {
				refreshed, err := cli.usrSvc.GetByID(context.Background(), usr.ID)
				require.NoError(t, err)
				assert.NoError(t, refreshed.CheckPassword(pwd))
			}
		})
	}
}

func Test_commandLine_tally(t *testing.T) {
	cli, out := setup(t)
	ctx := context.Background()

	teacher := testutil.CreateTeacher(t, usrRepo, "Teacher", "teacher")
	amy := testutil.CreateStudent(t, usrRepo, "Amy", "amy")
	ben := testutil.CreateStudent(t, usrRepo, "Ben", "ben")

	_, err := cli.votingSvc.ToggleSession(ctx, teacher, true)
	require.NoError(t, err)
	_, err = cli.votingSvc.CastVote(ctx, amy.ID, ben.ID)
	require.NoError(t, err)

	cliTest{wantErrStr: voting.ErrInvalidScope.Error()}.check(t, cli.run([]string{"admin", "tally", "-scope", "weekly"}))

	out.Reset()
	require.NoError(t, cli.run([]string{"admin", "tally", "-scope", "cumulative"}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "(open), scope cumulative")
	assert.Equal(t, []string{"1", "Ben", "1"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"2", "Amy", "0"}, strings.Fields(lines[3]))
}

func Test_nextResults(t *testing.T) {
	ctx := context.Background()
	cli, _ := setup(t)

	teacher := testutil.CreateTeacher(t, usrRepo, "Teacher", "teacher")
	amy := testutil.CreateStudent(t, usrRepo, "Amy", "amy")
	ben := testutil.CreateStudent(t, usrRepo, "Ben", "ben")
	_, err := cli.votingSvc.ToggleSession(ctx, teacher, true)
	require.NoError(t, err)
	_, err = cli.votingSvc.CastVote(ctx, amy.ID, ben.ID)
	require.NoError(t, err)

	poller := voting.NewPoller(cli.votingSvc)
	first, err := poller.Fetch(ctx)
	require.NoError(t, err)

	res, changed := nextResults(voting.Snapshot{}, first, voting.ScopeCurrent)
	require.True(t, changed)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, ben.ID, res.Entries[0].StudentID)

	same, err := poller.Fetch(ctx)
	require.NoError(t, err)
	_, changed = nextResults(first, same, voting.ScopeCurrent)
	assert.False(t, changed)

	// a student added while watching shows up on the next poll
	cid := testutil.CreateStudent(t, usrRepo, "Cid", "cid")
	grown, err := poller.Fetch(ctx)
	require.NoError(t, err)
	res, changed = nextResults(same, grown, voting.ScopeCurrent)
	require.True(t, changed)
	require.Len(t, res.Entries, 3)
	ids := []string{res.Entries[0].StudentID, res.Entries[1].StudentID, res.Entries[2].StudentID}
	assert.Contains(t, ids, cid.ID)
}

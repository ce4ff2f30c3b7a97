// Package logsvc provides the core.Logger backed by a local logger and Rollbar.
package logsvc

import (
	"fmt"
	"log"
	"strings"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/classsync/core"
	"github.com/trezcool/classsync/core/user"
)

type RollbarLogger struct {
	std   *log.Logger
	debug bool
}

var _ core.Logger = (*RollbarLogger)(nil) // interface compliance check

// NewRollbarLogger reports to Rollbar only when a token is configured outside of test mode.
func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(strings.ToLower(conf.Env))
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(conf.RollbarToken != "" && !conf.TestMode)
	return &RollbarLogger{std: std, debug: conf.Debug}
}

// Close flushes the pending Rollbar items.
func (l *RollbarLogger) Close() {
	rollbar.Close()
}

// split separates the acting user.User, if any, from the other args.
func split(args []interface{}) (*user.User, []interface{}) {
	var actor *user.User
	rest := make([]interface{}, 0, len(args))
	for _, arg := range args {
		if usr, ok := arg.(user.User); ok {
			if actor == nil {
				u := usr
				actor = &u
			}
			continue
		}
		rest = append(rest, arg)
	}
	return actor, rest
}

func (l *RollbarLogger) report(level, msg string, args []interface{}) {
	actor, rest := split(args)
	if actor != nil {
		rollbar.SetPerson(actor.ID, actor.Username, actor.Email)
	} else {
		rollbar.ClearPerson()
	}
	rollbar.Log(level, append([]interface{}{msg}, rest...)...)

	var b strings.Builder
	b.WriteString(strings.ToUpper(level))
	b.WriteString(": ")
	b.WriteString(msg)
	if actor != nil {
		fmt.Fprintf(&b, " [user=%s]", actor.Username)
	}
	for _, arg := range rest {
		switch a := arg.(type) {
		case error:
			fmt.Fprintf(&b, " error=%q", a.Error())
		case map[string]interface{}:
			for k, v := range a {
				fmt.Fprintf(&b, " %s=%v", k, v)
			}
		default:
			fmt.Fprintf(&b, " %+v", a)
		}
	}
	l.std.Println(b.String())
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) {
	if l.debug {
		l.report(rollbar.DEBUG, msg, args)
	}
}

func (l *RollbarLogger) Info(msg string, args ...interface{}) {
	l.report(rollbar.INFO, msg, args)
}

func (l *RollbarLogger) Warn(msg string, args ...interface{}) {
	l.report(rollbar.WARN, msg, args)
}

func (l *RollbarLogger) Error(msg string, args ...interface{}) {
	l.report(rollbar.ERR, msg, args)
}

func (l *RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.report(rollbar.CRIT, msg, args)
	rollbar.Close()
	l.std.Fatal(msg)
}

package logsvc

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/classsync/core"
	"github.com/trezcool/classsync/core/user"
)

func newTestLogger(debug bool) (*RollbarLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	conf := &core.Config{Env: "TEST", TestMode: true, Debug: debug}
	return NewRollbarLogger(log.New(&buf, "", 0), conf), &buf
}

func TestRollbarLogger(t *testing.T) {
	t.Run("line holds level, user, error and extras", func(t *testing.T) {
		l, buf := newTestLogger(false)
		usr := user.User{ID: "1", Username: "teacher"}
		l.Error("toggle failed", errors.New("boom"), usr, map[string]interface{}{"session_id": "42"})

		assert.Equal(t, "ERROR: toggle failed [user=teacher] error=\"boom\" session_id=42\n", buf.String())
	})

	t.Run("debug is muted unless enabled", func(t *testing.T) {
		l, buf := newTestLogger(false)
		l.Debug("poll")
		assert.Empty(t, buf.String())

		l, buf = newTestLogger(true)
		l.Debug("poll")
		assert.Equal(t, "DEBUG: poll\n", buf.String())
	})
}

func TestSplit(t *testing.T) {
	a, b := user.User{ID: "a"}, user.User{ID: "b"}
	actor, rest := split([]interface{}{a, "x", b})

	if assert.NotNil(t, actor) {
		assert.Equal(t, "a", actor.ID)
	}
	assert.Equal(t, []interface{}{"x"}, rest)
}

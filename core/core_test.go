package core

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestParseOrdering(t *testing.T) {
	allowed := map[string]bool{"name": true, "created_at": true}
	got := ParseOrdering(allowed, "name", " -Created_At ", "password", "-")
	assert.Equal(t, []DBOrdering{{Field: "name", Ascending: true}, {Field: "created_at", Ascending: false}}, got)
	assert.Equal(t, "created_at DESC", got[1].String())
}

func TestRetry(t *testing.T) {
	errTransient := errors.New("transient")
	errFinal := errors.New("final")
	retryable := func(err error) bool { return errors.Is(err, errTransient) }
	conf := RetryConfig{Attempts: 3, BaseDelay: time.Millisecond}

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), conf, retryable, func() error {
			calls++
			if calls < 3 {
				return errTransient
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after attempts", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), conf, retryable, func() error {
			calls++
			return errTransient
		})
		assert.ErrorIs(t, err, errTransient)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on non retryable error", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), conf, retryable, func() error {
			calls++
			return errFinal
		})
		assert.ErrorIs(t, err, errFinal)
		assert.Equal(t, 1, calls)
	})

	t.Run("single attempt when unset", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), RetryConfig{}, retryable, func() error {
			calls++
			return errTransient
		})
		assert.ErrorIs(t, err, errTransient)
		assert.Equal(t, 1, calls)
	})

	t.Run("waits between attempts", func(t *testing.T) {
		start := time.Now()
		calls := 0
		_ = Retry(context.Background(), RetryConfig{Attempts: 3, BaseDelay: 10 * time.Millisecond}, retryable, func() error {
			calls++
			return errTransient
		})
		assert.Equal(t, 3, calls)
		assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond, "10ms then 20ms")
	})

	t.Run("stops when ctx is done", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		calls := 0
		err := Retry(ctx, RetryConfig{Attempts: 5, BaseDelay: time.Hour}, retryable, func() error {
			calls++
			return errTransient
		})
		assert.ErrorIs(t, err, errTransient)
		assert.Equal(t, 1, calls)
	})
}

func TestEmailMessage_Render(t *testing.T) {
	conf := &Config{AppName: "ClassSync", FrontendBaseURL: "http://localhost:3000"}

	msg := &EmailMessage{
		Subject:      "Voting is open",
		TemplateName: "voting_round_opened",
		TemplateData: map[string]interface{}{"Name": "Amy", "MaxVotes": 3},
	}
	assert.NoError(t, msg.Render(conf))
	assert.Contains(t, msg.TextContent, "Amy")
	assert.Contains(t, msg.HTMLContent, "Amy")

	plain := &EmailMessage{BodyStr: "hello"}
	assert.NoError(t, plain.Render(conf))
	assert.Equal(t, "hello", plain.TextContent)
	assert.Empty(t, plain.HTMLContent)

	unknown := &EmailMessage{TemplateName: "nope"}
	assert.Error(t, unknown.Render(conf))
}

func TestValidationError(t *testing.T) {
	err := NewValidationError(nil, FieldError{Field: "name", Error: "this field is required"})
	assert.Equal(t, "name: this field is required", err.Error())

	var verr *ValidationError
	assert.True(t, errors.As(errors.Wrap(err, "creating"), &verr))
	assert.True(t, IsNotFound(errors.Wrap(NewNotFoundError("user"), "x")))
	assert.False(t, IsNotFound(err))
}

func TestEmailMessage_Attach(t *testing.T) {
	msg := EmailMessage{}
	assert.NoError(t, msg.Attach(strings.NewReader("hi"), "hi.txt", "text/plain"))

	path := filepath.Join(t.TempDir(), "results.csv")
	assert.NoError(t, os.WriteFile(path, []byte("name,votes\n"), 0o600))
	assert.NoError(t, msg.AttachFile(path))
	assert.Error(t, msg.AttachFile(filepath.Join(t.TempDir(), "missing.csv")))

	if assert.True(t, msg.HasAttachments()) && assert.Len(t, msg.Attachments, 2) {
		assert.Equal(t, "aGk=", msg.Attachments[0].Content.String())
		assert.Equal(t, "text/plain", msg.Attachments[0].ContentType)
		assert.Equal(t, "results.csv", msg.Attachments[1].Filename)
		assert.True(t, strings.HasPrefix(msg.Attachments[1].ContentType, "text/plain"))
	}
}

func TestShutdownError(t *testing.T) {
	err := NewShutdownError("integrity issue")
	assert.True(t, IsShutdown(err))
	assert.True(t, IsShutdown(errors.Wrap(err, "handler")))
	assert.False(t, IsShutdown(errors.New("integrity issue")))
}

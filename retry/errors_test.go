package retry

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"

	ai "github.com/spetersoncode/flowgate"
)

// mockAPIError simulates an SDK error with a status code.
type mockAPIError struct {
	code int
	msg  string
}

func (e *mockAPIError) Error() string   { return e.msg }
func (e *mockAPIError) StatusCode() int { return e.code }

// mockNetError simulates a network error with timeout/temporary flags.
type mockNetError struct {
	msg       string
	timeout   bool
	temporary bool
}

func (e *mockNetError) Error() string   { return e.msg }
func (e *mockNetError) Timeout() bool   { return e.timeout }
func (e *mockNetError) Temporary() bool { return e.temporary }

var _ net.Error = (*mockNetError)(nil)

func TestIsTransientStatusCode(t *testing.T) {
	for code, want := range map[int]bool{
		200: false, 400: false, 401: false, 403: false, 404: false,
		429: true, 500: true, 502: true, 503: true, 504: true,
	} {
		t.Run(fmt.Sprintf("status_%d", code), func(t *testing.T) {
			assert.Equal(t, want, isTransientStatusCode(code))
			assert.Equal(t, want, IsTransient(&mockAPIError{code: code, msg: "api error"}))
		})
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"wrapped status code", fmt.Errorf("op failed: %w", &mockAPIError{code: 429, msg: "limited"}), true},
		{"net timeout", &mockNetError{msg: "i/o", timeout: true}, true},
		{"net non-timeout", &mockNetError{msg: "invalid address"}, false},
		{"url timeout", &url.Error{Op: "Post", URL: "https://x", Err: &mockNetError{msg: "deadline", timeout: true}}, true},
		{"temporary dns", &net.DNSError{Err: "try again", Name: "api", IsTemporary: true}, true},
		{"permanent dns", &net.DNSError{Err: "no such host", Name: "api", IsNotFound: true}, false},
		{"connection reset errno", fmt.Errorf("read: %w", syscall.ECONNRESET), true},
		{"connection refused text", errors.New("dial tcp: connection refused"), true},
		{"rate limit text", errors.New("rate limit exceeded"), true},
		{"bad gateway text", errors.New("502 bad gateway"), true},
		{"generic", errors.New("invalid input"), false},
		{"google 503", errors.New("googleapi: Error 503: Service Unavailable"), true},
		{"google 429", errors.New("googleapi: Error 429: quota"), true},
		{"google 400", errors.New("googleapi: Error 400: Bad Request"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestIsTransientWithCategorizedError(t *testing.T) {
	assert.True(t, IsTransient(ai.NewTransientError("rate limited", 429, nil)))
	assert.True(t, IsTransient(fmt.Errorf("failed: %w", ai.NewTransientError("rate limited", 429, nil))))
	assert.False(t, IsTransient(ai.NewPermanentError("unauthorized", 401, nil)))
	assert.False(t, IsTransient(ai.NewUserInputError("bad request", 400, nil)))
	assert.False(t, IsTransient(ai.NewRejectedError("content filtered", 400, nil)))

	// Explicit categorization wins over status code heuristics.
	assert.False(t, IsTransient(ai.NewPermanentError("rate limit but don't retry", 429, nil)))
}

func TestSchemaValidationErrorIsNotTransient(t *testing.T) {
	err := &ai.SchemaValidationError{Schema: "x", Err: errors.New("timeout field missing")}

	assert.False(t, IsTransient(err))
	assert.False(t, IsTransient(fmt.Errorf("step: %w", err)))
}

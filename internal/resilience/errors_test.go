package resilience

import (
	"errors"
	"fmt"
	"syscall"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "deadline" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestIsTransient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("bad image"), false},
		{"explicit", NewTransientError(errors.New("busy"), 503), true},
		{"wrapped explicit", fmt.Errorf("ocr: %w", NewTransientError(errors.New("busy"), 429)), true},
		{"net timeout", fmt.Errorf("call: %w", timeoutErr{}), true},
		{"conn reset", fmt.Errorf("read: %w", syscall.ECONNRESET), true},
		{"conn refused", syscall.ECONNREFUSED, true},
		{"message heuristic", errors.New("write tcp: broken pipe"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestTransientError_Unwrap(t *testing.T) {
	t.Parallel()

	inner := errors.New("inner")
	te := NewTransientError(inner, 502)
	assert.True(t, errors.Is(te, inner))
	assert.Equal(t, "inner", te.Error())
	assert.Equal(t, 502, te.StatusCode)
}

func TestIsTransientHTTPStatus(t *testing.T) {
	t.Parallel()

	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		assert.True(t, IsTransientHTTPStatus(code), code)
	}
	for _, code := range []int{200, 400, 401, 403, 404, 422} {
		assert.False(t, IsTransientHTTPStatus(code), code)
	}
}

func TestStatusError(t *testing.T) {
	t.Parallel()

	err := StatusError("mistral", 503, []byte("overloaded"))
	assert.True(t, IsTransient(err))
	assert.Contains(t, err.Error(), "mistral API returned 503: overloaded")

	err = StatusError("mistral", 401, []byte(`{"error":"invalid api key"}`))
	assert.False(t, IsTransient(err))
	assert.Contains(t, err.Error(), "mistral API returned 401")
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab...(truncated)", truncate("abcdef", 2))

	// "é" is two bytes; cutting at 2 would split it.
	got := truncate("aé-body", 2)
	assert.Equal(t, "a...(truncated)", got)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "aé...(truncated)", truncate("aé-body", 3))
}

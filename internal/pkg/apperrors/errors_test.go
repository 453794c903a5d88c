package apperrors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProtocolErrorMessage(t *testing.T) {
	err := NewProtocol("login_challenge", "unexpected status", 500, []byte(`{"err":"boom"}`), nil)

	assert.Equal(t, ErrProtocol, err.Type)
	assert.Equal(t, "login_challenge: unexpected status (status 500)", err.Error())
	assert.Equal(t, `{"err":"boom"}`, err.Body)
	assert.NotEmpty(t, err.Hint)
}

func TestProtocolErrorTruncatesBody(t *testing.T) {
	body := strings.Repeat("x", 2000)
	err := NewProtocol("points_fetch", "decode failed", 200, []byte(body), nil)

	assert.True(t, strings.HasSuffix(err.Body, "...(truncated)"))
	assert.Less(t, len(err.Body), len(body))
}

func TestWrapKeepsAppError(t *testing.T) {
	orig := NewNoProxy()
	wrapped := fmt.Errorf("check: %w", orig)

	assert.Same(t, orig, Wrap(wrapped))
	assert.Equal(t, ErrNoProxy, KindOf(wrapped))
	assert.Nil(t, Wrap(nil))
	assert.Equal(t, ErrorType(""), KindOf(nil))
}

func TestWrapPlainError(t *testing.T) {
	plain := errors.New("disk on fire")
	appErr := Wrap(plain)

	assert.Equal(t, ErrUnexpectedFault, appErr.Type)
	assert.ErrorIs(t, appErr, plain)
}

func TestUnexpectedFaultFromPanicValue(t *testing.T) {
	assert.Equal(t, "unexpected fault: nil map", NewUnexpectedFault("nil map").Error())

	cause := errors.New("index out of range")
	assert.ErrorIs(t, NewUnexpectedFault(cause), cause)
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(NewConfiguration("wallet file is empty", nil)))
	assert.False(t, IsFatal(NewInvalidCredential("bad key")))
	assert.False(t, IsFatal(nil))
}

package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCodeThroughWrapping(t *testing.T) {
	base := New(CodeUnknownIdentifier, "could not find that visitor")
	wrapped := fmt.Errorf("resolve member: %w", base)

	assert.True(t, HasCode(wrapped, CodeUnknownIdentifier))
	assert.False(t, HasCode(wrapped, CodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), CodeInternal))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("db down")
	err := Wrap(cause, CodeInternal, "failed to persist visit")

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to persist visit: db down", err.Error())
}

func TestFieldErrors(t *testing.T) {
	var fe FieldErrors
	assert.True(t, fe.Empty())

	fe.Add("paddock", "required")
	fe.Add("induction", "required")
	assert.True(t, fe.Has("paddock"))
	assert.False(t, fe.Has("houserules"))

	prefixed := fe.Prefixed("members[1].")
	assert.Equal(t, "members[1].paddock", prefixed[0].Field)
	assert.Equal(t, "paddock", fe[0].Field, "prefixing must not mutate the source")

	err := WithFields(CodeInvalidVisit, "visit is not valid", fe)
	assert.Len(t, FieldsOf(err), 2)
	assert.Nil(t, FieldsOf(errors.New("plain")))
}

func TestToHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, ToHTTPStatus(CodeSelfReference))
	assert.Equal(t, http.StatusConflict, ToHTTPStatus(CodeConflict))
	assert.Equal(t, http.StatusForbidden, ToHTTPStatus(CodeForbidden))
	assert.Equal(t, http.StatusInternalServerError, ToHTTPStatus(CodeConfiguration))
	assert.Equal(t, http.StatusTooManyRequests, ToHTTPStatus(CodeRateLimited))
}

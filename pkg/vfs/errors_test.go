package vfs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorIs_MatchesByCode(t *testing.T) {
	err := NotFound("sys/status")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrForbidden))

	// Matching survives wrapping.
	wrapped := fmt.Errorf("outer: %w", err)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.Equal(t, CodeNotFound, CodeOf(wrapped))
}

func TestNormalize(t *testing.T) {
	// Taxonomy errors pass through untouched.
	typed := Forbiddenf("p", "no")
	assert.Equal(t, error(typed), Normalize("p", typed))

	// Raw errors become CodeInternal with the original as cause.
	raw := errors.New("disk on fire")
	norm := Normalize("p", raw)
	assert.Equal(t, CodeInternal, CodeOf(norm))
	assert.True(t, errors.Is(norm, raw))

	require.NoError(t, Normalize("p", nil))
}

func TestErrorMessage_IncludesPathNotCause(t *testing.T) {
	cause := errors.New("secret backend detail")
	err := Internal("vault/token", cause)

	// The cause is reachable for logging but absent from the message.
	assert.Equal(t, "internal error: vault/token", err.Error())
	assert.True(t, errors.Is(err, cause))
}

func TestErrorCodeString(t *testing.T) {
	assert.Equal(t, "BAD_REQUEST", CodeBadRequest.String())
	assert.Equal(t, "UNPROCESSABLE_ENTITY", CodeUnprocessable.String())
	assert.Equal(t, "GATEWAY_TIMEOUT", CodeGatewayTimeout.String())
}

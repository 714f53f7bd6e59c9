package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_ErrorString(t *testing.T) {
	err := NewCodecError("serial code is corrupt")
	assert.Equal(t, "codec_error: serial code is corrupt", err.Error())

	withDetails := NewInputError("validation failed", "device_id is required")
	assert.Equal(t, "input_error: validation failed (device_id is required)", withDetails.Error())
}

func TestAppError_CauseChain(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewTransientIOError("failed to load serial").WithCause(cause)

	assert.ErrorIs(t, err, cause)

	// The chain survives fmt wrapping.
	wrapped := fmt.Errorf("admission failed: %w", err)
	assert.True(t, IsTransientIOError(wrapped))
	assert.ErrorIs(t, wrapped, cause)
}

func TestTypePredicates(t *testing.T) {
	tests := []struct {
		err       *AppError
		predicate func(error) bool
	}{
		{NewNotFoundError("serial not found"), IsNotFoundError},
		{NewPolicyViolation("usage cap reached"), IsPolicyViolation},
		{NewIntegrityError("seal mismatch"), IsIntegrityError},
		{NewCodecError("bad segment count"), IsCodecError},
		{NewSignatureError("wrong key"), IsSignatureError},
		{NewTransientIOError("timeout"), IsTransientIOError},
		{NewLockContentionError("lock held"), IsLockContention},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Type), func(t *testing.T) {
			assert.True(t, tt.predicate(tt.err))
			assert.True(t, IsAppError(tt.err))

			// Each predicate matches only its own type.
			for _, other := range tests {
				if other.err.Type != tt.err.Type {
					assert.False(t, tt.predicate(other.err),
						"%s predicate must reject %s", tt.err.Type, other.err.Type)
				}
			}
		})
	}

	assert.False(t, IsAppError(errors.New("plain")))
	assert.False(t, IsTransientIOError(errors.New("plain")))
}

func TestGetAppError(t *testing.T) {
	err := NewIntegrityError("seal mismatch")
	wrapped := fmt.Errorf("context: %w", err)

	extracted := GetAppError(wrapped)
	require.NotNil(t, extracted)
	assert.Equal(t, ErrorTypeIntegrity, extracted.Type)

	assert.Nil(t, GetAppError(errors.New("plain")))
}

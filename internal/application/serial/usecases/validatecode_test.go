package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serialhub/internal/domain/serial"
	apperrors "serialhub/internal/shared/errors"
)

func TestValidateCode_Success(t *testing.T) {
	signer, integrity := newTestCrypto(t)
	expiry := time.Now().Add(90 * 24 * time.Hour)
	_, code, signature := issueSerial(t, signer, integrity, 4, &expiry, false)

	uc := NewValidateCodeUseCase(serial.NewCodec(), signer, nopLogger{})

	result, err := uc.Execute(context.Background(), ValidateCodeCommand{
		Code:      code,
		Signature: signature,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Payload)
	assert.Equal(t, "ACMECORP", result.Payload.ClientPrefix)
	assert.Equal(t, 4, result.Payload.MaxUsageCount)
	require.NotNil(t, result.Payload.ExpiresAt)
	assert.WithinDuration(t, expiry, *result.Payload.ExpiresAt, time.Second)
	assert.False(t, result.Payload.IsDemo)
}

func TestValidateCode_Failures(t *testing.T) {
	signer, integrity := newTestCrypto(t)
	_, code, signature := issueSerial(t, signer, integrity, 4, nil, false)

	otherSigner, _ := newTestCrypto(t)
	forged, err := otherSigner.Sign(code)
	require.NoError(t, err)

	uc := NewValidateCodeUseCase(serial.NewCodec(), signer, nopLogger{})

	tests := []struct {
		name     string
		cmd      ValidateCodeCommand
		wantType apperrors.ErrorType
	}{
		{"empty code", ValidateCodeCommand{Signature: signature}, apperrors.ErrorTypeInput},
		{"empty signature", ValidateCodeCommand{Code: code}, apperrors.ErrorTypeInput},
		{"corrupt code", ValidateCodeCommand{Code: "AAAA-BBBB", Signature: signature}, apperrors.ErrorTypeCodec},
		{"wrong key signature", ValidateCodeCommand{Code: code, Signature: forged}, apperrors.ErrorTypeSignature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := uc.Execute(context.Background(), tt.cmd)
			require.Error(t, err)
			assert.Nil(t, result)

			appErr := apperrors.GetAppError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, tt.wantType, appErr.Type)
		})
	}
}

package usecases

import (
	"context"

	"serialhub/internal/domain/serial"
	"serialhub/internal/infrastructure/crypto"
	apperrors "serialhub/internal/shared/errors"
	"serialhub/internal/shared/logger"
)

type ValidateCodeCommand struct {
	Code      string
	Signature string
}

type ValidateCodeResult struct {
	Payload *serial.CodePayload
}

// ValidateCodeUseCase checks a serial code offline: structural decode plus
// signature verification. It touches no storage and records nothing, so it
// is safe to expose to parties holding only the public key.
type ValidateCodeUseCase struct {
	codec  *serial.Codec
	signer *crypto.Signer
	logger logger.Interface
}

func NewValidateCodeUseCase(codec *serial.Codec, signer *crypto.Signer, logger logger.Interface) *ValidateCodeUseCase {
	return &ValidateCodeUseCase{
		codec:  codec,
		signer: signer,
		logger: logger,
	}
}

func (uc *ValidateCodeUseCase) Execute(_ context.Context, cmd ValidateCodeCommand) (*ValidateCodeResult, error) {
	if cmd.Code == "" {
		return nil, apperrors.NewInputError("serial code is required")
	}
	if cmd.Signature == "" {
		return nil, apperrors.NewInputError("code signature is required")
	}

	payload, err := uc.codec.Decode(cmd.Code)
	if err != nil {
		uc.logger.Debugw("serial code failed structural validation", "error", err)
		return nil, apperrors.NewCodecError("serial code is corrupt or malformed").WithCause(err)
	}

	if !uc.signer.Verify(cmd.Code, cmd.Signature) {
		uc.logger.Debugw("serial code failed signature verification")
		return nil, apperrors.NewSignatureError("serial code signature is invalid")
	}

	return &ValidateCodeResult{Payload: payload}, nil
}

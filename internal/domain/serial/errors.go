package serial

import (
	"errors"
	"fmt"
)

var (
	ErrSerialNotFound          = errors.New("serial not found")
	ErrSerialRevoked           = errors.New("serial revoked")
	ErrSerialExpired           = errors.New("serial expired")
	ErrSerialInactive          = errors.New("serial inactive")
	ErrAlreadyRevoked          = errors.New("serial already revoked")
	ErrAlreadyExpired          = errors.New("serial already expired")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrUsageCapReached         = errors.New("usage cap reached")
	ErrInvalidUsageCap         = errors.New("max usage count must be at least 1")

	// Codec errors. Decode failures always wrap one of these.
	ErrInvalidCodeFormat = errors.New("invalid serial code format")
	ErrChecksumMismatch  = errors.New("serial code checksum mismatch")
)

func ErrInvalidTransition(from, to string) error {
	return fmt.Errorf("%w: from %s to %s", ErrInvalidStatusTransition, from, to)
}

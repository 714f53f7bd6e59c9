package serial

import (
	"fmt"
	"strconv"
	"time"

	vo "serialhub/internal/domain/serial/valueobjects"
	"serialhub/internal/shared/id"
)

// CodecVersionV1 is the encoding version stamped onto newly issued serials.
const CodecVersionV1 = "v1"

// Serial is the aggregate root for an issued license code. The serial number
// is immutable after issuance; every other signed field change requires the
// integrity signature to be recomputed before persisting.
type Serial struct {
	id                 uint
	sid                string
	serialNumber       string
	clientID           uint
	maxUsageCount      int
	expiresAt          *time.Time
	isDemo             bool
	status             vo.SerialStatus
	integritySignature string
	codecVersion       string
	createdAt          time.Time
	updatedAt          time.Time
}

// NewSerial creates a new active serial bound to a client.
func NewSerial(clientID uint, serialNumber string, maxUsageCount int, expiresAt *time.Time) (*Serial, error) {
	if clientID == 0 {
		return nil, fmt.Errorf("client ID is required")
	}
	if serialNumber == "" {
		return nil, fmt.Errorf("serial number is required")
	}
	if maxUsageCount < 1 {
		return nil, ErrInvalidUsageCap
	}

	sid, err := id.NewSerialSID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate serial SID: %w", err)
	}

	now := time.Now()
	return &Serial{
		sid:           sid,
		serialNumber:  serialNumber,
		clientID:      clientID,
		maxUsageCount: maxUsageCount,
		expiresAt:     expiresAt,
		status:        vo.StatusActive,
		codecVersion:  CodecVersionV1,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// NewDemoSerial creates a demo serial: usage cap fixed at 1 and a short
// fixed expiry from now.
func NewDemoSerial(clientID uint, serialNumber string, validity time.Duration) (*Serial, error) {
	expiry := time.Now().Add(validity)
	s, err := NewSerial(clientID, serialNumber, 1, &expiry)
	if err != nil {
		return nil, err
	}
	s.isDemo = true
	return s, nil
}

// ReconstructParams carries the persisted state of a serial.
type ReconstructParams struct {
	ID                 uint
	SID                string
	SerialNumber       string
	ClientID           uint
	MaxUsageCount      int
	ExpiresAt          *time.Time
	IsDemo             bool
	Status             vo.SerialStatus
	IntegritySignature string
	CodecVersion       string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Reconstruct rebuilds a serial from persistence.
func Reconstruct(p ReconstructParams) (*Serial, error) {
	if p.ID == 0 {
		return nil, fmt.Errorf("serial ID cannot be zero")
	}
	if p.SerialNumber == "" {
		return nil, fmt.Errorf("serial number is required")
	}
	if !vo.ValidSerialStatuses[p.Status] {
		return nil, fmt.Errorf("invalid serial status: %s", p.Status)
	}
	if p.MaxUsageCount < 1 {
		return nil, ErrInvalidUsageCap
	}

	return &Serial{
		id:                 p.ID,
		sid:                p.SID,
		serialNumber:       p.SerialNumber,
		clientID:           p.ClientID,
		maxUsageCount:      p.MaxUsageCount,
		expiresAt:          p.ExpiresAt,
		isDemo:             p.IsDemo,
		status:             p.Status,
		integritySignature: p.IntegritySignature,
		codecVersion:       p.CodecVersion,
		createdAt:          p.CreatedAt,
		updatedAt:          p.UpdatedAt,
	}, nil
}

func (s *Serial) ID() uint                   { return s.id }
func (s *Serial) SID() string                { return s.sid }
func (s *Serial) SerialNumber() string       { return s.serialNumber }
func (s *Serial) ClientID() uint             { return s.clientID }
func (s *Serial) MaxUsageCount() int         { return s.maxUsageCount }
func (s *Serial) ExpiresAt() *time.Time      { return s.expiresAt }
func (s *Serial) IsDemo() bool               { return s.isDemo }
func (s *Serial) Status() vo.SerialStatus    { return s.status }
func (s *Serial) IntegritySignature() string { return s.integritySignature }
func (s *Serial) CodecVersion() string       { return s.codecVersion }
func (s *Serial) CreatedAt() time.Time       { return s.createdAt }
func (s *Serial) UpdatedAt() time.Time       { return s.updatedAt }

// SetID assigns the database identity after the initial insert.
func (s *Serial) SetID(serialID uint) error {
	if s.id != 0 {
		return fmt.Errorf("serial ID already set")
	}
	if serialID == 0 {
		return fmt.Errorf("serial ID cannot be zero")
	}
	s.id = serialID
	return nil
}

// IsActive reports whether the serial is in the active state.
func (s *Serial) IsActive() bool {
	return s.status == vo.StatusActive
}

// IsExpiredAt reports whether the expiration date has passed at the given
// instant. Serials without an expiration date never expire.
func (s *Serial) IsExpiredAt(now time.Time) bool {
	return s.expiresAt != nil && s.expiresAt.Before(now)
}

// EffectiveUsageCap returns the admission cap: demo serials are always
// capped at a single usage regardless of the stored count.
func (s *Serial) EffectiveUsageCap() int {
	if s.isDemo {
		return 1
	}
	return s.maxUsageCount
}

// Revoke deactivates the serial. Revocation is terminal except via Renew.
func (s *Serial) Revoke() error {
	if s.status == vo.StatusRevoked {
		return ErrAlreadyRevoked
	}
	s.status = vo.StatusRevoked
	s.updatedAt = time.Now()
	return nil
}

// Renew reactivates the serial with a new expiration date. This is the only
// way out of the revoked and expired states.
func (s *Serial) Renew(newExpiresAt *time.Time) error {
	if newExpiresAt != nil && newExpiresAt.Before(time.Now()) {
		return fmt.Errorf("new expiration date must be in the future")
	}
	s.status = vo.StatusActive
	s.expiresAt = newExpiresAt
	s.updatedAt = time.Now()
	return nil
}

// MarkExpired moves the serial to the expired state. The transition is
// idempotent at the sweep level: re-running against an already expired
// serial returns ErrAlreadyExpired which callers treat as a no-op. A revoked
// serial stays revoked.
func (s *Serial) MarkExpired() error {
	switch s.status {
	case vo.StatusExpired:
		return ErrAlreadyExpired
	case vo.StatusRevoked:
		return ErrInvalidTransition(s.status.String(), vo.StatusExpired.String())
	}
	s.status = vo.StatusExpired
	s.updatedAt = time.Now()
	return nil
}

// IntegrityFields returns the canonical field set covered by the entity
// integrity signature. The signature itself and the timestamps are excluded.
func (s *Serial) IntegrityFields() map[string]string {
	expiry := ""
	if s.expiresAt != nil {
		expiry = strconv.FormatInt(s.expiresAt.Unix(), 10)
	}
	return map[string]string{
		"serial_number": s.serialNumber,
		"client_id":     strconv.FormatUint(uint64(s.clientID), 10),
		"max_usage":     strconv.Itoa(s.maxUsageCount),
		"expires_at":    expiry,
		"is_demo":       strconv.FormatBool(s.isDemo),
		"status":        s.status.String(),
	}
}

// SetIntegritySignature stores a freshly computed tamper seal. Must be
// called after every signed-field change, before persisting.
func (s *Serial) SetIntegritySignature(signature string) {
	s.integritySignature = signature
	s.updatedAt = time.Now()
}

package serial

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	vo "serialhub/internal/domain/serial/valueobjects"
)

// Usage is one validation event recorded against a serial from a device.
type Usage struct {
	id         uint
	uuid       string
	serialID   uint
	deviceID   string
	ipAddress  string
	deviceInfo map[string]interface{}
	status     vo.UsageStatus
	createdAt  time.Time
	expiresAt  *time.Time
}

// NewUsage creates an active usage record. expiresAt mirrors the owning
// serial's expiration so the enforcement sweep can reason about both.
func NewUsage(serialID uint, deviceID, ipAddress string, deviceInfo map[string]interface{}, expiresAt *time.Time) (*Usage, error) {
	if serialID == 0 {
		return nil, fmt.Errorf("serial ID is required")
	}
	if deviceID == "" {
		return nil, fmt.Errorf("device ID is required")
	}
	if deviceInfo == nil {
		deviceInfo = make(map[string]interface{})
	}
	return &Usage{
		uuid:       uuid.NewString(),
		serialID:   serialID,
		deviceID:   deviceID,
		ipAddress:  ipAddress,
		deviceInfo: deviceInfo,
		status:     vo.UsageActive,
		createdAt:  time.Now(),
		expiresAt:  expiresAt,
	}, nil
}

// ReconstructUsage rebuilds a usage record from persistence.
func ReconstructUsage(
	usageID uint,
	usageUUID string,
	serialID uint,
	deviceID, ipAddress string,
	deviceInfo map[string]interface{},
	status vo.UsageStatus,
	createdAt time.Time,
	expiresAt *time.Time,
) (*Usage, error) {
	if usageID == 0 {
		return nil, fmt.Errorf("usage ID cannot be zero")
	}
	if !vo.ValidUsageStatuses[status] {
		return nil, fmt.Errorf("invalid usage status: %s", status)
	}
	if deviceInfo == nil {
		deviceInfo = make(map[string]interface{})
	}
	return &Usage{
		id:         usageID,
		uuid:       usageUUID,
		serialID:   serialID,
		deviceID:   deviceID,
		ipAddress:  ipAddress,
		deviceInfo: deviceInfo,
		status:     status,
		createdAt:  createdAt,
		expiresAt:  expiresAt,
	}, nil
}

func (u *Usage) ID() uint                           { return u.id }
func (u *Usage) UUID() string                       { return u.uuid }
func (u *Usage) SerialID() uint                     { return u.serialID }
func (u *Usage) DeviceID() string                   { return u.deviceID }
func (u *Usage) IPAddress() string                  { return u.ipAddress }
func (u *Usage) DeviceInfo() map[string]interface{} { return u.deviceInfo }
func (u *Usage) Status() vo.UsageStatus             { return u.status }
func (u *Usage) CreatedAt() time.Time               { return u.createdAt }
func (u *Usage) ExpiresAt() *time.Time              { return u.expiresAt }

// SetID assigns the database identity after the initial insert.
func (u *Usage) SetID(usageID uint) error {
	if u.id != 0 {
		return fmt.Errorf("usage ID already set")
	}
	if usageID == 0 {
		return fmt.Errorf("usage ID cannot be zero")
	}
	u.id = usageID
	return nil
}

package valueobjects

// SerialStatus represents the lifecycle state of a serial.
type SerialStatus string

const (
	StatusActive  SerialStatus = "active"
	StatusExpired SerialStatus = "expired"
	StatusRevoked SerialStatus = "revoked"
)

// ValidSerialStatuses is the set of statuses accepted from persistence.
var ValidSerialStatuses = map[SerialStatus]bool{
	StatusActive:  true,
	StatusExpired: true,
	StatusRevoked: true,
}

func (s SerialStatus) String() string {
	return string(s)
}

// UsageStatus represents the state of a single usage record.
type UsageStatus string

const (
	UsageActive  UsageStatus = "active"
	UsageRevoked UsageStatus = "revoked"
	UsageExpired UsageStatus = "expired"
)

// ValidUsageStatuses is the set of usage statuses accepted from persistence.
var ValidUsageStatuses = map[UsageStatus]bool{
	UsageActive:  true,
	UsageRevoked: true,
	UsageExpired: true,
}

func (s UsageStatus) String() string {
	return string(s)
}

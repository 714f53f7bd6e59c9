package serial

import "time"

// Event names published to the event sink.
const (
	EventSerialExpiring = "serial.expiring"
	EventSerialExpired  = "serial.expired"
	EventSerialRenewed  = "serial.renewed"
)

// SerialExpiringEvent is emitted by the warning sweep when a serial enters
// the expiration warning window.
type SerialExpiringEvent struct {
	SerialID  uint       `json:"serial_id"`
	SerialSID string     `json:"serial_sid"`
	ClientID  uint       `json:"client_id"`
	ExpiresAt *time.Time `json:"expires_at"`
	Timestamp time.Time  `json:"timestamp"`
}

func NewSerialExpiringEvent(s *Serial) *SerialExpiringEvent {
	return &SerialExpiringEvent{
		SerialID:  s.ID(),
		SerialSID: s.SID(),
		ClientID:  s.ClientID(),
		ExpiresAt: s.ExpiresAt(),
		Timestamp: time.Now(),
	}
}

func (e *SerialExpiringEvent) GetEventType() string { return EventSerialExpiring }

// SerialExpiredEvent is emitted by the enforcement sweep, exactly once per
// expiry transition.
type SerialExpiredEvent struct {
	SerialID  uint      `json:"serial_id"`
	SerialSID string    `json:"serial_sid"`
	ClientID  uint      `json:"client_id"`
	ExpiredAt time.Time `json:"expired_at"`
	Timestamp time.Time `json:"timestamp"`
}

func NewSerialExpiredEvent(s *Serial) *SerialExpiredEvent {
	return &SerialExpiredEvent{
		SerialID:  s.ID(),
		SerialSID: s.SID(),
		ClientID:  s.ClientID(),
		ExpiredAt: time.Now(),
		Timestamp: time.Now(),
	}
}

func (e *SerialExpiredEvent) GetEventType() string { return EventSerialExpired }

// SerialRenewedEvent is emitted after a successful renew.
type SerialRenewedEvent struct {
	SerialID     uint       `json:"serial_id"`
	SerialSID    string     `json:"serial_sid"`
	ClientID     uint       `json:"client_id"`
	NewExpiresAt *time.Time `json:"new_expires_at"`
	Timestamp    time.Time  `json:"timestamp"`
}

func NewSerialRenewedEvent(s *Serial) *SerialRenewedEvent {
	return &SerialRenewedEvent{
		SerialID:     s.ID(),
		SerialSID:    s.SID(),
		ClientID:     s.ClientID(),
		NewExpiresAt: s.ExpiresAt(),
		Timestamp:    time.Now(),
	}
}

func (e *SerialRenewedEvent) GetEventType() string { return EventSerialRenewed }

package client

import (
	"fmt"
	"strings"
	"time"

	"serialhub/internal/shared/id"
)

// Client represents the organization a serial is issued to.
type Client struct {
	id           uint
	sid          string
	name         string
	clientNumber string
	active       bool
	createdAt    time.Time
	updatedAt    time.Time
}

// NewClient creates a new active client. The client number is the stable
// business identifier embedded (truncated) into issued serial codes.
func NewClient(name, clientNumber string) (*Client, error) {
	name = strings.TrimSpace(name)
	clientNumber = strings.ToUpper(strings.TrimSpace(clientNumber))
	if name == "" {
		return nil, fmt.Errorf("client name is required")
	}
	if clientNumber == "" {
		return nil, fmt.Errorf("client number is required")
	}

	sid, err := id.NewClientSID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate client SID: %w", err)
	}

	now := time.Now()
	return &Client{
		sid:          sid,
		name:         name,
		clientNumber: clientNumber,
		active:       true,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// ReconstructClient reconstructs a client from persistence.
func ReconstructClient(
	clientID uint,
	sid, name, clientNumber string,
	active bool,
	createdAt, updatedAt time.Time,
) (*Client, error) {
	if clientID == 0 {
		return nil, fmt.Errorf("client ID cannot be zero")
	}
	if clientNumber == "" {
		return nil, fmt.Errorf("client number is required")
	}
	return &Client{
		id:           clientID,
		sid:          sid,
		name:         name,
		clientNumber: clientNumber,
		active:       active,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}, nil
}

func (c *Client) ID() uint              { return c.id }
func (c *Client) SID() string           { return c.sid }
func (c *Client) Name() string          { return c.name }
func (c *Client) ClientNumber() string  { return c.clientNumber }
func (c *Client) IsActive() bool        { return c.active }
func (c *Client) CreatedAt() time.Time  { return c.createdAt }
func (c *Client) UpdatedAt() time.Time  { return c.updatedAt }

// SetID assigns the database identity after the initial insert.
func (c *Client) SetID(clientID uint) error {
	if c.id != 0 {
		return fmt.Errorf("client ID already set")
	}
	if clientID == 0 {
		return fmt.Errorf("client ID cannot be zero")
	}
	c.id = clientID
	return nil
}

// Deactivate marks the client inactive. Serials of an inactive client are
// soft-deleted by the application layer (client cascade).
func (c *Client) Deactivate() {
	c.active = false
	c.updatedAt = time.Now()
}

// CodePrefix returns the 8-character prefix embedded into serial codes.
// Shorter client numbers are padded with 'X'. The prefix is lossy and may
// collide across clients; lookups always go through the full serial number.
func (c *Client) CodePrefix() string {
	const prefixLen = 8
	p := c.clientNumber
	if len(p) > prefixLen {
		return p[:prefixLen]
	}
	return p + strings.Repeat("X", prefixLen-len(p))
}

package cache

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"serialhub/internal/shared/logger"
)

// CachedSerial is a cached snapshot of a serial row. It serves read paths
// and the not-found short-circuit; the validation path always re-reads the
// authoritative row under lock for tamper comparison.
type CachedSerial struct {
	SerialID uint
	SID      string
	Status   string
	IsDemo   bool
	NotFound bool // null marker: code confirmed absent in the store
}

// SerialCache caches serial lookups by serial number.
type SerialCache interface {
	GetBySerialNumber(ctx context.Context, serialNumber string) (*CachedSerial, error)
	SetBySerialNumber(ctx context.Context, serialNumber string, snapshot *CachedSerial) error
	// SetNullMarker caches a short-lived marker for codes confirmed absent,
	// preventing repeated store lookups (cache penetration protection).
	SetNullMarker(ctx context.Context, serialNumber string) error
	Invalidate(ctx context.Context, serialNumber string) error
}

const (
	serialKeyPrefix  = "serialhub:serial:"
	serialTTLJitter  = 10 * time.Minute // anti-stampede spread on top of the base TTL
	nullMarkerTTL    = 2 * time.Minute
	fieldSerialID    = "serial_id"
	fieldSID         = "sid"
	fieldStatus      = "status"
	fieldIsDemo      = "is_demo"
	fieldNullMarker  = "_null"
)

// RedisSerialCache implements SerialCache using a Redis hash per serial.
type RedisSerialCache struct {
	client  *redis.Client
	baseTTL time.Duration
	logger  logger.Interface
}

func NewRedisSerialCache(client *redis.Client, baseTTL time.Duration, logger logger.Interface) *RedisSerialCache {
	return &RedisSerialCache{
		client:  client,
		baseTTL: baseTTL,
		logger:  logger,
	}
}

func (c *RedisSerialCache) key(serialNumber string) string {
	return serialKeyPrefix + serialNumber
}

func (c *RedisSerialCache) GetBySerialNumber(ctx context.Context, serialNumber string) (*CachedSerial, error) {
	result, err := c.client.HGetAll(ctx, c.key(serialNumber)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get serial from cache: %w", err)
	}
	if len(result) == 0 {
		return nil, nil // cache miss
	}

	if result[fieldNullMarker] == "1" {
		return &CachedSerial{NotFound: true}, nil
	}

	snapshot := &CachedSerial{
		SID:    result[fieldSID],
		Status: result[fieldStatus],
		IsDemo: result[fieldIsDemo] == "1",
	}
	if idStr, ok := result[fieldSerialID]; ok {
		id64, _ := strconv.ParseUint(idStr, 10, 64)
		snapshot.SerialID = uint(id64)
	}
	return snapshot, nil
}

func (c *RedisSerialCache) SetBySerialNumber(ctx context.Context, serialNumber string, snapshot *CachedSerial) error {
	fields := map[string]interface{}{
		fieldSerialID: snapshot.SerialID,
		fieldSID:      snapshot.SID,
		fieldStatus:   snapshot.Status,
		fieldIsDemo:   boolToInt(snapshot.IsDemo),
	}

	pipe := c.client.Pipeline()
	pipe.HSet(ctx, c.key(serialNumber), fields)
	pipe.Expire(ctx, c.key(serialNumber), c.ttlWithJitter())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set serial in cache: %w", err)
	}

	c.logger.Debugw("serial snapshot cached", "sid", snapshot.SID, "status", snapshot.Status)
	return nil
}

func (c *RedisSerialCache) SetNullMarker(ctx context.Context, serialNumber string) error {
	pipe := c.client.Pipeline()
	pipe.HSet(ctx, c.key(serialNumber), fieldNullMarker, "1")
	pipe.Expire(ctx, c.key(serialNumber), nullMarkerTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set null marker in cache: %w", err)
	}
	return nil
}

func (c *RedisSerialCache) Invalidate(ctx context.Context, serialNumber string) error {
	if err := c.client.Del(ctx, c.key(serialNumber)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate serial cache: %w", err)
	}
	return nil
}

// ttlWithJitter randomizes the TTL to prevent cache stampede.
func (c *RedisSerialCache) ttlWithJitter() time.Duration {
	jitter := time.Duration(rand.Int63n(int64(serialTTLJitter)))
	return c.baseTTL + jitter
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

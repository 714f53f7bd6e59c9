package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"
)

const integritySaltSize = 16

// SignedEntity is a persisted record carrying an entity integrity seal.
// IntegrityFields must exclude the signature itself and the timestamps.
type SignedEntity interface {
	IntegrityFields() map[string]string
	IntegritySignature() string
	IsDemo() bool
	IsActive() bool
	IsExpiredAt(now time.Time) bool
}

// IntegrityService computes and validates the keyed-hash tamper seal over a
// persisted entity's fields. It is deliberately independent of Signer: the
// seal protects the operator's own store, the code signature protects the
// external code holder.
type IntegrityService struct {
	secret []byte
}

func NewIntegrityService(secret string) (*IntegrityService, error) {
	if secret == "" {
		return nil, fmt.Errorf("integrity secret is required")
	}
	return &IntegrityService{secret: []byte(secret)}, nil
}

// GenerateSignature produces a "salt:hmac" seal over the canonical field
// serialization. A fresh salt per call prevents signature reuse across
// entities with identical field values.
func (s *IntegrityService) GenerateSignature(fields map[string]string) (string, error) {
	saltRaw := make([]byte, integritySaltSize)
	if _, err := rand.Read(saltRaw); err != nil {
		return "", &CryptoError{Op: "generate_signature", Err: err}
	}
	salt := hex.EncodeToString(saltRaw)
	return salt + ":" + s.computeHMAC(salt, fields), nil
}

// VerifySeal recomputes the hmac half of a stored seal over the given
// fields. Malformed seals read as invalid, never as an error.
func (s *IntegrityService) VerifySeal(fields map[string]string, seal string) bool {
	salt, storedMAC, ok := strings.Cut(seal, ":")
	if !ok || salt == "" || storedMAC == "" {
		return false
	}
	expected := s.computeHMAC(salt, fields)
	return hmac.Equal([]byte(storedMAC), []byte(expected))
}

// Validate checks both the seal and the business predicates of an entity:
// demo entities always pass the expiry and active checks; non-demo entities
// must be active and, if an expiration date is set, unexpired.
func (s *IntegrityService) Validate(entity SignedEntity) bool {
	if !s.VerifySeal(entity.IntegrityFields(), entity.IntegritySignature()) {
		return false
	}
	if entity.IsDemo() {
		return true
	}
	if !entity.IsActive() {
		return false
	}
	return !entity.IsExpiredAt(time.Now())
}

func (s *IntegrityService) computeHMAC(salt string, fields map[string]string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(salt))
	mac.Write([]byte("|"))
	mac.Write([]byte(canonicalize(fields)))
	return hex.EncodeToString(mac.Sum(nil))
}

// canonicalize serializes fields deterministically: keys sorted, k=v pairs
// joined with '&'.
func canonicalize(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+fields[k])
	}
	return strings.Join(pairs, "&")
}

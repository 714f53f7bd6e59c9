package serial

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const (
	codeSegments    = 5
	codeSeparator   = "-"
	metaSeparator   = "."
	nonceLength     = 6
	checksumLength  = 8
	prefixLength    = 8
	noExpiryMarker  = "0"
	demoFlagOn      = "1"
	demoFlagOff     = "0"
	nonceAlphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// CodePayload is the information carried by a printable serial code.
// Timestamps are second precision; ClientPrefix is the 8-character uppercase
// lossy client identifier.
type CodePayload struct {
	IssuedAt      time.Time
	ClientPrefix  string
	MaxUsageCount int
	ExpiresAt     *time.Time
	IsDemo        bool
}

// Codec encodes and decodes printable serial codes. The code is five
// dash-delimited uppercase segments: time, nonce, client prefix, metadata
// and checksum. The checksum is a cheap corruption pre-filter; authenticity
// is established separately by the code signature.
type Codec struct{}

func NewCodec() *Codec {
	return &Codec{}
}

// Encode maps a payload to a serial code. The nonce segment is random, so
// two encodings of the same payload differ while both decode back to it.
func (c *Codec) Encode(p CodePayload) (string, error) {
	if p.MaxUsageCount < 1 {
		return "", ErrInvalidUsageCap
	}
	if len(p.ClientPrefix) != prefixLength {
		return "", fmt.Errorf("%w: client prefix must be %d characters", ErrInvalidCodeFormat, prefixLength)
	}
	// The prefix travels verbatim inside the code; only uppercase prefixes
	// round-trip through Decode, so anything else is rejected up front.
	if strings.ToUpper(p.ClientPrefix) != p.ClientPrefix {
		return "", fmt.Errorf("%w: client prefix must be uppercase", ErrInvalidCodeFormat)
	}

	nonce, err := randomNonce()
	if err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	expiry := noExpiryMarker
	if p.ExpiresAt != nil {
		expiry = base36(p.ExpiresAt.Unix())
	}
	demo := demoFlagOff
	if p.IsDemo {
		demo = demoFlagOn
	}

	segments := []string{
		base36(p.IssuedAt.Unix()),
		nonce,
		p.ClientPrefix,
		strings.Join([]string{base36(int64(p.MaxUsageCount)), expiry, demo}, metaSeparator),
	}
	segments = append(segments, checksum(segments))

	return strings.Join(segments, codeSeparator), nil
}

// Decode parses a serial code back into its payload. It fails with a codec
// error on wrong segment count, checksum mismatch or unparsable numeric
// fields. For any payload p, Decode(Encode(p)) equals p at second precision.
func (c *Codec) Decode(code string) (*CodePayload, error) {
	segments := strings.Split(code, codeSeparator)
	if len(segments) != codeSegments {
		return nil, fmt.Errorf("%w: expected %d segments, got %d", ErrInvalidCodeFormat, codeSegments, len(segments))
	}

	if checksum(segments[:4]) != segments[4] {
		return nil, ErrChecksumMismatch
	}

	issuedUnix, err := parseBase36(segments[0])
	if err != nil {
		return nil, fmt.Errorf("%w: bad time segment: %v", ErrInvalidCodeFormat, err)
	}

	prefix := segments[2]
	if len(prefix) != prefixLength {
		return nil, fmt.Errorf("%w: bad client prefix length", ErrInvalidCodeFormat)
	}

	meta := strings.Split(segments[3], metaSeparator)
	if len(meta) != 3 {
		return nil, fmt.Errorf("%w: metadata must have 3 sub-fields", ErrInvalidCodeFormat)
	}

	maxUsage, err := parseBase36(meta[0])
	if err != nil || maxUsage < 1 {
		return nil, fmt.Errorf("%w: bad usage cap", ErrInvalidCodeFormat)
	}

	var expiresAt *time.Time
	if meta[1] != noExpiryMarker {
		expiryUnix, err := parseBase36(meta[1])
		if err != nil {
			return nil, fmt.Errorf("%w: bad expiry", ErrInvalidCodeFormat)
		}
		t := time.Unix(expiryUnix, 0).UTC()
		expiresAt = &t
	}

	var isDemo bool
	switch meta[2] {
	case demoFlagOn:
		isDemo = true
	case demoFlagOff:
		isDemo = false
	default:
		return nil, fmt.Errorf("%w: bad demo flag", ErrInvalidCodeFormat)
	}

	return &CodePayload{
		IssuedAt:      time.Unix(issuedUnix, 0).UTC(),
		ClientPrefix:  prefix,
		MaxUsageCount: int(maxUsage),
		ExpiresAt:     expiresAt,
		IsDemo:        isDemo,
	}, nil
}

// checksum computes the leading hex digits of a SHA-256 over the joined
// leading segments. Case-sensitive: any flipped character changes it.
func checksum(segments []string) string {
	sum := sha256.Sum256([]byte(strings.Join(segments, codeSeparator)))
	return strings.ToUpper(hex.EncodeToString(sum[:]))[:checksumLength]
}

func base36(v int64) string {
	return strings.ToUpper(strconv.FormatInt(v, 36))
}

func parseBase36(s string) (int64, error) {
	return strconv.ParseInt(strings.ToLower(s), 36, 64)
}

func randomNonce() (string, error) {
	result := make([]byte, nonceLength)
	alphabetLen := big.NewInt(int64(len(nonceAlphabet)))
	for i := range result {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", err
		}
		result[i] = nonceAlphabet[n.Int64()]
	}
	return string(result), nil
}

// Package crypto implements the two independent trust mechanisms of the
// serial engine: the asymmetric code signature (Signer) protecting printable
// codes against forgery by outsiders, and the keyed entity integrity seal
// (IntegrityService) protecting stored rows against out-of-band edits.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"serialhub/internal/shared/config"
)

// EncryptionVersionV1 identifies the AES-256-GCM scheme. New schemes get new
// versions; previously issued ciphertext always stays decryptable.
const EncryptionVersionV1 = "v1"

// ErrUnsupportedVersion is returned when decrypting ciphertext produced by
// an unknown encryption scheme version.
var ErrUnsupportedVersion = errors.New("unsupported encryption version")

// CryptoError wraps failures from sign, encrypt, decrypt and hash
// operations. Verify operations never return it; they report false instead.
type CryptoError struct {
	Op  string
	Err error
}

func (e *CryptoError) Error() string {
	return fmt.Sprintf("crypto %s: %v", e.Op, e.Err)
}

func (e *CryptoError) Unwrap() error {
	return e.Err
}

// Signer holds the process-wide signing key pair and symmetric secret. Both
// are read once at construction and never exposed.
type Signer struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
	aead       cipher.AEAD
	bcryptCost int
}

// NewSigner builds a Signer from configuration. Keys are base64-encoded
// ed25519 keys; the symmetric secret may be any non-empty string, the AES
// key is derived from it.
func NewSigner(cfg *config.CryptoConfig) (*Signer, error) {
	privRaw, err := base64.StdEncoding.DecodeString(cfg.SigningPrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode signing private key: %w", err)
	}
	if len(privRaw) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("signing private key must be %d bytes, got %d", ed25519.PrivateKeySize, len(privRaw))
	}
	pubRaw, err := base64.StdEncoding.DecodeString(cfg.SigningPublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode signing public key: %w", err)
	}
	if len(pubRaw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("signing public key must be %d bytes, got %d", ed25519.PublicKeySize, len(pubRaw))
	}
	if cfg.SymmetricSecret == "" {
		return nil, fmt.Errorf("symmetric secret is required")
	}

	aead, err := newAEAD(cfg.SymmetricSecret)
	if err != nil {
		return nil, err
	}

	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return &Signer{
		privateKey: ed25519.PrivateKey(privRaw),
		publicKey:  ed25519.PublicKey(pubRaw),
		aead:       aead,
		bcryptCost: cost,
	}, nil
}

func newAEAD(secret string) (cipher.AEAD, error) {
	key := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aead, nil
}

// Sign signs a printable serial code with the process private key.
func (s *Signer) Sign(message string) (string, error) {
	if message == "" {
		return "", &CryptoError{Op: "sign", Err: errors.New("message is empty")}
	}
	sig := ed25519.Sign(s.privateKey, []byte(message))
	return base64.StdEncoding.EncodeToString(sig), nil
}

// Verify checks a code signature against the process public key. It sits on
// the high-frequency validation path and never returns an error: malformed
// input is simply an invalid signature.
func (s *Signer) Verify(message, signature string) bool {
	return VerifyWithKey(message, signature, s.publicKey)
}

// VerifyWithKey validates a signature against an explicit public key, so a
// party holding only the public key can trust a code without ever touching
// the private key.
func VerifyWithKey(message, signature string, publicKey ed25519.PublicKey) bool {
	if message == "" || signature == "" || len(publicKey) != ed25519.PublicKeySize {
		return false
	}
	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(publicKey, []byte(message), sig)
}

// PublicKey returns the verification key for distribution to code holders.
func (s *Signer) PublicKey() ed25519.PublicKey {
	return s.publicKey
}

// Encrypt encrypts data under the current scheme version. The returned
// version must be stored alongside the ciphertext.
func (s *Signer) Encrypt(data []byte) (ciphertext string, version string, err error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", "", &CryptoError{Op: "encrypt", Err: err}
	}
	sealed := s.aead.Seal(nonce, nonce, data, nil)
	return base64.StdEncoding.EncodeToString(sealed), EncryptionVersionV1, nil
}

// Decrypt decrypts ciphertext produced by Encrypt. Ciphertext from an
// unknown scheme version fails with ErrUnsupportedVersion.
func (s *Signer) Decrypt(ciphertext, version string) ([]byte, error) {
	if version != EncryptionVersionV1 {
		return nil, &CryptoError{Op: "decrypt", Err: fmt.Errorf("%w: %q", ErrUnsupportedVersion, version)}
	}
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, &CryptoError{Op: "decrypt", Err: err}
	}
	if len(raw) < s.aead.NonceSize() {
		return nil, &CryptoError{Op: "decrypt", Err: errors.New("ciphertext too short")}
	}
	nonce, sealed := raw[:s.aead.NonceSize()], raw[s.aead.NonceSize():]
	plain, err := s.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, &CryptoError{Op: "decrypt", Err: err}
	}
	return plain, nil
}

// Hash produces a salted one-way digest. bcrypt embeds a fresh random salt
// per call, so identical inputs never produce identical stored digests.
func (s *Signer) Hash(data string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(data), s.bcryptCost)
	if err != nil {
		return "", &CryptoError{Op: "hash", Err: err}
	}
	return string(digest), nil
}

// VerifyHash checks data against a salted digest. Never returns an error;
// any failure reads as a mismatch.
func (s *Signer) VerifyHash(data, saltedDigest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(saltedDigest), []byte(data)) == nil
}

// GenerateKeyPair creates a fresh ed25519 key pair, base64-encoded for
// configuration storage.
func GenerateKeyPair() (publicKey, privateKey string, err error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", "", &CryptoError{Op: "generate_key_pair", Err: err}
	}
	return base64.StdEncoding.EncodeToString(pub), base64.StdEncoding.EncodeToString(priv), nil
}

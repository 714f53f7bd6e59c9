package crypto

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serialhub/internal/shared/config"
)

func newTestSigner(t *testing.T) *Signer {
	t.Helper()
	pub, priv, err := GenerateKeyPair()
	require.NoError(t, err)

	s, err := NewSigner(&config.CryptoConfig{
		SigningPrivateKey: priv,
		SigningPublicKey:  pub,
		SymmetricSecret:   "test-symmetric-secret",
		BcryptCost:        4,
	})
	require.NoError(t, err)
	return s
}

func TestGenerateKeyPair(t *testing.T) {
	pub, priv, err := GenerateKeyPair()
	require.NoError(t, err)

	pubRaw, err := base64.StdEncoding.DecodeString(pub)
	require.NoError(t, err)
	assert.Len(t, pubRaw, ed25519.PublicKeySize)

	privRaw, err := base64.StdEncoding.DecodeString(priv)
	require.NoError(t, err)
	assert.Len(t, privRaw, ed25519.PrivateKeySize)
}

func TestNewSigner_Validation(t *testing.T) {
	pub, priv, err := GenerateKeyPair()
	require.NoError(t, err)

	tests := []struct {
		name string
		cfg  config.CryptoConfig
	}{
		{"bad private key encoding", config.CryptoConfig{SigningPrivateKey: "!!!", SigningPublicKey: pub, SymmetricSecret: "s"}},
		{"wrong private key size", config.CryptoConfig{SigningPrivateKey: base64.StdEncoding.EncodeToString([]byte("short")), SigningPublicKey: pub, SymmetricSecret: "s"}},
		{"bad public key encoding", config.CryptoConfig{SigningPrivateKey: priv, SigningPublicKey: "!!!", SymmetricSecret: "s"}},
		{"missing symmetric secret", config.CryptoConfig{SigningPrivateKey: priv, SigningPublicKey: pub}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSigner(&tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestSigner_SignAndVerify(t *testing.T) {
	s := newTestSigner(t)

	sig, err := s.Sign("TIME-NONCE-ACMECORP-5.0.0-CHECKSUM")
	require.NoError(t, err)
	assert.True(t, s.Verify("TIME-NONCE-ACMECORP-5.0.0-CHECKSUM", sig))

	// Signing is bound to the exact message.
	assert.False(t, s.Verify("TIME-NONCE-ACMECORP-5.0.1-CHECKSUM", sig))

	_, err = s.Sign("")
	assert.Error(t, err)
}

func TestSigner_Verify_NeverErrorsOnGarbage(t *testing.T) {
	s := newTestSigner(t)

	// Verify reports false for any malformed input, it never panics or errors.
	assert.False(t, s.Verify("", ""))
	assert.False(t, s.Verify("message", ""))
	assert.False(t, s.Verify("message", "not base64 !!!"))
	assert.False(t, s.Verify("message", base64.StdEncoding.EncodeToString([]byte("too short"))))
}

func TestVerifyWithKey(t *testing.T) {
	s := newTestSigner(t)
	sig, err := s.Sign("offline-check")
	require.NoError(t, err)

	// A holder of only the public key can verify.
	assert.True(t, VerifyWithKey("offline-check", sig, s.PublicKey()))

	// The wrong key rejects.
	other := newTestSigner(t)
	assert.False(t, VerifyWithKey("offline-check", sig, other.PublicKey()))

	assert.False(t, VerifyWithKey("offline-check", sig, nil))
}

func TestSigner_EncryptDecrypt(t *testing.T) {
	s := newTestSigner(t)

	ciphertext, version, err := s.Encrypt([]byte("sensitive payload"))
	require.NoError(t, err)
	assert.Equal(t, EncryptionVersionV1, version)
	assert.NotContains(t, ciphertext, "sensitive")

	plain, err := s.Decrypt(ciphertext, version)
	require.NoError(t, err)
	assert.Equal(t, []byte("sensitive payload"), plain)

	// Same plaintext encrypts differently every time.
	again, _, err := s.Encrypt([]byte("sensitive payload"))
	require.NoError(t, err)
	assert.NotEqual(t, ciphertext, again)
}

func TestSigner_Decrypt_Failures(t *testing.T) {
	s := newTestSigner(t)
	ciphertext, version, err := s.Encrypt([]byte("data"))
	require.NoError(t, err)

	// Unknown scheme version.
	_, err = s.Decrypt(ciphertext, "v99")
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	// Tampered ciphertext fails GCM authentication.
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xff
	_, err = s.Decrypt(base64.StdEncoding.EncodeToString(raw), version)
	assert.Error(t, err)

	// A different secret cannot decrypt.
	pub, priv, err := GenerateKeyPair()
	require.NoError(t, err)
	other, err := NewSigner(&config.CryptoConfig{
		SigningPrivateKey: priv,
		SigningPublicKey:  pub,
		SymmetricSecret:   "a different secret",
	})
	require.NoError(t, err)
	_, err = other.Decrypt(ciphertext, version)
	assert.Error(t, err)

	var cryptoErr *CryptoError
	assert.True(t, errors.As(err, &cryptoErr))
}

func TestSigner_HashAndVerifyHash(t *testing.T) {
	s := newTestSigner(t)

	first, err := s.Hash("activation-secret")
	require.NoError(t, err)
	second, err := s.Hash("activation-secret")
	require.NoError(t, err)

	// Fresh salt per call: identical inputs never hash identically.
	assert.NotEqual(t, first, second)

	assert.True(t, s.VerifyHash("activation-secret", first))
	assert.True(t, s.VerifyHash("activation-secret", second))
	assert.False(t, s.VerifyHash("wrong", first))
	assert.False(t, s.VerifyHash("activation-secret", "not a digest"))
}

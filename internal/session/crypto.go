package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

// saltName is the reserved entry holding the key-derivation salt. It is
// stored unencrypted alongside the sealed values.
const saltName = "__salt"

// saltTTL keeps the salt alive well past any credential it protects.
const saltTTL = 10 * 365 * 24 * time.Hour

// EncryptedStore wraps an inner Store, sealing every value with a key
// derived from a passphrase (scrypt + NaCl secretbox). The at-rest
// format of each value is base64(nonce || box).
type EncryptedStore struct {
	inner Store
	key   [32]byte
}

// NewEncryptedStore derives the sealing key from passphrase and the
// salt persisted in inner (generating one on first use).
func NewEncryptedStore(inner Store, passphrase string) (*EncryptedStore, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("encrypted session store requires a passphrase")
	}

	salt, ok := inner.Get(saltName)
	if !ok {
		raw := make([]byte, 16)
		if _, err := rand.Read(raw); err != nil {
			return nil, fmt.Errorf("failed to generate salt: %w", err)
		}
		salt = base64.StdEncoding.EncodeToString(raw)
		if err := inner.Set(saltName, salt, saltTTL); err != nil {
			return nil, fmt.Errorf("failed to persist salt: %w", err)
		}
	}

	rawSalt, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return nil, fmt.Errorf("corrupt salt entry: %w", err)
	}

	derived, err := scrypt.Key([]byte(passphrase), rawSalt, 1<<15, 8, 1, 32)
	if err != nil {
		return nil, fmt.Errorf("key derivation failed: %w", err)
	}

	s := &EncryptedStore{inner: inner}
	copy(s.key[:], derived)
	return s, nil
}

func (s *EncryptedStore) seal(plaintext string) (string, error) {
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &s.key)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (s *EncryptedStore) open(ciphertext string) (string, bool) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil || len(raw) < 24 {
		return "", false
	}

	var nonce [24]byte
	copy(nonce[:], raw[:24])

	plaintext, ok := secretbox.Open(nil, raw[24:], &nonce, &s.key)
	if !ok {
		return "", false
	}
	return string(plaintext), true
}

// Get implements Store. A value that fails to open (wrong passphrase or
// tampering) is reported as absent.
func (s *EncryptedStore) Get(name string) (string, bool) {
	sealed, ok := s.inner.Get(name)
	if !ok {
		return "", false
	}
	return s.open(sealed)
}

// Set implements Store.
func (s *EncryptedStore) Set(name, value string, ttl time.Duration) error {
	sealed, err := s.seal(value)
	if err != nil {
		return err
	}
	return s.inner.Set(name, sealed, ttl)
}

// Remove implements Store.
func (s *EncryptedStore) Remove(name string) error {
	return s.inner.Remove(name)
}

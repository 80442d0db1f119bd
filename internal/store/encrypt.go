package store

import (
	"crypto/rand"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"

	"github.com/veldtlabs/websnap/internal/core/domain"
	"github.com/veldtlabs/websnap/pkg/crypto/adaptive"
)

const (
	// MinKeyLength is the minimum raw key length.
	MinKeyLength = 16

	// MinPassphraseLength is the minimum passphrase length.
	MinPassphraseLength = 8

	// SaltLength is the salt length used in passphrase derivation.
	SaltLength = 16

	// Argon2id parameters for passphrase-based key derivation.
	argon2Time    = 3
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2KeyLen  = 32
)

// EncryptionConfig configures container payload encryption. Leaving both
// Key and Passphrase empty disables encryption.
type EncryptionConfig struct {
	// Key is a raw master key. Ignored when Passphrase is set.
	Key []byte

	// Passphrase derives the master key via Argon2id. The per-container
	// salt is stored in the container header.
	Passphrase []byte

	// Algorithm selects the AEAD ("aes-gcm", "chacha20-poly1305"). Empty
	// picks the best fit for the hardware.
	Algorithm string
}

// Enabled reports whether the configuration requests encryption.
func (c EncryptionConfig) Enabled() bool {
	return len(c.Key) > 0 || len(c.Passphrase) > 0
}

// Validate checks key and passphrase strength.
func (c EncryptionConfig) Validate() error {
	if len(c.Passphrase) > 0 {
		if len(c.Passphrase) < MinPassphraseLength {
			return domain.ErrStoreCipher.WithDetails("passphrase too weak")
		}
		return nil
	}
	if len(c.Key) > 0 && len(c.Key) < MinKeyLength {
		return domain.ErrStoreCipher.WithDetails("key too short")
	}
	return nil
}

// cipherFor builds the AEAD sealing one container. Every container gets
// its own subkey: the master key (raw, or Argon2id-derived from the
// passphrase and salt) is expanded with HKDF bound to the container ID, so
// no two containers share an AEAD key.
func (c EncryptionConfig) cipherFor(id string, salt []byte) (adaptive.Cipher, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	master := c.Key
	if len(c.Passphrase) > 0 {
		master = argon2.IDKey(c.Passphrase, salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
	}

	key, err := deriveSubkey(master, "websnap/container/"+id, argon2KeyLen)
	if err != nil {
		return nil, err
	}

	if c.Algorithm == "" {
		return adaptive.New(key)
	}
	return adaptive.NewWithType(key, adaptive.CipherType(c.Algorithm))
}

// newSalt generates a fresh derivation salt.
func newSalt() ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, domain.ErrStoreCipher.WithCause(err)
	}
	return salt, nil
}

// deriveSubkey expands a master key into a purpose-bound subkey via HKDF.
func deriveSubkey(masterKey []byte, info string, length int) ([]byte, error) {
	if len(masterKey) < MinKeyLength {
		return nil, domain.ErrStoreCipher.WithDetails("key too short")
	}
	key := make([]byte, length)
	if _, err := io.ReadFull(hkdf.New(sha256.New, masterKey, nil, []byte(info)), key); err != nil {
		return nil, domain.ErrStoreCipher.WithCause(err)
	}
	return key, nil
}

// GenerateKey generates a random master key of the given length.
func GenerateKey(length int) ([]byte, error) {
	if length < MinKeyLength {
		return nil, domain.ErrStoreCipher.WithDetails("key too short")
	}
	key := make([]byte, length)
	if _, err := rand.Read(key); err != nil {
		return nil, domain.ErrStoreCipher.WithCause(err)
	}
	return key, nil
}

// ZeroKey wipes key material in place.
func ZeroKey(key []byte) {
	for i := range key {
		key[i] = 0
	}
}

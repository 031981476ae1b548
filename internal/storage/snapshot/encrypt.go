package snapshot

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"

	"github.com/yndnr/dew-go/pkg/crypto/adaptive"
)

// Encryption errors.
var (
	ErrKeyTooShort       = errors.New("snapshot: encryption key too short (minimum 16 bytes)")
	ErrPassphraseTooWeak = errors.New("snapshot: passphrase too weak (minimum 8 characters)")
	ErrDecryptionFailed  = errors.New("snapshot: decryption failed - wrong key or corrupted data")
	ErrKeyRequired       = errors.New("snapshot: file is sealed but no encryption key is configured")
)

const (
	// MinKeyLength is the minimum key length for encryption.
	MinKeyLength = 16

	// MinPassphraseLength is the minimum passphrase length.
	MinPassphraseLength = 8

	// SaltLength is the salt length used in passphrase key derivation.
	SaltLength = 16

	// subkeyInfo separates the snapshot key from any other use of the master key.
	subkeyInfo = "dew-snapshot-v1"

	argon2Time    = 3
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2KeyLen  = 32
)

// EncryptionConfig configures snapshot encryption.
// Either Key or Passphrase enables sealing; both empty disables it.
type EncryptionConfig struct {
	// Key is a raw master key. The cipher key is derived from it with HKDF.
	Key []byte

	// Passphrase derives the cipher key with Argon2id. Takes precedence over Key.
	// A fresh salt is generated per process and stored in each envelope.
	Passphrase []byte

	// Algorithm is "aes-gcm", "chacha20-poly1305" or empty for hardware-based selection.
	Algorithm string
}

// Enabled reports whether the config turns sealing on.
func (c EncryptionConfig) Enabled() bool {
	return len(c.Key) > 0 || len(c.Passphrase) > 0
}

// ValidateConfig validates the encryption configuration.
func ValidateConfig(cfg EncryptionConfig) error {
	if len(cfg.Passphrase) > 0 {
		if len(cfg.Passphrase) < MinPassphraseLength {
			return ErrPassphraseTooWeak
		}
	} else if len(cfg.Key) > 0 && len(cfg.Key) < MinKeyLength {
		return ErrKeyTooShort
	}

	if _, err := adaptive.ParseCipherType(cfg.Algorithm); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	return nil
}

// sealer seals and opens snapshot payloads.
// Derived ciphers are cached per salt since Argon2id is deliberately slow.
type sealer struct {
	cfg EncryptionConfig

	mu    sync.Mutex
	salt  []byte
	cache map[string]adaptive.Cipher
}

func newSealer(cfg EncryptionConfig) (*sealer, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	s := &sealer{
		cfg:   cfg,
		cache: make(map[string]adaptive.Cipher),
	}
	if len(cfg.Passphrase) > 0 {
		s.salt = make([]byte, SaltLength)
		if _, err := rand.Read(s.salt); err != nil {
			return nil, fmt.Errorf("snapshot: generate salt: %w", err)
		}
	}
	return s, nil
}

// seal encrypts plaintext and returns the ciphertext, the cipher name
// and the salt needed to reopen it (nil for raw keys).
func (s *sealer) seal(plaintext []byte) ([]byte, adaptive.CipherType, []byte, error) {
	algo, err := adaptive.ParseCipherType(s.cfg.Algorithm)
	if err != nil {
		return nil, "", nil, err
	}
	c, err := s.cipherFor(s.salt, algo)
	if err != nil {
		return nil, "", nil, err
	}
	sealed, err := c.Encrypt(plaintext, []byte(subkeyInfo))
	if err != nil {
		return nil, "", nil, fmt.Errorf("snapshot: encrypt: %w", err)
	}
	return sealed, c.Type(), s.salt, nil
}

// open decrypts a sealed payload written by seal.
func (s *sealer) open(sealed []byte, cipherType adaptive.CipherType, salt []byte) ([]byte, error) {
	if len(s.cfg.Passphrase) > 0 && len(salt) != SaltLength {
		return nil, ErrDecryptionFailed
	}
	c, err := s.cipherFor(salt, cipherType)
	if err != nil {
		return nil, err
	}
	plain, err := c.Decrypt(sealed, []byte(subkeyInfo))
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plain, nil
}

func (s *sealer) cipherFor(salt []byte, cipherType adaptive.CipherType) (adaptive.Cipher, error) {
	cacheKey := string(cipherType) + "/" + string(salt)

	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.cache[cacheKey]; ok {
		return c, nil
	}

	var (
		key []byte
		err error
	)
	if len(s.cfg.Passphrase) > 0 {
		key, err = DeriveKeyFromPassphrase(s.cfg.Passphrase, salt)
	} else {
		key, err = DeriveSubkey(s.cfg.Key, subkeyInfo, 32)
	}
	if err != nil {
		return nil, err
	}
	defer ZeroKey(key)

	c, err := adaptive.NewWithType(key, cipherType)
	if err != nil {
		return nil, fmt.Errorf("snapshot: create cipher: %w", err)
	}

	s.cache[cacheKey] = c
	return c, nil
}

// DeriveKeyFromPassphrase derives a 32-byte key from a passphrase using Argon2id.
func DeriveKeyFromPassphrase(passphrase, salt []byte) ([]byte, error) {
	if len(passphrase) < MinPassphraseLength {
		return nil, ErrPassphraseTooWeak
	}
	if len(salt) != SaltLength {
		return nil, fmt.Errorf("snapshot: salt must be %d bytes", SaltLength)
	}
	return argon2.IDKey(passphrase, salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen), nil
}

// DeriveSubkey derives a subkey from a master key using HKDF.
func DeriveSubkey(masterKey []byte, info string, length int) ([]byte, error) {
	if len(masterKey) < MinKeyLength {
		return nil, ErrKeyTooShort
	}

	reader := hkdf.New(sha256.New, masterKey, nil, []byte(info))
	key := make([]byte, length)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("snapshot: derive subkey: %w", err)
	}
	return key, nil
}

// GenerateKey generates a random encryption key of the specified length.
func GenerateKey(length int) ([]byte, error) {
	if length < MinKeyLength {
		return nil, ErrKeyTooShort
	}

	key := make([]byte, length)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("snapshot: generate key: %w", err)
	}
	return key, nil
}

// ZeroKey zeros a key in memory.
func ZeroKey(key []byte) {
	for i := range key {
		key[i] = 0
	}
}


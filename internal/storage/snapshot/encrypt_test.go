package snapshot

import (
	"bytes"
	"errors"
	"testing"

	"github.com/yndnr/dew-go/pkg/crypto/adaptive"
)

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     EncryptionConfig
		wantErr error
	}{
		{
			name:    "empty config is valid",
			cfg:     EncryptionConfig{},
			wantErr: nil,
		},
		{
			name:    "valid key",
			cfg:     EncryptionConfig{Key: make([]byte, 32)},
			wantErr: nil,
		},
		{
			name:    "key too short",
			cfg:     EncryptionConfig{Key: make([]byte, 8)},
			wantErr: ErrKeyTooShort,
		},
		{
			name:    "valid passphrase",
			cfg:     EncryptionConfig{Passphrase: []byte("mypassword123")},
			wantErr: nil,
		},
		{
			name:    "passphrase too weak",
			cfg:     EncryptionConfig{Passphrase: []byte("short")},
			wantErr: ErrPassphraseTooWeak,
		},
		{
			name:    "passphrase overrides key validation",
			cfg:     EncryptionConfig{Key: make([]byte, 8), Passphrase: []byte("mypassword123")},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfig(tt.cfg)
			if err != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if err := ValidateConfig(EncryptionConfig{Key: make([]byte, 32), Algorithm: "rot13"}); err == nil {
		t.Error("ValidateConfig() should reject unknown algorithms")
	}
}

func TestNewSealer(t *testing.T) {
	tests := []struct {
		name    string
		cfg     EncryptionConfig
		wantNil bool
		wantErr bool
	}{
		{name: "empty config disables sealing", cfg: EncryptionConfig{}, wantNil: true},
		{name: "aes-gcm with key", cfg: EncryptionConfig{Key: make([]byte, 32), Algorithm: "aes-gcm"}},
		{name: "chacha20-poly1305 with key", cfg: EncryptionConfig{Key: make([]byte, 32), Algorithm: "chacha20-poly1305"}},
		{name: "passphrase", cfg: EncryptionConfig{Passphrase: []byte("testpassword123")}},
		{name: "unsupported algorithm", cfg: EncryptionConfig{Key: make([]byte, 32), Algorithm: "unknown"}, wantNil: true, wantErr: true},
		{name: "key too short", cfg: EncryptionConfig{Key: make([]byte, 8)}, wantNil: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := newSealer(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("newSealer() error = %v, wantErr %v", err, tt.wantErr)
			}
			if (s == nil) != tt.wantNil {
				t.Errorf("newSealer() = %v, wantNil %v", s, tt.wantNil)
			}
		})
	}
}

func TestSealer_RoundTrip(t *testing.T) {
	for _, algo := range []adaptive.CipherType{adaptive.CipherAESGCM, adaptive.CipherChaCha20} {
		t.Run(string(algo), func(t *testing.T) {
			s, err := newSealer(EncryptionConfig{Key: bytes.Repeat([]byte{7}, 32), Algorithm: string(algo)})
			if err != nil {
				t.Fatalf("newSealer: %v", err)
			}

			plaintext := []byte(`{"a":{"id":"a"}}`)
			sealed, cipherType, salt, err := s.seal(plaintext)
			if err != nil {
				t.Fatalf("seal: %v", err)
			}
			if cipherType != algo {
				t.Errorf("cipher = %s, want %s", cipherType, algo)
			}
			if salt != nil {
				t.Errorf("raw key sealing should not emit a salt, got %x", salt)
			}
			if bytes.Contains(sealed, plaintext) {
				t.Fatal("sealed output contains plaintext")
			}

			got, err := s.open(sealed, cipherType, salt)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			if !bytes.Equal(got, plaintext) {
				t.Errorf("open() = %q, want %q", got, plaintext)
			}
		})
	}
}

func TestSealer_PassphraseSaltTravelsWithData(t *testing.T) {
	cfg := EncryptionConfig{Passphrase: []byte("testpassword123")}

	writer, err := newSealer(cfg)
	if err != nil {
		t.Fatalf("newSealer: %v", err)
	}
	sealed, cipherType, salt, err := writer.seal([]byte("hello"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if len(salt) != SaltLength {
		t.Fatalf("salt length = %d, want %d", len(salt), SaltLength)
	}

	// A fresh process generates a different salt but can still open
	// data sealed under the stored one.
	reader, err := newSealer(cfg)
	if err != nil {
		t.Fatalf("newSealer: %v", err)
	}
	got, err := reader.open(sealed, cipherType, salt)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("open() = %q, want %q", got, "hello")
	}

	if _, err := reader.open(sealed, cipherType, nil); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("open() without salt error = %v, want %v", err, ErrDecryptionFailed)
	}
}

func TestSealer_WrongKey(t *testing.T) {
	a, _ := newSealer(EncryptionConfig{Key: bytes.Repeat([]byte{1}, 32)})
	b, _ := newSealer(EncryptionConfig{Key: bytes.Repeat([]byte{2}, 32)})

	sealed, cipherType, salt, err := a.seal([]byte("secret"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if _, err := b.open(sealed, cipherType, salt); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("open() with wrong key error = %v, want %v", err, ErrDecryptionFailed)
	}
}

func TestDeriveKeyFromPassphrase(t *testing.T) {
	passphrase := []byte("testpassword123")
	salt := bytes.Repeat([]byte{0x42}, SaltLength)

	key1, err := DeriveKeyFromPassphrase(passphrase, salt)
	if err != nil {
		t.Fatalf("DeriveKeyFromPassphrase() error = %v", err)
	}
	if len(key1) != 32 {
		t.Errorf("key length = %d, want 32", len(key1))
	}

	key2, err := DeriveKeyFromPassphrase(passphrase, salt)
	if err != nil {
		t.Fatalf("DeriveKeyFromPassphrase() error = %v", err)
	}
	if !bytes.Equal(key1, key2) {
		t.Error("same passphrase and salt should produce same key")
	}

	key3, err := DeriveKeyFromPassphrase([]byte("differentpassword"), salt)
	if err != nil {
		t.Fatalf("DeriveKeyFromPassphrase() error = %v", err)
	}
	if bytes.Equal(key1, key3) {
		t.Error("different passphrase should produce different key")
	}

	if _, err := DeriveKeyFromPassphrase(passphrase, []byte("short")); err == nil {
		t.Error("short salt should be rejected")
	}
	if _, err := DeriveKeyFromPassphrase([]byte("weak"), salt); err != ErrPassphraseTooWeak {
		t.Errorf("weak passphrase error = %v, want %v", err, ErrPassphraseTooWeak)
	}
}

func TestDeriveSubkey(t *testing.T) {
	masterKey := make([]byte, 32)
	for i := range masterKey {
		masterKey[i] = byte(i)
	}

	subkey1, err := DeriveSubkey(masterKey, "snapshot", 32)
	if err != nil {
		t.Fatalf("DeriveSubkey() error = %v", err)
	}

	subkey2, err := DeriveSubkey(masterKey, "other", 32)
	if err != nil {
		t.Fatalf("DeriveSubkey() error = %v", err)
	}

	if bytes.Equal(subkey1, subkey2) {
		t.Error("DeriveSubkey() with different info should produce different keys")
	}

	subkey3, err := DeriveSubkey(masterKey, "snapshot", 32)
	if err != nil {
		t.Fatalf("DeriveSubkey() error = %v", err)
	}
	if !bytes.Equal(subkey1, subkey3) {
		t.Error("DeriveSubkey() with same info should produce same key")
	}

	_, err = DeriveSubkey(make([]byte, 8), "test", 32)
	if err != ErrKeyTooShort {
		t.Errorf("DeriveSubkey() with short key error = %v, want %v", err, ErrKeyTooShort)
	}
}

func TestGenerateKey(t *testing.T) {
	key, err := GenerateKey(32)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	if len(key) != 32 {
		t.Errorf("GenerateKey() length = %d, want 32", len(key))
	}

	key2, err := GenerateKey(32)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	if bytes.Equal(key, key2) {
		t.Error("GenerateKey() should produce different keys")
	}

	_, err = GenerateKey(8)
	if err != ErrKeyTooShort {
		t.Errorf("GenerateKey() with short length error = %v, want %v", err, ErrKeyTooShort)
	}
}

func TestZeroKey(t *testing.T) {
	key := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	ZeroKey(key)

	for i, b := range key {
		if b != 0 {
			t.Errorf("ZeroKey() key[%d] = %d, want 0", i, b)
		}
	}
}

package storage

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// ErrSealedValue is returned when a stored value fails to decrypt, either
// because it was written with another passphrase or it was tampered with.
var ErrSealedValue = errors.New("storage: sealed value cannot be opened")

// Argon2id parameters for deriving the sealing key from a passphrase.
const (
	sealTime    = 1
	sealMemory  = 64 * 1024
	sealThreads = 4
)

// Sealed encrypts values at rest with XChaCha20-Poly1305. Keys are left in
// clear so prefix sweeps and registry removals keep working. The key name is
// bound as associated data, so a value copied under another key won't open.
//
// Stored format: base64url([24-byte nonce][ciphertext][16-byte tag]).
type Sealed struct {
	inner Storage
	key   []byte
}

// NewSealed derives a 32-byte key from passphrase and salt with Argon2id.
// The salt must stay the same for the life of the stored data, or every value
// reads back as ErrSealedValue.
func NewSealed(inner Storage, passphrase, salt string) (*Sealed, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("storage: empty sealing passphrase")
	}

	key := argon2.IDKey([]byte(passphrase), []byte(salt), sealTime, sealMemory, sealThreads, chacha20poly1305.KeySize)
	return &Sealed{inner: inner, key: key}, nil
}

func (s *Sealed) Get(ctx context.Context, key string) (string, error) {
	raw, err := s.inner.Get(ctx, key)
	if err != nil {
		return "", err
	}
	return s.open(key, raw)
}

func (s *Sealed) Set(ctx context.Context, key, value string) error {
	sealed, err := s.seal(key, value)
	if err != nil {
		return err
	}
	return s.inner.Set(ctx, key, sealed)
}

// Ping reaches through to the wrapped store.
func (s *Sealed) Ping(ctx context.Context) error {
	return Ping(ctx, s.inner)
}

func (s *Sealed) Remove(ctx context.Context, key string) error {
	return s.inner.Remove(ctx, key)
}

func (s *Sealed) Keys(ctx context.Context) ([]string, error) {
	return s.inner.Keys(ctx)
}

func (s *Sealed) seal(key, value string) (string, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(value)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := aead.Seal(nonce, nonce, []byte(value), []byte(key))
	return base64.RawURLEncoding.EncodeToString(out), nil
}

func (s *Sealed) open(key, stored string) (string, error) {
	data, err := base64.RawURLEncoding.DecodeString(stored)
	if err != nil {
		return "", ErrSealedValue
	}

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}
	if len(data) < aead.NonceSize()+aead.Overhead() {
		return "", ErrSealedValue
	}

	nonce, ciphertext := data[:aead.NonceSize()], data[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, []byte(key))
	if err != nil {
		return "", ErrSealedValue
	}
	return string(plain), nil
}

package store

import (
	"context"
	"fmt"

	"github.com/aetherchat/settings"
	"github.com/aetherchat/settings/encryption"
)

// EncryptedKV wraps another KV backend and encrypts values at rest with
// AES-256-GCM. Keys stay in plaintext so Keys and Remove behave exactly
// like the wrapped backend.
type EncryptedKV struct {
	inner  settings.KV
	cipher *encryption.Cipher
}

// NewEncryptedKV wraps inner with the cipher keyed from the environment.
func NewEncryptedKV(inner settings.KV) (*EncryptedKV, error) {
	cipher, err := encryption.NewCipher()
	if err != nil {
		return nil, err
	}
	return &EncryptedKV{inner: inner, cipher: cipher}, nil
}

// NewEncryptedKVWithKey wraps inner with an explicitly provided key.
func NewEncryptedKVWithKey(inner settings.KV, key []byte) (*EncryptedKV, error) {
	cipher, err := encryption.NewCipherWithKey(key)
	if err != nil {
		return nil, err
	}
	return &EncryptedKV{inner: inner, cipher: cipher}, nil
}

// Get retrieves and decrypts the value stored under key. A value that
// fails to decrypt is reported as a storage read failure, which the Store
// layer turns into a schema-default fallback.
func (e *EncryptedKV) Get(ctx context.Context, key string) (string, error) {
	ciphertext, err := e.inner.Get(ctx, key)
	if err != nil {
		return "", err
	}
	plaintext, err := e.cipher.Decrypt(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", settings.ErrStorageRead, err)
	}
	return plaintext, nil
}

// Set encrypts value and stores it under key.
func (e *EncryptedKV) Set(ctx context.Context, key, value string) error {
	ciphertext, err := e.cipher.Encrypt(value)
	if err != nil {
		return fmt.Errorf("%w: %v", settings.ErrStorageWrite, err)
	}
	return e.inner.Set(ctx, key, ciphertext)
}

// Remove deletes the value stored under key.
func (e *EncryptedKV) Remove(ctx context.Context, key string) error {
	return e.inner.Remove(ctx, key)
}

// Keys returns all stored keys.
func (e *EncryptedKV) Keys(ctx context.Context) ([]string, error) {
	return e.inner.Keys(ctx)
}

// Close closes the wrapped backend.
func (e *EncryptedKV) Close() error {
	return e.inner.Close()
}

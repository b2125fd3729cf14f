// Package aead wraps the symmetric layer: ChaCha20-Poly1305 with a random
// nonce prepended to the sealed payload.
package aead

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrAuthentication is returned when a payload fails to open. Callers must
// not act on any partial plaintext; none is ever returned alongside it.
var ErrAuthentication = errors.New("payload authentication failed")

// KeySize is the symmetric key length in bytes.
const KeySize = chacha20poly1305.KeySize

// Overhead is the payload expansion: nonce plus authentication tag.
const Overhead = chacha20poly1305.NonceSize + chacha20poly1305.Overhead

// Encrypt seals plaintext under key with a nonce drawn from rng. The result
// is nonce || ciphertext || tag.
func Encrypt(key [KeySize]byte, plaintext []byte, rng io.Reader) ([]byte, error) {
	c, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, err
	}
	out := make([]byte, chacha20poly1305.NonceSize, chacha20poly1305.NonceSize+len(plaintext)+chacha20poly1305.Overhead)
	if _, err := io.ReadFull(rng, out); err != nil {
		return nil, fmt.Errorf("when sampling nonce: %w", err)
	}
	return c.Seal(out, out[:chacha20poly1305.NonceSize], plaintext, nil), nil
}

// Decrypt opens a payload produced by Encrypt.
func Decrypt(key [KeySize]byte, payload []byte) ([]byte, error) {
	if len(payload) < Overhead {
		return nil, ErrAuthentication
	}
	c, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, err
	}
	plaintext, err := c.Open(nil, payload[:chacha20poly1305.NonceSize], payload[chacha20poly1305.NonceSize:], nil)
	if err != nil {
		return nil, ErrAuthentication
	}
	return plaintext, nil
}

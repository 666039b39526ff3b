package cryptoutil

import (
	"crypto/rand"
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/chacha20poly1305"
)

var ErrDecryptionFailed = errors.New("cryptoutil: decryption failed")

// Encrypt seals plaintext under key with XChaCha20-Poly1305 and returns a
// base64 string of nonce||ciphertext. This is the default NIP-44-style
// authenticated cipher for Self/Targeted/Wrapped content.
func Encrypt(key [32]byte, plaintext []byte) (string, error) {
	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return "", err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := aead.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a string produced by Encrypt. Any structural or
// authentication failure collapses to ErrDecryptionFailed so callers never
// learn which step failed.
func Decrypt(key [32]byte, encoded string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	if len(raw) < chacha20poly1305.NonceSizeX {
		return nil, ErrDecryptionFailed
	}
	nonce, ciphertext := raw[:chacha20poly1305.NonceSizeX], raw[chacha20poly1305.NonceSizeX:]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

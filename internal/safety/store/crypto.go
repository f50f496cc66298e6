package store

import (
	"crypto/rand"

	"golang.org/x/crypto/chacha20poly1305"

	dErrors "aegis/pkg/domain-errors"
)

// seal encrypts plaintext with XChaCha20-Poly1305 and prepends the random
// nonce. The 24-byte nonce makes random generation safe for the write rates
// this store sees.
func seal(key, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not construct cipher")
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not generate nonce")
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// open decrypts a blob produced by seal. Authentication failure means the
// blob was tampered with or encrypted under a different key; both are
// persistence errors, not recoverable states.
func open(key, blob []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not construct cipher")
	}
	if len(blob) < aead.NonceSize() {
		return nil, dErrors.New(dErrors.CodePersistence, "encrypted blob too short")
	}
	nonce, ciphertext := blob[:aead.NonceSize()], blob[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "could not decrypt blob")
	}
	return plaintext, nil
}

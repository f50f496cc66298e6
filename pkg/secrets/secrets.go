// Package secrets manages the symmetric master key that protects the safety
// store blobs at rest. The key lives in a single restricted-permission file;
// losing that file makes the encrypted blobs unrecoverable. There is no
// key-escrow on purpose.
package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/crypto/hkdf"

	dErrors "aegis/pkg/domain-errors"
)

// MasterKeySize is the size in bytes of the raw master key material.
const MasterKeySize = 32

// keyFileMode restricts the key file to owner read/write.
const keyFileMode fs.FileMode = 0o600

// LoadOrCreateMasterKey reads the master key from path, generating and
// persisting a fresh one when the file does not exist yet. A key file with
// the wrong length is rejected rather than silently truncated.
func LoadOrCreateMasterKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err == nil {
		if len(key) != MasterKeySize {
			return nil, dErrors.New(dErrors.CodePersistence, "master key file has invalid length")
		}
		return key, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "could not read master key file")
	}

	key = make([]byte, MasterKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not generate master key")
	}
	// First boot may run before anything else has created the data
	// directory; the key file must not depend on store initialization order.
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "could not create key directory")
	}
	if err := os.WriteFile(path, key, keyFileMode); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "could not write master key file")
	}
	// WriteFile only applies the mode on creation; enforce it on pre-existing
	// paths too.
	if err := os.Chmod(path, keyFileMode); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "could not restrict master key file permissions")
	}
	return key, nil
}

// DeriveKey expands the master key into an independent subkey bound to the
// given context string. Distinct contexts yield unrelated keys, so the two
// store blobs never share an AEAD key with each other or with the master.
func DeriveKey(master []byte, context string) ([]byte, error) {
	if len(master) != MasterKeySize {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "master key has invalid length")
	}
	h := hkdf.New(sha256.New, master, nil, []byte(context))
	out := make([]byte, MasterKeySize)
	if _, err := io.ReadFull(h, out); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not derive subkey")
	}
	return out, nil
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	dErrors "aegis/pkg/domain-errors"
	"aegis/pkg/secrets"
)

// Blob file names under the data directory. Verification and consent state
// are encrypted independently so each blob can be rotated or inspected (with
// the key) on its own.
const (
	verificationBlob = "verification_status.enc"
	consentBlob      = "consent_records.enc"
)

// HKDF context strings binding each blob to its own subkey.
const (
	verificationKeyContext = "aegis/store/verification/v1"
	consentKeyContext      = "aegis/store/consent/v1"
)

// FileStore persists the snapshot as two independently encrypted JSON blobs.
type FileStore struct {
	mu              sync.Mutex
	dir             string
	verificationKey []byte
	consentKey      []byte
}

// NewFileStore derives per-blob subkeys from the master key and ensures the
// data directory exists.
func NewFileStore(dir string, masterKey []byte) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "could not create data directory")
	}
	verificationKey, err := secrets.DeriveKey(masterKey, verificationKeyContext)
	if err != nil {
		return nil, err
	}
	consentKey, err := secrets.DeriveKey(masterKey, consentKeyContext)
	if err != nil {
		return nil, err
	}
	return &FileStore{
		dir:             dir,
		verificationKey: verificationKey,
		consentKey:      consentKey,
	}, nil
}

// Load reads and decrypts both blobs. A missing blob yields the empty state
// for that blob; a present-but-undecryptable blob is an error, because
// silently starting from scratch would discard consent history.
func (s *FileStore) Load(_ context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := NewSnapshot()

	if err := s.loadBlob(verificationBlob, s.verificationKey, &snapshot.Verifications); err != nil {
		return nil, err
	}
	if err := s.loadBlob(consentBlob, s.consentKey, &snapshot.Consents); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// Save encrypts and rewrites both blobs in full. Writes go through a temp
// file and rename so a crash mid-write leaves the previous blob intact.
func (s *FileStore) Save(_ context.Context, snapshot *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.saveBlob(verificationBlob, s.verificationKey, snapshot.Verifications); err != nil {
		return err
	}
	return s.saveBlob(consentBlob, s.consentKey, snapshot.Consents)
}

func (s *FileStore) loadBlob(name string, key []byte, target any) error {
	blob, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodePersistence, "could not read "+name)
	}
	plaintext, err := open(key, blob)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(plaintext, target); err != nil {
		return dErrors.Wrap(err, dErrors.CodePersistence, "could not decode "+name)
	}
	return nil
}

func (s *FileStore) saveBlob(name string, key []byte, source any) error {
	plaintext, err := json.Marshal(source)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodePersistence, "could not encode "+name)
	}
	blob, err := seal(key, plaintext)
	if err != nil {
		return err
	}

	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o600); err != nil {
		return dErrors.Wrap(err, dErrors.CodePersistence, "could not write "+name)
	}
	if err := os.Rename(tmp, path); err != nil {
		return dErrors.Wrap(err, dErrors.CodePersistence, "could not replace "+name)
	}
	return nil
}

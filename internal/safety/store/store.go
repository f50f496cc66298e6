// Package store persists the safety state. The state is small (per-user
// records), so the contract is deliberately coarse: load everything at
// startup, save everything after each mutation. Crash between encrypt and
// write loses at most the latest mutation; last successful write wins.
package store

import (
	"context"

	"aegis/internal/safety/models"
)

// Snapshot is the full persisted state: verification records keyed by user,
// consent records keyed by user then feature. Activity and suspicion logs
// are deliberately absent; they are in-memory sliding windows.
type Snapshot struct {
	Verifications map[string]*models.VerificationRecord               `json:"verifications"`
	Consents      map[string]map[models.Feature]*models.ConsentRecord `json:"consents"`
}

// NewSnapshot returns an empty snapshot with initialized maps.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Verifications: make(map[string]*models.VerificationRecord),
		Consents:      make(map[string]map[models.Feature]*models.ConsentRecord),
	}
}

// Clone deep-copies the snapshot so callers can hand it to a store without
// aliasing the live in-memory state.
func (s *Snapshot) Clone() *Snapshot {
	out := NewSnapshot()
	for user, rec := range s.Verifications {
		copyRec := *rec
		out.Verifications[user] = &copyRec
	}
	for user, features := range s.Consents {
		dst := make(map[models.Feature]*models.ConsentRecord, len(features))
		for feature, rec := range features {
			copyRec := *rec
			if rec.AdditionalInfo != nil {
				copyRec.AdditionalInfo = make(map[string]string, len(rec.AdditionalInfo))
				for k, v := range rec.AdditionalInfo {
					copyRec.AdditionalInfo[k] = v
				}
			}
			if rec.RevokedAt != nil {
				t := *rec.RevokedAt
				copyRec.RevokedAt = &t
			}
			dst[feature] = &copyRec
		}
		out.Consents[user] = dst
	}
	return out
}

// Store loads and saves the full safety state.
//
// Error Contract:
// - Load returns an empty snapshot (not an error) when nothing was persisted yet
// - Save returns nil on success or a wrapped error on failure
type Store interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snapshot *Snapshot) error
}

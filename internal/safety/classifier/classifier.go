// Package classifier abstracts the NSFW image classifier behind a small
// interface. The backend is pluggable: a remote inference service over HTTP
// is the supported implementation, and the service degrades per its
// configured mode when no backend is wired at all.
package classifier

//go:generate mockgen -source=classifier.go -destination=mocks/mocks.go -package=mocks Classifier

import "context"

// Classifier scores an image for NSFW content.
//
// Error Contract:
// - Returns the NSFW probability in [0,1] on success
// - Returns a wrapped error on transport, decode, or inference failure;
//   callers must fail closed on error
type Classifier interface {
	Classify(ctx context.Context, image []byte, mimeType string) (float64, error)
}

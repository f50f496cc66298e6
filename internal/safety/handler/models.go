package handler

import (
	"aegis/internal/safety/models"
)

// VerifyRequest asks for (re-)verification of a user.
type VerifyRequest struct {
	UserID        string `json:"user_id" validate:"required,notblank,max=128"`
	ForceReverify bool   `json:"force_reverify"`
}

// VerifyResponse reports the verification outcome.
type VerifyResponse struct {
	Verified bool `json:"verified"`
}

// IntrospectRequest asks whether a verification token is still active.
type IntrospectRequest struct {
	Token string `json:"token" validate:"required,notblank"`
}

// ConsentRequest grants consent for a feature.
type ConsentRequest struct {
	UserID         string            `json:"user_id" validate:"required,notblank,max=128"`
	Feature        string            `json:"feature" validate:"required,notblank"`
	AdditionalInfo map[string]string `json:"additional_info,omitempty" validate:"max=16"`
}

// ConsentResponse reports whether the grant was recorded.
type ConsentResponse struct {
	Recorded bool   `json:"recorded"`
	Reason   string `json:"reason,omitempty"`
}

// RevokeRequest withdraws consent for a feature.
type RevokeRequest struct {
	UserID  string `json:"user_id" validate:"required,notblank,max=128"`
	Feature string `json:"feature" validate:"required,notblank"`
}

// RevokeResponse reports whether a record was revoked.
type RevokeResponse struct {
	Revoked bool   `json:"revoked"`
	Reason  string `json:"reason,omitempty"`
}

// ConsentStatusResponse reports the active-consent check.
type ConsentStatusResponse struct {
	UserID    string `json:"user_id"`
	Feature   string `json:"feature"`
	Consented bool   `json:"consented"`
}

// VerificationStatusResponse reports the current-verification check.
type VerificationStatusResponse struct {
	UserID   string `json:"user_id"`
	Verified bool   `json:"verified"`
}

// ContentCheckRequest carries an image as a data URI or plain base64.
type ContentCheckRequest struct {
	Image    string `json:"image" validate:"required,notblank"`
	MimeType string `json:"mime_type,omitempty"`
}

// ActivityRequest reports a user action for anomaly scoring.
type ActivityRequest struct {
	UserID string `json:"user_id" validate:"required,notblank,max=128"`
	Action string `json:"action" validate:"required,notblank,max=64"`
}

// PanicRequest triggers revocation of all the user's consents.
type PanicRequest struct {
	UserID string `json:"user_id" validate:"required,notblank,max=128"`
}

// RecommendationsResponse lists derived safety suggestions.
type RecommendationsResponse struct {
	UserID          string                  `json:"user_id"`
	Recommendations []models.Recommendation `json:"recommendations"`
}

package models

import "time"

// VerificationStatus enumerates the verification lifecycle. There is no
// partial state: a lapsed verification is simply not current and must be
// re-run.
type VerificationStatus string

const (
	StatusUnverified VerificationStatus = "unverified"
	StatusVerified   VerificationStatus = "verified"
)

// VerificationMethod tags how a verification was performed. The built-in
// flow is simulated; a real identity provider slots in behind the same
// contract with its own method tag.
type VerificationMethod string

const (
	MethodSimulated VerificationMethod = "simulated"
)

// VerificationRecord holds a user's verification state. A record is current
// iff Status is verified and now is before Expiry.
type VerificationRecord struct {
	Status     VerificationStatus `json:"status"`
	VerifiedAt time.Time          `json:"verified_at"`
	Expiry     time.Time          `json:"expiry"`
	Token      string             `json:"token"`
	Method     VerificationMethod `json:"method"`
}

// IsCurrent reports whether the verification is valid at the provided time.
func (v VerificationRecord) IsCurrent(now time.Time) bool {
	return v.Status == StatusVerified && now.Before(v.Expiry)
}

// TokenIntrospection reports whether a verification token is the live token
// for its subject. A token that fails signature or expiry checks, or that a
// re-verification has since replaced, is inactive; inactivity carries no
// detail beyond the flag.
type TokenIntrospection struct {
	Active bool   `json:"active"`
	UserID string `json:"user_id,omitempty"`
	Method string `json:"method,omitempty"`
}

// ConsentRecord captures a user's consent for a single feature.
//
// A record is keyed by (user, feature); re-granting overwrites the prior
// record, so only the current grant is kept. Revocation marks the record
// rather than deleting it, preserving the audit trail.
type ConsentRecord struct {
	ConsentID      string            `json:"consent_id"`
	Feature        Feature           `json:"feature"`
	GrantedAt      time.Time         `json:"granted_at"`
	AdditionalInfo map[string]string `json:"additional_info,omitempty"`
	OriginHash     string            `json:"origin_hash,omitempty"`
	Revoked        bool              `json:"revoked"`
	RevokedAt      *time.Time        `json:"revoked_at,omitempty"`
}

// IsActive reports whether consent is valid at the provided time for the
// given consent lifetime. Expired-but-not-revoked consent counts as absent.
func (c ConsentRecord) IsActive(now time.Time, ttl time.Duration) bool {
	if c.Revoked {
		return false
	}
	return now.Sub(c.GrantedAt) < ttl
}

// ConsentStatus reports the consent lifecycle state at the provided time.
type ConsentStatus string

const (
	ConsentActive  ConsentStatus = "active"
	ConsentExpired ConsentStatus = "expired"
	ConsentRevoked ConsentStatus = "revoked"
)

// ComputeStatus classifies the record at the provided time.
func (c ConsentRecord) ComputeStatus(now time.Time, ttl time.Duration) ConsentStatus {
	if c.Revoked {
		return ConsentRevoked
	}
	if now.Sub(c.GrantedAt) >= ttl {
		return ConsentExpired
	}
	return ConsentActive
}

// ActivityEvent is one entry in a user's sliding-window activity log.
type ActivityEvent struct {
	Action    Action    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// SuspicionRecord is appended whenever an activity evaluation produces a
// nonzero score above the recording threshold.
type SuspicionRecord struct {
	Timestamp    time.Time      `json:"timestamp"`
	Score        float64        `json:"score"`
	ActionCounts map[Action]int `json:"action_counts"`
}

// Recommendation is a derived, non-mutating safety suggestion for a user.
type Recommendation struct {
	Type     string `json:"type"`
	Priority string `json:"priority"`
	Message  string `json:"message"`
}

// Recommendation types and priorities.
const (
	RecommendationVerification   = "verification"
	RecommendationActivity       = "activity"
	RecommendationConsentRefresh = "consent_refresh"

	PriorityHigh   = "high"
	PriorityMedium = "medium"
)

// ContentSafetyResult is the outcome of a content safety check. Confidence
// is the distance from the decision boundary normalized to [0,1], a proxy
// for how decisively the classifier judged the image, not a calibrated
// probability.
type ContentSafetyResult struct {
	Safe            bool    `json:"safe"`
	NSFWProbability float64 `json:"nsfw_probability"`
	Confidence      float64 `json:"confidence"`
}

// ActivityAssessment is the outcome of a suspicious-activity evaluation.
type ActivityAssessment struct {
	Suspicious   bool           `json:"suspicious"`
	Score        float64        `json:"score"`
	ActionCounts map[Action]int `json:"action_counts"`
}

// PanicResult confirms a panic button activation.
type PanicResult struct {
	Status          string    `json:"status"`
	Message         string    `json:"message"`
	RevokedFeatures int       `json:"revoked_features"`
	Timestamp       time.Time `json:"timestamp"`
}

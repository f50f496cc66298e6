package audit

import "time"

// Event is emitted from domain logic to capture key safety actions. Keep it
// transport-agnostic so stores and sinks can fan out. OriginHash is the only
// caller-identifying field and is already non-reversible by the time an
// event reaches the publisher.
type Event struct {
	Timestamp  time.Time `json:"timestamp"`
	UserID     string    `json:"user_id"`
	Feature    string    `json:"feature,omitempty"`
	Action     string    `json:"action"`
	Decision   string    `json:"decision"`
	Reason     string    `json:"reason,omitempty"`
	OriginHash string    `json:"origin_hash,omitempty"`
	Score      float64   `json:"score,omitempty"`
}

// Audit event actions.
const (
	ActionVerificationIssued = "verification_issued"
	ActionConsentGranted     = "consent_granted"
	ActionConsentRevoked     = "consent_revoked"
	ActionConsentCheckFailed = "consent_check_failed"
	ActionConsentCheckPassed = "consent_check_passed"
	ActionSuspicionRecorded  = "suspicion_recorded"
	ActionPanicActivated     = "panic_activated"
	ActionContentRejected    = "content_rejected"
)

// Audit event decisions.
const (
	DecisionGranted = "granted"
	DecisionRevoked = "revoked"
	DecisionDenied  = "denied"
	DecisionFlagged = "flagged"
)

// Audit event reasons.
const (
	ReasonUserInitiated = "user_initiated"
	ReasonExpired       = "expired"
	ReasonMissing       = "missing"
	ReasonUnverified    = "unverified"
	ReasonPanic         = "panic_button"
	ReasonThreshold     = "threshold_exceeded"
)

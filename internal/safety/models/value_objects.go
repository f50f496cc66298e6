package models

// Feature identifies a capability that requires per-user consent. The set is
// fixed here but extensible: adding a feature means adding a constant and,
// when it is explicit-content adjacent, listing it as sensitive.
type Feature string

const (
	FeatureGenderRecognition Feature = "gender_recognition"
	FeatureBodyMeasurement   Feature = "3d_measurement"
	FeatureExplicitRoleplay  Feature = "explicit_roleplay"
	FeatureJOI               Feature = "joi"
	FeatureCameraCapture     Feature = "camera_capture"
	FeatureVoiceChat         Feature = "voice_chat"
)

var knownFeatures = map[Feature]struct{}{
	FeatureGenderRecognition: {},
	FeatureBodyMeasurement:   {},
	FeatureExplicitRoleplay:  {},
	FeatureJOI:               {},
	FeatureCameraCapture:     {},
	FeatureVoiceChat:         {},
}

// IsValid reports whether the feature is one of the known tags.
func (f Feature) IsValid() bool {
	_, ok := knownFeatures[f]
	return ok
}

// Action names an entry in the activity log. Feature tags double as actions;
// two extra actions exist only for anomaly accounting.
type Action string

const (
	ActionRevokeConsent      Action = "revoke_consent"
	ActionFailedVerification Action = "failed_verification"
)

// SensitiveActions is the fixed set of explicit-content-adjacent actions
// that feed the first suspicion score term.
var SensitiveActions = map[Action]struct{}{
	Action(FeatureGenderRecognition): {},
	Action(FeatureBodyMeasurement):   {},
	Action(FeatureExplicitRoleplay):  {},
	Action(FeatureJOI):               {},
}

// IsSensitive reports whether the action counts toward the sensitive-feature
// suspicion term.
func (a Action) IsSensitive() bool {
	_, ok := SensitiveActions[a]
	return ok
}

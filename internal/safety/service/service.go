// Package service implements the consent, verification, and
// suspicious-activity tracking core. One Service instance owns the in-memory
// state; every public operation takes the coarse lock for its full duration
// so read-modify-persist is atomic from the caller's perspective. The only
// exception is the content safety check, which shares no state with the
// store and runs outside the lock.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"aegis/internal/audit"
	"aegis/internal/platform/metrics"
	"aegis/internal/platform/middleware"
	"aegis/internal/platform/privacy"
	"aegis/internal/safety/classifier"
	"aegis/internal/safety/models"
	"aegis/internal/safety/store"
	"aegis/internal/safety/token"
	dErrors "aegis/pkg/domain-errors"
)

const (
	defaultVerificationTTL = 365 * 24 * time.Hour
	defaultConsentTTL      = 24 * time.Hour
	defaultActivityWindow  = time.Hour
	defaultRefreshWindow   = 30 * 24 * time.Hour
	defaultNSFWThreshold   = 0.7

	// suspicionRecordThreshold is the score above which an evaluation is
	// appended to the suspicion log; suspicionFlagThreshold is the score
	// above which the result is reported as suspicious.
	suspicionRecordThreshold = 0.3
	suspicionFlagThreshold   = 0.5

	// recommendationLookback bounds the suspicion records considered when
	// deriving the activity recommendation.
	recommendationLookback = 24 * time.Hour
)

// Service holds all per-user safety state and persists it through the store
// after every mutation.
type Service struct {
	mu        sync.Mutex
	state     *store.Snapshot
	activity  map[string][]models.ActivityEvent
	suspicion map[string][]models.SuspicionRecord

	store      store.Store
	tokens     *token.Issuer
	classifier classifier.Classifier
	auditor    *audit.Publisher
	metrics    *metrics.Metrics
	logger     *slog.Logger

	verificationTTL time.Duration
	consentTTL      time.Duration
	activityWindow  time.Duration
	refreshWindow   time.Duration
	nsfwThreshold   float64
	strictContent   bool

	now func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithClassifier wires a content classifier backend.
func WithClassifier(c classifier.Classifier) Option {
	return func(s *Service) { s.classifier = c }
}

// WithAuditor wires the audit publisher.
func WithAuditor(a *audit.Publisher) Option {
	return func(s *Service) { s.auditor = a }
}

// WithMetrics wires the metrics instance.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithVerificationTTL overrides how long a verification stays current.
func WithVerificationTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.verificationTTL = ttl
		}
	}
}

// WithConsentTTL overrides the consent lifetime.
func WithConsentTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.consentTTL = ttl
		}
	}
}

// WithActivityWindow overrides the sliding window for anomaly scoring.
func WithActivityWindow(window time.Duration) Option {
	return func(s *Service) {
		if window > 0 {
			s.activityWindow = window
		}
	}
}

// WithRefreshWindow overrides the age after which an unrevoked consent earns
// a refresh recommendation.
func WithRefreshWindow(window time.Duration) Option {
	return func(s *Service) {
		if window > 0 {
			s.refreshWindow = window
		}
	}
}

// WithNSFWThreshold overrides the probability above which content is unsafe.
func WithNSFWThreshold(threshold float64) Option {
	return func(s *Service) {
		if threshold > 0 && threshold <= 1 {
			s.nsfwThreshold = threshold
		}
	}
}

// WithStrictContentMode makes the content check fail closed when no
// classifier is configured, instead of the permissive default.
func WithStrictContentMode() Option {
	return func(s *Service) { s.strictContent = true }
}

// WithClock injects the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService loads persisted state and returns a ready Service.
func NewService(ctx context.Context, st store.Store, tokens *token.Issuer, logger *slog.Logger, opts ...Option) (*Service, error) {
	snapshot, err := st.Load(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodePersistence, "could not load safety store")
	}

	s := &Service{
		state:           snapshot,
		activity:        make(map[string][]models.ActivityEvent),
		suspicion:       make(map[string][]models.SuspicionRecord),
		store:           st,
		tokens:          tokens,
		logger:          logger,
		verificationTTL: defaultVerificationTTL,
		consentTTL:      defaultConsentTTL,
		activityWindow:  defaultActivityWindow,
		refreshWindow:   defaultRefreshWindow,
		nsfwThreshold:   defaultNSFWThreshold,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Verify confirms a user's verification, issuing a new record when none is
// current or when forceReverify is set. Re-verifying within the validity
// period is idempotent: the existing token and expiry are untouched and
// nothing is persisted.
//
// The built-in flow grants verification unconditionally (method "simulated");
// a real identity provider substitutes behind this contract without changing
// it. Callers observing external verification failures report them through
// DetectSuspiciousActivity with ActionFailedVerification.
func (s *Service) Verify(ctx context.Context, userID string, forceReverify bool) (bool, error) {
	if userID == "" {
		return false, dErrors.New(dErrors.CodeInvalidInput, "user ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if !forceReverify {
		if existing, ok := s.state.Verifications[userID]; ok && existing.IsCurrent(now) {
			s.incrementVerifications("cached")
			return true, nil
		}
	}

	expiry := now.Add(s.verificationTTL)
	tok, err := s.tokens.Issue(userID, string(models.MethodSimulated), now, expiry)
	if err != nil {
		return false, err
	}

	s.state.Verifications[userID] = &models.VerificationRecord{
		Status:     models.StatusVerified,
		VerifiedAt: now,
		Expiry:     expiry,
		Token:      tok,
		Method:     models.MethodSimulated,
	}
	if err := s.persistLocked(ctx); err != nil {
		return false, err
	}

	s.emitAudit(ctx, audit.Event{
		UserID:    userID,
		Action:    audit.ActionVerificationIssued,
		Decision:  audit.DecisionGranted,
		Reason:    audit.ReasonUserInitiated,
		Timestamp: now,
	})
	s.incrementVerifications("issued")
	s.log(ctx, slog.LevelInfo, "verification issued", "user_id", userID, "expiry", expiry)
	return true, nil
}

// IsVerified reports whether the user holds a currently valid verification.
func (s *Service) IsVerified(_ context.Context, userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.state.Verifications[userID]
	return ok && record.IsCurrent(s.now())
}

// IntrospectToken checks a verification token against its stored record. A
// token is active only while it is the record's current token and the record
// itself is current: signature or expiry failure, an unknown subject, and a
// token superseded by re-verification all read as inactive rather than as
// errors.
func (s *Service) IntrospectToken(_ context.Context, tokenString string) (*models.TokenIntrospection, error) {
	if tokenString == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "token cannot be empty")
	}

	claims, err := s.tokens.Validate(tokenString)
	if err != nil {
		return &models.TokenIntrospection{Active: false}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.state.Verifications[claims.UserID]
	if !ok || record.Token != tokenString || !record.IsCurrent(s.now()) {
		return &models.TokenIntrospection{Active: false}, nil
	}
	return &models.TokenIntrospection{
		Active: true,
		UserID: claims.UserID,
		Method: string(record.Method),
	}, nil
}

// CheckConsent reports whether the user holds active consent for the
// feature. Absence, revocation, and expiry all read as no consent.
func (s *Service) CheckConsent(ctx context.Context, userID string, feature models.Feature) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	record, ok := s.state.Consents[userID][feature]
	if !ok {
		s.consentCheckFailed(ctx, userID, feature, audit.ReasonMissing, now)
		return false
	}

	switch record.ComputeStatus(now, s.consentTTL) {
	case models.ConsentActive:
		s.emitAudit(ctx, audit.Event{
			UserID:    userID,
			Feature:   string(feature),
			Action:    audit.ActionConsentCheckPassed,
			Decision:  audit.DecisionGranted,
			Reason:    audit.ReasonUserInitiated,
			Timestamp: now,
		})
		if s.metrics != nil {
			s.metrics.IncrementConsentCheckPassed(string(feature))
		}
		return true
	case models.ConsentRevoked:
		s.consentCheckFailed(ctx, userID, feature, "revoked", now)
		return false
	default:
		s.consentCheckFailed(ctx, userID, feature, audit.ReasonExpired, now)
		return false
	}
}

// RecordConsent stores a fresh consent grant for (user, feature). The user
// must be currently verified; otherwise the call fails soft (false, nil) and
// no record is created. Re-granting overwrites the prior record.
func (s *Service) RecordConsent(ctx context.Context, userID string, feature models.Feature, info map[string]string) (bool, error) {
	if userID == "" {
		return false, dErrors.New(dErrors.CodeInvalidInput, "user ID cannot be empty")
	}
	if !feature.IsValid() {
		return false, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("invalid feature: %s", feature))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	verification, ok := s.state.Verifications[userID]
	if !ok || !verification.IsCurrent(now) {
		s.log(ctx, slog.LevelWarn, "consent refused for unverified user",
			"user_id", userID,
			"feature", feature,
		)
		s.emitAudit(ctx, audit.Event{
			UserID:    userID,
			Feature:   string(feature),
			Action:    audit.ActionConsentCheckFailed,
			Decision:  audit.DecisionDenied,
			Reason:    audit.ReasonUnverified,
			Timestamp: now,
		})
		if s.metrics != nil {
			s.metrics.IncrementConsentCheckFailed(string(feature))
		}
		return false, nil
	}

	originHash := privacy.HashOrigin(middleware.GetOrigin(ctx))
	record := &models.ConsentRecord{
		ConsentID:      fmt.Sprintf("consent_%s", uuid.New().String()),
		Feature:        feature,
		GrantedAt:      now,
		AdditionalInfo: info,
		OriginHash:     originHash,
	}
	if s.state.Consents[userID] == nil {
		s.state.Consents[userID] = make(map[models.Feature]*models.ConsentRecord)
	}
	s.state.Consents[userID][feature] = record

	if err := s.persistLocked(ctx); err != nil {
		return false, err
	}

	s.emitAudit(ctx, audit.Event{
		UserID:     userID,
		Feature:    string(feature),
		Action:     audit.ActionConsentGranted,
		Decision:   audit.DecisionGranted,
		Reason:     audit.ReasonUserInitiated,
		OriginHash: originHash,
		Timestamp:  now,
	})
	if s.metrics != nil {
		s.metrics.IncrementConsentsGranted(string(feature))
	}
	s.log(ctx, slog.LevelInfo, "consent granted", "user_id", userID, "feature", feature)
	return true, nil
}

// RevokeConsent marks the (user, feature) record revoked. A missing record
// is a soft failure: false, logged as a warning, no error.
func (s *Service) RevokeConsent(ctx context.Context, userID string, feature models.Feature) (bool, error) {
	if userID == "" {
		return false, dErrors.New(dErrors.CodeInvalidInput, "user ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.revokeLocked(ctx, userID, feature, audit.ReasonUserInitiated)
	if err != nil || !ok {
		return ok, err
	}
	if err := s.persistLocked(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// revokeLocked marks a single record revoked without persisting. Callers
// hold the lock and decide when to flush.
func (s *Service) revokeLocked(ctx context.Context, userID string, feature models.Feature, reason string) (bool, error) {
	record, ok := s.state.Consents[userID][feature]
	if !ok {
		s.log(ctx, slog.LevelWarn, "no consent record to revoke",
			"user_id", userID,
			"feature", feature,
		)
		return false, nil
	}

	now := s.now()
	record.Revoked = true
	record.RevokedAt = &now

	s.emitAudit(ctx, audit.Event{
		UserID:    userID,
		Feature:   string(feature),
		Action:    audit.ActionConsentRevoked,
		Decision:  audit.DecisionRevoked,
		Reason:    reason,
		Timestamp: now,
	})
	if s.metrics != nil {
		s.metrics.IncrementConsentsRevoked(string(feature))
	}
	s.log(ctx, slog.LevelInfo, "consent revoked", "user_id", userID, "feature", feature, "reason", reason)
	return true, nil
}

// DetectSuspiciousActivity appends the action to the user's sliding-window
// log, recomputes per-action counts, and scores them. Scores above the
// recording threshold append a suspicion record; scores above the flag
// threshold mark the result suspicious. Deterministic given the same event
// history and window.
func (s *Service) DetectSuspiciousActivity(ctx context.Context, userID string, action models.Action) (*models.ActivityAssessment, error) {
	if userID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "user ID cannot be empty")
	}
	if action == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "action cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	events := append(s.activity[userID], models.ActivityEvent{Action: action, Timestamp: now})

	// Prune entries older than the window before counting.
	cutoff := now.Add(-s.activityWindow)
	pruned := events[:0]
	for _, event := range events {
		if event.Timestamp.After(cutoff) {
			pruned = append(pruned, event)
		}
	}
	s.activity[userID] = pruned

	counts := make(map[models.Action]int, len(pruned))
	for _, event := range pruned {
		counts[event.Action]++
	}

	score := suspicionScore(counts)
	if s.metrics != nil {
		s.metrics.ObserveSuspicionScore(score)
	}

	if score > suspicionRecordThreshold {
		s.suspicion[userID] = append(s.suspicion[userID], models.SuspicionRecord{
			Timestamp:    now,
			Score:        score,
			ActionCounts: copyCounts(counts),
		})
		s.emitAudit(ctx, audit.Event{
			UserID:    userID,
			Action:    audit.ActionSuspicionRecorded,
			Decision:  audit.DecisionFlagged,
			Reason:    audit.ReasonThreshold,
			Score:     score,
			Timestamp: now,
		})
		if s.metrics != nil {
			s.metrics.IncrementSuspicionHits()
		}
		s.log(ctx, slog.LevelWarn, "suspicious activity recorded",
			"user_id", userID,
			"score", score,
			"action", action,
		)
	}

	return &models.ActivityAssessment{
		Suspicious:   score > suspicionFlagThreshold,
		Score:        score,
		ActionCounts: copyCounts(counts),
	}, nil
}

// suspicionScore computes the weighted score from per-action counts. Each
// term is capped at 1.0 independently; the sum is not.
func suspicionScore(counts map[models.Action]int) float64 {
	sensitive := 0
	for action, n := range counts {
		if action.IsSensitive() {
			sensitive += n
		}
	}
	revocations := counts[models.ActionRevokeConsent]
	failedVerifications := counts[models.ActionFailedVerification]

	score := 0.0
	if sensitive > 3 {
		score += min(1.0, float64(sensitive-3)/10)
	}
	if revocations > 2 {
		score += min(1.0, float64(revocations-2)/3)
	}
	if failedVerifications > 1 {
		score += min(1.0, float64(failedVerifications-1)/5)
	}
	return score
}

// SafetyRecommendations derives non-mutating suggestions from the user's
// current state.
func (s *Service) SafetyRecommendations(_ context.Context, userID string) []models.Recommendation {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var recommendations []models.Recommendation

	verification, ok := s.state.Verifications[userID]
	if !ok || !verification.IsCurrent(now) {
		recommendations = append(recommendations, models.Recommendation{
			Type:     models.RecommendationVerification,
			Priority: models.PriorityHigh,
			Message:  "Complete age verification for full access",
		})
	}

	if avg, n := s.recentSuspicionAverage(userID, now); n > 0 && avg > suspicionFlagThreshold {
		recommendations = append(recommendations, models.Recommendation{
			Type:     models.RecommendationActivity,
			Priority: models.PriorityHigh,
			Message:  "Unusual activity detected on your account. Consider reviewing security settings.",
		})
	}

	features := make([]models.Feature, 0, len(s.state.Consents[userID]))
	for feature := range s.state.Consents[userID] {
		features = append(features, feature)
	}
	slices.Sort(features)
	for _, feature := range features {
		record := s.state.Consents[userID][feature]
		if record.Revoked {
			continue
		}
		if now.Sub(record.GrantedAt) > s.refreshWindow {
			recommendations = append(recommendations, models.Recommendation{
				Type:     models.RecommendationConsentRefresh,
				Priority: models.PriorityMedium,
				Message:  fmt.Sprintf("Consider reviewing your consent for %s", feature),
			})
		}
	}

	return recommendations
}

func (s *Service) recentSuspicionAverage(userID string, now time.Time) (avg float64, count int) {
	cutoff := now.Add(-recommendationLookback)
	total := 0.0
	for _, record := range s.suspicion[userID] {
		if record.Timestamp.After(cutoff) {
			total += record.Score
			count++
		}
	}
	if count == 0 {
		return 0, 0
	}
	return total / float64(count), count
}

// PanicButton revokes every consent record the user holds, persists, and
// returns a confirmation payload. It is total: a user with no records gets
// the same success response, and a failed persist is logged and counted but
// does not block the in-memory revocation, so the features stay disabled
// for the running process.
func (s *Service) PanicButton(ctx context.Context, userID string) (*models.PanicResult, error) {
	if userID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "user ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	revoked := 0
	for feature, record := range s.state.Consents[userID] {
		if record.Revoked {
			continue
		}
		ok, err := s.revokeLocked(ctx, userID, feature, audit.ReasonPanic)
		if err == nil && ok {
			revoked++
		}
	}

	if err := s.persistLocked(ctx); err != nil {
		s.log(ctx, slog.LevelError, "panic revocations not persisted; in-memory state remains revoked",
			"user_id", userID,
			"error", err,
		)
	}

	s.emitAudit(ctx, audit.Event{
		UserID:    userID,
		Action:    audit.ActionPanicActivated,
		Decision:  audit.DecisionRevoked,
		Reason:    audit.ReasonPanic,
		Timestamp: now,
	})
	if s.metrics != nil {
		s.metrics.IncrementPanicActivations()
	}
	s.log(ctx, slog.LevelWarn, "panic button activated", "user_id", userID, "revoked_features", revoked)

	return &models.PanicResult{
		Status:          "success",
		Message:         "Panic button activated. All consented features disabled.",
		RevokedFeatures: revoked,
		Timestamp:       now,
	}, nil
}

// CheckContentSafety scores an image through the configured classifier. It
// holds no lock: classification shares no state with the consent store.
//
// Without a classifier the result depends on the configured mode: permissive
// fails open (safe, zero confidence), strict fails closed with
// CodeClassifierUnavailable. Decode or inference errors always fail closed.
func (s *Service) CheckContentSafety(ctx context.Context, image []byte, mimeType string) (*models.ContentSafetyResult, error) {
	if s.classifier == nil {
		if s.metrics != nil {
			s.metrics.IncrementClassifierUnavailable()
		}
		if s.strictContent {
			s.log(ctx, slog.LevelWarn, "content check refused: no classifier configured (strict mode)")
			if s.metrics != nil {
				s.metrics.IncrementContentChecks("error")
			}
			return &models.ContentSafetyResult{Safe: false},
				dErrors.New(dErrors.CodeClassifierUnavailable, "no content classifier configured")
		}
		s.log(ctx, slog.LevelWarn, "content check skipped: no classifier configured (permissive mode)")
		if s.metrics != nil {
			s.metrics.IncrementContentChecks("skipped")
		}
		return &models.ContentSafetyResult{Safe: true, Confidence: 0}, nil
	}

	if err := classifier.Validate(image); err != nil {
		if s.metrics != nil {
			s.metrics.IncrementContentChecks("error")
		}
		return &models.ContentSafetyResult{Safe: false},
			dErrors.Wrap(err, dErrors.CodeClassifierFailed, "image rejected before classification")
	}

	start := time.Now()
	probability, err := s.classifier.Classify(ctx, image, mimeType)
	if s.metrics != nil {
		s.metrics.ObserveClassifierLatency(time.Since(start).Seconds())
	}
	if err != nil {
		s.log(ctx, slog.LevelError, "classifier inference failed", "error", err)
		if s.metrics != nil {
			s.metrics.IncrementContentChecks("error")
		}
		return &models.ContentSafetyResult{Safe: false},
			dErrors.Wrap(err, dErrors.CodeClassifierFailed, "content could not be checked")
	}

	result := &models.ContentSafetyResult{
		Safe:            probability <= s.nsfwThreshold,
		NSFWProbability: probability,
		Confidence:      confidence(probability),
	}
	if s.metrics != nil {
		if result.Safe {
			s.metrics.IncrementContentChecks("safe")
		} else {
			s.metrics.IncrementContentChecks("unsafe")
		}
	}
	if !result.Safe {
		s.emitAudit(ctx, audit.Event{
			Action:    audit.ActionContentRejected,
			Decision:  audit.DecisionDenied,
			Reason:    audit.ReasonThreshold,
			Score:     probability,
			Timestamp: s.now(),
		})
	}
	return result, nil
}

// confidence converts a probability to its distance from the decision
// boundary, normalized to [0,1].
func confidence(probability float64) float64 {
	d := probability - 0.5
	if d < 0 {
		d = -d
	}
	return d * 2
}

// StoreCheck exposes a health probe over the persistence layer.
func (s *Service) StoreCheck(ctx context.Context) error {
	_, err := s.store.Load(ctx)
	return err
}

// persistLocked flushes the full state through the store. Callers hold the
// service lock.
func (s *Service) persistLocked(ctx context.Context) error {
	if err := s.store.Save(ctx, s.state); err != nil {
		if s.metrics != nil {
			s.metrics.IncrementStoreSaveFailures()
		}
		s.log(ctx, slog.LevelError, "failed to persist safety store", "error", err)
		return dErrors.Wrap(err, dErrors.CodePersistence, "could not persist safety store")
	}
	if s.metrics != nil {
		s.metrics.IncrementStoreSaves()
	}
	return nil
}

func (s *Service) consentCheckFailed(ctx context.Context, userID string, feature models.Feature, reason string, now time.Time) {
	s.emitAudit(ctx, audit.Event{
		UserID:    userID,
		Feature:   string(feature),
		Action:    audit.ActionConsentCheckFailed,
		Decision:  audit.DecisionDenied,
		Reason:    reason,
		Timestamp: now,
	})
	if s.metrics != nil {
		s.metrics.IncrementConsentCheckFailed(string(feature))
	}
	s.log(ctx, slog.LevelWarn, "consent check failed",
		"user_id", userID,
		"feature", feature,
		"reason", reason,
	)
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	_ = s.auditor.Emit(ctx, event)
}

func (s *Service) incrementVerifications(result string) {
	if s.metrics != nil {
		s.metrics.IncrementVerifications(result)
	}
}

func (s *Service) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if s.logger == nil {
		return
	}
	s.logger.Log(ctx, level, msg, args...)
}

func copyCounts(counts map[models.Action]int) map[models.Action]int {
	out := make(map[models.Action]int, len(counts))
	for action, n := range counts {
		out[action] = n
	}
	return out
}

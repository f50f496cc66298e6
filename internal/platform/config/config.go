package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults for the safety domain. Verification lasts a year; consent is
// short-lived and must be refreshed daily.
const (
	DefaultVerificationTTL = 365 * 24 * time.Hour
	DefaultConsentTTL      = 24 * time.Hour
	DefaultActivityWindow  = time.Hour
	DefaultRefreshWindow   = 30 * 24 * time.Hour
	DefaultNSFWThreshold   = 0.7
	DefaultClassifierWait  = 10 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultRequestTimeout  = 30 * time.Second
	DefaultAuditBufferSize = 256
)

// ClassifierMode decides what a content-safety check returns when no
// classifier backend is configured. Permissive fails open (matches the
// legacy behavior), strict fails closed.
type ClassifierMode string

const (
	ClassifierModePermissive ClassifierMode = "permissive"
	ClassifierModeStrict     ClassifierMode = "strict"
)

// Server captures process-level configuration.
type Server struct {
	Addr        string
	MetricsAddr string

	DataDir      string
	KeyFile      string
	TokenSigning string
	TokenIssuer  string

	VerificationTTL time.Duration
	ConsentTTL      time.Duration
	ActivityWindow  time.Duration
	RefreshWindow   time.Duration

	ClassifierURL     string
	ClassifierAPIKey  string
	ClassifierTimeout time.Duration
	ClassifierMode    ClassifierMode
	NSFWThreshold     float64

	AuditBufferSize int
}

// FromEnv builds a Server config from environment variables so main stays
// lean. A .env file in the working directory is honored when present.
func FromEnv() Server {
	_ = godotenv.Load()

	cfg := Server{
		Addr:              getEnv("AEGIS_ADDR", ":8080"),
		MetricsAddr:       getEnv("AEGIS_METRICS_ADDR", ":9090"),
		DataDir:           getEnv("AEGIS_DATA_DIR", "data"),
		KeyFile:           getEnv("AEGIS_KEY_FILE", "encryption.key"),
		TokenSigning:      getEnv("AEGIS_TOKEN_SIGNING_KEY", "dev-secret-key-change-in-production"),
		TokenIssuer:       getEnv("AEGIS_TOKEN_ISSUER", "aegis"),
		VerificationTTL:   getDuration("AEGIS_VERIFICATION_TTL", DefaultVerificationTTL),
		ConsentTTL:        getDuration("AEGIS_CONSENT_TTL", DefaultConsentTTL),
		ActivityWindow:    getDuration("AEGIS_ACTIVITY_WINDOW", DefaultActivityWindow),
		RefreshWindow:     getDuration("AEGIS_CONSENT_REFRESH_WINDOW", DefaultRefreshWindow),
		ClassifierURL:     os.Getenv("AEGIS_CLASSIFIER_URL"),
		ClassifierAPIKey:  os.Getenv("AEGIS_CLASSIFIER_API_KEY"),
		ClassifierTimeout: getDuration("AEGIS_CLASSIFIER_TIMEOUT", DefaultClassifierWait),
		ClassifierMode:    ClassifierModePermissive,
		NSFWThreshold:     getFloat("AEGIS_NSFW_THRESHOLD", DefaultNSFWThreshold),
		AuditBufferSize:   getInt("AEGIS_AUDIT_BUFFER", DefaultAuditBufferSize),
	}

	if os.Getenv("AEGIS_CLASSIFIER_MODE") == string(ClassifierModeStrict) {
		cfg.ClassifierMode = ClassifierModeStrict
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 && f <= 1 {
			return f
		}
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

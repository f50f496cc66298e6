// Package token issues the opaque verification tokens referenced by
// verification records. Tokens are signed JWTs so a future external identity
// provider can hand back something independently checkable, but the rest of
// the system treats them as opaque strings.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "aegis/pkg/domain-errors"
)

// VerificationClaims carries the verification method alongside the standard
// registered claims.
type VerificationClaims struct {
	UserID string `json:"user_id"`
	Method string `json:"method"`
	jwt.RegisteredClaims
}

// Issuer mints and validates verification tokens.
type Issuer struct {
	signingKey []byte
	issuer     string
}

// NewIssuer creates a token issuer with the given HMAC signing key.
func NewIssuer(signingKey, issuer string) *Issuer {
	return &Issuer{
		signingKey: []byte(signingKey),
		issuer:     issuer,
	}
}

// Issue mints a verification token for the user, valid until expiry.
func (i *Issuer) Issue(userID, method string, issuedAt, expiry time.Time) (string, error) {
	claims := VerificationClaims{
		UserID: userID,
		Method: method,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    i.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not sign verification token")
	}
	return signed, nil
}

// Validate parses a verification token and returns its claims.
func (i *Issuer) Validate(tokenString string) (*VerificationClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &VerificationClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "unexpected signing method")
		}
		return i.signingKey, nil
	}, jwt.WithIssuer(i.issuer))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid verification token")
	}
	claims, ok := parsed.Claims.(*VerificationClaims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid verification token")
	}
	return claims, nil
}

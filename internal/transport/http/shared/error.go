package shared

import (
	"errors"
	"net/http"

	"aegis/internal/transport/http/shared/json"
	dErrors "aegis/pkg/domain-errors"
)

// WriteError centralizes domain error translation to HTTP responses.
// It translates transport-agnostic domain errors into HTTP status codes and error responses.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		status := DomainCodeToHTTPStatus(domainErr.Code)
		response := map[string]string{
			"error": DomainCodeToHTTPCode(domainErr.Code),
		}
		if domainErr.Message != "" {
			response["error_description"] = domainErr.Message
		}
		json.WriteJSON(w, status, response)
		return
	}

	// Fallback for unexpected errors
	json.WriteJSON(w, http.StatusInternalServerError, map[string]string{
		"error": DomainCodeToHTTPCode(dErrors.CodeInternal),
	})
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeInvalidInput, dErrors.CodeInvariantViolation:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden, dErrors.CodeMissingConsent, dErrors.CodeInvalidConsent:
		return http.StatusForbidden
	case dErrors.CodeVerificationNeeded, dErrors.CodeVerificationExpired:
		return http.StatusForbidden
	case dErrors.CodeClassifierUnavailable:
		return http.StatusServiceUnavailable
	case dErrors.CodeClassifierFailed:
		return http.StatusBadGateway
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	case dErrors.CodePersistence, dErrors.CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// DomainCodeToHTTPCode translates domain error codes to HTTP error codes (for JSON response).
func DomainCodeToHTTPCode(code dErrors.Code) string {
	switch code {
	case dErrors.CodeNotFound:
		return "not_found"
	case dErrors.CodeBadRequest, dErrors.CodeValidation, dErrors.CodeInvalidInput:
		return "bad_request"
	case dErrors.CodeUnauthorized:
		return "unauthorized"
	case dErrors.CodeForbidden:
		return "forbidden"
	case dErrors.CodeMissingConsent:
		return "missing_consent"
	case dErrors.CodeInvalidConsent:
		return "invalid_consent"
	case dErrors.CodeVerificationNeeded:
		return "verification_required"
	case dErrors.CodeVerificationExpired:
		return "verification_expired"
	case dErrors.CodeClassifierUnavailable:
		return "classifier_unavailable"
	case dErrors.CodeClassifierFailed:
		return "classifier_failed"
	case dErrors.CodeTimeout:
		return "timeout"
	case dErrors.CodePersistence:
		return "persistence_failed"
	default:
		return "internal_error"
	}
}

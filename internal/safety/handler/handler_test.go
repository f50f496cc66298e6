package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"aegis/internal/safety/handler/mocks"
	"aegis/internal/safety/models"
	dErrors "aegis/pkg/domain-errors"
)

//go:generate mockgen -source=handler.go -destination=mocks/safety-mocks.go -package=mocks Service

type SafetyHandlerSuite struct {
	suite.Suite
}

func TestSafetyHandlerSuite(t *testing.T) {
	suite.Run(t, new(SafetyHandlerSuite))
}

func newTestRouter(t *testing.T) (chi.Router, *mocks.MockService, *mocks.MockAuditLog) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)
	mockAudit := mocks.NewMockAuditLog(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := New(mockService, mockAudit, logger, nil)
	r := chi.NewRouter()
	h.Register(r)
	return r, mockService, mockAudit
}

func newJSONRequest(t *testing.T, method, endpoint string, body any) *http.Request {
	t.Helper()
	bodyBytes, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, endpoint, bytes.NewReader(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// assertErrorResponse unmarshals the response body and asserts the error code.
func assertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedCode string) {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, expectedCode, resp["error"])
}

func (s *SafetyHandlerSuite) TestHandleVerify() {
	s.T().Run("200 - verification granted", func(t *testing.T) {
		r, mockService, _ := newTestRouter(t)
		mockService.EXPECT().Verify(gomock.Any(), "user123", false).Return(true, nil)

		req := newJSONRequest(t, http.MethodPost, "/safety/verification",
			VerifyRequest{UserID: "user123"})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp VerifyResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Verified)
	})

	s.T().Run("200 - force reverify forwarded", func(t *testing.T) {
		r, mockService, _ := newTestRouter(t)
		mockService.EXPECT().Verify(gomock.Any(), "user123", true).Return(true, nil)

		req := newJSONRequest(t, http.MethodPost, "/safety/verification",
			VerifyRequest{UserID: "user123", ForceReverify: true})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	s.T().Run("400 - missing user_id", func(t *testing.T) {
		r, _, _ := newTestRouter(t)

		req := newJSONRequest(t, http.MethodPost, "/safety/verification", map[string]any{})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assertErrorResponse(t, w, "bad_request")
	})

	s.T().Run("500 - persistence failure surfaces", func(t *testing.T) {
		r, mockService, _ := newTestRouter(t)
		mockService.EXPECT().Verify(gomock.Any(), "user123", false).
			Return(false, dErrors.New(dErrors.CodePersistence, "could not persist safety store"))

		req := newJSONRequest(t, http.MethodPost, "/safety/verification",
			VerifyRequest{UserID: "user123"})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assertErrorResponse(t, w, "persistence_failed")
	})
}

func (s *SafetyHandlerSuite) TestHandleVerificationStatus() {
	s.T().Run("200 - verified user", func(t *testing.T) {
		r, mockService, _ := newTestRouter(t)
		mockService.EXPECT().IsVerified(gomock.Any(), "user123").Return(true)

		req := httptest.NewRequest(http.MethodGet, "/safety/verification/user123", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp VerificationStatusResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Verified)
		assert.Equal(t, "user123", resp.UserID)
	})
}

func (s *SafetyHandlerSuite) TestHandleIntrospect() {
	s.T().Run("200 - active token", func(t *testing.T) {
		r, mockService, _ := newTestRouter(t)
		mockService.EXPECT().IntrospectToken(gomock.Any(), "tok-abc").
			Return(&models.TokenIntrospection{Active: true, UserID: "user123", Method: "simulated"}, nil)

		req := newJSONRequest(t, http.MethodPost, "/safety/verification/introspect",
			IntrospectRequest{Token: "tok-abc"})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp models.TokenIntrospection
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Active)
		assert.Equal(t, "user123", resp.UserID)
		assert.Equal(t, "simulated", resp.Method)
	})

	s.T().Run("200 - invalid token reads inactive, not an error", func(t *testing.T) {
		r, mockService, _ := newTestRouter(t)
		mockService.EXPECT().IntrospectToken(gomock.Any(), "garbage").
			Return(&models.TokenIntrospection{Active: false}, nil)

		req := newJSONRequest(t, http.MethodPost, "/safety/verification/introspect",
			IntrospectRequest{Token: "garbage"})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"active":false}`, w.Body.String())
	})

	s.T().Run("400 - missing token", func(t *testing.T) {
		r, _, _ := newTestRouter(t)

		req := newJSONRequest(t, http.MethodPost, "/safety/verification/introspect", map[string]any{})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assertErrorResponse(t, w, "bad_request")
	})
}

func (s *SafetyHandlerSuite) TestHandleRecordConsent() {
	s.T().Run("201 - consent recorded", func(t *testing.T) {
		r, mockService, _ := newTestRouter(t)
		mockService.EXPECT().RecordConsent(gomock.Any(), "user123", models.FeatureVoiceChat, gomock.Any()).
			Return(true, nil)

		req := newJSONRequest(t, http.MethodPost, "/safety/consent",
			ConsentRequest{UserID: "user123", Feature: "voice_chat"})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		var resp ConsentResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Recorded)
	})

	s.T().Run("201 - device summary added to additional info", func(t *testing.T) {
		r, mockService, _ := newTestRouter(t)
		mockService.EXPECT().RecordConsent(gomock.Any(), "user123", models.FeatureVoiceChat,
			gomock.Cond(func(info map[string]string) bool {
				return info["device"] != "" && info["surface"] == "settings"
			})).Return(true, nil)

		req := newJSONRequest(t, http.MethodPost, "/safety/consent",
			ConsentRequest{UserID: "user123", Feature: "voice_chat", AdditionalInfo: map[string]string{"surface": "settings"}})
		req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 Chrome/120.0 Safari/537.36")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	s.T().Run("403 - unverified user", func(t *testing.T) {
		r, mockService, _ := newTestRouter(t)
		mockService.EXPECT().RecordConsent(gomock.Any(), "user123", models.FeatureVoiceChat, gomock.Any()).
			Return(false, nil)

		req := newJSONRequest(t, http.MethodPost, "/safety/consent",
			ConsentRequest{UserID: "user123", Feature: "voice_chat"})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		var resp ConsentResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Recorded)
		assert.NotEmpty(t, resp.Reason)
	})

	s.T().Run("400 - unknown feature rejected before service", func(t *testing.T) {
		r, _, _ := newTestRouter(t)

		req := newJSONRequest(t, http.MethodPost, "/safety/consent",
			ConsentRequest{UserID: "user123", Feature: "mind_reading"})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assertErrorResponse(t, w, "bad_request")
	})
}

func (s *SafetyHandlerSuite) TestHandleRevokeConsent() {
	s.T().Run("200 - consent revoked", func(t *testing.T) {
		r, mockService, _ := newTestRouter(t)
		mockService.EXPECT().RevokeConsent(gomock.Any(), "user123", models.FeatureCameraCapture).
			Return(true, nil)

		req := newJSONRequest(t, http.MethodPost, "/safety/consent/revoke",
			RevokeRequest{UserID: "user123", Feature: "camera_capture"})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	s.T().Run("404 - nothing to revoke", func(t *testing.T) {
		r, mockService, _ := newTestRouter(t)
		mockService.EXPECT().RevokeConsent(gomock.Any(), "user123", models.FeatureCameraCapture).
			Return(false, nil)

		req := newJSONRequest(t, http.MethodPost, "/safety/consent/revoke",
			RevokeRequest{UserID: "user123", Feature: "camera_capture"})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		var resp RevokeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Revoked)
	})
}

func (s *SafetyHandlerSuite) TestHandleConsentStatus() {
	s.T().Run("200 - consented", func(t *testing.T) {
		r, mockService, _ := newTestRouter(t)
		mockService.EXPECT().CheckConsent(gomock.Any(), "user123", models.FeatureVoiceChat).Return(true)

		req := httptest.NewRequest(http.MethodGet, "/safety/consent/user123/voice_chat", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp ConsentStatusResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Consented)
		assert.Equal(t, "voice_chat", resp.Feature)
	})
}

func (s *SafetyHandlerSuite) TestHandleContentCheck() {
	s.T().Run("200 - safe content", func(t *testing.T) {
		r, mockService, _ := newTestRouter(t)
		mockService.EXPECT().CheckContentSafety(gomock.Any(), []byte("fake-image"), "image/png").
			Return(&models.ContentSafetyResult{Safe: true, NSFWProbability: 0.1, Confidence: 0.8}, nil)

		req := newJSONRequest(t, http.MethodPost, "/safety/content/check",
			ContentCheckRequest{Image: "data:image/png;base64,ZmFrZS1pbWFnZQ=="})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp models.ContentSafetyResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Safe)
		assert.InDelta(t, 0.1, resp.NSFWProbability, 1e-9)
	})

	s.T().Run("400 - undecodable payload", func(t *testing.T) {
		r, _, _ := newTestRouter(t)

		req := newJSONRequest(t, http.MethodPost, "/safety/content/check",
			ContentCheckRequest{Image: "%%%not-base64%%%"})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	s.T().Run("503 - classifier unavailable in strict mode", func(t *testing.T) {
		r, mockService, _ := newTestRouter(t)
		mockService.EXPECT().CheckContentSafety(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&models.ContentSafetyResult{Safe: false},
				dErrors.New(dErrors.CodeClassifierUnavailable, "no content classifier configured"))

		req := newJSONRequest(t, http.MethodPost, "/safety/content/check",
			ContentCheckRequest{Image: "ZmFrZS1pbWFnZQ=="})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assertErrorResponse(t, w, "classifier_unavailable")
	})
}

func (s *SafetyHandlerSuite) TestHandleActivity() {
	s.T().Run("200 - assessment returned", func(t *testing.T) {
		r, mockService, _ := newTestRouter(t)
		mockService.EXPECT().DetectSuspiciousActivity(gomock.Any(), "user123", models.ActionRevokeConsent).
			Return(&models.ActivityAssessment{
				Suspicious:   true,
				Score:        0.66,
				ActionCounts: map[models.Action]int{models.ActionRevokeConsent: 4},
			}, nil)

		req := newJSONRequest(t, http.MethodPost, "/safety/activity",
			ActivityRequest{UserID: "user123", Action: "revoke_consent"})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp models.ActivityAssessment
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Suspicious)
		assert.Equal(t, 4, resp.ActionCounts[models.ActionRevokeConsent])
	})
}

func (s *SafetyHandlerSuite) TestHandleRecommendations() {
	s.T().Run("200 - list returned", func(t *testing.T) {
		r, mockService, _ := newTestRouter(t)
		mockService.EXPECT().SafetyRecommendations(gomock.Any(), "user123").
			Return([]models.Recommendation{{
				Type:     models.RecommendationVerification,
				Priority: models.PriorityHigh,
				Message:  "Complete age verification for full access",
			}})

		req := httptest.NewRequest(http.MethodGet, "/safety/recommendations/user123", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp RecommendationsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Recommendations, 1)
		assert.Equal(t, models.RecommendationVerification, resp.Recommendations[0].Type)
	})

	s.T().Run("200 - empty list, not null", func(t *testing.T) {
		r, mockService, _ := newTestRouter(t)
		mockService.EXPECT().SafetyRecommendations(gomock.Any(), "user123").Return(nil)

		req := httptest.NewRequest(http.MethodGet, "/safety/recommendations/user123", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"recommendations":[]`)
	})
}

func (s *SafetyHandlerSuite) TestHandlePanic() {
	s.T().Run("200 - panic activated", func(t *testing.T) {
		r, mockService, _ := newTestRouter(t)
		mockService.EXPECT().PanicButton(gomock.Any(), "user123").
			Return(&models.PanicResult{
				Status:          "success",
				Message:         "Panic button activated. All consented features disabled.",
				RevokedFeatures: 2,
				Timestamp:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			}, nil)

		req := newJSONRequest(t, http.MethodPost, "/safety/panic",
			PanicRequest{UserID: "user123"})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp models.PanicResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "success", resp.Status)
		assert.Equal(t, 2, resp.RevokedFeatures)
	})
}

func (s *SafetyHandlerSuite) TestHandleAudit() {
	s.T().Run("200 - events returned", func(t *testing.T) {
		r, _, mockAudit := newTestRouter(t)
		mockAudit.EXPECT().List(gomock.Any(), "user123").Return(nil, nil)

		req := httptest.NewRequest(http.MethodGet, "/safety/audit/user123", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"events":[]`)
	})

	s.T().Run("500 - audit store failure", func(t *testing.T) {
		r, _, mockAudit := newTestRouter(t)
		mockAudit.EXPECT().List(gomock.Any(), "user123").Return(nil, errors.New("boom"))

		req := httptest.NewRequest(http.MethodGet, "/safety/audit/user123", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

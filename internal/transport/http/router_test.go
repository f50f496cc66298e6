package httptransport

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"aegis/internal/platform/health"
	"aegis/internal/safety/handler"
	"aegis/internal/safety/handler/mocks"
)

func newRouter(t *testing.T, storeCheck health.Check) (http.Handler, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	safetyHandler := handler.New(mockService, nil, logger, nil)
	healthHandler := health.New(logger, map[string]health.Check{"store": storeCheck})
	return NewRouter(safetyHandler, healthHandler, logger, 5*time.Second), mockService
}

func TestHealthz(t *testing.T) {
	t.Run("200 when the store check passes", func(t *testing.T) {
		r, _ := newRouter(t, func(context.Context) error { return nil })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"store":"ok"`)
	})

	t.Run("503 when the store check fails", func(t *testing.T) {
		r, _ := newRouter(t, func(context.Context) error { return errors.New("blob unreadable") })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"degraded"`)
	})
}

func TestContentTypeGuard(t *testing.T) {
	r, _ := newRouter(t, func(context.Context) error { return nil })

	req := httptest.NewRequest(http.MethodPost, "/safety/panic", strings.NewReader(`{"user_id":"u1"}`))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestRequestIDHeader(t *testing.T) {
	r, mockService := newRouter(t, func(context.Context) error { return nil })
	mockService.EXPECT().IsVerified(gomock.Any(), "u1").Return(false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/safety/verification/u1", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

package classifier

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "aegis/pkg/domain-errors"
)

// tinyPNG returns an encoded 2x2 PNG for use as a valid image payload.
func tinyPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func TestDecodeInput(t *testing.T) {
	t.Run("decodes data URI with mime type", func(t *testing.T) {
		payload := tinyPNG(t)
		input := "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload)

		raw, mimeType, err := DecodeInput(input)
		require.NoError(t, err)
		assert.Equal(t, payload, raw)
		assert.Equal(t, "image/png", mimeType)
	})

	t.Run("decodes plain base64", func(t *testing.T) {
		payload := tinyPNG(t)
		raw, mimeType, err := DecodeInput(base64.StdEncoding.EncodeToString(payload))
		require.NoError(t, err)
		assert.Equal(t, payload, raw)
		assert.Empty(t, mimeType)
	})

	t.Run("rejects non-image data URI", func(t *testing.T) {
		_, _, err := DecodeInput("data:text/plain;base64,aGVsbG8=")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid base64", func(t *testing.T) {
		_, _, err := DecodeInput("data:image/png;base64,!!!not-base64!!!")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestValidate(t *testing.T) {
	t.Run("accepts a decodable image", func(t *testing.T) {
		assert.NoError(t, Validate(tinyPNG(t)))
	})

	t.Run("rejects empty payload", func(t *testing.T) {
		assert.Error(t, Validate(nil))
	})

	t.Run("rejects non-image bytes", func(t *testing.T) {
		err := Validate([]byte("definitely not an image"))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func TestHTTPClassifier(t *testing.T) {
	payload := tinyPNG(t)

	t.Run("returns probability from backend", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/classify", r.URL.Path)
			assert.Equal(t, "secret", r.Header.Get("X-API-Key"))

			var req classifyRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			decoded, err := base64.StdEncoding.DecodeString(req.Image)
			require.NoError(t, err)
			assert.Equal(t, payload, decoded)

			_ = json.NewEncoder(w).Encode(classifyResponse{NSFWProbability: 0.42})
		}))
		defer srv.Close()

		c := NewHTTP(HTTPConfig{BaseURL: srv.URL, APIKey: "secret"})
		prob, err := c.Classify(context.Background(), payload, "image/png")
		require.NoError(t, err)
		assert.InDelta(t, 0.42, prob, 1e-9)
	})

	t.Run("non-200 is a classifier failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := NewHTTP(HTTPConfig{BaseURL: srv.URL})
		_, err := c.Classify(context.Background(), payload, "image/png")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeClassifierFailed))
	})

	t.Run("out-of-range probability is rejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(classifyResponse{NSFWProbability: 1.7})
		}))
		defer srv.Close()

		c := NewHTTP(HTTPConfig{BaseURL: srv.URL})
		_, err := c.Classify(context.Background(), payload, "image/png")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeClassifierFailed))
	})

	t.Run("deadline is honored", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
		}))
		defer srv.Close()

		c := NewHTTP(HTTPConfig{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
		_, err := c.Classify(context.Background(), payload, "image/png")
		assert.Error(t, err)
	})
}

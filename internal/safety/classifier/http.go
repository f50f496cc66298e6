package classifier

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	dErrors "aegis/pkg/domain-errors"
)

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPClassifier calls a remote inference service. The wire contract is a
// POST of base64 image bytes; the response carries a single probability.
type HTTPClassifier struct {
	baseURL string
	apiKey  string
	client  HTTPDoer
	timeout time.Duration
	tracer  trace.Tracer
}

// HTTPConfig configures an HTTPClassifier.
type HTTPConfig struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient HTTPDoer
}

type classifyRequest struct {
	Image    string `json:"image"`
	MimeType string `json:"mime_type,omitempty"`
}

type classifyResponse struct {
	NSFWProbability float64 `json:"nsfw_probability"`
}

// NewHTTP creates a classifier backed by a remote inference endpoint.
func NewHTTP(cfg HTTPConfig) *HTTPClassifier {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &HTTPClassifier{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client:  client,
		timeout: cfg.Timeout,
		tracer:  otel.Tracer("aegis/classifier"),
	}
}

// Classify posts the image to the inference service and returns the NSFW
// probability. The caller-supplied context bounds the call; an additional
// hard timeout guards against a missing deadline.
func (c *HTTPClassifier) Classify(ctx context.Context, image []byte, mimeType string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ctx, span := c.tracer.Start(ctx, "classifier.classify",
		trace.WithAttributes(
			attribute.Int("image.bytes", len(image)),
			attribute.String("image.mime_type", mimeType),
		))
	var retErr error
	defer func() {
		if retErr != nil {
			span.RecordError(retErr)
			span.SetStatus(codes.Error, retErr.Error())
		}
		span.End()
	}()

	body, err := json.Marshal(classifyRequest{
		Image:    base64.StdEncoding.EncodeToString(image),
		MimeType: mimeType,
	})
	if err != nil {
		retErr = dErrors.Wrap(err, dErrors.CodeClassifierFailed, "could not encode classify request")
		return 0, retErr
	}

	url := c.baseURL + "/v1/classify"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		retErr = dErrors.Wrap(err, dErrors.CodeClassifierFailed, "could not build classify request")
		return 0, retErr
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		code := dErrors.CodeClassifierFailed
		if ctx.Err() == context.DeadlineExceeded {
			code = dErrors.CodeTimeout
		}
		retErr = dErrors.Wrap(err, code, "classifier request failed")
		return 0, retErr
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		retErr = dErrors.Wrap(err, dErrors.CodeClassifierFailed, "could not read classifier response")
		return 0, retErr
	}
	if resp.StatusCode != http.StatusOK {
		retErr = dErrors.New(dErrors.CodeClassifierFailed,
			fmt.Sprintf("classifier returned status %d", resp.StatusCode))
		return 0, retErr
	}

	var parsed classifyResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		retErr = dErrors.Wrap(err, dErrors.CodeClassifierFailed, "could not decode classifier response")
		return 0, retErr
	}
	if parsed.NSFWProbability < 0 || parsed.NSFWProbability > 1 {
		retErr = dErrors.New(dErrors.CodeClassifierFailed, "classifier returned probability out of range")
		return 0, retErr
	}

	span.SetAttributes(attribute.Float64("classifier.nsfw_probability", parsed.NSFWProbability))
	return parsed.NSFWProbability, nil
}

var _ Classifier = (*HTTPClassifier)(nil)

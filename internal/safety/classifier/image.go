package classifier

import (
	"bytes"
	"encoding/base64"
	"image"
	"strings"

	// Registered decoders for input validation.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	dErrors "aegis/pkg/domain-errors"
)

// MaxImageBytes caps decoded image payloads. Anything larger is rejected
// before it reaches the classifier backend.
const MaxImageBytes = 8 << 20 // 8 MiB

// maxImageDimension bounds width and height to keep backend preprocessing
// (fixed-size decode) from choking on absurd inputs.
const maxImageDimension = 8192

// DecodeInput accepts either a base64 data URI ("data:image/png;base64,...")
// or a plain base64 string and returns the raw image bytes plus the declared
// MIME type. Raw bytes already in hand skip this step.
func DecodeInput(input string) ([]byte, string, error) {
	mimeType := ""
	payload := input

	if strings.HasPrefix(input, "data:") {
		header, rest, found := strings.Cut(input, ",")
		if !found {
			return nil, "", dErrors.New(dErrors.CodeInvalidInput, "malformed data URI")
		}
		payload = rest

		header = strings.TrimPrefix(header, "data:")
		header, _, _ = strings.Cut(header, ";")
		if !strings.HasPrefix(header, "image/") {
			return nil, "", dErrors.New(dErrors.CodeInvalidInput, "data URI is not an image")
		}
		mimeType = header
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid base64 image payload")
	}
	if len(raw) > MaxImageBytes {
		return nil, "", dErrors.New(dErrors.CodeInvalidInput, "image payload too large")
	}
	return raw, mimeType, nil
}

// Validate confirms the bytes decode as a supported image within size
// bounds. It reads only the header, not the full pixel data.
func Validate(raw []byte) error {
	if len(raw) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "empty image payload")
	}
	if len(raw) > MaxImageBytes {
		return dErrors.New(dErrors.CodeInvalidInput, "image payload too large")
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "unsupported or corrupt image")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > maxImageDimension || cfg.Height > maxImageDimension {
		return dErrors.New(dErrors.CodeInvalidInput, "image dimensions out of range")
	}
	return nil
}

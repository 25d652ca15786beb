// Package imageprep turns captured camera frames into CapturedImage values
// that are safe to send to a vision model.
package imageprep

import (
	"bytes"
	"encoding/base64"
	"image"
	"net/http"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/vbonduro/fridgechef/internal/domain"
	"github.com/vbonduro/fridgechef/internal/llm"
)

// MaxImageBytes bounds a single capture, before and after base64 decoding.
const MaxImageBytes = 20 * 1024 * 1024

const DefaultMaxDimension = 1568

// allowedImageTypes is the set of MIME types accepted for captures.
// net/http.DetectContentType handles JPEG, PNG, and GIF via magic-byte
// sniffing. WebP is detected separately because the stdlib sniffer has no
// WebP signature.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// isWebP reports whether data is a WebP image (RIFF container with "WEBP" at
// offset 8).
func isWebP(data []byte) bool {
	return len(data) >= 12 &&
		string(data[0:4]) == "RIFF" &&
		string(data[8:12]) == "WEBP"
}

// AllowedImageMIME returns the detected MIME type and true if the data is an
// accepted image format, or ("", false) otherwise.
func AllowedImageMIME(data []byte) (string, bool) {
	if isWebP(data) {
		return "image/webp", true
	}
	mime := http.DetectContentType(data)
	if allowedImageTypes[mime] {
		return mime, true
	}
	return "", false
}

type Preparer struct {
	maxDimension int
	now          func() time.Time
}

// New returns a Preparer that downscales images whose longest edge exceeds
// maxDimension. A non-positive maxDimension disables downscaling.
func New(maxDimension int) *Preparer {
	return &Preparer{maxDimension: maxDimension, now: time.Now}
}

// FromDataURL accepts either a data URL ("data:image/jpeg;base64,...") or a
// bare base64 payload.
func (p *Preparer) FromDataURL(s string) (*domain.CapturedImage, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, &llm.InvalidInputError{Field: "imageData", Reason: "is required"}
	}

	payload := s
	if strings.HasPrefix(s, "data:") {
		header, data, ok := strings.Cut(s, ",")
		if !ok || !strings.HasSuffix(header, ";base64") {
			return nil, &llm.InvalidInputError{Field: "imageData", Reason: "must be a base64 data URL"}
		}
		payload = data
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes+2 {
		return nil, &llm.InvalidInputError{Field: "imageData", Reason: "exceeds the 20 MB limit"}
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, &llm.InvalidInputError{Field: "imageData", Reason: "is not valid base64"}
	}
	return p.FromBytes(data)
}

// FromBytes validates a raw upload and downscales it when it is larger than
// the configured dimension.
func (p *Preparer) FromBytes(data []byte) (*domain.CapturedImage, error) {
	if len(data) == 0 {
		return nil, &llm.InvalidInputError{Field: "image", Reason: "is required"}
	}
	if len(data) > MaxImageBytes {
		return nil, &llm.InvalidInputError{Field: "image", Reason: "exceeds the 20 MB limit"}
	}

	mimeType, ok := AllowedImageMIME(data)
	if !ok {
		return nil, &llm.InvalidInputError{Field: "image", Reason: "unsupported image format"}
	}

	if mimeType != "image/webp" {
		resized, err := p.downscale(data)
		if err != nil {
			return nil, err
		}
		if resized != nil {
			data, mimeType = resized, "image/jpeg"
		}
	}

	return &domain.CapturedImage{
		ID:         uuid.NewString(),
		Data:       data,
		MimeType:   mimeType,
		CapturedAt: p.now().UTC(),
	}, nil
}

// downscale returns nil when the image already fits.
func (p *Preparer) downscale(data []byte) ([]byte, error) {
	if p.maxDimension <= 0 {
		return nil, nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &llm.InvalidInputError{Field: "image", Reason: "could not be decoded"}
	}
	if cfg.Width <= p.maxDimension && cfg.Height <= p.maxDimension {
		return nil, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &llm.InvalidInputError{Field: "image", Reason: "could not be decoded"}
	}

	b := img.Bounds()
	if b.Dx() >= b.Dy() {
		img = imaging.Resize(img, p.maxDimension, 0, imaging.Lanczos)
	} else {
		img = imaging.Resize(img, 0, p.maxDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, &llm.InvalidInputError{Field: "image", Reason: "could not be re-encoded"}
	}
	return buf.Bytes(), nil
}

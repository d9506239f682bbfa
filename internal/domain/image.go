package domain

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// ImagePayload carries encoded image bytes together with their MIME type.
type ImagePayload struct {
	Data []byte
	MIME string
}

// Clone copies the payload so callers can hold it past the engine's lifetime.
func (p ImagePayload) Clone() ImagePayload {
	out := ImagePayload{MIME: p.MIME}
	if len(p.Data) > 0 {
		out.Data = append([]byte(nil), p.Data...)
	}
	return out
}

// DataURL renders the payload as a data URL, the format the uploader speaks.
func (p ImagePayload) DataURL() string {
	mime := p.MIME
	if mime == "" {
		mime = "application/octet-stream"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(p.Data))
}

// DecodeDataURL parses a "data:<mime>;base64,<payload>" string into an
// ImagePayload. Only base64-encoded image data URLs are accepted.
func DecodeDataURL(raw string) (ImagePayload, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "data:") {
		return ImagePayload{}, fmt.Errorf("not a data url")
	}
	header, payload, ok := strings.Cut(raw, ",")
	if !ok {
		return ImagePayload{}, fmt.Errorf("malformed data url")
	}
	meta := strings.TrimPrefix(header, "data:")
	if !strings.HasSuffix(meta, ";base64") {
		return ImagePayload{}, fmt.Errorf("data url is not base64 encoded")
	}
	mime := strings.TrimSuffix(meta, ";base64")
	if !strings.HasPrefix(mime, "image/") {
		return ImagePayload{}, fmt.Errorf("unsupported media type %q", mime)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return ImagePayload{}, fmt.Errorf("decode data url payload: %w", err)
	}
	if len(data) == 0 {
		return ImagePayload{}, fmt.Errorf("empty image payload")
	}
	return ImagePayload{Data: data, MIME: mime}, nil
}

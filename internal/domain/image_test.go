package domain

import (
	"bytes"
	"encoding/base64"
	"testing"
)

func TestDecodeDataURL(t *testing.T) {
	raw := []byte{0x89, 'P', 'N', 'G'}
	url := "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw)

	p, err := DecodeDataURL(url)
	if err != nil {
		t.Fatalf("DecodeDataURL returned error: %v", err)
	}
	if p.MIME != "image/png" {
		t.Fatalf("MIME = %q, want image/png", p.MIME)
	}
	if !bytes.Equal(p.Data, raw) {
		t.Fatalf("Data mismatch: %v vs %v", p.Data, raw)
	}
}

func TestDecodeDataURLRoundTrip(t *testing.T) {
	p := ImagePayload{Data: []byte{1, 2, 3}, MIME: "image/jpeg"}
	decoded, err := DecodeDataURL(p.DataURL())
	if err != nil {
		t.Fatalf("round trip error: %v", err)
	}
	if decoded.MIME != p.MIME || !bytes.Equal(decoded.Data, p.Data) {
		t.Fatalf("round trip mismatch: %+v vs %+v", decoded, p)
	}
}

func TestDecodeDataURLRejectsBadInput(t *testing.T) {
	bad := []string{
		"",
		"http://example.com/a.png",
		"data:image/png,plain",
		"data:text/plain;base64,aGVsbG8=",
		"data:image/png;base64,",
		"data:image/png;base64,!!!",
	}
	for _, raw := range bad {
		if _, err := DecodeDataURL(raw); err == nil {
			t.Fatalf("DecodeDataURL(%q) expected error", raw)
		}
	}
}

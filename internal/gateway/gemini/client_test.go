package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"luxelens/internal/domain"
	"luxelens/internal/gateway"
)

func testSource() domain.ImagePayload {
	return domain.ImagePayload{Data: []byte{0x89, 'P', 'N', 'G'}, MIME: "image/png"}
}

func TestRetouchDecodesInlineImage(t *testing.T) {
	result := []byte("retouched-bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("api key = %q, want test-key", got)
		}
		var req geminiGenerateContentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Contents) != 1 || len(req.Contents[0].Parts) != 2 {
			t.Errorf("unexpected request shape: %+v", req)
		}
		resp := geminiGenerateContentResponse{Candidates: []geminiCandidate{{
			Content: geminiContent{Parts: []geminiPart{
				{Text: "here is your image"},
				{InlineData: &geminiInlineData{MimeType: "image/jpeg", Data: base64.StdEncoding.EncodeToString(result)}},
			}},
		}}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client, err := NewClient(Options{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	out, err := client.Retouch(context.Background(), testSource(), domain.DefaultRetouchOptions())
	if err != nil {
		t.Fatalf("Retouch returned error: %v", err)
	}
	if out.MIME != "image/jpeg" {
		t.Fatalf("MIME = %q, want image/jpeg", out.MIME)
	}
	if string(out.Data) != string(result) {
		t.Fatalf("Data mismatch")
	}
}

func TestRetouchMapsAPIErrorToGenerationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": 400, "message": "bad image"}})
	}))
	defer server.Close()

	client, err := NewClient(Options{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = client.Retouch(context.Background(), testSource(), domain.DefaultRetouchOptions())
	var genErr *gateway.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("error %T is not a GenerationError: %v", err, err)
	}
	if !strings.Contains(genErr.Reason, "bad image") {
		t.Fatalf("reason %q should carry the provider message", genErr.Reason)
	}
}

func TestRetouchFailsWhenNoImageReturned(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := geminiGenerateContentResponse{Candidates: []geminiCandidate{{
			Content: geminiContent{Parts: []geminiPart{{Text: "sorry, text only"}}},
		}}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client, err := NewClient(Options{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if _, err := client.Retouch(context.Background(), testSource(), domain.DefaultRetouchOptions()); err == nil {
		t.Fatalf("expected error when no inline image is returned")
	}
}

func TestRetouchSyntheticFallbackWithoutAPIKey(t *testing.T) {
	client, err := NewClient(Options{})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	out, err := client.Retouch(context.Background(), testSource(), domain.DefaultRetouchOptions())
	if err != nil {
		t.Fatalf("Retouch returned error: %v", err)
	}
	if out.MIME != "image/png" || len(out.Data) == 0 {
		t.Fatalf("synthetic retouch should return png bytes, got %q with %d bytes", out.MIME, len(out.Data))
	}

	again, err := client.Retouch(context.Background(), testSource(), domain.DefaultRetouchOptions())
	if err != nil {
		t.Fatalf("second Retouch returned error: %v", err)
	}
	if string(out.Data) != string(again.Data) {
		t.Fatalf("synthetic retouch should be deterministic")
	}
}

func TestAnimatePollsOperationUntilDone(t *testing.T) {
	var polls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, ":predictLongRunning"):
			_ = json.NewEncoder(w).Encode(veoOperation{Name: "operations/op-123"})
		case strings.Contains(r.URL.Path, "operations/op-123"):
			if polls.Add(1) < 2 {
				_ = json.NewEncoder(w).Encode(veoOperation{Name: "operations/op-123"})
				return
			}
			done := veoOperation{Name: "operations/op-123", Done: true, Response: &veoOperationResponse{}}
			done.Response.GenerateVideoResponse.GeneratedSamples = []veoSample{
				{Video: veoVideo{URI: "https://files.example.com/video.mp4", MimeType: "video/mp4"}},
			}
			_ = json.NewEncoder(w).Encode(done)
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client, err := NewClient(Options{APIKey: "test-key", BaseURL: server.URL, PollInterval: time.Millisecond})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	video, err := client.Animate(context.Background(), testSource(), domain.AspectWide)
	if err != nil {
		t.Fatalf("Animate returned error: %v", err)
	}
	if polls.Load() < 2 {
		t.Fatalf("expected at least two polls, got %d", polls.Load())
	}
	if !strings.Contains(video.URL, "key=test-key") {
		t.Fatalf("video URL %q should be signed with the api key", video.URL)
	}
	if video.MIME != "video/mp4" {
		t.Fatalf("MIME = %q, want video/mp4", video.MIME)
	}
}

func TestAnimateSurfacesOperationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		op := veoOperation{Name: "operations/op-err", Done: true, Error: &veoOperationError{Code: 8, Message: "quota exhausted"}}
		_ = json.NewEncoder(w).Encode(op)
	}))
	defer server.Close()

	client, err := NewClient(Options{APIKey: "test-key", BaseURL: server.URL, PollInterval: time.Millisecond})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	_, err = client.Animate(context.Background(), testSource(), domain.AspectWide)
	if err == nil || !strings.Contains(err.Error(), "quota exhausted") {
		t.Fatalf("Animate error = %v, want operation error surfaced", err)
	}
}

func TestAnimateRespectsContextDuringPolling(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(veoOperation{Name: "operations/op-slow"})
	}))
	defer server.Close()

	client, err := NewClient(Options{APIKey: "test-key", BaseURL: server.URL, PollInterval: time.Hour})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := client.Animate(ctx, testSource(), domain.AspectWide); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Animate error = %v, want context deadline", err)
	}
}

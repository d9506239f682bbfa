package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"luxelens/internal/credits"
	"luxelens/internal/domain"
	"luxelens/internal/engine"
	"luxelens/internal/gateway"
)

type memStore struct {
	value   int
	present bool
}

func (m *memStore) Load(context.Context) (int, bool, error) { return m.value, m.present, nil }
func (m *memStore) Save(_ context.Context, remaining int) error {
	m.value, m.present = remaining, true
	return nil
}

type echoRetoucher struct{}

func (echoRetoucher) Retouch(_ context.Context, src domain.ImagePayload, _ domain.RetouchOptions) (domain.ImagePayload, error) {
	return domain.ImagePayload{Data: src.Data, MIME: "image/png"}, nil
}

type fakeAnimator struct {
	video *gateway.Video
	err   error
}

func (f fakeAnimator) Animate(context.Context, domain.ImagePayload, domain.AspectRatio) (*gateway.Video, error) {
	return f.video, f.err
}

func newTestApp(t *testing.T, balance int) *App {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	ledger, err := credits.Open(ctx, &memStore{value: balance, present: true}, zerolog.Nop())
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	eng := engine.New(ctx, engine.Options{
		Ledger:    ledger,
		Retoucher: echoRetoucher{},
		Logger:    zerolog.Nop(),
		StepDelay: 0,
	})
	return &App{Engine: eng, Ledger: ledger, Logger: zerolog.Nop()}
}

func submitBody(t *testing.T, images ...string) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(batchSubmitRequest{Images: images})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	return bytes.NewBuffer(body)
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) batchView {
	t.Helper()
	var view batchView
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return view
}

const tinyPNG = "data:image/png;base64,aWJteA=="

func TestBatchSubmitAndPollToCompletion(t *testing.T) {
	app := newTestApp(t, 3)

	rec := httptest.NewRecorder()
	app.BatchSubmit(rec, httptest.NewRequest(http.MethodPost, "/v1/batch", submitBody(t, tinyPNG, tinyPNG)))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("submit status = %d, body %s", rec.Code, rec.Body.String())
	}
	view := decodeView(t, rec)
	if view.Admitted != 2 || view.Submitted != 2 {
		t.Fatalf("admitted/submitted = %d/%d", view.Admitted, view.Submitted)
	}
	if view.Mode != string(domain.ModeBatch) {
		t.Fatalf("mode = %q, want batch", view.Mode)
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		rec = httptest.NewRecorder()
		app.BatchCurrent(rec, httptest.NewRequest(http.MethodGet, "/v1/batch", nil))
		view = decodeView(t, rec)
		if view.Status == string(domain.BatchStatusCompleted) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("batch never completed, last status %q", view.Status)
		}
		time.Sleep(2 * time.Millisecond)
	}

	for i, item := range view.Items {
		if item.Status != string(domain.ItemStatusCompleted) {
			t.Fatalf("item %d status = %q", i, item.Status)
		}
		if !strings.HasPrefix(item.ResultDataURL, "data:image/png;base64,") {
			t.Fatalf("item %d result url = %q", i, item.ResultDataURL)
		}
	}
	if view.RemainingCredits != 1 {
		t.Fatalf("remaining credits = %d, want 1", view.RemainingCredits)
	}
}

func TestBatchSubmitRejectsBadDataURL(t *testing.T) {
	app := newTestApp(t, 3)
	rec := httptest.NewRecorder()
	app.BatchSubmit(rec, httptest.NewRequest(http.MethodPost, "/v1/batch", submitBody(t, "http://not-a-data-url")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestBatchSubmitWithoutCredits(t *testing.T) {
	app := newTestApp(t, 0)
	rec := httptest.NewRecorder()
	app.BatchSubmit(rec, httptest.NewRequest(http.MethodPost, "/v1/batch", submitBody(t, tinyPNG)))
	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("status = %d, want 402", rec.Code)
	}
}

func TestBatchSubmitCapsUploadCount(t *testing.T) {
	app := newTestApp(t, 3)
	images := make([]string, maxBatchUpload+1)
	for i := range images {
		images[i] = tinyPNG
	}
	rec := httptest.NewRecorder()
	app.BatchSubmit(rec, httptest.NewRequest(http.MethodPost, "/v1/batch", submitBody(t, images...)))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
}

func TestBatchResetReturnsIdle(t *testing.T) {
	app := newTestApp(t, 3)
	rec := httptest.NewRecorder()
	app.BatchReset(rec, httptest.NewRequest(http.MethodPost, "/v1/batch/reset", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if view := decodeView(t, rec); view.Status != string(domain.BatchStatusIdle) {
		t.Fatalf("status = %q, want idle", view.Status)
	}
}

func TestOptionsSetNormalizesUnknownValues(t *testing.T) {
	app := newTestApp(t, 3)
	body, _ := json.Marshal(map[string]string{
		"metal_color": "platinum",
		"background":  "marble",
	})
	rec := httptest.NewRecorder()
	app.OptionsSet(rec, httptest.NewRequest(http.MethodPut, "/v1/options", bytes.NewBuffer(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp optionsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Current.MetalColor != domain.MetalSilver {
		t.Fatalf("unknown metal not normalized: %q", resp.Current.MetalColor)
	}
	if resp.Current.Background != domain.BackgroundMarble {
		t.Fatalf("background = %q, want marble", resp.Current.Background)
	}
	if len(resp.Catalog["stone_color"]) != 6 {
		t.Fatalf("stone catalog has %d entries", len(resp.Catalog["stone_color"]))
	}
}

func TestCreditsEndpoint(t *testing.T) {
	app := newTestApp(t, 2)
	rec := httptest.NewRecorder()
	app.Credits(rec, httptest.NewRequest(http.MethodGet, "/v1/credits", nil))
	var resp map[string]int
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["remaining"] != 2 {
		t.Fatalf("remaining = %d, want 2", resp["remaining"])
	}
}

func TestVideoGenerate(t *testing.T) {
	app := newTestApp(t, 3)
	app.Animator = fakeAnimator{video: &gateway.Video{URL: "https://cdn.example.com/clip.mp4", MIME: "video/mp4", Length: 8}}

	body, _ := json.Marshal(videoGenerateRequest{Image: tinyPNG, AspectRatio: domain.AspectStory})
	rec := httptest.NewRecorder()
	app.VideoGenerate(rec, httptest.NewRequest(http.MethodPost, "/v1/videos", bytes.NewBuffer(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp videoResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.URL != "https://cdn.example.com/clip.mp4" || resp.MIME != "video/mp4" {
		t.Fatalf("video response = %+v", resp)
	}
	// Video generation never touches the ledger.
	if app.Ledger.Remaining() != 3 {
		t.Fatalf("credits consumed by video flow: %d", app.Ledger.Remaining())
	}
}

func TestVideoGenerateSurfacesProviderFailure(t *testing.T) {
	app := newTestApp(t, 3)
	app.Animator = fakeAnimator{err: gateway.Failure("operation failed: %s", "quota exceeded")}

	body, _ := json.Marshal(videoGenerateRequest{Image: tinyPNG})
	rec := httptest.NewRecorder()
	app.VideoGenerate(rec, httptest.NewRequest(http.MethodPost, "/v1/videos", bytes.NewBuffer(body)))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "quota exceeded") {
		t.Fatalf("body %s missing provider reason", rec.Body.String())
	}
}

func TestResultDownloadValidatesIDs(t *testing.T) {
	app := newTestApp(t, 3)
	rec := httptest.NewRecorder()
	app.ResultDownload(rec, httptest.NewRequest(http.MethodGet, "/v1/results/x/y", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 when archiving disabled", rec.Code)
	}
}

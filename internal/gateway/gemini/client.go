// Package gemini implements the generation gateway against the Gemini API.
// When no API key is configured the client falls back to deterministic
// synthetic assets so the engine, the HTTP surface, and the studio TUI stay
// fully operational in local and CI environments.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"luxelens/internal/domain"
	"luxelens/internal/gateway"
	"luxelens/internal/infra"
)

const (
	defaultBaseURL      = "https://generativelanguage.googleapis.com/v1beta"
	defaultImageModel   = "gemini-2.5-flash-image"
	defaultVideoModel   = "veo-3.1-fast-generate-preview"
	defaultPollInterval = 10 * time.Second
)

// Options controls how the Gemini gateway client is configured.
type Options struct {
	APIKey       string
	BaseURL      string
	ImageModel   string
	VideoModel   string
	HTTPClient   *http.Client
	Logger       *infra.Logger
	PollInterval time.Duration
}

// Client talks to the Gemini generateContent and Veo long-running video
// endpoints. It implements gateway.Retoucher and gateway.Animator.
type Client struct {
	apiKey       string
	baseURL      string
	imageModel   string
	videoModel   string
	httpClient   *http.Client
	logger       *infra.Logger
	pollInterval time.Duration
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts,omitempty"`
}

type geminiImageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type geminiGenerationConfig struct {
	ImageConfig *geminiImageConfig `json:"imageConfig,omitempty"`
}

type geminiGenerateContentRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiGenerateContentResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type veoImage struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded,omitempty"`
	MimeType           string `json:"mimeType,omitempty"`
}

type veoInstance struct {
	Prompt string    `json:"prompt"`
	Image  *veoImage `json:"image,omitempty"`
}

type veoParameters struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
	Resolution  string `json:"resolution,omitempty"`
	SampleCount int    `json:"sampleCount,omitempty"`
}

type veoGenerateRequest struct {
	Instances  []veoInstance `json:"instances"`
	Parameters veoParameters `json:"parameters"`
}

type veoVideo struct {
	URI      string `json:"uri,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

type veoSample struct {
	Video veoVideo `json:"video"`
}

type veoOperationError struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

type veoOperationResponse struct {
	GenerateVideoResponse struct {
		GeneratedSamples []veoSample `json:"generatedSamples"`
	} `json:"generateVideoResponse"`
}

type veoOperation struct {
	Name     string                `json:"name"`
	Done     bool                  `json:"done"`
	Error    *veoOperationError    `json:"error,omitempty"`
	Response *veoOperationResponse `json:"response,omitempty"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// NewClient constructs a Gemini client with sane defaults. Callers may
// provide a nil HTTP client; one with a generous timeout will be created.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	imageModel := opts.ImageModel
	if imageModel == "" {
		imageModel = defaultImageModel
	}
	videoModel := opts.VideoModel
	if videoModel == "" {
		videoModel = defaultVideoModel
	}
	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}

	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}

	return &Client{
		apiKey:       strings.TrimSpace(opts.APIKey),
		baseURL:      baseURL,
		imageModel:   imageModel,
		videoModel:   videoModel,
		httpClient:   httpClient,
		logger:       logger,
		pollInterval: pollInterval,
	}, nil
}

// Retouch sends the source image with a composed catalog brief and returns
// the first image the model produced.
func (c *Client) Retouch(ctx context.Context, src domain.ImagePayload, opts domain.RetouchOptions) (domain.ImagePayload, error) {
	if err := ctx.Err(); err != nil {
		return domain.ImagePayload{}, err
	}
	opts.Normalize()

	if c.apiKey == "" {
		return c.syntheticRetouch(src, opts), nil
	}

	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{InlineData: &geminiInlineData{
					MimeType: src.MIME,
					Data:     base64.StdEncoding.EncodeToString(src.Data),
				}},
				{Text: BuildRetouchInstruction(opts)},
			},
		}},
		GenerationConfig: &geminiGenerationConfig{
			ImageConfig: &geminiImageConfig{AspectRatio: string(opts.AspectRatio)},
		},
	}

	var response geminiGenerateContentResponse
	path := fmt.Sprintf("/models/%s:generateContent", url.PathEscape(c.imageModel))
	if err := c.invoke(ctx, http.MethodPost, path, payload, &response); err != nil {
		return domain.ImagePayload{}, gateway.Failure("retouch request failed: %v", err)
	}

	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil || len(data) == 0 {
				continue
			}
			mime := part.InlineData.MimeType
			if mime == "" {
				mime = "image/png"
			}
			c.logger.Debug().
				Str("model", c.imageModel).
				Int("bytes", len(data)).
				Msg("gemini: retouched image received")
			return domain.ImagePayload{Data: data, MIME: mime}, nil
		}
	}
	return domain.ImagePayload{}, gateway.Failure("model returned no retouched image")
}

// Animate starts a long-running video generation and polls the operation
// handle until it reaches a terminal state.
func (c *Client) Animate(ctx context.Context, src domain.ImagePayload, aspect domain.AspectRatio) (*gateway.Video, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if aspect != domain.AspectWide && aspect != domain.AspectStory {
		aspect = domain.AspectWide
	}

	if c.apiKey == "" {
		return c.syntheticVideo(src), nil
	}

	payload := veoGenerateRequest{
		Instances: []veoInstance{{
			Prompt: videoInstruction,
			Image: &veoImage{
				BytesBase64Encoded: base64.StdEncoding.EncodeToString(src.Data),
				MimeType:           src.MIME,
			},
		}},
		Parameters: veoParameters{
			AspectRatio: string(aspect),
			Resolution:  "720p",
			SampleCount: 1,
		},
	}

	var op veoOperation
	path := fmt.Sprintf("/models/%s:predictLongRunning", url.PathEscape(c.videoModel))
	if err := c.invoke(ctx, http.MethodPost, path, payload, &op); err != nil {
		return nil, gateway.Failure("video request failed: %v", err)
	}
	if op.Name == "" {
		return nil, gateway.Failure("video operation handle missing")
	}

	for !op.Done {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.pollInterval):
		}
		var next veoOperation
		if err := c.invoke(ctx, http.MethodGet, "/"+strings.TrimLeft(op.Name, "/"), nil, &next); err != nil {
			return nil, gateway.Failure("video operation poll failed: %v", err)
		}
		next.Name = op.Name
		op = next
	}

	if op.Error != nil {
		return nil, gateway.Failure("video generation failed: %s", op.Error.Message)
	}
	if op.Response == nil || len(op.Response.GenerateVideoResponse.GeneratedSamples) == 0 {
		return nil, gateway.Failure("video generation returned no samples")
	}
	sample := op.Response.GenerateVideoResponse.GeneratedSamples[0]
	if sample.Video.URI == "" {
		return nil, gateway.Failure("video generation returned no download uri")
	}

	mime := sample.Video.MimeType
	if mime == "" {
		mime = "video/mp4"
	}
	c.logger.Info().Str("model", c.videoModel).Msg("gemini: video generation completed")
	return &gateway.Video{URL: c.signedURL(sample.Video.URI), MIME: mime}, nil
}

// signedURL appends the API key so the returned link is directly fetchable,
// the way the download endpoint expects it.
func (c *Client) signedURL(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil {
		return uri
	}
	q := parsed.Query()
	q.Set("key", c.apiKey)
	parsed.RawQuery = q.Encode()
	return parsed.String()
}

func (c *Client) invoke(ctx context.Context, method, path string, payload, out any) error {
	endpoint := c.baseURL + path
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	q := req.URL.Query()
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	req.URL.RawQuery = q.Encode()
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr geminiErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		data, _ := io.ReadAll(resp.Body)
		if len(data) > 0 {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		}
		return fmt.Errorf("gemini status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gemini response: %w", err)
	}
	return nil
}

var (
	_ gateway.Retoucher = (*Client)(nil)
	_ gateway.Animator  = (*Client)(nil)
)

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"luxelens/internal/domain"
	"luxelens/internal/gateway"
	"luxelens/internal/notify"
)

type videoGenerateRequest struct {
	Image       string             `json:"image"`
	AspectRatio domain.AspectRatio `json:"aspect_ratio"`
}

type videoResponse struct {
	URL    string `json:"url"`
	MIME   string `json:"mime"`
	Length int    `json:"length_seconds,omitempty"`
}

// VideoGenerate turns a single photograph into a short cinematic clip. The
// call blocks while the upstream operation is polled, so the route needs the
// long write timeout configured on the server. Video generation does not
// consume credits.
func (a *App) VideoGenerate(w http.ResponseWriter, r *http.Request) {
	if a.Animator == nil {
		a.error(w, http.StatusNotImplemented, "unavailable", "video generation is not configured")
		return
	}
	var req videoGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	img, err := domain.DecodeDataURL(req.Image)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_image", err.Error())
		return
	}

	video, err := a.Animator.Animate(r.Context(), img, req.AspectRatio)
	if err != nil {
		var genErr *gateway.GenerationError
		if errors.As(err, &genErr) {
			a.error(w, http.StatusBadGateway, "generation_failed", genErr.Reason)
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "video generation failed")
		return
	}

	if a.Notifier != nil {
		evt := notify.Event{
			Kind:       notify.EventVideoCompleted,
			RunID:      uuid.NewString(),
			OccurredAt: time.Now(),
		}
		if nerr := a.Notifier.GenerationCompleted(r.Context(), evt); nerr != nil {
			a.Logger.Warn().Err(nerr).Msg("handlers: video notification failed")
		}
	}

	a.json(w, http.StatusOK, videoResponse{URL: video.URL, MIME: video.MIME, Length: video.Length})
}

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"luxelens/internal/domain"
	"luxelens/internal/engine"
	"luxelens/pkg/zip"
)

const maxBatchUpload = 20

type batchSubmitRequest struct {
	Images []string    `json:"images"`
	Mode   domain.Mode `json:"mode,omitempty"`
}

type itemView struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	Error         string `json:"error,omitempty"`
	ResultDataURL string `json:"result_data_url,omitempty"`
}

type batchView struct {
	RunID            string                `json:"run_id,omitempty"`
	Status           string                `json:"status"`
	Cursor           int                   `json:"cursor"`
	Mode             string                `json:"mode"`
	Items            []itemView            `json:"items"`
	Submitted        int                   `json:"submitted,omitempty"`
	Admitted         int                   `json:"admitted,omitempty"`
	RemainingCredits int                   `json:"remaining_credits"`
	Options          domain.RetouchOptions `json:"options"`
}

func snapshotView(snap engine.Snapshot) batchView {
	items := make([]itemView, len(snap.Batch.Items))
	for i, item := range snap.Batch.Items {
		v := itemView{ID: item.ID, Status: string(item.Status), Error: item.ErrorDetail}
		if item.Result != nil {
			v.ResultDataURL = item.Result.DataURL()
		}
		items[i] = v
	}
	return batchView{
		RunID:            snap.Batch.RunID,
		Status:           string(snap.Batch.Status),
		Cursor:           snap.Batch.Cursor,
		Mode:             string(snap.Mode),
		Items:            items,
		RemainingCredits: snap.RemainingCredits,
		Options:          snap.Options,
	}
}

// BatchSubmit admits uploaded images into a new run. Images arrive as base64
// data URLs, the format the uploader produces.
func (a *App) BatchSubmit(w http.ResponseWriter, r *http.Request) {
	var req batchSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if len(req.Images) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "no images submitted")
		return
	}
	if len(req.Images) > maxBatchUpload {
		a.error(w, http.StatusRequestEntityTooLarge, "too_many_images",
			fmt.Sprintf("at most %d images per submission", maxBatchUpload))
		return
	}

	images := make([]domain.ImagePayload, 0, len(req.Images))
	for i, raw := range req.Images {
		img, err := domain.DecodeDataURL(raw)
		if err != nil {
			a.error(w, http.StatusBadRequest, "bad_image", fmt.Sprintf("image %d: %v", i, err))
			return
		}
		images = append(images, img)
	}

	if req.Mode != "" {
		a.Engine.SetMode(req.Mode)
	}

	snap, err := a.Engine.Submit(images)
	switch {
	case errors.Is(err, domain.ErrNoCredits):
		a.error(w, http.StatusPaymentRequired, "no_credits", "no credits remaining")
		return
	case errors.Is(err, domain.ErrBatchActive):
		a.error(w, http.StatusConflict, "batch_active", "a batch is already running")
		return
	case errors.Is(err, domain.ErrNothingSubmitted):
		a.error(w, http.StatusBadRequest, "bad_request", "no images submitted")
		return
	case err != nil:
		a.error(w, http.StatusInternalServerError, "internal", "failed to start batch")
		return
	}

	view := snapshotView(snap)
	view.Submitted = len(req.Images)
	view.Admitted = len(snap.Batch.Items)
	a.json(w, http.StatusAccepted, view)
}

// BatchCurrent returns the live snapshot; clients poll this while a run is
// in flight.
func (a *App) BatchCurrent(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, snapshotView(a.Engine.Snapshot()))
}

// BatchReset discards the current run and returns the studio to idle.
func (a *App) BatchReset(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, snapshotView(a.Engine.Reset()))
}

// BatchArchive bundles every completed result of the current run into a zip
// download.
func (a *App) BatchArchive(w http.ResponseWriter, r *http.Request) {
	snap := a.Engine.Snapshot()
	var entries []zip.Entry
	for i, item := range snap.Batch.Items {
		if item.Status != domain.ItemStatusCompleted || item.Result == nil {
			continue
		}
		ext := ".png"
		if item.Result.MIME == "image/jpeg" {
			ext = ".jpg"
		}
		entries = append(entries, zip.Entry{
			Filename: fmt.Sprintf("retouched-%02d%s", i+1, ext),
			Data:     item.Result.Data,
		})
	}
	if len(entries) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "no completed results to download")
		return
	}
	bundle, err := zip.Bundle(entries)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to build archive")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="luxelens-batch.zip"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(bundle)
}

package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ResultDownload serves an archived result file by run and item id.
func (a *App) ResultDownload(w http.ResponseWriter, r *http.Request) {
	if a.Archive == nil {
		a.error(w, http.StatusNotFound, "not_found", "result archiving is disabled")
		return
	}
	runID := chi.URLParam(r, "run_id")
	itemID := chi.URLParam(r, "item_id")
	if _, err := uuid.Parse(runID); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "run and item ids must be uuids")
		return
	}
	if _, err := uuid.Parse(itemID); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "run and item ids must be uuids")
		return
	}

	dir := filepath.Join(a.Archive.BasePath(), "results", runID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		a.error(w, http.StatusNotFound, "not_found", "no results for this run")
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.Contains(name, ".thumb.") {
			continue
		}
		if strings.TrimSuffix(name, filepath.Ext(name)) == itemID {
			http.ServeFile(w, r, filepath.Join(dir, name))
			return
		}
	}
	a.error(w, http.StatusNotFound, "not_found", "result not found")
}

// Package handlers exposes the studio engine over a small JSON API.
package handlers

import (
	"encoding/json"
	"net/http"

	"luxelens/internal/credits"
	"luxelens/internal/engine"
	"luxelens/internal/gateway"
	"luxelens/internal/infra"
	"luxelens/internal/notify"
	"luxelens/internal/storage"
)

// App bundles the wired dependencies the handlers need.
type App struct {
	Engine   *engine.Engine
	Ledger   *credits.Ledger
	Animator gateway.Animator
	Notifier notify.Notifier
	Archive  *storage.Archive
	Logger   infra.Logger
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, message string) {
	a.json(w, status, map[string]errorResponse{"error": {Code: code, Message: message}})
}

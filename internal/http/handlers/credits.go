package handlers

import "net/http"

// Credits returns the remaining balance.
func (a *App) Credits(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]int{"remaining": a.Ledger.Remaining()})
}

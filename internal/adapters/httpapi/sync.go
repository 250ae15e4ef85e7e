package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xavion03/openings-tierlist/internal/app"
	"github.com/xavion03/openings-tierlist/internal/httpjson"
)

type SyncHandler struct {
	runner *app.SyncRunner
}

func NewSyncHandler(runner *app.SyncRunner) *SyncHandler {
	return &SyncHandler{runner: runner}
}

func (h *SyncHandler) Routes(r chi.Router) {
	r.Post("/sync", h.trigger)
	r.Get("/sync/status", h.status)
}

// trigger starts a background pass; progress flows over /events. 409 when
// a pass is already in flight.
func (h *SyncHandler) trigger(w http.ResponseWriter, r *http.Request) {
	if !h.runner.Trigger() {
		httpjson.WriteError(w, http.StatusConflict, "sync already running")
		return
	}
	httpjson.Write(w, http.StatusAccepted, map[string]string{"status": "started"})
}

func (h *SyncHandler) status(w http.ResponseWriter, r *http.Request) {
	running, last := h.runner.Status()
	resp := map[string]any{"running": running}
	if last != nil {
		resp["last"] = last
	}
	httpjson.Write(w, http.StatusOK, resp)
}

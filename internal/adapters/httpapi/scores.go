package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/xavion03/openings-tierlist/internal/app"
	"github.com/xavion03/openings-tierlist/internal/domain"
	"github.com/xavion03/openings-tierlist/internal/httpjson"
)

type ScoresHandler struct {
	scores *app.ScoreService
}

func NewScoresHandler(scores *app.ScoreService) *ScoresHandler {
	return &ScoresHandler{scores: scores}
}

func (h *ScoresHandler) Routes(r chi.Router) {
	r.Route("/scores", func(r chi.Router) {
		r.Post("/", h.submit)
		r.Get("/", h.list)
		r.Get("/exists", h.exists)
	})
	r.Get("/tiers/{tier}", h.byTier)
	r.Post("/admin/reset-scores", h.reset)
}

func (h *ScoresHandler) submit(w http.ResponseWriter, r *http.Request) {
	var req app.SubmitScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid json")
		return
	}

	entry, err := h.scores.Submit(r.Context(), req)
	if err != nil {
		switch app.ErrorCode(err) {
		case app.CodeConflict:
			httpjson.WriteError(w, http.StatusConflict, "already scored")
		case app.CodeInvalidParams:
			httpjson.WriteError(w, http.StatusBadRequest, err.Error())
		default:
			if errors.Is(err, app.ErrNotFound) {
				httpjson.WriteError(w, http.StatusNotFound, "unknown anime")
				return
			}
			httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	httpjson.Write(w, http.StatusCreated, entry)
}

func (h *ScoresHandler) list(w http.ResponseWriter, r *http.Request) {
	entries, err := h.scores.All(r.Context())
	if err != nil {
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpjson.Write(w, http.StatusOK, entries)
}

func (h *ScoresHandler) exists(w http.ResponseWriter, r *http.Request) {
	title := strings.TrimSpace(r.URL.Query().Get("title"))
	if title == "" {
		httpjson.WriteError(w, http.StatusBadRequest, "missing title")
		return
	}
	found, err := h.scores.Exists(r.Context(), title)
	if err != nil {
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]bool{"exists": found})
}

func (h *ScoresHandler) byTier(w http.ResponseWriter, r *http.Request) {
	tier, err := domain.ParseTier(chi.URLParam(r, "tier"))
	if err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "unknown tier")
		return
	}
	entries, err := h.scores.ByTier(r.Context(), tier)
	if err != nil {
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpjson.Write(w, http.StatusOK, entries)
}

func (h *ScoresHandler) reset(w http.ResponseWriter, r *http.Request) {
	if err := h.scores.Reset(r.Context()); err != nil {
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpjson.Write(w, http.StatusOK, map[string]string{"status": "reset"})
}

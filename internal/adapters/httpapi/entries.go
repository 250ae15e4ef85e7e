package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/xavion03/openings-tierlist/internal/app"
	"github.com/xavion03/openings-tierlist/internal/domain"
	"github.com/xavion03/openings-tierlist/internal/httpjson"
)

type EntriesHandler struct {
	library *app.LibraryService
}

func NewEntriesHandler(library *app.LibraryService) *EntriesHandler {
	return &EntriesHandler{library: library}
}

func (h *EntriesHandler) Routes(r chi.Router) {
	r.Get("/watchlist", h.watchlist)
	r.Route("/entries", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Get("/{id}/image", h.image)
		r.Get("/{id}/unscored-themes", h.unscoredThemes)
	})
}

// watchlist serves the raw synced list, items not yet enriched included.
func (h *EntriesHandler) watchlist(w http.ResponseWriter, r *http.Request) {
	entries, err := h.library.Watchlist(r.Context())
	if err != nil {
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []domain.WatchlistEntry{}
	}
	httpjson.Write(w, http.StatusOK, entries)
}

func (h *EntriesHandler) list(w http.ResponseWriter, r *http.Request) {
	entries, err := h.library.Entries(r.Context())
	if err != nil {
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpjson.Write(w, http.StatusOK, entries)
}

func (h *EntriesHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := entryID(r)
	if err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	entry, err := h.library.Entry(r.Context(), id)
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			httpjson.WriteError(w, http.StatusNotFound, "not found")
			return
		}
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpjson.Write(w, http.StatusOK, entry)
}

func (h *EntriesHandler) image(w http.ResponseWriter, r *http.Request) {
	id, err := entryID(r)
	if err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	path, err := h.library.ImagePath(id)
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			httpjson.WriteError(w, http.StatusNotFound, "not found")
			return
		}
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	http.ServeFile(w, r, path)
}

func (h *EntriesHandler) unscoredThemes(w http.ResponseWriter, r *http.Request) {
	id, err := entryID(r)
	if err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	themes, err := h.library.UnscoredThemes(r.Context(), id)
	if err != nil {
		if errors.Is(err, app.ErrNotFound) {
			httpjson.WriteError(w, http.StatusNotFound, "not found")
			return
		}
		httpjson.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httpjson.Write(w, http.StatusOK, themes)
}

func entryID(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "id"))
}

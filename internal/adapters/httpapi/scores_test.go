package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/xavion03/openings-tierlist/internal/adapters/diskcache"
	"github.com/xavion03/openings-tierlist/internal/adapters/sqlite"
	"github.com/xavion03/openings-tierlist/internal/app"
	"github.com/xavion03/openings-tierlist/internal/domain"
)

func newScoresRouter(t *testing.T) chi.Router {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	dataDir := t.TempDir()
	metadata := diskcache.NewMetadataStore(dataDir)
	if err := metadata.Save(map[int]domain.AnimeDetail{
		1: {
			ID:         1,
			Title:      "Cowboy Bebop",
			Mean:       8.75,
			Rank:       44,
			Popularity: 43,
			Genres:     []string{"Action", "Sci-Fi"},
			StartSeason: domain.Season{
				Year: 1998, Season: "spring",
			},
			OpeningThemes: []domain.Theme{{ID: 1, Text: `#1: "Tank!" by The Seatbelts (eps 1-25)`}},
		},
	}); err != nil {
		t.Fatalf("seed metadata: %v", err)
	}

	repo := sqlite.NewScoresRepository(db.SQL)
	library := app.NewLibraryService(zerolog.Nop(), diskcache.NewSnapshotStore(dataDir), metadata, diskcache.NewImageStore(dataDir), repo)
	svc := app.NewScoreService(zerolog.Nop(), repo, library)

	r := chi.NewRouter()
	NewScoresHandler(svc).Routes(r)
	return r
}

func TestScoresHandler_SubmitThenConflict(t *testing.T) {
	r := newScoresRouter(t)

	body := []byte(`{"animeId":1,"songTitle":"#1: \"Tank!\" by The Seatbelts (eps 1-25)","scores":{"visual":10,"music":10,"narrative":9,"memorability":10}}`)
	req := httptest.NewRequest(http.MethodPost, "/scores", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status: want %d, got %d (%s)", http.StatusCreated, rr.Code, rr.Body.String())
	}

	var entry domain.TierEntry
	if err := json.Unmarshal(rr.Body.Bytes(), &entry); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if entry.SongTitle != `"Tank!" by The Seatbelts` {
		t.Fatalf("title not cleaned: %q", entry.SongTitle)
	}
	if entry.Tier != domain.TierS {
		t.Fatalf("want tier S, got %s", entry.Tier)
	}
	if entry.StartSeason != "spring, 1998" || entry.Genres != "Action, Sci-Fi" {
		t.Fatalf("denormalized fields wrong: %+v", entry)
	}

	// Rejouer la même soumission → 409.
	req = httptest.NewRequest(http.MethodPost, "/scores", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusConflict {
		t.Fatalf("duplicate: want %d, got %d", http.StatusConflict, rr.Code)
	}
}

func TestScoresHandler_TierListing(t *testing.T) {
	r := newScoresRouter(t)

	body := []byte(`{"animeId":1,"songTitle":"Tank!","scores":{"visual":6,"music":6,"narrative":6,"memorability":6}}`)
	req := httptest.NewRequest(http.MethodPost, "/scores", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("submit: want %d, got %d", http.StatusCreated, rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/tiers/B", nil)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("tier list: want %d, got %d", http.StatusOK, rr.Code)
	}
	var entries []domain.TierEntry
	if err := json.Unmarshal(rr.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 1 || entries[0].Tier != domain.TierB {
		t.Fatalf("unexpected tier rows: %+v", entries)
	}

	req = httptest.NewRequest(http.MethodGet, "/tiers/Z", nil)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unknown tier: want %d, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestScoresHandler_ExistsProbe(t *testing.T) {
	r := newScoresRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/scores/exists?title=Tank%21", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("exists: want %d, got %d", http.StatusOK, rr.Code)
	}
	var out map[string]bool
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out["exists"] {
		t.Fatalf("nothing scored yet, exists should be false")
	}
}

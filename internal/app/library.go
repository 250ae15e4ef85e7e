package app

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/xavion03/openings-tierlist/internal/adapters/diskcache"
	"github.com/xavion03/openings-tierlist/internal/domain"
	"github.com/xavion03/openings-tierlist/internal/ports"
)

// reThemeNoise retire le préfixe "#N: " et les annotations entre
// parenthèses (artiste, épisodes) des titres d'openings.
var reThemeNoise = regexp.MustCompile(`#\d+: |\([^()]*\)`)

// CleanThemeTitle normalizes a raw opening title for display and scoring.
func CleanThemeTitle(raw string) string {
	return strings.TrimSpace(reThemeNoise.ReplaceAllString(raw, ""))
}

// LibraryEntry is what the UI grid renders: the cached detail plus whether
// local artwork exists.
type LibraryEntry struct {
	domain.AnimeDetail
	HasImage bool `json:"hasImage"`
}

// LibraryService is the read side over the metadata and image caches.
// It never talks to the remote.
type LibraryService struct {
	logger    zerolog.Logger
	snapshots *diskcache.SnapshotStore
	metadata  *diskcache.MetadataStore
	images    *diskcache.ImageStore
	scores    ports.ScoreRepository
}

func NewLibraryService(logger zerolog.Logger, snapshots *diskcache.SnapshotStore, metadata *diskcache.MetadataStore, images *diskcache.ImageStore, scores ports.ScoreRepository) *LibraryService {
	return &LibraryService{logger: logger, snapshots: snapshots, metadata: metadata, images: images, scores: scores}
}

// Watchlist returns the raw synced list, which includes items not yet
// enriched. A corrupt snapshot reads as empty, same policy as the
// metadata cache.
func (s *LibraryService) Watchlist(ctx context.Context) ([]domain.WatchlistEntry, error) {
	snap, err := s.snapshots.Load()
	if err != nil {
		if errors.Is(err, diskcache.ErrCorrupt) {
			s.logger.Warn().Str("code", CodeCacheCorrupt).Msg("watchlist snapshot corrupt, serving empty list")
			return nil, nil
		}
		return nil, err
	}
	return snap.Entries, nil
}

// Entries lists every cached item, title-sorted, with theme titles cleaned.
func (s *LibraryService) Entries(ctx context.Context) ([]LibraryEntry, error) {
	details, err := s.load()
	if err != nil {
		return nil, err
	}

	out := make([]LibraryEntry, 0, len(details))
	for id, d := range details {
		out = append(out, LibraryEntry{AnimeDetail: cleanThemes(d), HasImage: s.images.Has(id)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

// Entry returns one cached item. ErrNotFound is an expected outcome the
// caller handles as "skip", never as fatal.
func (s *LibraryService) Entry(ctx context.Context, id int) (LibraryEntry, error) {
	details, err := s.load()
	if err != nil {
		return LibraryEntry{}, err
	}
	d, ok := details[id]
	if !ok {
		return LibraryEntry{}, ErrNotFound
	}
	return LibraryEntry{AnimeDetail: cleanThemes(d), HasImage: s.images.Has(id)}, nil
}

// UnscoredThemes lists an item's openings not yet present in the score
// store, so the UI only offers what can still be scored.
func (s *LibraryService) UnscoredThemes(ctx context.Context, id int) ([]domain.Theme, error) {
	entry, err := s.Entry(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Theme, 0, len(entry.OpeningThemes))
	for _, t := range entry.OpeningThemes {
		scored, err := s.scores.Exists(ctx, t.Text)
		if err != nil {
			return nil, err
		}
		if !scored {
			out = append(out, t)
		}
	}
	return out, nil
}

// ImagePath resolves the artwork file for serving. ErrNotFound when the
// image has not been cached yet.
func (s *LibraryService) ImagePath(id int) (string, error) {
	if !s.images.Has(id) {
		return "", ErrNotFound
	}
	return s.images.Path(id), nil
}

func (s *LibraryService) load() (map[int]domain.AnimeDetail, error) {
	details, err := s.metadata.Load()
	if err != nil {
		if errors.Is(err, diskcache.ErrCorrupt) {
			s.logger.Warn().Str("code", CodeCacheCorrupt).Msg("metadata cache corrupt, serving empty library")
			return details, nil
		}
		return nil, err
	}
	return details, nil
}

func cleanThemes(d domain.AnimeDetail) domain.AnimeDetail {
	if len(d.OpeningThemes) == 0 {
		return d
	}
	themes := make([]domain.Theme, len(d.OpeningThemes))
	for i, t := range d.OpeningThemes {
		themes[i] = domain.Theme{ID: t.ID, Text: CleanThemeTitle(t.Text)}
	}
	d.OpeningThemes = themes
	return d
}

package diskcache

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xavion03/openings-tierlist/internal/domain"
)

const metadataFile = "details.json"

// MetadataStore is the JSON mapping from anime id to enriched detail.
// Records are immutable once present: enrichment only ever adds keys.
type MetadataStore struct {
	dir string
}

func NewMetadataStore(dir string) *MetadataStore {
	return &MetadataStore{dir: dir}
}

// Load deserializes the whole mapping. On malformed content it returns an
// empty, usable map together with ErrCorrupt; the caller logs and rebuilds.
func (s *MetadataStore) Load() (map[int]domain.AnimeDetail, error) {
	out := map[int]domain.AnimeDetail{}

	b, err := os.ReadFile(filepath.Join(s.dir, metadataFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return out, nil
		}
		return out, err
	}

	// Clés stringifiées sur disque (héritage du format JSON d'origine).
	raw := map[string]domain.AnimeDetail{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return map[int]domain.AnimeDetail{}, ErrCorrupt
	}
	for k, v := range raw {
		id, err := strconv.Atoi(k)
		if err != nil {
			return map[int]domain.AnimeDetail{}, ErrCorrupt
		}
		out[id] = v
	}
	return out, nil
}

// Save persists the full mapping in one atomic write. Called once per
// enrichment pass, not per item.
func (s *MetadataStore) Save(details map[int]domain.AnimeDetail) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	raw := make(map[string]domain.AnimeDetail, len(details))
	for id, d := range details {
		raw[strconv.Itoa(id)] = d
	}
	b, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(filepath.Join(s.dir, metadataFile), b)
}

// Package diskcache holds the on-disk caches under the data directory:
// the watch-list snapshot with its fingerprint, the metadata JSON map and
// the artwork files. Presence of a file is the "already have it" marker.
package diskcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xavion03/openings-tierlist/internal/domain"
)

// ErrCorrupt signale un fichier cache illisible. Les appelants le traitent
// comme "cache vide" et reconstruisent, jamais comme une erreur fatale.
var ErrCorrupt = errors.New("diskcache: corrupt")

const (
	snapshotFile = "watchlist.json"
	digestFile   = "watchlist.sha256"
)

// SnapshotStore persists the watch-list snapshot and its fingerprint as a
// pair. They are always superseded together.
type SnapshotStore struct {
	dir string
}

func NewSnapshotStore(dir string) *SnapshotStore {
	return &SnapshotStore{dir: dir}
}

// Digest returns the last persisted fingerprint, or "" when none exists
// (which forces the next pass to treat the list as changed).
func (s *SnapshotStore) Digest() (string, error) {
	b, err := os.ReadFile(filepath.Join(s.dir, digestFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// Load returns the persisted snapshot. A malformed file yields an empty
// snapshot plus ErrCorrupt.
func (s *SnapshotStore) Load() (domain.WatchlistSnapshot, error) {
	b, err := os.ReadFile(filepath.Join(s.dir, snapshotFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.WatchlistSnapshot{}, nil
		}
		return domain.WatchlistSnapshot{}, err
	}
	var snap domain.WatchlistSnapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return domain.WatchlistSnapshot{}, ErrCorrupt
	}
	digest, err := s.Digest()
	if err != nil {
		return domain.WatchlistSnapshot{}, err
	}
	snap.Fingerprint = digest
	return snap, nil
}

// Save writes snapshot then digest, each via temp+rename. The digest goes
// last so a crash in between leaves the old digest, which re-triggers a
// refresh on the next pass instead of skipping one.
func (s *SnapshotStore) Save(snap domain.WatchlistSnapshot) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	if err := writeAtomic(filepath.Join(s.dir, snapshotFile), b); err != nil {
		return err
	}
	return writeAtomic(filepath.Join(s.dir, digestFile), []byte(snap.Fingerprint+"\n"))
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("diskcache: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("diskcache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("diskcache: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("diskcache: %w", err)
	}
	return nil
}

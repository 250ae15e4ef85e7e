package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/xavion03/openings-tierlist/internal/adapters/diskcache"
	"github.com/xavion03/openings-tierlist/internal/domain"
)

func TestLibrary_WatchlistServesSnapshot(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	snapshots := diskcache.NewSnapshotStore(dataDir)
	lib := NewLibraryService(zerolog.Nop(), snapshots, diskcache.NewMetadataStore(dataDir), diskcache.NewImageStore(dataDir), nil)

	// Avant toute synchro: liste vide, pas d'erreur.
	entries, err := lib.Watchlist(ctx)
	if err != nil {
		t.Fatalf("Watchlist on empty dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty list, got %+v", entries)
	}

	snap := domain.WatchlistSnapshot{
		Entries: []domain.WatchlistEntry{
			{ID: 1, Title: "Cowboy Bebop"},
			{ID: 2, Title: "Monster"},
		},
		Fingerprint: "abc",
	}
	if err := snapshots.Save(snap); err != nil {
		t.Fatalf("Save snapshot: %v", err)
	}

	entries, err = lib.Watchlist(ctx)
	if err != nil {
		t.Fatalf("Watchlist: %v", err)
	}
	if len(entries) != 2 || entries[0].Title != "Cowboy Bebop" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestLibrary_WatchlistCorruptSnapshotReadsEmpty(t *testing.T) {
	dataDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dataDir, "watchlist.json"), []byte("{nope"), 0o644); err != nil {
		t.Fatalf("corrupt snapshot: %v", err)
	}
	lib := NewLibraryService(zerolog.Nop(), diskcache.NewSnapshotStore(dataDir), diskcache.NewMetadataStore(dataDir), diskcache.NewImageStore(dataDir), nil)

	entries, err := lib.Watchlist(context.Background())
	if err != nil {
		t.Fatalf("Watchlist over corrupt snapshot: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("corrupt snapshot must read as empty, got %+v", entries)
	}
}

func TestCleanThemeTitle(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{`#1: "Tank!" by The Seatbelts (eps 1-25)`, `"Tank!" by The Seatbelts`},
		{`#12: "Sign" by FLOW`, `"Sign" by FLOW`},
		{`"Plain Title"`, `"Plain Title"`},
		{`Opening (TV size) (eps 1-12)`, `Opening`},
	}
	for _, c := range cases {
		if got := CleanThemeTitle(c.in); got != c.want {
			t.Fatalf("CleanThemeTitle(%q): want %q, got %q", c.in, c.want, got)
		}
	}
}

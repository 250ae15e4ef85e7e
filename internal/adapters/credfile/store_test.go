package credfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xavion03/openings-tierlist/internal/domain"
	"github.com/xavion03/openings-tierlist/internal/ports"
)

func TestStore_LoadMissingFile(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "nope.env"))
	_, err := s.Load(context.Background())
	if !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_SaveMergesUnknownKeys(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "MAL_KEY.env")
	seed := "SOME_OTHER_TOOL=value with spaces\nMAL_CLIENT_ID=old-cid\nMAL_ACCESS_TOKEN=old-at\nMAL_REFRESH_TOKEN=old-rt\nTRAILING=1\n"
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	s := NewStore(path)
	err := s.Save(ctx, domain.Credential{ClientID: "cid", AccessToken: "at", RefreshToken: "rt"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	content := string(b)
	for _, want := range []string{
		"SOME_OTHER_TOOL=value with spaces",
		"MAL_CLIENT_ID=cid",
		"MAL_ACCESS_TOKEN=at",
		"MAL_REFRESH_TOKEN=rt",
		"TRAILING=1",
	} {
		if !strings.Contains(content, want) {
			t.Fatalf("missing %q in rewritten file:\n%s", want, content)
		}
	}

	// L'ordre des clés existantes est conservé.
	if strings.Index(content, "SOME_OTHER_TOOL") > strings.Index(content, "MAL_CLIENT_ID") {
		t.Fatalf("key order not preserved:\n%s", content)
	}

	cred, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cred.ClientID != "cid" || cred.AccessToken != "at" || cred.RefreshToken != "rt" {
		t.Fatalf("unexpected credential: %+v", cred)
	}
}

func TestStore_SaveKeepsBareKeys(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "MAL_KEY.env")
	seed := "LEGACY_FLAG\nMAL_ACCESS_TOKEN=old-at\n"
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	s := NewStore(path)
	if err := s.Save(ctx, domain.Credential{ClientID: "cid", AccessToken: "at", RefreshToken: "rt"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	// La ligne sans '=' survit comme clé à valeur vide, en tête de fichier.
	content := string(b)
	if !strings.HasPrefix(content, "LEGACY_FLAG=\n") {
		t.Fatalf("bare key lost or moved:\n%s", content)
	}
}

func TestStore_SaveCreatesFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "MAL_KEY.env")

	s := NewStore(path)
	if err := s.Save(ctx, domain.Credential{ClientID: "cid", AccessToken: "at", RefreshToken: "rt"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	cred, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cred.AccessToken != "at" {
		t.Fatalf("unexpected credential: %+v", cred)
	}
}

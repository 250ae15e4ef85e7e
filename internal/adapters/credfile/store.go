// Package credfile persists OAuth tokens in a flat KEY=value file, the
// same dotenv-style file the tokens were first provisioned in. Writes
// merge: keys the store does not know about survive a rewrite.
package credfile

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xavion03/openings-tierlist/internal/domain"
	"github.com/xavion03/openings-tierlist/internal/ports"
)

const (
	keyClientID     = "MAL_CLIENT_ID"
	keyAccessToken  = "MAL_ACCESS_TOKEN"
	keyRefreshToken = "MAL_REFRESH_TOKEN"
)

type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Load(ctx context.Context) (domain.Credential, error) {
	keys, _, err := s.read()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Credential{}, ports.ErrNotFound
		}
		return domain.Credential{}, err
	}
	return domain.Credential{
		ClientID:     keys[keyClientID],
		AccessToken:  keys[keyAccessToken],
		RefreshToken: keys[keyRefreshToken],
	}, nil
}

// Save merges the credential keys into whatever the file already holds and
// rewrites it atomically (temp file + rename), so a failed write never
// corrupts unrelated keys.
func (s *Store) Save(ctx context.Context, cred domain.Credential) error {
	keys, order, err := s.read()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if keys == nil {
		keys = map[string]string{}
	}

	set := func(k, v string) {
		if _, ok := keys[k]; !ok {
			order = append(order, k)
		}
		keys[k] = v
	}
	set(keyClientID, cred.ClientID)
	set(keyAccessToken, cred.AccessToken)
	set(keyRefreshToken, cred.RefreshToken)

	var b strings.Builder
	for _, k := range order {
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(keys[k])
		b.WriteString("\n")
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".credfile-*")
	if err != nil {
		return fmt.Errorf("credfile: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(b.String()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("credfile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("credfile: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("credfile: %w", err)
	}
	return nil
}

// read parses the file into a key map plus the key order, so a rewrite
// keeps the file recognizable to whoever edits it by hand.
func (s *Store) read() (map[string]string, []string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	keys := map[string]string{}
	order := []string{}

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// Une ligne sans '=' est gardée comme clé à valeur vide, pour
		// qu'une réécriture ne la perde pas.
		k, v, _ := strings.Cut(line, "=")
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, ok := keys[k]; !ok {
			order = append(order, k)
		}
		keys[k] = strings.TrimSpace(v)
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	return keys, order, nil
}

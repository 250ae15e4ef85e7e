package ports

import (
	"context"

	"github.com/xavion03/openings-tierlist/internal/domain"
)

type ScoreRepository interface {
	// Insert persists a fully computed row. Returns ErrConflict when a row
	// with the same song title already exists; the existing row is untouched.
	Insert(ctx context.Context, entry domain.TierEntry) (domain.TierEntry, error)
	FindByTier(ctx context.Context, tier domain.Tier) ([]domain.TierEntry, error)
	Exists(ctx context.Context, songTitle string) (bool, error)
	List(ctx context.Context) ([]domain.TierEntry, error)
	// Reset drops and recreates the row store. Deliberate full re-seeding
	// only, never called automatically.
	Reset(ctx context.Context) error
}

type SettingsRepository interface {
	Get(ctx context.Context) (domain.Settings, error)
	Put(ctx context.Context, settings domain.Settings) (domain.Settings, error)
}

type CredentialRepository interface {
	Load(ctx context.Context) (domain.Credential, error)
	// Save rewrites the credential keys while preserving any unrelated keys
	// already present in the backing file. All-or-nothing.
	Save(ctx context.Context, cred domain.Credential) error
}

package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/xavion03/openings-tierlist/internal/domain"
	"github.com/xavion03/openings-tierlist/internal/ports"
)

// createTierEntriesSQL double la DDL de la migration 0001 pour le Reset
// (drop + recreate sans rejouer les migrations).
const createTierEntriesSQL = `
	CREATE TABLE IF NOT EXISTS tier_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		song_title TEXT NOT NULL UNIQUE,
		show_title TEXT NOT NULL,
		anime_id INTEGER NOT NULL,
		mal_score REAL NOT NULL DEFAULT 0,
		rank INTEGER NOT NULL DEFAULT 0,
		popularity INTEGER NOT NULL DEFAULT 0,
		genres TEXT NOT NULL DEFAULT '',
		start_season TEXT NOT NULL DEFAULT '',
		tier TEXT NOT NULL,
		score_visual INTEGER NOT NULL,
		score_music INTEGER NOT NULL,
		score_narrative INTEGER NOT NULL,
		score_memorability INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_tier_entries_tier ON tier_entries(tier);
`

type ScoresRepository struct {
	db *sql.DB
}

func NewScoresRepository(db *sql.DB) *ScoresRepository {
	return &ScoresRepository{db: db}
}

func (r *ScoresRepository) Insert(ctx context.Context, entry domain.TierEntry) (domain.TierEntry, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO tier_entries(
			song_title, show_title, anime_id,
			mal_score, rank, popularity, genres, start_season,
			tier, score_visual, score_music, score_narrative, score_memorability,
			created_at
		) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		entry.SongTitle, entry.ShowTitle, entry.AnimeID,
		entry.MALScore, entry.Rank, entry.Popularity, entry.Genres, entry.StartSeason,
		string(entry.Tier), entry.Scores.Visual, entry.Scores.Music, entry.Scores.Narrative, entry.Scores.Memorability,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		// modernc.org/sqlite retourne une erreur texte du type:
		// "constraint failed: UNIQUE constraint failed: tier_entries.song_title (2067)"
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "unique constraint failed") && strings.Contains(msg, "tier_entries.song_title") {
			return domain.TierEntry{}, ports.ErrConflict
		}
		return domain.TierEntry{}, err
	}
	if id, err := res.LastInsertId(); err == nil {
		entry.ID = id
	}
	return entry, nil
}

const selectColumns = `
	id, song_title, show_title, anime_id,
	mal_score, rank, popularity, genres, start_season,
	tier, score_visual, score_music, score_narrative, score_memorability
`

func (r *ScoresRepository) FindByTier(ctx context.Context, tier domain.Tier) ([]domain.TierEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM tier_entries WHERE tier = ?`, string(tier))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (r *ScoresRepository) List(ctx context.Context) ([]domain.TierEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM tier_entries`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (r *ScoresRepository) Exists(ctx context.Context, songTitle string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM tier_entries WHERE song_title = ? LIMIT 1`, songTitle).Scan(&one)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *ScoresRepository) Reset(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS tier_entries`); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, createTierEntriesSQL); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func scanEntries(rows *sql.Rows) ([]domain.TierEntry, error) {
	out := make([]domain.TierEntry, 0)
	for rows.Next() {
		var e domain.TierEntry
		var tier string
		if err := rows.Scan(
			&e.ID, &e.SongTitle, &e.ShowTitle, &e.AnimeID,
			&e.MALScore, &e.Rank, &e.Popularity, &e.Genres, &e.StartSeason,
			&tier, &e.Scores.Visual, &e.Scores.Music, &e.Scores.Narrative, &e.Scores.Memorability,
		); err != nil {
			return nil, err
		}
		e.Tier = domain.Tier(tier)
		out = append(out, e)
	}
	return out, rows.Err()
}

package app

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/xavion03/openings-tierlist/internal/domain"
	"github.com/xavion03/openings-tierlist/internal/ports"
)

// ScoreService turns a scoring submission into a denormalized tier row.
// The tier is recomputed from the component scores at write time, never
// stored independently of them.
type ScoreService struct {
	logger  zerolog.Logger
	repo    ports.ScoreRepository
	library *LibraryService
}

func NewScoreService(logger zerolog.Logger, repo ports.ScoreRepository, library *LibraryService) *ScoreService {
	return &ScoreService{logger: logger, repo: repo, library: library}
}

type SubmitScoreRequest struct {
	AnimeID   int                    `json:"animeId"`
	SongTitle string                 `json:"songTitle"`
	Scores    domain.ComponentScores `json:"scores"`
}

// Submit validates the request, snapshots the parent's attributes from the
// metadata cache and persists the row. A duplicate song title comes back
// as a conflict and the stored row stays untouched.
func (s *ScoreService) Submit(ctx context.Context, req SubmitScoreRequest) (domain.TierEntry, error) {
	title := CleanThemeTitle(req.SongTitle)
	if strings.TrimSpace(title) == "" {
		return domain.TierEntry{}, coded(CodeInvalidParams, "empty song title", nil)
	}
	if err := req.Scores.Validate(); err != nil {
		return domain.TierEntry{}, coded(CodeInvalidParams, "invalid component scores", err)
	}

	parent, err := s.library.Entry(ctx, req.AnimeID)
	if err != nil {
		return domain.TierEntry{}, err
	}

	entry := domain.TierEntry{
		SongTitle:   title,
		ShowTitle:   parent.Title,
		AnimeID:     parent.ID,
		MALScore:    parent.Mean,
		Rank:        parent.Rank,
		Popularity:  parent.Popularity,
		Genres:      parent.GenresDisplay(),
		StartSeason: parent.StartSeason.Display(),
		Tier:        domain.TierForSum(req.Scores.Sum()),
		Scores:      req.Scores,
	}

	stored, err := s.repo.Insert(ctx, entry)
	if err != nil {
		if errors.Is(err, ports.ErrConflict) {
			return domain.TierEntry{}, coded(CodeConflict, "song already scored", err)
		}
		return domain.TierEntry{}, err
	}
	s.logger.Info().Str("song", stored.SongTitle).Str("tier", string(stored.Tier)).Msg("score recorded")
	return stored, nil
}

// ByTier returns one tier's rows sorted by descending score sum. The sort
// is a presentation convention applied here, not a storage guarantee.
func (s *ScoreService) ByTier(ctx context.Context, tier domain.Tier) ([]domain.TierEntry, error) {
	entries, err := s.repo.FindByTier(ctx, tier)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Scores.Sum() > entries[j].Scores.Sum()
	})
	return entries, nil
}

func (s *ScoreService) All(ctx context.Context) ([]domain.TierEntry, error) {
	return s.repo.List(ctx)
}

func (s *ScoreService) Exists(ctx context.Context, songTitle string) (bool, error) {
	return s.repo.Exists(ctx, CleanThemeTitle(songTitle))
}

// Reset drops every scored row. Explicit re-seeding only.
func (s *ScoreService) Reset(ctx context.Context) error {
	s.logger.Warn().Msg("resetting score store")
	return s.repo.Reset(ctx)
}

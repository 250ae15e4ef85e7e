package app

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"

	"github.com/xavion03/openings-tierlist/internal/adapters/diskcache"
	"github.com/xavion03/openings-tierlist/internal/adapters/malapi"
	"github.com/xavion03/openings-tierlist/internal/domain"
	"github.com/xavion03/openings-tierlist/internal/ports"
)

// SyncService exécute une passe de synchro séquentielle:
// credentials → liste → fingerprint → enrichissement → images.
// Chaque étape est idempotente vis-à-vis de l'état disque laissé par une
// passe partielle précédente.
type SyncService struct {
	logger    zerolog.Logger
	creds     *CredentialService
	api       *malapi.Client
	snapshots *diskcache.SnapshotStore
	metadata  *diskcache.MetadataStore
	images    *diskcache.ImageStore
	settings  *SettingsService
	bus       ports.EventBus
}

func NewSyncService(
	logger zerolog.Logger,
	creds *CredentialService,
	api *malapi.Client,
	snapshots *diskcache.SnapshotStore,
	metadata *diskcache.MetadataStore,
	images *diskcache.ImageStore,
	settings *SettingsService,
	bus ports.EventBus,
) *SyncService {
	return &SyncService{
		logger:    logger,
		creds:     creds,
		api:       api,
		snapshots: snapshots,
		metadata:  metadata,
		images:    images,
		settings:  settings,
		bus:       bus,
	}
}

// SyncReport summarizes one pass for the API and the event stream.
type SyncReport struct {
	PassID           string    `json:"passId"`
	State            string    `json:"state"`
	Items            int       `json:"items"`
	ListChanged      bool      `json:"listChanged"`
	Enriched         int       `json:"enriched"`
	EnrichSkipped    int       `json:"enrichSkipped"`
	ImagesDownloaded int       `json:"imagesDownloaded"`
	StartedAt        time.Time `json:"startedAt"`
	FinishedAt       time.Time `json:"finishedAt,omitempty"`
	ErrorCode        string    `json:"errorCode,omitempty"`
	Error            string    `json:"error,omitempty"`
}

// Run performs one full pass. Per-item enrichment failures are isolated;
// the first image failure halts the image batch; a credential failure
// halts everything.
func (s *SyncService) Run(ctx context.Context) (SyncReport, error) {
	report := SyncReport{PassID: xid.New().String(), State: "running", StartedAt: time.Now().UTC()}
	s.publishSync(report)

	err := s.run(ctx, &report)
	report.FinishedAt = time.Now().UTC()
	if err != nil {
		report.State = "failed"
		report.ErrorCode = ErrorCode(err)
		report.Error = err.Error()
		s.logger.Error().Err(err).Str("pass", report.PassID).Str("code", report.ErrorCode).Msg("sync failed")
	} else {
		report.State = "done"
		s.logger.Info().
			Str("pass", report.PassID).
			Int("items", report.Items).
			Bool("changed", report.ListChanged).
			Int("enriched", report.Enriched).
			Int("images", report.ImagesDownloaded).
			Msg("sync done")
	}
	s.publishSync(report)
	return report, err
}

func (s *SyncService) run(ctx context.Context, report *SyncReport) error {
	st, err := s.settings.Get(ctx)
	if err != nil {
		return err
	}
	if st.MALUsername == "" {
		return coded(CodeInvalidParams, "no MAL username configured", nil)
	}

	if err := s.creds.EnsureValid(ctx); err != nil {
		return err
	}

	var entries []domain.WatchlistEntry
	err = s.withToken(ctx, func(token string) error {
		var ferr error
		entries, ferr = s.api.Watchlist(ctx, token, st.MALUsername, st.PageSize)
		return ferr
	})
	if err != nil {
		return classifyRemote(err, "watchlist fetch")
	}
	report.Items = len(entries)

	newDigest := Fingerprint(entries)
	oldDigest, err := s.snapshots.Digest()
	if err != nil {
		return coded(CodeIOError, "reading stored fingerprint", err)
	}
	report.ListChanged = Changed(oldDigest, newDigest)
	if report.ListChanged {
		snap := domain.WatchlistSnapshot{Entries: entries, Fingerprint: newDigest}
		if err := s.snapshots.Save(snap); err != nil {
			return coded(CodeIOError, "persisting watchlist snapshot", err)
		}
		s.publishCacheChanged("watchlist", report.PassID)
	}

	// Enrichment and artwork always run, even on an unchanged list: a
	// previous pass may have persisted the digest and then died halfway.
	if err := s.enrichMetadata(ctx, entries, st, report); err != nil {
		return err
	}
	return s.ensureImages(ctx, entries, st, report)
}

// enrichMetadata fetches details for items missing from the cache. One
// write at the end of the pass, no write when nothing was added. Per-item
// failures are logged and skipped, except terminal credential failures.
func (s *SyncService) enrichMetadata(ctx context.Context, entries []domain.WatchlistEntry, st domain.Settings, report *SyncReport) error {
	existing, err := s.metadata.Load()
	if err != nil {
		if !errors.Is(err, diskcache.ErrCorrupt) {
			return coded(CodeIOError, "loading metadata cache", err)
		}
		s.logger.Warn().Str("code", CodeCacheCorrupt).Msg("metadata cache corrupt, rebuilding from scratch")
	}

	delay := time.Duration(st.EnrichDelayMs) * time.Millisecond
	added := 0
	for _, e := range entries {
		if _, ok := existing[e.ID]; ok {
			continue
		}
		if added > 0 || report.EnrichSkipped > 0 {
			if err := sleepCtx(ctx, delay); err != nil {
				return err
			}
		}

		var detail domain.AnimeDetail
		err := s.withToken(ctx, func(token string) error {
			var ferr error
			detail, ferr = s.api.AnimeDetail(ctx, token, e.ID)
			return ferr
		})
		if err != nil {
			cerr := classifyRemote(err, "detail fetch")
			if ErrorCode(cerr) == CodeAuthError {
				return cerr
			}
			s.logger.Warn().Err(err).Int("anime", e.ID).Msg("detail fetch failed, skipping item")
			report.EnrichSkipped++
			continue
		}
		existing[e.ID] = detail
		added++
	}

	if added > 0 {
		if err := s.metadata.Save(existing); err != nil {
			return coded(CodeIOError, "persisting metadata cache", err)
		}
		s.publishCacheChanged("metadata", report.PassID)
	}
	report.Enriched = added
	return nil
}

// ensureImages downloads missing artwork. Deliberately fail-fast: the
// first failure stops the batch on the assumption the problem is systemic;
// already-written files are kept and the next pass resumes after them.
func (s *SyncService) ensureImages(ctx context.Context, entries []domain.WatchlistEntry, st domain.Settings, report *SyncReport) error {
	delay := time.Duration(st.ImageDelayMs) * time.Millisecond
	for _, e := range entries {
		if e.PictureURL == "" || s.images.Has(e.ID) {
			continue
		}
		if report.ImagesDownloaded > 0 {
			if err := sleepCtx(ctx, delay); err != nil {
				return err
			}
		}

		b, err := s.api.Image(ctx, e.PictureURL)
		if err != nil {
			return classifyRemote(err, "image download")
		}
		if err := s.images.Write(e.ID, b); err != nil {
			return coded(CodeIOError, "writing image file", err)
		}
		report.ImagesDownloaded++
	}
	if report.ImagesDownloaded > 0 {
		s.publishCacheChanged("images", report.PassID)
	}
	return nil
}

// withToken runs fn with the current access token and, on a 401, refreshes
// once and retries once. One silent re-authentication per logical
// operation, never a loop.
func (s *SyncService) withToken(ctx context.Context, fn func(token string) error) error {
	token, err := s.creds.AccessToken(ctx)
	if err != nil {
		return err
	}
	err = fn(token)
	if !errors.Is(err, malapi.ErrUnauthorized) {
		return err
	}

	if rerr := s.creds.Refresh(ctx); rerr != nil {
		return rerr
	}
	token, err = s.creds.AccessToken(ctx)
	if err != nil {
		return err
	}
	return fn(token)
}

func classifyRemote(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, malapi.ErrUnauthorized):
		return coded(CodeAuthError, msg+": unauthorized", err)
	case malapi.IsServerError(err):
		return coded(CodeRemoteServerError, msg+": remote server error", err)
	case malapi.IsClientError(err):
		return coded(CodeRemoteClientError, msg, err)
	default:
		var ce *CodedError
		if errors.As(err, &ce) {
			return err
		}
		return coded(CodeNetworkError, msg, err)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *SyncService) publishSync(report SyncReport) {
	if s.bus == nil {
		return
	}
	b, err := json.Marshal(report)
	if err != nil {
		return
	}
	s.bus.Publish("sync", b)
}

func (s *SyncService) publishCacheChanged(kind, passID string) {
	if s.bus == nil {
		return
	}
	b, _ := json.Marshal(map[string]string{"kind": kind, "passId": passID})
	s.bus.Publish("cache", b)
}

package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/xavion03/openings-tierlist/internal/app"
	"github.com/xavion03/openings-tierlist/internal/ports"
)

// Server expose l'API consommée par l'UI: lecture des caches, soumission
// des scores, déclenchement d'une passe de synchro, events SSE.
type Server struct {
	logger   zerolog.Logger
	runner   *app.SyncRunner
	library  *app.LibraryService
	scores   *app.ScoreService
	settings *app.SettingsService
	bus      ports.EventBus
}

func NewServer(logger zerolog.Logger, runner *app.SyncRunner, library *app.LibraryService, scores *app.ScoreService, settings *app.SettingsService, bus ports.EventBus) *Server {
	return &Server{logger: logger, runner: runner, library: library, scores: scores, settings: settings, bus: bus}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(defaultRequestTimeout))
	r.Use(hlog.NewHandler(s.logger))
	r.Use(hlog.RequestIDHandler("request_id", "Request-Id"))
	r.Use(hlog.RemoteAddrHandler("remote_ip"))
	r.Use(hlog.UserAgentHandler("user_agent"))
	r.Use(hlog.AccessHandler(accessLogFn))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/version", s.handleVersion)
		r.Get("/events", s.handleEvents)

		if s.library != nil {
			NewEntriesHandler(s.library).Routes(r)
		}
		if s.scores != nil {
			NewScoresHandler(s.scores).Routes(r)
		}
		if s.settings != nil {
			NewSettingsHandler(s.settings).Routes(r)
		}
		if s.runner != nil {
			NewSyncHandler(s.runner).Routes(r)
		}
	})

	return r
}

// Package api exposes the HTTP interface of the impact service.
package api

import (
	"io"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/rs/zerolog"

	"inara-impact/internal/auth"
	"inara-impact/internal/catalog"
	"inara-impact/internal/decision"
	"inara-impact/internal/feed"
	"inara-impact/internal/observability"
	"inara-impact/internal/projects"
	"inara-impact/internal/reporting"
	"inara-impact/internal/simulation"
	"inara-impact/internal/storage"
)

// Server holds the services behind the HTTP routes.
type Server struct {
	auth        *auth.Service
	catalog     *catalog.Service
	projects    *projects.Service
	runner      *simulation.Runner
	reports     *reporting.Generator
	evaluator   *decision.Evaluator
	impact      storage.ImpactEventStore
	hub         *feed.Hub
	metrics     *observability.Metrics
	logger      zerolog.Logger
	corsOrigins []string
	now         func() time.Time
}

// Options contains the dependencies of a Server.
// Hub, Metrics and Logger are optional.
type Options struct {
	Auth        *auth.Service
	Catalog     *catalog.Service
	Projects    *projects.Service
	Runner      *simulation.Runner
	Reports     *reporting.Generator
	Evaluator   *decision.Evaluator
	ImpactStore storage.ImpactEventStore
	Hub         *feed.Hub
	Metrics     *observability.Metrics
	Logger      *zerolog.Logger
	CORSOrigins []string
	Clock       func() time.Time
}

// NewServer creates an API server.
func NewServer(opts Options) *Server {
	s := &Server{
		auth:        opts.Auth,
		catalog:     opts.Catalog,
		projects:    opts.Projects,
		runner:      opts.Runner,
		reports:     opts.Reports,
		evaluator:   opts.Evaluator,
		impact:      opts.ImpactStore,
		hub:         opts.Hub,
		metrics:     opts.Metrics,
		logger:      zerolog.Nop(),
		corsOrigins: opts.CORSOrigins,
		now:         opts.Clock,
	}
	if opts.Logger != nil {
		s.logger = opts.Logger.With().Str("component", "api").Logger()
	}
	if s.evaluator == nil {
		s.evaluator = decision.NewEvaluator(decision.DefaultThresholds())
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	if len(s.corsOrigins) == 0 {
		s.corsOrigins = []string{"*"}
	}
	return s
}

// Handler returns the full middleware chain: recovery, request log, CORS,
// authentication and the router.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.NewRouter()
	h = s.auth.Middleware(h)
	h = handlers.CORS(
		handlers.AllowedOrigins(s.corsOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)(h)
	h = handlers.CustomLoggingHandler(io.Discard, h, s.logRequest)
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{s.logger}),
		handlers.PrintRecoveryStack(false),
	)(h)
	return h
}

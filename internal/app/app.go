package app

import (
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/riskibarqy/league-tracker/external/footystats"
	"github.com/riskibarqy/league-tracker/internal/config"
	"github.com/riskibarqy/league-tracker/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/league-tracker/internal/interfaces/httpapi"
	"github.com/riskibarqy/league-tracker/internal/platform/logging"
	"github.com/riskibarqy/league-tracker/internal/platform/resilience"
	"github.com/riskibarqy/league-tracker/internal/usecase"
)

// App owns every long-lived component: the traced database handle, the
// provider client, the scheduler and the HTTP server.
type App struct {
	Config    config.Config
	Logger    *logging.Logger
	DB        *sqlx.DB
	Provider  *footystats.Client
	Scheduler *usecase.SchedulerService
	Server    *http.Server
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	db, err := otelsqlx.Open("postgres", cfg.DBURL,
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	provider := footystats.NewClient(footystats.ClientConfig{
		BaseURL:        cfg.FootyStatsBaseURL,
		APIKey:         cfg.FootyStatsAPIKey,
		Timeout:        cfg.FootyStatsTimeout,
		MaxRetries:     cfg.FootyStatsMaxRetries,
		RequestsPerSec: float64(cfg.FootyStatsRequestsPerSec),
		Logger:         logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FootyStatsCircuitEnabled,
			FailureThreshold: cfg.FootyStatsCircuitFailures,
			OpenTimeout:      cfg.FootyStatsCircuitOpenFor,
			HalfOpenMaxReq:   cfg.FootyStatsCircuitHalfOpen,
		},
	})

	leagueRepo := postgres.NewLeagueRepository(db)
	teamRepo := postgres.NewTeamRepository(db)
	fixtureRepo := postgres.NewFixtureRepository(db)
	playerRepo := postgres.NewPlayerRepository(db)
	statsRepo := postgres.NewTeamStatsRepository(db)

	standings := usecase.NewStandingsService(leagueRepo, teamRepo, fixtureRepo, statsRepo, logger)
	topScorers := usecase.NewTopScorerService(leagueRepo, playerRepo, logger)
	collector := usecase.NewCollectorService(provider, leagueRepo, teamRepo, fixtureRepo, playerRepo, standings, logger)
	live := usecase.NewLiveMatchService(fixtureRepo, usecase.LiveMatchConfig{
		UpcomingWindow: cfg.UpcomingWindow,
		TrailingWindow: cfg.TrailingWindow,
	}, logger)
	scheduler := usecase.NewSchedulerService(collector, live, leagueRepo, usecase.SchedulerConfig{
		Workers:      cfg.CollectorWorkers,
		MaxAttempts:  cfg.CollectorMaxAttempts,
		BackoffBase:  cfg.CollectorBackoffBase,
		FullInterval: cfg.FullSyncInterval,
		LiveInterval: cfg.LiveSyncInterval,
	}, logger)

	handler := httpapi.NewHandler(standings, topScorers, scheduler, func() httpapi.ProviderStats {
		stats := provider.RequestStats()
		return httpapi.ProviderStats{
			RequestsLastMinute: stats.RequestsLastMinute,
			CircuitState:       stats.CircuitState,
		}
	}, logger)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &App{
		Config:    cfg,
		Logger:    logger,
		DB:        db,
		Provider:  provider,
		Scheduler: scheduler,
		Server:    server,
	}, nil
}

func (a *App) Close() error {
	return a.DB.Close()
}

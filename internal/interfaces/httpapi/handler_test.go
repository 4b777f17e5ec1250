package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/league-tracker/internal/domain/fixture"
	"github.com/riskibarqy/league-tracker/internal/domain/league"
	"github.com/riskibarqy/league-tracker/internal/domain/player"
	"github.com/riskibarqy/league-tracker/internal/domain/team"
	"github.com/riskibarqy/league-tracker/internal/domain/teamstats"
	"github.com/riskibarqy/league-tracker/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/league-tracker/internal/platform/logging"
	"github.com/riskibarqy/league-tracker/internal/usecase"
)

type emptyProvider struct{}

func (emptyProvider) FetchLeagues(context.Context) ([]usecase.ExternalLeague, error) {
	return nil, nil
}

func (emptyProvider) FetchLeagueTeams(context.Context, int64) ([]usecase.ExternalTeam, error) {
	return nil, nil
}

func (emptyProvider) FetchLeagueMatches(context.Context, int64) ([]usecase.ExternalMatch, error) {
	return nil, nil
}

func (emptyProvider) FetchLeaguePlayers(context.Context, int64) ([]usecase.ExternalPlayer, error) {
	return nil, nil
}

type routerFixtures struct {
	leagues  []league.League
	teams    []team.Team
	fixtures []fixture.Fixture
	stats    []teamstats.Statistics
	players  []player.Player
}

func newTestRouter(t *testing.T, seed routerFixtures) http.Handler {
	t.Helper()

	leagueRepo := memory.NewLeagueRepository(seed.leagues)
	teamRepo := memory.NewTeamRepository(seed.teams)
	fixtureRepo := memory.NewFixtureRepository(seed.fixtures)
	statsRepo := memory.NewTeamStatsRepository(seed.stats)
	playerRepo := memory.NewPlayerRepository(seed.players)

	standings := usecase.NewStandingsService(leagueRepo, teamRepo, fixtureRepo, statsRepo, logging.NewNop())
	topScorers := usecase.NewTopScorerService(leagueRepo, playerRepo, logging.NewNop())
	live := usecase.NewLiveMatchService(fixtureRepo, usecase.LiveMatchConfig{}, logging.NewNop())
	collector := usecase.NewCollectorService(emptyProvider{}, leagueRepo, teamRepo, fixtureRepo, playerRepo, standings, logging.NewNop())
	scheduler := usecase.NewSchedulerService(collector, live, leagueRepo, usecase.SchedulerConfig{
		Workers:      1,
		MaxAttempts:  1,
		BackoffBase:  time.Millisecond,
		FullInterval: time.Hour,
		LiveInterval: time.Hour,
	}, logging.NewNop())

	handler := NewHandler(standings, topScorers, scheduler, func() ProviderStats {
		return ProviderStats{RequestsLastMinute: 3, CircuitState: "closed"}
	}, logging.NewNop())

	return NewRouter(handler, logging.NewNop(), []string{"*"})
}

func seededLeague() league.League {
	return league.League{ID: 42, Name: "Premier League", Country: "England", SeasonID: 300, SeasonYear: 2025}
}

func decodeEnvelope(t *testing.T, body []byte) googleResponseEnvelope {
	t.Helper()

	var envelope googleResponseEnvelope
	require.NoError(t, sonic.Unmarshal(body, &envelope))
	return envelope
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, routerFixtures{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec.Body.Bytes())
	require.Equal(t, googleAPIVersion, envelope.APIVersion)
	require.Nil(t, envelope.Error)
}

func TestGetLeagueStandings(t *testing.T) {
	t.Parallel()

	target := seededLeague()
	router := newTestRouter(t, routerFixtures{
		leagues: []league.League{target},
		teams: []team.Team{
			{ID: 1, LeagueID: target.ID, SeasonID: target.SeasonID, Name: "Arsenal"},
			{ID: 2, LeagueID: target.ID, SeasonID: target.SeasonID, Name: "Brentford"},
		},
		stats: []teamstats.Statistics{
			{TeamID: 1, LeagueID: target.ID, SeasonID: target.SeasonID, Wins: 2, Points: 6, Rank: 1, Position: 1},
			{TeamID: 2, LeagueID: target.ID, SeasonID: target.SeasonID, Draws: 1, Points: 1, Rank: 2, Position: 2},
		},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/leagues/42/standings", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Data usecase.StandingsTable `json:"data"`
	}
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "Premier League", payload.Data.LeagueName)
	require.Len(t, payload.Data.Rows, 2)
	require.Equal(t, "Arsenal", payload.Data.Rows[0].TeamName)
	require.Equal(t, 1, payload.Data.Rows[0].Rank)
}

func TestGetLeagueStandings_Errors(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, routerFixtures{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/leagues/not-a-number/standings", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec.Body.Bytes())
	require.NotNil(t, envelope.Error)
	require.Equal(t, "INVALID_ARGUMENT", envelope.Error.Status)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/leagues/999/standings", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	envelope = decodeEnvelope(t, rec.Body.Bytes())
	require.NotNil(t, envelope.Error)
	require.Equal(t, "NOT_FOUND", envelope.Error.Status)
}

func TestTriggerCollection(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, routerFixtures{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/collections/trigger", nil))
	require.Equal(t, http.StatusAccepted, rec.Code)

	var payload struct {
		Data usecase.TriggerResult `json:"data"`
	}
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &payload))
	require.Contains(t, []string{"queued", "skipped"}, payload.Data.Status)
}

func TestTriggerCollection_RejectsInvalidBody(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, routerFixtures{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/collections/trigger", strings.NewReader(`{"league_id": -5}`))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec.Body.Bytes())
	require.Equal(t, "INVALID_ARGUMENT", envelope.Error.Status)
}

func TestGetTopScorers(t *testing.T) {
	t.Parallel()

	target := seededLeague()
	router := newTestRouter(t, routerFixtures{
		leagues: []league.League{target},
		players: []player.Player{
			{ID: 1, Name: "Haaland", TeamID: 1, LeagueID: target.ID, SeasonID: target.SeasonID, Goals: 21},
			{ID: 2, Name: "Saka", TeamID: 2, LeagueID: target.ID, SeasonID: target.SeasonID, Goals: 12},
		},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/leagues/42/top-scorers?limit=1", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Data usecase.TopScorerTable `json:"data"`
	}
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Data.Scorers, 1)
	require.Equal(t, "Haaland", payload.Data.Scorers[0].Name)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/leagues/42/top-scorers?limit=0", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCollectionStatus(t *testing.T) {
	t.Parallel()

	target := seededLeague()
	now := time.Now().UTC()
	router := newTestRouter(t, routerFixtures{
		leagues: []league.League{target},
		fixtures: []fixture.Fixture{
			{ID: 1, LeagueID: target.ID, SeasonID: target.SeasonID, HomeTeamID: 1, AwayTeamID: 2, Status: "live", DateUnix: now.Add(-30 * time.Minute).Unix()},
		},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/collections/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Data struct {
			State           string                  `json:"state"`
			LeaguesTracked  int                     `json:"leagues_tracked"`
			PriorityBuckets usecase.PriorityBuckets `json:"priority_buckets"`
			Provider        *ProviderStats          `json:"provider"`
		} `json:"data"`
	}
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "idle", payload.Data.State)
	require.Equal(t, 1, payload.Data.LeaguesTracked)
	require.Equal(t, []int64{target.ID}, payload.Data.PriorityBuckets.High)
	require.NotNil(t, payload.Data.Provider)
	require.Equal(t, "closed", payload.Data.Provider.CircuitState)
}

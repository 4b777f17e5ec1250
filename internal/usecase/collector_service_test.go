package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/riskibarqy/league-tracker/internal/domain/fixture"
	"github.com/riskibarqy/league-tracker/internal/domain/league"
	"github.com/riskibarqy/league-tracker/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/league-tracker/internal/platform/logging"
)

// stubProvider is a canned SportDataProvider. failTeamsTimes makes the
// first N team fetches fail, which the scheduler retry tests lean on.
type stubProvider struct {
	mu sync.Mutex

	leagues []ExternalLeague
	teams   map[int64][]ExternalTeam
	matches map[int64][]ExternalMatch
	players map[int64][]ExternalPlayer

	failTeamsTimes int
	teamsCalls     int
	matchesCalls   int
}

func (p *stubProvider) FetchLeagues(context.Context) ([]ExternalLeague, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.leagues, nil
}

func (p *stubProvider) FetchLeagueTeams(_ context.Context, seasonID int64) ([]ExternalTeam, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.teamsCalls++
	if p.teamsCalls <= p.failTeamsTimes {
		return nil, fmt.Errorf("provider unavailable on call %d", p.teamsCalls)
	}
	return p.teams[seasonID], nil
}

func (p *stubProvider) FetchLeagueMatches(_ context.Context, seasonID int64) ([]ExternalMatch, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.matchesCalls++
	return p.matches[seasonID], nil
}

func (p *stubProvider) FetchLeaguePlayers(_ context.Context, seasonID int64) ([]ExternalPlayer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.players[seasonID], nil
}

type collectorFixture struct {
	provider    *stubProvider
	leagueRepo  *memory.LeagueRepository
	teamRepo    *memory.TeamRepository
	fixtureRepo *memory.FixtureRepository
	playerRepo  *memory.PlayerRepository
	statsRepo   *memory.TeamStatsRepository
	collector   *CollectorService
}

func newCollectorFixture(provider *stubProvider, seeded []league.League) collectorFixture {
	f := collectorFixture{
		provider:    provider,
		leagueRepo:  memory.NewLeagueRepository(seeded),
		teamRepo:    memory.NewTeamRepository(nil),
		fixtureRepo: memory.NewFixtureRepository(nil),
		playerRepo:  memory.NewPlayerRepository(nil),
		statsRepo:   memory.NewTeamStatsRepository(nil),
	}
	standings := NewStandingsService(f.leagueRepo, f.teamRepo, f.fixtureRepo, f.statsRepo, logging.NewNop())
	f.collector = NewCollectorService(provider, f.leagueRepo, f.teamRepo, f.fixtureRepo, f.playerRepo, standings, logging.NewNop())
	return f
}

func TestSyncLeagues_PinsMostRecentSeason(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		leagues: []ExternalLeague{
			{
				Name:    "Premier League",
				Country: "England",
				Seasons: []ExternalSeason{
					{ID: 100, Year: 2023},
					{ID: 300, Year: 2025},
					{ID: 200, Year: 2024},
				},
			},
			{Name: "Orphan Cup", Country: "Nowhere"}, // no seasons, skipped
		},
	}
	f := newCollectorFixture(provider, nil)

	leagues, err := f.collector.SyncLeagues(context.Background())
	if err != nil {
		t.Fatalf("SyncLeagues error: %v", err)
	}
	if len(leagues) != 1 {
		t.Fatalf("expected 1 league, got %d", len(leagues))
	}
	got := leagues[0]
	if got.SeasonID != 300 || got.SeasonYear != 2025 {
		t.Fatalf("expected season 300/2025, got %d/%d", got.SeasonID, got.SeasonYear)
	}
	if got.ID <= 0 || got.ID >= derivedLeagueIDSpace {
		t.Fatalf("derived league id out of range: %d", got.ID)
	}
}

func TestSyncLeagues_KeepsExistingLeagueID(t *testing.T) {
	t.Parallel()

	seeded := []league.League{{ID: 555, Name: "Premier League", Country: "England", SeasonID: 300, SeasonYear: 2025}}
	provider := &stubProvider{
		leagues: []ExternalLeague{
			{
				Name:    "Premier League",
				Country: "England",
				Seasons: []ExternalSeason{{ID: 300, Year: 2025}},
			},
		},
	}
	f := newCollectorFixture(provider, seeded)

	leagues, err := f.collector.SyncLeagues(context.Background())
	if err != nil {
		t.Fatalf("SyncLeagues error: %v", err)
	}
	if len(leagues) != 1 || leagues[0].ID != 555 {
		t.Fatalf("expected existing id 555 to be kept, got %+v", leagues)
	}
}

func TestDeriveLeagueID_StableAndBounded(t *testing.T) {
	t.Parallel()

	a := deriveLeagueID("Premier League", "England", 300)
	b := deriveLeagueID("Premier League", "England", 300)
	if a != b {
		t.Fatalf("derivation must be stable: %d vs %d", a, b)
	}
	if a <= 0 || a >= derivedLeagueIDSpace {
		t.Fatalf("derived id out of range: %d", a)
	}
	if c := deriveLeagueID("Premier League", "England", 301); c == a {
		t.Fatalf("different seasons must derive different ids, both %d", a)
	}
	if d := deriveLeagueID("  Premier League  ", "England", 300); d != a {
		t.Fatalf("surrounding whitespace must not change the id: %d vs %d", d, a)
	}
}

func TestCollectLeague_RunsFullPipeline(t *testing.T) {
	t.Parallel()

	target := testLeague()
	provider := &stubProvider{
		teams: map[int64][]ExternalTeam{
			target.SeasonID: {
				{ExternalID: 1, Name: "Arsenal"},
				{ExternalID: 2, Name: "Brentford"},
			},
		},
		matches: map[int64][]ExternalMatch{
			target.SeasonID: {
				{ExternalID: 10, HomeTeamID: 1, AwayTeamID: 2, Status: "COMPLETE", DateUnix: 1_700_000_000, HomeGoals: 2, AwayGoals: 0},
				{ExternalID: 11, HomeTeamID: 2, AwayTeamID: 1, Status: "scheduled", DateUnix: 1_800_000_000},
			},
		},
		players: map[int64][]ExternalPlayer{
			target.SeasonID: {
				{ExternalID: 100, Name: "Saka", TeamExternalID: 1, Goals: 12},
			},
		},
	}
	f := newCollectorFixture(provider, []league.League{target})

	result, err := f.collector.CollectLeague(context.Background(), target)
	if err != nil {
		t.Fatalf("CollectLeague error: %v", err)
	}
	if result.TeamsUpserted != 2 || result.FixturesUpserted != 2 || result.PlayersUpserted != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}

	// The provider status arrives uppercased and must land normalized.
	fixtures, err := f.fixtureRepo.ListBySeason(context.Background(), target.SeasonID)
	if err != nil {
		t.Fatalf("ListBySeason error: %v", err)
	}
	if !fixture.IsComplete(fixtures[0].Status) {
		t.Fatalf("expected normalized complete status, got %q", fixtures[0].Status)
	}

	// Standings were rebuilt and ranked as part of the pass.
	stats, err := f.statsRepo.ListByLeagueSeason(context.Background(), target.ID, target.SeasonID)
	if err != nil {
		t.Fatalf("ListByLeagueSeason error: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected 2 statistics rows, got %d", len(stats))
	}
	for _, row := range stats {
		if row.Rank == 0 {
			t.Fatalf("expected ranked rows, got %+v", row)
		}
	}
}

func TestCollectLeague_SkipsMalformedRecordsWithoutAborting(t *testing.T) {
	t.Parallel()

	target := testLeague()
	players := make([]ExternalPlayer, 0, 50)
	for i := 1; i <= 50; i++ {
		p := ExternalPlayer{ExternalID: int64(i), Name: fmt.Sprintf("Player %d", i), TeamExternalID: 1, Goals: i}
		if i == 25 {
			p.Name = "" // malformed, must be skipped
		}
		players = append(players, p)
	}
	provider := &stubProvider{
		teams: map[int64][]ExternalTeam{
			target.SeasonID: {
				{ExternalID: 1, Name: "Arsenal"},
				{ExternalID: 2, Name: ""}, // malformed team
			},
		},
		matches: map[int64][]ExternalMatch{
			target.SeasonID: {
				{ExternalID: 10, HomeTeamID: 1, AwayTeamID: 0, Status: "complete"}, // malformed fixture
			},
		},
		players: map[int64][]ExternalPlayer{target.SeasonID: players},
	}
	f := newCollectorFixture(provider, []league.League{target})

	result, err := f.collector.CollectLeague(context.Background(), target)
	if err != nil {
		t.Fatalf("CollectLeague error: %v", err)
	}
	if result.TeamsUpserted != 1 || result.TeamsSkipped != 1 {
		t.Fatalf("unexpected team counts: %+v", result)
	}
	if result.FixturesUpserted != 0 || result.FixturesSkipped != 1 {
		t.Fatalf("unexpected fixture counts: %+v", result)
	}
	if result.PlayersUpserted != 49 || result.PlayersSkipped != 1 {
		t.Fatalf("unexpected player counts: %+v", result)
	}

	scorers, err := f.playerRepo.ListTopScorers(context.Background(), target.ID, 100)
	if err != nil {
		t.Fatalf("ListTopScorers error: %v", err)
	}
	if len(scorers) != 49 {
		t.Fatalf("expected 49 persisted players, got %d", len(scorers))
	}
}

func TestCollectLeague_KeepsPlayersWhenProviderReusesIDsAcrossSeasons(t *testing.T) {
	t.Parallel()

	older := league.League{ID: 1, Name: "Premier League", Country: "England", SeasonID: 100, SeasonYear: 2024}
	newer := league.League{ID: 2, Name: "Premier League", Country: "England", SeasonID: 200, SeasonYear: 2025}

	// same provider player id in both seasons; identity is name+team+season
	provider := &stubProvider{
		teams: map[int64][]ExternalTeam{
			older.SeasonID: {{ExternalID: 10, Name: "Arsenal"}},
			newer.SeasonID: {{ExternalID: 10, Name: "Arsenal"}},
		},
		players: map[int64][]ExternalPlayer{
			older.SeasonID: {{ExternalID: 555, Name: "Saka", TeamExternalID: 10, Goals: 8}},
			newer.SeasonID: {{ExternalID: 555, Name: "Saka", TeamExternalID: 10, Goals: 14}},
		},
	}
	f := newCollectorFixture(provider, []league.League{older, newer})

	ctx := context.Background()
	for _, target := range []league.League{older, newer} {
		result, err := f.collector.CollectLeague(ctx, target)
		if err != nil {
			t.Fatalf("CollectLeague season %d error: %v", target.SeasonID, err)
		}
		if result.PlayersUpserted != 1 {
			t.Fatalf("season %d: unexpected player counts: %+v", target.SeasonID, result)
		}
	}

	for _, tc := range []struct {
		target league.League
		goals  int
	}{
		{older, 8},
		{newer, 14},
	} {
		rows, err := f.playerRepo.ListTopScorers(ctx, tc.target.ID, 10)
		if err != nil {
			t.Fatalf("ListTopScorers league %d error: %v", tc.target.ID, err)
		}
		if len(rows) != 1 {
			t.Fatalf("league %d: expected its own player row, got %d", tc.target.ID, len(rows))
		}
		if rows[0].SeasonID != tc.target.SeasonID || rows[0].Goals != tc.goals {
			t.Fatalf("league %d: wrong row persisted: %+v", tc.target.ID, rows[0])
		}
	}
}

func TestRefreshLeagueFixtures_RebuildsOnlyWhenAsked(t *testing.T) {
	t.Parallel()

	target := testLeague()
	provider := &stubProvider{
		teams: map[int64][]ExternalTeam{
			target.SeasonID: {{ExternalID: 1, Name: "Arsenal"}, {ExternalID: 2, Name: "Brentford"}},
		},
		matches: map[int64][]ExternalMatch{
			target.SeasonID: {
				{ExternalID: 10, HomeTeamID: 1, AwayTeamID: 2, Status: "complete", DateUnix: 1_700_000_000, HomeGoals: 1},
			},
		},
	}
	f := newCollectorFixture(provider, []league.League{target})

	ctx := context.Background()
	if _, _, err := f.collector.reconcileTeams(ctx, target, provider.teams[target.SeasonID]); err != nil {
		t.Fatalf("seed teams error: %v", err)
	}

	upserted, err := f.collector.RefreshLeagueFixtures(ctx, target, false)
	if err != nil {
		t.Fatalf("RefreshLeagueFixtures error: %v", err)
	}
	if upserted != 1 {
		t.Fatalf("expected 1 fixture upserted, got %d", upserted)
	}
	stats, err := f.statsRepo.ListByLeagueSeason(ctx, target.ID, target.SeasonID)
	if err != nil {
		t.Fatalf("ListByLeagueSeason error: %v", err)
	}
	if len(stats) != 0 {
		t.Fatalf("rebuild=false must not write statistics, got %d rows", len(stats))
	}

	if _, err := f.collector.RefreshLeagueFixtures(ctx, target, true); err != nil {
		t.Fatalf("RefreshLeagueFixtures rebuild error: %v", err)
	}
	stats, err = f.statsRepo.ListByLeagueSeason(ctx, target.ID, target.SeasonID)
	if err != nil {
		t.Fatalf("ListByLeagueSeason error: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("rebuild=true must write statistics, got %d rows", len(stats))
	}
}

package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/league-tracker/internal/domain/fixture"
	"github.com/riskibarqy/league-tracker/internal/domain/league"
	"github.com/riskibarqy/league-tracker/internal/domain/team"
	"github.com/riskibarqy/league-tracker/internal/domain/teamstats"
	"github.com/riskibarqy/league-tracker/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/league-tracker/internal/platform/logging"
)

func testLeague() league.League {
	return league.League{ID: 77, Name: "Premier League", Country: "England", SeasonID: 9000, SeasonYear: 2025}
}

func completeFixture(id, home, away int64, homeGoals, awayGoals int) fixture.Fixture {
	return fixture.Fixture{
		ID:         id,
		LeagueID:   77,
		SeasonID:   9000,
		HomeTeamID: home,
		AwayTeamID: away,
		Status:     fixture.StatusComplete,
		DateUnix:   time.Date(2025, 8, 10, 15, 0, 0, 0, time.UTC).Unix(),
		HomeGoals:  homeGoals,
		AwayGoals:  awayGoals,
		TotalGoals: homeGoals + awayGoals,
	}
}

func seasonTeam(id int64, name string) team.Team {
	return team.Team{ID: id, LeagueID: 77, SeasonID: 9000, Name: name}
}

func TestAggregateStandings_CountsOnlyCompleteFixtures(t *testing.T) {
	t.Parallel()

	target := testLeague()
	teams := []team.Team{seasonTeam(1, "Arsenal"), seasonTeam(2, "Brentford"), seasonTeam(3, "Chelsea")}

	live := completeFixture(4, 1, 3, 2, 0)
	live.Status = "live"
	scheduled := completeFixture(5, 2, 1, 9, 9)
	scheduled.Status = fixture.StatusScheduled

	fixtures := []fixture.Fixture{
		completeFixture(1, 1, 2, 2, 1),
		completeFixture(2, 2, 3, 0, 0),
		live,
		scheduled,
	}

	rows := aggregateStandings(target, teams, fixtures)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	byTeam := make(map[int64]teamstats.Statistics, len(rows))
	for _, row := range rows {
		byTeam[row.TeamID] = row
	}

	arsenal := byTeam[1]
	if arsenal.MatchesPlayed != 1 || arsenal.Wins != 1 || arsenal.Points != 3 || arsenal.GoalsFor != 2 || arsenal.GoalsAgainst != 1 {
		t.Fatalf("unexpected arsenal row: %+v", arsenal)
	}
	brentford := byTeam[2]
	if brentford.MatchesPlayed != 2 || brentford.Losses != 1 || brentford.Draws != 1 || brentford.Points != 1 {
		t.Fatalf("unexpected brentford row: %+v", brentford)
	}
	chelsea := byTeam[3]
	if chelsea.MatchesPlayed != 1 || chelsea.Draws != 1 || chelsea.Points != 1 {
		t.Fatalf("unexpected chelsea row: %+v", chelsea)
	}
	for _, row := range rows {
		if row.Rank != 0 || row.Position != 0 {
			t.Fatalf("aggregation must not assign ranks: %+v", row)
		}
	}
}

func TestAggregateStandings_CountsKnownSideAgainstUnknownOpponent(t *testing.T) {
	t.Parallel()

	target := testLeague()
	teams := []team.Team{seasonTeam(1, "Arsenal")}
	fixtures := []fixture.Fixture{
		completeFixture(1, 1, 99, 3, 0), // home win vs team with no roster row
		completeFixture(2, 98, 1, 2, 2), // away draw vs another unknown
	}

	rows := aggregateStandings(target, teams, fixtures)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	got := rows[0]
	if got.MatchesPlayed != 2 || got.Wins != 1 || got.Draws != 1 || got.Points != 4 {
		t.Fatalf("fixtures against unknown opponents must still count for the known side: %+v", got)
	}
	if got.GoalsFor != 5 || got.GoalsAgainst != 2 {
		t.Fatalf("unexpected goal totals: %+v", got)
	}
}

func statsRow(teamID int64, points, wins, gf, ga int) teamstats.Statistics {
	return teamstats.Statistics{
		TeamID:       teamID,
		LeagueID:     77,
		SeasonID:     9000,
		Wins:         wins,
		Points:       points,
		GoalsFor:     gf,
		GoalsAgainst: ga,
	}
}

func TestRankStandings_OrdersByPointsWinsGoalDifferenceGoalsFor(t *testing.T) {
	t.Parallel()

	rows := []teamstats.Statistics{
		statsRow(1, 10, 3, 9, 5),  // gd 4
		statsRow(2, 12, 4, 8, 4),  // top on points
		statsRow(3, 10, 3, 10, 6), // gd 4 but more goals for
		statsRow(4, 10, 2, 12, 3), // fewer wins despite better gd
	}

	ordered := rankStandings(rows, nil, nil)

	want := []int64{2, 3, 1, 4}
	for i, teamID := range want {
		if ordered[i].TeamID != teamID {
			t.Fatalf("rank %d: expected team %d, got %d", i+1, teamID, ordered[i].TeamID)
		}
	}
}

func TestRankStandings_HeadToHeadOnlyInsideTiedGroup(t *testing.T) {
	t.Parallel()

	// Teams 1 and 2 are identical on points, wins, goal difference and
	// goals for. Team 2 won the head-to-head; team 1 beat an outsider,
	// which must not count.
	rows := []teamstats.Statistics{
		statsRow(1, 9, 3, 7, 4),
		statsRow(2, 9, 3, 7, 4),
		statsRow(3, 3, 1, 2, 6),
	}
	fixtures := []fixture.Fixture{
		completeFixture(1, 2, 1, 1, 0), // team 2 beats team 1
		completeFixture(2, 1, 3, 4, 0), // team 1 thrashes the outsider
	}

	ordered := rankStandings(rows, fixtures, nil)

	if ordered[0].TeamID != 2 || ordered[1].TeamID != 1 {
		t.Fatalf("head-to-head should put team 2 first, got %d then %d", ordered[0].TeamID, ordered[1].TeamID)
	}
}

func TestRankStandings_CardsThenTeamIDBreakRemainingTies(t *testing.T) {
	t.Parallel()

	rows := []teamstats.Statistics{
		statsRow(5, 9, 3, 7, 4),
		statsRow(6, 9, 3, 7, 4),
		statsRow(7, 9, 3, 7, 4),
	}
	// All three drew their head-to-head meetings.
	fixtures := []fixture.Fixture{
		completeFixture(1, 5, 6, 1, 1),
		completeFixture(2, 6, 7, 0, 0),
		completeFixture(3, 7, 5, 2, 2),
	}
	cards := map[int64]fixture.CardTotals{
		5: {Yellow: 10, Red: 2},
		6: {Yellow: 10, Red: 1},
		7: {Yellow: 12, Red: 1},
	}

	ordered := rankStandings(rows, fixtures, cards)

	want := []int64{6, 7, 5}
	for i, teamID := range want {
		if ordered[i].TeamID != teamID {
			t.Fatalf("rank %d: expected team %d, got %d", i+1, teamID, ordered[i].TeamID)
		}
	}

	// With no card data left to separate them the lower team id wins.
	ordered = rankStandings(rows, fixtures, nil)
	want = []int64{5, 6, 7}
	for i, teamID := range want {
		if ordered[i].TeamID != teamID {
			t.Fatalf("zero-card rank %d: expected team %d, got %d", i+1, teamID, ordered[i].TeamID)
		}
	}
}

func TestRankStandings_DeterministicUnderInputReordering(t *testing.T) {
	t.Parallel()

	rows := []teamstats.Statistics{
		statsRow(1, 9, 3, 7, 4),
		statsRow(2, 9, 3, 7, 4),
		statsRow(3, 12, 4, 9, 2),
		statsRow(4, 6, 2, 5, 5),
	}
	fixtures := []fixture.Fixture{completeFixture(1, 1, 2, 0, 1)}

	first := rankStandings(rows, fixtures, nil)

	reversed := make([]teamstats.Statistics, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		reversed = append(reversed, rows[i])
	}
	second := rankStandings(reversed, fixtures, nil)

	for i := range first {
		if first[i].TeamID != second[i].TeamID {
			t.Fatalf("rank %d differs across input orders: %d vs %d", i+1, first[i].TeamID, second[i].TeamID)
		}
	}
}

func TestStandingsService_RebuildAndRankAreIdempotent(t *testing.T) {
	t.Parallel()

	target := testLeague()
	leagueRepo := memory.NewLeagueRepository([]league.League{target})
	teamRepo := memory.NewTeamRepository([]team.Team{seasonTeam(1, "Arsenal"), seasonTeam(2, "Brentford")})
	fixtureRepo := memory.NewFixtureRepository([]fixture.Fixture{
		completeFixture(1, 1, 2, 2, 0),
		completeFixture(2, 2, 1, 1, 1),
	})
	statsRepo := memory.NewTeamStatsRepository(nil)

	service := NewStandingsService(leagueRepo, teamRepo, fixtureRepo, statsRepo, logging.NewNop())

	ctx := context.Background()
	for pass := 0; pass < 2; pass++ {
		if err := service.Rebuild(ctx, target); err != nil {
			t.Fatalf("pass %d rebuild error: %v", pass, err)
		}
		if err := service.Rank(ctx, target); err != nil {
			t.Fatalf("pass %d rank error: %v", pass, err)
		}
	}

	table, err := service.GetStandings(ctx, target.ID)
	if err != nil {
		t.Fatalf("GetStandings error: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}
	top := table.Rows[0]
	if top.TeamID != 1 || top.Rank != 1 || top.Points != 4 || top.MatchesPlayed != 2 {
		t.Fatalf("unexpected leader after two passes: %+v", top)
	}
	if table.Rows[1].TeamID != 2 || table.Rows[1].Rank != 2 || table.Rows[1].Points != 1 {
		t.Fatalf("unexpected runner-up after two passes: %+v", table.Rows[1])
	}
}

// failingCardsFixtureRepo delegates everything to the in-memory repository
// except card totals, which always fail.
type failingCardsFixtureRepo struct {
	*memory.FixtureRepository
}

func (r *failingCardsFixtureRepo) CardTotalsBySeason(context.Context, int64) (map[int64]fixture.CardTotals, error) {
	return nil, errors.New("card totals unavailable")
}

func TestStandingsService_RankDegradesToZeroCardsOnLookupFailure(t *testing.T) {
	t.Parallel()

	target := testLeague()
	leagueRepo := memory.NewLeagueRepository([]league.League{target})
	teamRepo := memory.NewTeamRepository([]team.Team{seasonTeam(3, "Chelsea"), seasonTeam(4, "Derby")})
	fixtureRepo := &failingCardsFixtureRepo{
		FixtureRepository: memory.NewFixtureRepository([]fixture.Fixture{completeFixture(1, 3, 4, 1, 1)}),
	}
	statsRepo := memory.NewTeamStatsRepository(nil)

	service := NewStandingsService(leagueRepo, teamRepo, fixtureRepo, statsRepo, logging.NewNop())

	ctx := context.Background()
	if err := service.Rebuild(ctx, target); err != nil {
		t.Fatalf("rebuild error: %v", err)
	}
	if err := service.Rank(ctx, target); err != nil {
		t.Fatalf("rank must not fail on card lookup errors: %v", err)
	}

	table, err := service.GetStandings(ctx, target.ID)
	if err != nil {
		t.Fatalf("GetStandings error: %v", err)
	}
	// Both drew, so with zero cards the lower team id leads.
	if table.Rows[0].TeamID != 3 || table.Rows[0].Rank != 1 {
		t.Fatalf("unexpected leader with degraded cards: %+v", table.Rows[0])
	}
}

func TestStandingsService_GetStandingsValidation(t *testing.T) {
	t.Parallel()

	service := NewStandingsService(
		memory.NewLeagueRepository(nil),
		memory.NewTeamRepository(nil),
		memory.NewFixtureRepository(nil),
		memory.NewTeamStatsRepository(nil),
		logging.NewNop(),
	)

	if _, err := service.GetStandings(context.Background(), 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := service.GetStandings(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStandingsService_GetStandingsJoinsTeamNames(t *testing.T) {
	t.Parallel()

	target := testLeague()
	leagueRepo := memory.NewLeagueRepository([]league.League{target})
	teamRepo := memory.NewTeamRepository([]team.Team{seasonTeam(1, "Arsenal"), seasonTeam(2, "Brentford")})
	fixtureRepo := memory.NewFixtureRepository([]fixture.Fixture{completeFixture(1, 1, 2, 3, 1)})
	statsRepo := memory.NewTeamStatsRepository(nil)

	service := NewStandingsService(leagueRepo, teamRepo, fixtureRepo, statsRepo, logging.NewNop())

	ctx := context.Background()
	if err := service.Rebuild(ctx, target); err != nil {
		t.Fatalf("rebuild error: %v", err)
	}
	if err := service.Rank(ctx, target); err != nil {
		t.Fatalf("rank error: %v", err)
	}

	table, err := service.GetStandings(ctx, target.ID)
	if err != nil {
		t.Fatalf("GetStandings error: %v", err)
	}
	if table.LeagueName != "Premier League" || table.SeasonYear != 2025 {
		t.Fatalf("unexpected table header: %+v", table)
	}
	if table.Rows[0].TeamName != "Arsenal" {
		t.Fatalf("expected joined team name, got %q", table.Rows[0].TeamName)
	}
	if table.Rows[0].GoalDifference != 2 {
		t.Fatalf("expected goal difference 2, got %d", table.Rows[0].GoalDifference)
	}
}

func TestRankStandings_ProducesFullPermutation(t *testing.T) {
	t.Parallel()

	rows := make([]teamstats.Statistics, 0, 20)
	for i := int64(1); i <= 20; i++ {
		rows = append(rows, statsRow(i, int(i%4)*3, int(i%3), int(i%5), int(i%7)))
	}

	ordered := rankStandings(rows, nil, nil)
	if len(ordered) != len(rows) {
		t.Fatalf("expected %d rows, got %d", len(rows), len(ordered))
	}

	seen := make(map[int64]bool, len(ordered))
	for _, row := range ordered {
		if seen[row.TeamID] {
			t.Fatalf("team %d appears twice", row.TeamID)
		}
		seen[row.TeamID] = true
	}
	for i := int64(1); i <= 20; i++ {
		if !seen[i] {
			t.Fatalf("team %d missing from ranked output", i)
		}
	}
}

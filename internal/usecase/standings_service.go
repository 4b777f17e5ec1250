package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/riskibarqy/league-tracker/internal/domain/fixture"
	"github.com/riskibarqy/league-tracker/internal/domain/league"
	"github.com/riskibarqy/league-tracker/internal/domain/team"
	"github.com/riskibarqy/league-tracker/internal/domain/teamstats"
	"github.com/riskibarqy/league-tracker/internal/platform/logging"
)

type StandingRow struct {
	Rank           int    `json:"rank"`
	TeamID         int64  `json:"team_id"`
	TeamName       string `json:"team_name"`
	MatchesPlayed  int    `json:"matches_played"`
	Wins           int    `json:"wins"`
	Draws          int    `json:"draws"`
	Losses         int    `json:"losses"`
	GoalsFor       int    `json:"goals_for"`
	GoalsAgainst   int    `json:"goals_against"`
	GoalDifference int    `json:"goal_difference"`
	Points         int    `json:"points"`
}

type StandingsTable struct {
	LeagueID   int64         `json:"league_id"`
	LeagueName string        `json:"league_name"`
	SeasonID   int64         `json:"season_id"`
	SeasonYear int           `json:"season_year"`
	Rows       []StandingRow `json:"rows"`
}

// StandingsService derives league tables from stored fixtures. Rebuild is
// always a full recompute over completed fixtures; Rank then writes a
// 1..N permutation using the tie-break chain.
type StandingsService struct {
	leagueRepo  league.Repository
	teamRepo    team.Repository
	fixtureRepo fixture.Repository
	statsRepo   teamstats.Repository
	logger      *logging.Logger
}

func NewStandingsService(
	leagueRepo league.Repository,
	teamRepo team.Repository,
	fixtureRepo fixture.Repository,
	statsRepo teamstats.Repository,
	logger *logging.Logger,
) *StandingsService {
	if logger == nil {
		logger = logging.Default()
	}
	return &StandingsService{
		leagueRepo:  leagueRepo,
		teamRepo:    teamRepo,
		fixtureRepo: fixtureRepo,
		statsRepo:   statsRepo,
		logger:      logger,
	}
}

// Rebuild recomputes every counter for every team of the league's season
// from fixtures with status complete. Rank and position are reset to 0
// and restored by the ranking pass.
func (s *StandingsService) Rebuild(ctx context.Context, target league.League) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.Rebuild")
	defer span.End()

	teams, err := s.teamRepo.ListBySeason(ctx, target.SeasonID)
	if err != nil {
		return fmt.Errorf("rebuild standings league_id=%d: %w", target.ID, err)
	}
	fixtures, err := s.fixtureRepo.ListBySeason(ctx, target.SeasonID)
	if err != nil {
		return fmt.Errorf("rebuild standings league_id=%d: %w", target.ID, err)
	}

	rows := aggregateStandings(target, teams, fixtures)
	for _, row := range rows {
		if err := s.statsRepo.Upsert(ctx, row); err != nil {
			return fmt.Errorf("upsert team statistics team_id=%d: %w", row.TeamID, err)
		}
	}

	s.logger.InfoContext(ctx, "standings rebuilt",
		"league_id", target.ID,
		"season_id", target.SeasonID,
		"teams", len(rows),
	)
	return nil
}

// aggregateStandings folds completed fixtures into per-team counters.
// Each side counts independently, so a fixture against a team whose row
// was skipped during collection still counts for the side we do know.
func aggregateStandings(target league.League, teams []team.Team, fixtures []fixture.Fixture) []teamstats.Statistics {
	byTeam := make(map[int64]*teamstats.Statistics, len(teams))
	order := make([]int64, 0, len(teams))
	for _, t := range teams {
		byTeam[t.ID] = &teamstats.Statistics{
			TeamID:     t.ID,
			LeagueID:   target.ID,
			SeasonID:   target.SeasonID,
			SeasonYear: target.SeasonYear,
		}
		order = append(order, t.ID)
	}

	for _, f := range fixtures {
		if !fixture.IsComplete(f.Status) {
			continue
		}
		home, homeOK := byTeam[f.HomeTeamID]
		away, awayOK := byTeam[f.AwayTeamID]

		if homeOK {
			home.MatchesPlayed++
			home.GoalsFor += f.HomeGoals
			home.GoalsAgainst += f.AwayGoals
			switch {
			case f.HomeGoals > f.AwayGoals:
				home.Wins++
			case f.HomeGoals < f.AwayGoals:
				home.Losses++
			default:
				home.Draws++
			}
		}

		if awayOK {
			away.MatchesPlayed++
			away.GoalsFor += f.AwayGoals
			away.GoalsAgainst += f.HomeGoals
			switch {
			case f.HomeGoals > f.AwayGoals:
				away.Losses++
			case f.HomeGoals < f.AwayGoals:
				away.Wins++
			default:
				away.Draws++
			}
		}
	}

	out := make([]teamstats.Statistics, 0, len(order))
	for _, id := range order {
		row := byTeam[id]
		row.Points = 3*row.Wins + row.Draws
		out = append(out, *row)
	}
	return out
}

// Rank orders the league's statistics rows and persists rank = position =
// 1-based index. A failed card lookup degrades every team's cards to 0
// rather than aborting the pass.
func (s *StandingsService) Rank(ctx context.Context, target league.League) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.Rank")
	defer span.End()

	rows, err := s.statsRepo.ListByLeagueSeason(ctx, target.ID, target.SeasonID)
	if err != nil {
		return fmt.Errorf("rank standings league_id=%d: %w", target.ID, err)
	}
	if len(rows) == 0 {
		return nil
	}

	fixtures, err := s.fixtureRepo.ListBySeason(ctx, target.SeasonID)
	if err != nil {
		return fmt.Errorf("rank standings league_id=%d: %w", target.ID, err)
	}

	cards, err := s.fixtureRepo.CardTotalsBySeason(ctx, target.SeasonID)
	if err != nil {
		s.logger.WarnContext(ctx, "card totals lookup failed, ranking with zero cards",
			"league_id", target.ID,
			"error", err,
		)
		cards = map[int64]fixture.CardTotals{}
	}

	ordered := rankStandings(rows, fixtures, cards)
	for i, row := range ordered {
		if err := s.statsRepo.UpdateRank(ctx, row.TeamID, target.ID, target.SeasonID, i+1, i+1); err != nil {
			return fmt.Errorf("persist rank team_id=%d: %w", row.TeamID, err)
		}
	}
	return nil
}

type tieGroupKey struct {
	points, wins, gd, gf int
}

// rankStandings applies the tie-break chain: points, wins, goal
// difference, goals for, head-to-head points inside the tied group,
// fewer red cards, fewer yellow cards, lower team id.
func rankStandings(rows []teamstats.Statistics, fixtures []fixture.Fixture, cards map[int64]fixture.CardTotals) []teamstats.Statistics {
	groups := make(map[tieGroupKey][]int64, len(rows))
	for _, row := range rows {
		key := tieGroupKey{points: row.Points, wins: row.Wins, gd: row.GoalDifference(), gf: row.GoalsFor}
		groups[key] = append(groups[key], row.TeamID)
	}

	h2h := make(map[int64]int, len(rows))
	for _, members := range groups {
		if len(members) < 2 {
			continue
		}
		inGroup := make(map[int64]struct{}, len(members))
		for _, id := range members {
			inGroup[id] = struct{}{}
		}
		for _, f := range fixtures {
			if !fixture.IsComplete(f.Status) {
				continue
			}
			if _, ok := inGroup[f.HomeTeamID]; !ok {
				continue
			}
			if _, ok := inGroup[f.AwayTeamID]; !ok {
				continue
			}
			switch {
			case f.HomeGoals > f.AwayGoals:
				h2h[f.HomeTeamID] += 3
			case f.HomeGoals < f.AwayGoals:
				h2h[f.AwayTeamID] += 3
			default:
				h2h[f.HomeTeamID]++
				h2h[f.AwayTeamID]++
			}
		}
	}

	ordered := make([]teamstats.Statistics, len(rows))
	copy(ordered, rows)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.GoalDifference() != b.GoalDifference() {
			return a.GoalDifference() > b.GoalDifference()
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		if h2h[a.TeamID] != h2h[b.TeamID] {
			return h2h[a.TeamID] > h2h[b.TeamID]
		}
		aCards, bCards := cards[a.TeamID], cards[b.TeamID]
		if aCards.Red != bCards.Red {
			return aCards.Red < bCards.Red
		}
		if aCards.Yellow != bCards.Yellow {
			return aCards.Yellow < bCards.Yellow
		}
		return a.TeamID < b.TeamID
	})
	return ordered
}

// GetStandings is the read path behind the standings endpoint.
func (s *StandingsService) GetStandings(ctx context.Context, leagueID int64) (StandingsTable, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.GetStandings")
	defer span.End()

	if leagueID <= 0 {
		return StandingsTable{}, fmt.Errorf("%w: league id must be greater than zero", ErrInvalidInput)
	}

	target, found, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return StandingsTable{}, fmt.Errorf("get standings league_id=%d: %w", leagueID, err)
	}
	if !found {
		return StandingsTable{}, fmt.Errorf("%w: league %d", ErrNotFound, leagueID)
	}

	rows, err := s.statsRepo.ListByLeagueSeason(ctx, target.ID, target.SeasonID)
	if err != nil {
		return StandingsTable{}, fmt.Errorf("get standings league_id=%d: %w", leagueID, err)
	}

	teams, err := s.teamRepo.ListBySeason(ctx, target.SeasonID)
	if err != nil {
		return StandingsTable{}, fmt.Errorf("get standings league_id=%d: %w", leagueID, err)
	}
	nameByID := make(map[int64]string, len(teams))
	for _, t := range teams {
		nameByID[t.ID] = t.Name
	}

	table := StandingsTable{
		LeagueID:   target.ID,
		LeagueName: target.Name,
		SeasonID:   target.SeasonID,
		SeasonYear: target.SeasonYear,
		Rows:       make([]StandingRow, 0, len(rows)),
	}
	for _, row := range rows {
		table.Rows = append(table.Rows, StandingRow{
			Rank:           row.Rank,
			TeamID:         row.TeamID,
			TeamName:       nameByID[row.TeamID],
			MatchesPlayed:  row.MatchesPlayed,
			Wins:           row.Wins,
			Draws:          row.Draws,
			Losses:         row.Losses,
			GoalsFor:       row.GoalsFor,
			GoalsAgainst:   row.GoalsAgainst,
			GoalDifference: row.GoalDifference(),
			Points:         row.Points,
		})
	}

	// Ranked rows first; anything not yet ranked trails by points.
	sort.SliceStable(table.Rows, func(i, j int) bool {
		a, b := table.Rows[i], table.Rows[j]
		if (a.Rank > 0) != (b.Rank > 0) {
			return a.Rank > 0
		}
		if a.Rank != b.Rank {
			return a.Rank < b.Rank
		}
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		return a.TeamID < b.TeamID
	})
	return table, nil
}

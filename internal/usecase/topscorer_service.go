package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/league-tracker/internal/domain/league"
	"github.com/riskibarqy/league-tracker/internal/domain/player"
	"github.com/riskibarqy/league-tracker/internal/platform/logging"
)

const defaultTopScorerLimit = 20

type TopScorerRow struct {
	Rank          int    `json:"rank"`
	Name          string `json:"name"`
	TeamID        int64  `json:"team_id"`
	TeamName      string `json:"team_name"`
	Goals         int    `json:"goals"`
	Assists       int    `json:"assists"`
	MatchesPlayed int    `json:"matches_played"`
	MinutesPlayed int    `json:"minutes_played"`
}

type TopScorerTable struct {
	LeagueID   int64          `json:"league_id"`
	LeagueName string         `json:"league_name"`
	SeasonID   int64          `json:"season_id"`
	SeasonYear int            `json:"season_year"`
	Scorers    []TopScorerRow `json:"scorers"`
}

// TopScorerService serves the league top-scorer leaderboard from rows
// persisted by the collector.
type TopScorerService struct {
	leagueRepo league.Repository
	playerRepo player.Repository
	logger     *logging.Logger
}

func NewTopScorerService(leagueRepo league.Repository, playerRepo player.Repository, logger *logging.Logger) *TopScorerService {
	if logger == nil {
		logger = logging.Default()
	}
	return &TopScorerService{
		leagueRepo: leagueRepo,
		playerRepo: playerRepo,
		logger:     logger,
	}
}

func (s *TopScorerService) GetTopScorers(ctx context.Context, leagueID int64, limit int) (TopScorerTable, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TopScorerService.GetTopScorers")
	defer span.End()

	if leagueID <= 0 {
		return TopScorerTable{}, fmt.Errorf("%w: league id must be positive", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = defaultTopScorerLimit
	}

	target, found, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return TopScorerTable{}, fmt.Errorf("load league %d: %w", leagueID, err)
	}
	if !found {
		return TopScorerTable{}, fmt.Errorf("%w: league %d", ErrNotFound, leagueID)
	}

	rows, err := s.playerRepo.ListTopScorers(ctx, leagueID, limit)
	if err != nil {
		return TopScorerTable{}, fmt.Errorf("list top scorers for league %d: %w", leagueID, err)
	}

	out := TopScorerTable{
		LeagueID:   target.ID,
		LeagueName: target.Name,
		SeasonID:   target.SeasonID,
		SeasonYear: target.SeasonYear,
		Scorers:    make([]TopScorerRow, 0, len(rows)),
	}
	for i, row := range rows {
		out.Scorers = append(out.Scorers, TopScorerRow{
			Rank:          i + 1,
			Name:          row.Name,
			TeamID:        row.TeamID,
			TeamName:      row.TeamName,
			Goals:         row.Goals,
			Assists:       row.Assists,
			MatchesPlayed: row.MatchesPlayed,
			MinutesPlayed: row.MinutesPlayed,
		})
	}
	return out, nil
}

package postgres

import (
	"time"

	"github.com/riskibarqy/league-tracker/internal/domain/teamstats"
)

type teamStatsTableModel struct {
	TeamID        int64     `db:"team_id"`
	LeagueID      int64     `db:"league_id"`
	SeasonID      int64     `db:"season_id"`
	SeasonYear    int       `db:"season_year"`
	MatchesPlayed int       `db:"matches_played"`
	Wins          int       `db:"wins"`
	Draws         int       `db:"draws"`
	Losses        int       `db:"losses"`
	GoalsFor      int       `db:"goals_for"`
	GoalsAgainst  int       `db:"goals_against"`
	Points        int       `db:"points"`
	Rank          int       `db:"rank"`
	Position      int       `db:"position"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (m teamStatsTableModel) toDomain() teamstats.Statistics {
	return teamstats.Statistics{
		TeamID:        m.TeamID,
		LeagueID:      m.LeagueID,
		SeasonID:      m.SeasonID,
		SeasonYear:    m.SeasonYear,
		MatchesPlayed: m.MatchesPlayed,
		Wins:          m.Wins,
		Draws:         m.Draws,
		Losses:        m.Losses,
		GoalsFor:      m.GoalsFor,
		GoalsAgainst:  m.GoalsAgainst,
		Points:        m.Points,
		Rank:          m.Rank,
		Position:      m.Position,
	}
}

type teamStatsInsertModel struct {
	TeamID        int64     `db:"team_id"`
	LeagueID      int64     `db:"league_id"`
	SeasonID      int64     `db:"season_id"`
	SeasonYear    int       `db:"season_year"`
	MatchesPlayed int       `db:"matches_played"`
	Wins          int       `db:"wins"`
	Draws         int       `db:"draws"`
	Losses        int       `db:"losses"`
	GoalsFor      int       `db:"goals_for"`
	GoalsAgainst  int       `db:"goals_against"`
	Points        int       `db:"points"`
	Rank          int       `db:"rank"`
	Position      int       `db:"position"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

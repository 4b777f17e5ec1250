package postgres

import (
	"time"

	"github.com/riskibarqy/league-tracker/internal/domain/player"
)

type playerTableModel struct {
	ID            int64     `db:"id"`
	Name          string    `db:"name"`
	TeamID        int64     `db:"team_id"`
	TeamName      string    `db:"team_name"`
	LeagueID      int64     `db:"league_id"`
	SeasonID      int64     `db:"season_id"`
	Position      string    `db:"position"`
	Goals         int       `db:"goals"`
	Assists       int       `db:"assists"`
	MatchesPlayed int       `db:"matches_played"`
	MinutesPlayed int       `db:"minutes_played"`
	CleanSheets   int       `db:"clean_sheets"`
	YellowCards   int       `db:"yellow_cards"`
	RedCards      int       `db:"red_cards"`
	Age           int       `db:"age"`
	URL           string    `db:"url"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (m playerTableModel) toDomain() player.Player {
	return player.Player{
		ID:            m.ID,
		Name:          m.Name,
		TeamID:        m.TeamID,
		TeamName:      m.TeamName,
		LeagueID:      m.LeagueID,
		SeasonID:      m.SeasonID,
		Position:      m.Position,
		Goals:         m.Goals,
		Assists:       m.Assists,
		MatchesPlayed: m.MatchesPlayed,
		MinutesPlayed: m.MinutesPlayed,
		CleanSheets:   m.CleanSheets,
		YellowCards:   m.YellowCards,
		RedCards:      m.RedCards,
		Age:           m.Age,
		URL:           m.URL,
	}
}

type playerInsertModel struct {
	ID            int64     `db:"id"`
	Name          string    `db:"name"`
	TeamID        int64     `db:"team_id"`
	TeamName      string    `db:"team_name"`
	LeagueID      int64     `db:"league_id"`
	SeasonID      int64     `db:"season_id"`
	Position      string    `db:"position"`
	Goals         int       `db:"goals"`
	Assists       int       `db:"assists"`
	MatchesPlayed int       `db:"matches_played"`
	MinutesPlayed int       `db:"minutes_played"`
	CleanSheets   int       `db:"clean_sheets"`
	YellowCards   int       `db:"yellow_cards"`
	RedCards      int       `db:"red_cards"`
	Age           int       `db:"age"`
	URL           string    `db:"url"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

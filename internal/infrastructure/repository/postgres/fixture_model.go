package postgres

import (
	"time"

	"github.com/riskibarqy/league-tracker/internal/domain/fixture"
)

type fixtureTableModel struct {
	ID             int64     `db:"id"`
	LeagueID       int64     `db:"league_id"`
	SeasonID       int64     `db:"season_id"`
	HomeTeamID     int64     `db:"home_team_id"`
	AwayTeamID     int64     `db:"away_team_id"`
	HomeTeamName   string    `db:"home_team_name"`
	AwayTeamName   string    `db:"away_team_name"`
	Status         string    `db:"status"`
	DateUnix       int64     `db:"date_unix"`
	HomeGoals      int       `db:"home_goals"`
	AwayGoals      int       `db:"away_goals"`
	TotalGoals     int       `db:"total_goals"`
	HomeCorners    int       `db:"home_corners"`
	AwayCorners    int       `db:"away_corners"`
	HomePossession int       `db:"home_possession"`
	AwayPossession int       `db:"away_possession"`
	HomeShots      int       `db:"home_shots"`
	AwayShots      int       `db:"away_shots"`
	HomeXG         float64   `db:"home_xg"`
	AwayXG         float64   `db:"away_xg"`
	HomeYellow     int       `db:"home_yellow_cards"`
	AwayYellow     int       `db:"away_yellow_cards"`
	HomeRed        int       `db:"home_red_cards"`
	AwayRed        int       `db:"away_red_cards"`
	StadiumName    string    `db:"stadium_name"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (m fixtureTableModel) toDomain() fixture.Fixture {
	return fixture.Fixture{
		ID:              m.ID,
		LeagueID:        m.LeagueID,
		SeasonID:        m.SeasonID,
		HomeTeamID:      m.HomeTeamID,
		AwayTeamID:      m.AwayTeamID,
		HomeTeamName:    m.HomeTeamName,
		AwayTeamName:    m.AwayTeamName,
		Status:          m.Status,
		DateUnix:        m.DateUnix,
		HomeGoals:       m.HomeGoals,
		AwayGoals:       m.AwayGoals,
		TotalGoals:      m.TotalGoals,
		HomeCorners:     m.HomeCorners,
		AwayCorners:     m.AwayCorners,
		HomePossession:  m.HomePossession,
		AwayPossession:  m.AwayPossession,
		HomeShots:       m.HomeShots,
		AwayShots:       m.AwayShots,
		HomeXG:          m.HomeXG,
		AwayXG:          m.AwayXG,
		HomeYellowCards: m.HomeYellow,
		AwayYellowCards: m.AwayYellow,
		HomeRedCards:    m.HomeRed,
		AwayRedCards:    m.AwayRed,
		StadiumName:     m.StadiumName,
	}
}

type fixtureInsertModel struct {
	ID             int64     `db:"id"`
	LeagueID       int64     `db:"league_id"`
	SeasonID       int64     `db:"season_id"`
	HomeTeamID     int64     `db:"home_team_id"`
	AwayTeamID     int64     `db:"away_team_id"`
	HomeTeamName   string    `db:"home_team_name"`
	AwayTeamName   string    `db:"away_team_name"`
	Status         string    `db:"status"`
	DateUnix       int64     `db:"date_unix"`
	HomeGoals      int       `db:"home_goals"`
	AwayGoals      int       `db:"away_goals"`
	TotalGoals     int       `db:"total_goals"`
	HomeCorners    int       `db:"home_corners"`
	AwayCorners    int       `db:"away_corners"`
	HomePossession int       `db:"home_possession"`
	AwayPossession int       `db:"away_possession"`
	HomeShots      int       `db:"home_shots"`
	AwayShots      int       `db:"away_shots"`
	HomeXG         float64   `db:"home_xg"`
	AwayXG         float64   `db:"away_xg"`
	HomeYellow     int       `db:"home_yellow_cards"`
	AwayYellow     int       `db:"away_yellow_cards"`
	HomeRed        int       `db:"home_red_cards"`
	AwayRed        int       `db:"away_red_cards"`
	StadiumName    string    `db:"stadium_name"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

type cardTotalsRow struct {
	TeamID int64 `db:"team_id"`
	Yellow int   `db:"yellow"`
	Red    int   `db:"red"`
}

package postgres

import (
	"time"

	"github.com/riskibarqy/league-tracker/internal/domain/team"
)

type teamTableModel struct {
	ID              int64     `db:"id"`
	LeagueID        int64     `db:"league_id"`
	SeasonID        int64     `db:"season_id"`
	Name            string    `db:"name"`
	CleanName       string    `db:"clean_name"`
	Country         string    `db:"country"`
	Image           string    `db:"image"`
	URL             string    `db:"url"`
	TablePosition   int       `db:"table_position"`
	PerformanceRank int       `db:"performance_rank"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

func (m teamTableModel) toDomain() team.Team {
	return team.Team{
		ID:              m.ID,
		LeagueID:        m.LeagueID,
		SeasonID:        m.SeasonID,
		Name:            m.Name,
		CleanName:       m.CleanName,
		Country:         m.Country,
		Image:           m.Image,
		URL:             m.URL,
		TablePosition:   m.TablePosition,
		PerformanceRank: m.PerformanceRank,
	}
}

type teamInsertModel struct {
	ID              int64     `db:"id"`
	LeagueID        int64     `db:"league_id"`
	SeasonID        int64     `db:"season_id"`
	Name            string    `db:"name"`
	CleanName       string    `db:"clean_name"`
	Country         string    `db:"country"`
	Image           string    `db:"image"`
	URL             string    `db:"url"`
	TablePosition   int       `db:"table_position"`
	PerformanceRank int       `db:"performance_rank"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

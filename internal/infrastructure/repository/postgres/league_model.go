package postgres

import (
	"time"

	"github.com/riskibarqy/league-tracker/internal/domain/league"
)

type leagueTableModel struct {
	ID         int64     `db:"id"`
	Name       string    `db:"name"`
	Country    string    `db:"country"`
	Image      string    `db:"image"`
	SeasonID   int64     `db:"season_id"`
	SeasonYear int       `db:"season_year"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (m leagueTableModel) toDomain() league.League {
	return league.League{
		ID:         m.ID,
		Name:       m.Name,
		Country:    m.Country,
		Image:      m.Image,
		SeasonID:   m.SeasonID,
		SeasonYear: m.SeasonYear,
	}
}

type leagueInsertModel struct {
	ID         int64     `db:"id"`
	Name       string    `db:"name"`
	Country    string    `db:"country"`
	Image      string    `db:"image"`
	SeasonID   int64     `db:"season_id"`
	SeasonYear int       `db:"season_year"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

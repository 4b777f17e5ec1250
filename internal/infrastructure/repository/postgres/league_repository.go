package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/league-tracker/internal/domain/league"
	qb "github.com/riskibarqy/league-tracker/internal/platform/querybuilder"
)

type LeagueRepository struct {
	db *sqlx.DB
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

func (r *LeagueRepository) List(ctx context.Context) ([]league.League, error) {
	query, args, err := qb.Select("*").From("leagues").
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select leagues query: %w", err)
	}

	var rows []leagueTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select leagues: %w", err)
	}

	out := make([]league.League, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID int64) (league.League, bool, error) {
	return r.getOne(ctx, qb.Eq("id", leagueID))
}

func (r *LeagueRepository) GetBySeasonID(ctx context.Context, seasonID int64) (league.League, bool, error) {
	return r.getOne(ctx, qb.Eq("season_id", seasonID))
}

func (r *LeagueRepository) getOne(ctx context.Context, cond qb.Condition) (league.League, bool, error) {
	query, args, err := qb.Select("*").From("leagues").
		Where(cond).
		Limit(1).
		ToSQL()
	if err != nil {
		return league.League{}, false, fmt.Errorf("build get league query: %w", err)
	}

	var row leagueTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return league.League{}, false, nil
		}
		return league.League{}, false, fmt.Errorf("get league: %w", err)
	}
	return row.toDomain(), true, nil
}

// Upsert keys on season_id. An existing row keeps its internal id and gets
// every descriptive field overwritten; a lost insert race re-reads the
// winning row and updates it instead of surfacing the conflict.
func (r *LeagueRepository) Upsert(ctx context.Context, item league.League) error {
	existing, found, err := r.GetBySeasonID(ctx, item.SeasonID)
	if err != nil {
		return err
	}
	if found {
		return r.update(ctx, existing.ID, item)
	}

	if err := r.insert(ctx, item); err != nil {
		if !isUniqueViolation(err) {
			return err
		}
		winner, found, readErr := r.GetBySeasonID(ctx, item.SeasonID)
		if readErr != nil {
			return readErr
		}
		if !found {
			return err
		}
		return r.update(ctx, winner.ID, item)
	}
	return nil
}

func (r *LeagueRepository) insert(ctx context.Context, item league.League) error {
	now := time.Now().UTC()
	query, args, err := qb.InsertModel("leagues", leagueInsertModel{
		ID:         item.ID,
		Name:       item.Name,
		Country:    item.Country,
		Image:      item.Image,
		SeasonID:   item.SeasonID,
		SeasonYear: item.SeasonYear,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert league query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert league season_id=%d: %w", item.SeasonID, err)
	}
	return nil
}

func (r *LeagueRepository) update(ctx context.Context, id int64, item league.League) error {
	query, args, err := qb.Update("leagues").
		Set("name", item.Name).
		Set("country", item.Country).
		Set("image", item.Image).
		Set("season_year", item.SeasonYear).
		Set("updated_at", time.Now().UTC()).
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update league query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update league id=%d: %w", id, err)
	}
	return nil
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/league-tracker/internal/domain/team"
	qb "github.com/riskibarqy/league-tracker/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) ListBySeason(ctx context.Context, seasonID int64) ([]team.Team, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(qb.Eq("season_id", seasonID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select teams by season query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select teams by season: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// Upsert keys on (id, season_id) since the same club plays many seasons.
func (r *TeamRepository) Upsert(ctx context.Context, item team.Team) error {
	found, err := r.exists(ctx, item.ID, item.SeasonID)
	if err != nil {
		return err
	}
	if found {
		return r.update(ctx, item)
	}

	if err := r.insert(ctx, item); err != nil {
		if !isUniqueViolation(err) {
			return err
		}
		return r.update(ctx, item)
	}
	return nil
}

func (r *TeamRepository) exists(ctx context.Context, id, seasonID int64) (bool, error) {
	query, args, err := qb.Select("id").From("teams").
		Where(qb.Eq("id", id), qb.Eq("season_id", seasonID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build get team query: %w", err)
	}

	var existingID int64
	if err := r.db.GetContext(ctx, &existingID, query, args...); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("get team: %w", err)
	}
	return true, nil
}

func (r *TeamRepository) insert(ctx context.Context, item team.Team) error {
	now := time.Now().UTC()
	query, args, err := qb.InsertModel("teams", teamInsertModel{
		ID:              item.ID,
		LeagueID:        item.LeagueID,
		SeasonID:        item.SeasonID,
		Name:            item.Name,
		CleanName:       item.CleanName,
		Country:         item.Country,
		Image:           item.Image,
		URL:             item.URL,
		TablePosition:   item.TablePosition,
		PerformanceRank: item.PerformanceRank,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert team query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert team id=%d season_id=%d: %w", item.ID, item.SeasonID, err)
	}
	return nil
}

func (r *TeamRepository) update(ctx context.Context, item team.Team) error {
	query, args, err := qb.Update("teams").
		Set("league_id", item.LeagueID).
		Set("name", item.Name).
		Set("clean_name", item.CleanName).
		Set("country", item.Country).
		Set("image", item.Image).
		Set("url", item.URL).
		Set("table_position", item.TablePosition).
		Set("performance_rank", item.PerformanceRank).
		Set("updated_at", time.Now().UTC()).
		Where(qb.Eq("id", item.ID), qb.Eq("season_id", item.SeasonID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update team query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update team id=%d season_id=%d: %w", item.ID, item.SeasonID, err)
	}
	return nil
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/league-tracker/internal/domain/teamstats"
	qb "github.com/riskibarqy/league-tracker/internal/platform/querybuilder"
)

type TeamStatsRepository struct {
	db *sqlx.DB
}

func NewTeamStatsRepository(db *sqlx.DB) *TeamStatsRepository {
	return &TeamStatsRepository{db: db}
}

func (r *TeamStatsRepository) ListByLeagueSeason(ctx context.Context, leagueID, seasonID int64) ([]teamstats.Statistics, error) {
	query, args, err := qb.Select("*").From("team_statistics").
		Where(qb.Eq("league_id", leagueID), qb.Eq("season_id", seasonID)).
		OrderBy("rank", "team_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select team statistics query: %w", err)
	}

	var rows []teamStatsTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select team statistics: %w", err)
	}

	out := make([]teamstats.Statistics, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// Upsert keys on (team_id, season_id) and overwrites every computed
// counter. Rank and position are reset here; the ranking pass writes them
// through UpdateRank afterwards.
func (r *TeamStatsRepository) Upsert(ctx context.Context, item teamstats.Statistics) error {
	found, err := r.exists(ctx, item.TeamID, item.SeasonID)
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

func (r *TeamStatsRepository) UpdateRank(ctx context.Context, teamID, leagueID, seasonID int64, rank, position int) error {
	query, args, err := qb.Update("team_statistics").
		Set("rank", rank).
		Set("position", position).
		Set("updated_at", time.Now().UTC()).
		Where(
			qb.Eq("team_id", teamID),
			qb.Eq("league_id", leagueID),
			qb.Eq("season_id", seasonID),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update rank query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update rank team_id=%d season_id=%d: %w", teamID, seasonID, err)
	}
	return nil
}

func (r *TeamStatsRepository) exists(ctx context.Context, teamID, seasonID int64) (bool, error) {
	query, args, err := qb.Select("team_id").From("team_statistics").
		Where(qb.Eq("team_id", teamID), qb.Eq("season_id", seasonID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build get team statistics query: %w", err)
	}

	var existingID int64
	if err := r.db.GetContext(ctx, &existingID, query, args...); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("get team statistics: %w", err)
	}
	return true, nil
}

func (r *TeamStatsRepository) insert(ctx context.Context, item teamstats.Statistics) error {
	now := time.Now().UTC()
	query, args, err := qb.InsertModel("team_statistics", teamStatsInsertModel{
		TeamID:        item.TeamID,
		LeagueID:      item.LeagueID,
		SeasonID:      item.SeasonID,
		SeasonYear:    item.SeasonYear,
		MatchesPlayed: item.MatchesPlayed,
		Wins:          item.Wins,
		Draws:         item.Draws,
		Losses:        item.Losses,
		GoalsFor:      item.GoalsFor,
		GoalsAgainst:  item.GoalsAgainst,
		Points:        item.Points,
		Rank:          item.Rank,
		Position:      item.Position,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert team statistics query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert team statistics team_id=%d season_id=%d: %w", item.TeamID, item.SeasonID, err)
	}
	return nil
}

func (r *TeamStatsRepository) update(ctx context.Context, item teamstats.Statistics) error {
	query, args, err := qb.Update("team_statistics").
		Set("league_id", item.LeagueID).
		Set("season_year", item.SeasonYear).
		Set("matches_played", item.MatchesPlayed).
		Set("wins", item.Wins).
		Set("draws", item.Draws).
		Set("losses", item.Losses).
		Set("goals_for", item.GoalsFor).
		Set("goals_against", item.GoalsAgainst).
		Set("points", item.Points).
		Set("rank", item.Rank).
		Set("position", item.Position).
		Set("updated_at", time.Now().UTC()).
		Where(qb.Eq("team_id", item.TeamID), qb.Eq("season_id", item.SeasonID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update team statistics query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update team statistics team_id=%d season_id=%d: %w", item.TeamID, item.SeasonID, err)
	}
	return nil
}

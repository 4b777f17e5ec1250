package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/league-tracker/internal/domain/player"
	qb "github.com/riskibarqy/league-tracker/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) ListTopScorers(ctx context.Context, leagueID int64, limit int) ([]player.Player, error) {
	if limit <= 0 {
		limit = 10
	}

	query, args, err := qb.Select("*").From("players").
		Where(qb.Eq("league_id", leagueID)).
		OrderBy("goals DESC", "assists DESC", "minutes_played ASC", "name ASC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select top scorers query: %w", err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select top scorers: %w", err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// Upsert keys on (name, team_id, season_id): the provider does not carry
// a stable player id across seasons, so identity is the natural key.
func (r *PlayerRepository) Upsert(ctx context.Context, item player.Player) error {
	found, err := r.exists(ctx, item)
	if err != nil {
		return err
	}
	if found {
		_, err := r.update(ctx, item)
		return err
	}

	if err := r.insert(ctx, item); err != nil {
		if !isUniqueViolation(err) {
			return err
		}
		// a concurrent writer won the natural-key insert; converge on its row
		matched, err := r.update(ctx, item)
		if err != nil {
			return err
		}
		if matched == 0 {
			return fmt.Errorf("upsert player name=%q team_id=%d season_id=%d: conflicting row does not match natural key",
				item.Name, item.TeamID, item.SeasonID)
		}
	}
	return nil
}

func (r *PlayerRepository) exists(ctx context.Context, item player.Player) (bool, error) {
	query, args, err := qb.Select("id").From("players").
		Where(
			qb.Eq("name", item.Name),
			qb.Eq("team_id", item.TeamID),
			qb.Eq("season_id", item.SeasonID),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build get player query: %w", err)
	}

	var existingID int64
	if err := r.db.GetContext(ctx, &existingID, query, args...); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("get player: %w", err)
	}
	return true, nil
}

func (r *PlayerRepository) insert(ctx context.Context, item player.Player) error {
	now := time.Now().UTC()
	query, args, err := qb.InsertModel("players", playerInsertModel{
		ID:            item.ID,
		Name:          item.Name,
		TeamID:        item.TeamID,
		TeamName:      item.TeamName,
		LeagueID:      item.LeagueID,
		SeasonID:      item.SeasonID,
		Position:      item.Position,
		Goals:         item.Goals,
		Assists:       item.Assists,
		MatchesPlayed: item.MatchesPlayed,
		MinutesPlayed: item.MinutesPlayed,
		CleanSheets:   item.CleanSheets,
		YellowCards:   item.YellowCards,
		RedCards:      item.RedCards,
		Age:           item.Age,
		URL:           item.URL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert player query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert player name=%q team_id=%d: %w", item.Name, item.TeamID, err)
	}
	return nil
}

func (r *PlayerRepository) update(ctx context.Context, item player.Player) (int64, error) {
	query, args, err := qb.Update("players").
		Set("team_name", item.TeamName).
		Set("league_id", item.LeagueID).
		Set("position", item.Position).
		Set("goals", item.Goals).
		Set("assists", item.Assists).
		Set("matches_played", item.MatchesPlayed).
		Set("minutes_played", item.MinutesPlayed).
		Set("clean_sheets", item.CleanSheets).
		Set("yellow_cards", item.YellowCards).
		Set("red_cards", item.RedCards).
		Set("age", item.Age).
		Set("url", item.URL).
		Set("updated_at", time.Now().UTC()).
		Where(
			qb.Eq("name", item.Name),
			qb.Eq("team_id", item.TeamID),
			qb.Eq("season_id", item.SeasonID),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build update player query: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("update player name=%q team_id=%d: %w", item.Name, item.TeamID, err)
	}
	matched, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update player name=%q team_id=%d: rows affected: %w", item.Name, item.TeamID, err)
	}
	return matched, nil
}

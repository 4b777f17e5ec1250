package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/league-tracker/internal/domain/fixture"
	qb "github.com/riskibarqy/league-tracker/internal/platform/querybuilder"
)

type FixtureRepository struct {
	db *sqlx.DB
}

func NewFixtureRepository(db *sqlx.DB) *FixtureRepository {
	return &FixtureRepository{db: db}
}

func (r *FixtureRepository) ListBySeason(ctx context.Context, seasonID int64) ([]fixture.Fixture, error) {
	query, args, err := qb.Select("*").From("fixtures").
		Where(qb.Eq("season_id", seasonID)).
		OrderBy("date_unix", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select fixtures by season query: %w", err)
	}

	var rows []fixtureTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select fixtures by season: %w", err)
	}

	out := make([]fixture.Fixture, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// ListNeedingRefresh pulls every fixture that could move a league table
// right now: anything the provider flags live, plus everything whose
// kickoff falls inside [ref-Trailing, ref+Upcoming]. Final classification
// happens in the service over normalized statuses.
func (r *FixtureRepository) ListNeedingRefresh(ctx context.Context, ref time.Time, window fixture.RefreshWindow) ([]fixture.Fixture, error) {
	lower := ref.Add(-window.Trailing).Unix()
	upper := ref.Add(window.Upcoming).Unix()

	query, args, err := qb.Select("*").From("fixtures").
		Where(qb.Expr(
			"(status IN ('live','1h','2h','ht','et','p','inprogress') OR (date_unix >= ? AND date_unix <= ?))",
			lower, upper,
		)).
		OrderBy("date_unix", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select fixtures needing refresh query: %w", err)
	}

	var rows []fixtureTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select fixtures needing refresh: %w", err)
	}

	out := make([]fixture.Fixture, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

const cardTotalsQuery = `
SELECT team_id, COALESCE(SUM(yellow), 0) AS yellow, COALESCE(SUM(red), 0) AS red
FROM (
    SELECT home_team_id AS team_id, home_yellow_cards AS yellow, home_red_cards AS red
    FROM fixtures WHERE season_id = $1 AND status = 'complete'
    UNION ALL
    SELECT away_team_id, away_yellow_cards, away_red_cards
    FROM fixtures WHERE season_id = $2 AND status = 'complete'
) sides
GROUP BY team_id`

func (r *FixtureRepository) CardTotalsBySeason(ctx context.Context, seasonID int64) (map[int64]fixture.CardTotals, error) {
	var rows []cardTotalsRow
	if err := r.db.SelectContext(ctx, &rows, cardTotalsQuery, seasonID, seasonID); err != nil {
		return nil, fmt.Errorf("select card totals by season: %w", err)
	}

	out := make(map[int64]fixture.CardTotals, len(rows))
	for _, row := range rows {
		out[row.TeamID] = fixture.CardTotals{Yellow: row.Yellow, Red: row.Red}
	}
	return out, nil
}

// Upsert keys on the provider fixture id.
func (r *FixtureRepository) Upsert(ctx context.Context, item fixture.Fixture) error {
	found, err := r.exists(ctx, item.ID)
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

func (r *FixtureRepository) exists(ctx context.Context, id int64) (bool, error) {
	query, args, err := qb.Select("id").From("fixtures").
		Where(qb.Eq("id", id)).
		Limit(1).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build get fixture query: %w", err)
	}

	var existingID int64
	if err := r.db.GetContext(ctx, &existingID, query, args...); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("get fixture: %w", err)
	}
	return true, nil
}

func (r *FixtureRepository) insert(ctx context.Context, item fixture.Fixture) error {
	now := time.Now().UTC()
	query, args, err := qb.InsertModel("fixtures", fixtureInsertModel{
		ID:             item.ID,
		LeagueID:       item.LeagueID,
		SeasonID:       item.SeasonID,
		HomeTeamID:     item.HomeTeamID,
		AwayTeamID:     item.AwayTeamID,
		HomeTeamName:   item.HomeTeamName,
		AwayTeamName:   item.AwayTeamName,
		Status:         item.Status,
		DateUnix:       item.DateUnix,
		HomeGoals:      item.HomeGoals,
		AwayGoals:      item.AwayGoals,
		TotalGoals:     item.TotalGoals,
		HomeCorners:    item.HomeCorners,
		AwayCorners:    item.AwayCorners,
		HomePossession: item.HomePossession,
		AwayPossession: item.AwayPossession,
		HomeShots:      item.HomeShots,
		AwayShots:      item.AwayShots,
		HomeXG:         item.HomeXG,
		AwayXG:         item.AwayXG,
		HomeYellow:     item.HomeYellowCards,
		AwayYellow:     item.AwayYellowCards,
		HomeRed:        item.HomeRedCards,
		AwayRed:        item.AwayRedCards,
		StadiumName:    item.StadiumName,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert fixture query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert fixture id=%d: %w", item.ID, err)
	}
	return nil
}

func (r *FixtureRepository) update(ctx context.Context, item fixture.Fixture) error {
	query, args, err := qb.Update("fixtures").
		Set("league_id", item.LeagueID).
		Set("season_id", item.SeasonID).
		Set("home_team_id", item.HomeTeamID).
		Set("away_team_id", item.AwayTeamID).
		Set("home_team_name", item.HomeTeamName).
		Set("away_team_name", item.AwayTeamName).
		Set("status", item.Status).
		Set("date_unix", item.DateUnix).
		Set("home_goals", item.HomeGoals).
		Set("away_goals", item.AwayGoals).
		Set("total_goals", item.TotalGoals).
		Set("home_corners", item.HomeCorners).
		Set("away_corners", item.AwayCorners).
		Set("home_possession", item.HomePossession).
		Set("away_possession", item.AwayPossession).
		Set("home_shots", item.HomeShots).
		Set("away_shots", item.AwayShots).
		Set("home_xg", item.HomeXG).
		Set("away_xg", item.AwayXG).
		Set("home_yellow_cards", item.HomeYellowCards).
		Set("away_yellow_cards", item.AwayYellowCards).
		Set("home_red_cards", item.HomeRedCards).
		Set("away_red_cards", item.AwayRedCards).
		Set("stadium_name", item.StadiumName).
		Set("updated_at", time.Now().UTC()).
		Where(qb.Eq("id", item.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update fixture query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update fixture id=%d: %w", item.ID, err)
	}
	return nil
}

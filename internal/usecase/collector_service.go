package usecase

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/riskibarqy/league-tracker/internal/domain/fixture"
	"github.com/riskibarqy/league-tracker/internal/domain/league"
	"github.com/riskibarqy/league-tracker/internal/domain/player"
	"github.com/riskibarqy/league-tracker/internal/domain/team"
	"github.com/riskibarqy/league-tracker/internal/platform/logging"
)

// derivedLeagueIDSpace keeps generated internal ids inside a predictable
// range so they never collide with row counts in dashboards.
const derivedLeagueIDSpace = 1_000_000

// LeagueCollectionResult counts what one full per-league pass persisted
// and what it skipped as malformed.
type LeagueCollectionResult struct {
	LeagueID         int64 `json:"league_id"`
	SeasonID         int64 `json:"season_id"`
	TeamsUpserted    int   `json:"teams_upserted"`
	TeamsSkipped     int   `json:"teams_skipped"`
	FixturesUpserted int   `json:"fixtures_upserted"`
	FixturesSkipped  int   `json:"fixtures_skipped"`
	PlayersUpserted  int   `json:"players_upserted"`
	PlayersSkipped   int   `json:"players_skipped"`
}

// CollectorService reconciles provider payloads into the relational
// store. Every write is an idempotent natural-key upsert; malformed
// records are skipped with a warning, never aborting the batch.
type CollectorService struct {
	provider    SportDataProvider
	leagueRepo  league.Repository
	teamRepo    team.Repository
	fixtureRepo fixture.Repository
	playerRepo  player.Repository
	standings   *StandingsService
	logger      *logging.Logger
}

func NewCollectorService(
	provider SportDataProvider,
	leagueRepo league.Repository,
	teamRepo team.Repository,
	fixtureRepo fixture.Repository,
	playerRepo player.Repository,
	standings *StandingsService,
	logger *logging.Logger,
) *CollectorService {
	if logger == nil {
		logger = logging.Default()
	}
	return &CollectorService{
		provider:    provider,
		leagueRepo:  leagueRepo,
		teamRepo:    teamRepo,
		fixtureRepo: fixtureRepo,
		playerRepo:  playerRepo,
		standings:   standings,
		logger:      logger,
	}
}

// SyncLeagues refreshes the tracked league set from the provider's
// league list, pinning each league to its most recent season. The caller
// decides whether an empty result is fatal.
func (s *CollectorService) SyncLeagues(ctx context.Context) ([]league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CollectorService.SyncLeagues")
	defer span.End()

	externals, err := s.provider.FetchLeagues(ctx)
	if err != nil {
		return nil, fmt.Errorf("sync leagues: %w", err)
	}

	out := make([]league.League, 0, len(externals))
	for _, item := range externals {
		season, ok := latestSeason(item.Seasons)
		if !ok {
			s.logger.WarnContext(ctx, "skip league without seasons", "league_name", item.Name)
			continue
		}

		id, err := s.resolveLeagueID(ctx, item, season.ID)
		if err != nil {
			return nil, err
		}

		candidate := league.League{
			ID:         id,
			Name:       item.Name,
			Country:    item.Country,
			Image:      item.Image,
			SeasonID:   season.ID,
			SeasonYear: season.Year,
		}
		if err := candidate.Validate(); err != nil {
			s.logger.WarnContext(ctx, "skip malformed league record", "league_name", item.Name, "error", err)
			continue
		}
		if err := s.leagueRepo.Upsert(ctx, candidate); err != nil {
			return nil, fmt.Errorf("upsert league season_id=%d: %w", season.ID, err)
		}
		out = append(out, candidate)
	}

	return out, nil
}

// resolveLeagueID keeps an existing row's internal id and derives a
// stable one from the natural key otherwise, since the provider exposes
// no usable league id.
func (s *CollectorService) resolveLeagueID(ctx context.Context, item ExternalLeague, seasonID int64) (int64, error) {
	existing, found, err := s.leagueRepo.GetBySeasonID(ctx, seasonID)
	if err != nil {
		return 0, fmt.Errorf("resolve league id season_id=%d: %w", seasonID, err)
	}
	if found {
		return existing.ID, nil
	}
	return deriveLeagueID(item.Name, item.Country, seasonID), nil
}

func deriveLeagueID(name, country string, seasonID int64) int64 {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s_%s_%d", strings.TrimSpace(name), strings.TrimSpace(country), seasonID)
	id := int64(h.Sum32()) % derivedLeagueIDSpace
	if id <= 0 {
		id = derivedLeagueIDSpace - 1
	}
	return id
}

func latestSeason(seasons []ExternalSeason) (ExternalSeason, bool) {
	var best ExternalSeason
	found := false
	for _, season := range seasons {
		if season.ID <= 0 {
			continue
		}
		if !found || season.Year > best.Year || (season.Year == best.Year && season.ID > best.ID) {
			best = season
			found = true
		}
	}
	return best, found
}

// CollectLeague runs the full per-league pipeline: teams, fixtures,
// players, then standings rebuild and rank.
func (s *CollectorService) CollectLeague(ctx context.Context, target league.League) (LeagueCollectionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CollectorService.CollectLeague")
	defer span.End()

	result := LeagueCollectionResult{LeagueID: target.ID, SeasonID: target.SeasonID}

	teams, err := s.provider.FetchLeagueTeams(ctx, target.SeasonID)
	if err != nil {
		return result, fmt.Errorf("collect league id=%d: %w", target.ID, err)
	}
	result.TeamsUpserted, result.TeamsSkipped, err = s.reconcileTeams(ctx, target, teams)
	if err != nil {
		return result, err
	}

	matches, err := s.provider.FetchLeagueMatches(ctx, target.SeasonID)
	if err != nil {
		return result, fmt.Errorf("collect league id=%d: %w", target.ID, err)
	}
	result.FixturesUpserted, result.FixturesSkipped, err = s.reconcileFixtures(ctx, target, matches)
	if err != nil {
		return result, err
	}

	players, err := s.provider.FetchLeaguePlayers(ctx, target.SeasonID)
	if err != nil {
		return result, fmt.Errorf("collect league id=%d: %w", target.ID, err)
	}
	result.PlayersUpserted, result.PlayersSkipped, err = s.reconcilePlayers(ctx, target, players)
	if err != nil {
		return result, err
	}

	if err := s.standings.Rebuild(ctx, target); err != nil {
		return result, err
	}
	if err := s.standings.Rank(ctx, target); err != nil {
		return result, err
	}
	return result, nil
}

// RefreshLeagueFixtures is the light path used by the live delta loop:
// only league-matches is fetched and reconciled. Standings are rebuilt
// only when the caller saw live fixtures in the league.
func (s *CollectorService) RefreshLeagueFixtures(ctx context.Context, target league.League, rebuild bool) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CollectorService.RefreshLeagueFixtures")
	defer span.End()

	matches, err := s.provider.FetchLeagueMatches(ctx, target.SeasonID)
	if err != nil {
		return 0, fmt.Errorf("refresh league id=%d fixtures: %w", target.ID, err)
	}
	upserted, _, err := s.reconcileFixtures(ctx, target, matches)
	if err != nil {
		return upserted, err
	}

	if rebuild {
		if err := s.standings.Rebuild(ctx, target); err != nil {
			return upserted, err
		}
		if err := s.standings.Rank(ctx, target); err != nil {
			return upserted, err
		}
	}
	return upserted, nil
}

func (s *CollectorService) reconcileTeams(ctx context.Context, target league.League, items []ExternalTeam) (int, int, error) {
	upserted, skipped := 0, 0
	for _, item := range items {
		candidate := team.Team{
			ID:              item.ExternalID,
			LeagueID:        target.ID,
			SeasonID:        target.SeasonID,
			Name:            item.Name,
			CleanName:       item.CleanName,
			Country:         item.Country,
			Image:           item.Image,
			URL:             item.URL,
			TablePosition:   item.TablePosition,
			PerformanceRank: item.PerformanceRank,
		}
		if err := candidate.Validate(); err != nil {
			skipped++
			s.logger.WarnContext(ctx, "skip malformed team record", "league_id", target.ID, "team_id", item.ExternalID, "error", err)
			continue
		}
		if err := s.teamRepo.Upsert(ctx, candidate); err != nil {
			return upserted, skipped, fmt.Errorf("upsert team id=%d: %w", candidate.ID, err)
		}
		upserted++
	}
	return upserted, skipped, nil
}

func (s *CollectorService) reconcileFixtures(ctx context.Context, target league.League, items []ExternalMatch) (int, int, error) {
	upserted, skipped := 0, 0
	for _, item := range items {
		candidate := fixture.Fixture{
			ID:              item.ExternalID,
			LeagueID:        target.ID,
			SeasonID:        target.SeasonID,
			HomeTeamID:      item.HomeTeamID,
			AwayTeamID:      item.AwayTeamID,
			HomeTeamName:    item.HomeTeamName,
			AwayTeamName:    item.AwayTeamName,
			Status:          fixture.NormalizeStatus(item.Status),
			DateUnix:        item.DateUnix,
			HomeGoals:       item.HomeGoals,
			AwayGoals:       item.AwayGoals,
			TotalGoals:      item.TotalGoals,
			HomeCorners:     item.HomeCorners,
			AwayCorners:     item.AwayCorners,
			HomePossession:  item.HomePossession,
			AwayPossession:  item.AwayPossession,
			HomeShots:       item.HomeShots,
			AwayShots:       item.AwayShots,
			HomeXG:          item.HomeXG,
			AwayXG:          item.AwayXG,
			HomeYellowCards: item.HomeYellow,
			AwayYellowCards: item.AwayYellow,
			HomeRedCards:    item.HomeRed,
			AwayRedCards:    item.AwayRed,
			StadiumName:     item.StadiumName,
		}
		if err := candidate.Validate(); err != nil {
			skipped++
			s.logger.WarnContext(ctx, "skip malformed fixture record", "league_id", target.ID, "fixture_id", item.ExternalID, "error", err)
			continue
		}
		if err := s.fixtureRepo.Upsert(ctx, candidate); err != nil {
			return upserted, skipped, fmt.Errorf("upsert fixture id=%d: %w", candidate.ID, err)
		}
		upserted++
	}
	return upserted, skipped, nil
}

func (s *CollectorService) reconcilePlayers(ctx context.Context, target league.League, items []ExternalPlayer) (int, int, error) {
	upserted, skipped := 0, 0
	for _, item := range items {
		candidate := player.Player{
			ID:            item.ExternalID,
			Name:          item.Name,
			TeamID:        item.TeamExternalID,
			LeagueID:      target.ID,
			SeasonID:      target.SeasonID,
			Position:      item.Position,
			Goals:         item.Goals,
			Assists:       item.Assists,
			MatchesPlayed: item.Appearances,
			MinutesPlayed: item.MinutesPlayed,
			CleanSheets:   item.CleanSheets,
			YellowCards:   item.YellowCards,
			RedCards:      item.RedCards,
			Age:           item.Age,
			URL:           item.URL,
		}
		if err := candidate.Validate(); err != nil {
			skipped++
			s.logger.WarnContext(ctx, "skip malformed player record", "league_id", target.ID, "player_name", item.Name, "error", err)
			continue
		}
		if err := s.playerRepo.Upsert(ctx, candidate); err != nil {
			return upserted, skipped, fmt.Errorf("upsert player name=%q: %w", candidate.Name, err)
		}
		upserted++
	}
	return upserted, skipped, nil
}

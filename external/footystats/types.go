package footystats

import (
	"strings"

	"github.com/riskibarqy/league-tracker/internal/usecase"
)

type pager struct {
	CurrentPage    int `json:"current_page"`
	MaxPage        int `json:"max_page"`
	ResultsPerPage int `json:"results_per_page"`
	TotalResults   int `json:"total_results"`
}

type leagueListEnvelope struct {
	Success bool             `json:"success"`
	Data    []leagueListItem `json:"data"`
}

type leagueListItem struct {
	Name    string       `json:"name"`
	Country string       `json:"country"`
	Image   string       `json:"image"`
	Seasons []seasonItem `json:"season"`
}

type seasonItem struct {
	ID   int64 `json:"id"`
	Year int   `json:"year"`
}

type teamsEnvelope struct {
	Success bool       `json:"success"`
	Data    []teamItem `json:"data"`
	Pager   pager      `json:"pager"`
}

type teamItem struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	CleanName       string `json:"cleanName"`
	Country         string `json:"country"`
	Image           string `json:"image"`
	URL             string `json:"url"`
	TablePosition   int    `json:"table_position"`
	PerformanceRank int    `json:"performance_rank"`
}

type matchesEnvelope struct {
	Success bool        `json:"success"`
	Data    []matchItem `json:"data"`
	Pager   pager       `json:"pager"`
}

type matchItem struct {
	ID             int64   `json:"id"`
	HomeID         int64   `json:"homeID"`
	AwayID         int64   `json:"awayID"`
	HomeName       string  `json:"home_name"`
	AwayName       string  `json:"away_name"`
	Status         string  `json:"status"`
	DateUnix       int64   `json:"date_unix"`
	HomeGoalCount  int     `json:"homeGoalCount"`
	AwayGoalCount  int     `json:"awayGoalCount"`
	TotalGoalCount int     `json:"totalGoalCount"`
	HomeCorners    int     `json:"team_a_corners"`
	AwayCorners    int     `json:"team_b_corners"`
	HomePossession int     `json:"team_a_possession"`
	AwayPossession int     `json:"team_b_possession"`
	HomeShots      int     `json:"team_a_shots"`
	AwayShots      int     `json:"team_b_shots"`
	HomeXG         float64 `json:"team_a_xg"`
	AwayXG         float64 `json:"team_b_xg"`
	HomeYellow     int     `json:"team_a_yellow_cards"`
	AwayYellow     int     `json:"team_b_yellow_cards"`
	HomeRed        int     `json:"team_a_red_cards"`
	AwayRed        int     `json:"team_b_red_cards"`
	StadiumName    string  `json:"stadium_name"`
}

type playersEnvelope struct {
	Success bool         `json:"success"`
	Data    []playerItem `json:"data"`
	Pager   pager        `json:"pager"`
}

type playerItem struct {
	ID            int64  `json:"id"`
	FullName      string `json:"full_name"`
	KnownAs       string `json:"known_as"`
	ClubTeamID    int64  `json:"club_team_id"`
	Position      string `json:"position"`
	Goals         int    `json:"goals_overall"`
	Assists       int    `json:"assists_overall"`
	Appearances   int    `json:"appearances_overall"`
	MinutesPlayed int    `json:"minutes_played_overall"`
	CleanSheets   int    `json:"clean_sheets_overall"`
	YellowCards   int    `json:"yellow_cards_overall"`
	RedCards      int    `json:"red_cards_overall"`
	Age           int    `json:"age"`
	URL           string `json:"url"`
}

func mapLeague(item leagueListItem) usecase.ExternalLeague {
	seasons := make([]usecase.ExternalSeason, 0, len(item.Seasons))
	for _, season := range item.Seasons {
		if season.ID <= 0 {
			continue
		}
		seasons = append(seasons, usecase.ExternalSeason{ID: season.ID, Year: season.Year})
	}
	return usecase.ExternalLeague{
		Name:    strings.TrimSpace(item.Name),
		Country: strings.TrimSpace(item.Country),
		Image:   strings.TrimSpace(item.Image),
		Seasons: seasons,
	}
}

func mapTeam(item teamItem) usecase.ExternalTeam {
	return usecase.ExternalTeam{
		ExternalID:      item.ID,
		Name:            strings.TrimSpace(item.Name),
		CleanName:       strings.TrimSpace(item.CleanName),
		Country:         strings.TrimSpace(item.Country),
		Image:           strings.TrimSpace(item.Image),
		URL:             strings.TrimSpace(item.URL),
		TablePosition:   item.TablePosition,
		PerformanceRank: item.PerformanceRank,
	}
}

func mapMatch(item matchItem) usecase.ExternalMatch {
	return usecase.ExternalMatch{
		ExternalID:     item.ID,
		HomeTeamID:     item.HomeID,
		AwayTeamID:     item.AwayID,
		HomeTeamName:   strings.TrimSpace(item.HomeName),
		AwayTeamName:   strings.TrimSpace(item.AwayName),
		Status:         strings.ToLower(strings.TrimSpace(item.Status)),
		DateUnix:       item.DateUnix,
		HomeGoals:      item.HomeGoalCount,
		AwayGoals:      item.AwayGoalCount,
		TotalGoals:     item.TotalGoalCount,
		HomeCorners:    item.HomeCorners,
		AwayCorners:    item.AwayCorners,
		HomePossession: item.HomePossession,
		AwayPossession: item.AwayPossession,
		HomeShots:      item.HomeShots,
		AwayShots:      item.AwayShots,
		HomeXG:         item.HomeXG,
		AwayXG:         item.AwayXG,
		HomeYellow:     item.HomeYellow,
		AwayYellow:     item.AwayYellow,
		HomeRed:        item.HomeRed,
		AwayRed:        item.AwayRed,
		StadiumName:    strings.TrimSpace(item.StadiumName),
	}
}

func mapPlayer(item playerItem) usecase.ExternalPlayer {
	name := strings.TrimSpace(item.FullName)
	if name == "" {
		name = strings.TrimSpace(item.KnownAs)
	}
	return usecase.ExternalPlayer{
		ExternalID:     item.ID,
		Name:           name,
		TeamExternalID: item.ClubTeamID,
		Position:       strings.TrimSpace(item.Position),
		Goals:          item.Goals,
		Assists:        item.Assists,
		Appearances:    item.Appearances,
		MinutesPlayed:  item.MinutesPlayed,
		CleanSheets:    item.CleanSheets,
		YellowCards:    item.YellowCards,
		RedCards:       item.RedCards,
		Age:            item.Age,
		URL:            strings.TrimSpace(item.URL),
	}
}

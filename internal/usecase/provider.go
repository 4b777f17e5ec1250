package usecase

import "context"

// ExternalSeason is one playable season of a provider league.
type ExternalSeason struct {
	ID   int64
	Year int
}

type ExternalLeague struct {
	Name    string
	Country string
	Image   string
	Seasons []ExternalSeason
}

type ExternalTeam struct {
	ExternalID      int64
	Name            string
	CleanName       string
	Country         string
	Image           string
	URL             string
	TablePosition   int
	PerformanceRank int
}

type ExternalMatch struct {
	ExternalID     int64
	HomeTeamID     int64
	AwayTeamID     int64
	HomeTeamName   string
	AwayTeamName   string
	Status         string
	DateUnix       int64
	HomeGoals      int
	AwayGoals      int
	TotalGoals     int
	HomeCorners    int
	AwayCorners    int
	HomePossession int
	AwayPossession int
	HomeShots      int
	AwayShots      int
	HomeXG         float64
	AwayXG         float64
	HomeYellow     int
	AwayYellow     int
	HomeRed        int
	AwayRed        int
	StadiumName    string
}

type ExternalPlayer struct {
	ExternalID     int64
	Name           string
	TeamExternalID int64
	Position       string
	Goals          int
	Assists        int
	Appearances    int
	MinutesPlayed  int
	CleanSheets    int
	YellowCards    int
	RedCards       int
	Age            int
	URL            string
}

// SportDataProvider is the upstream football data source. Paged endpoints
// degrade to the rows collected so far when the provider keeps failing
// transiently; hard provider rejections surface as errors.
type SportDataProvider interface {
	FetchLeagues(ctx context.Context) ([]ExternalLeague, error)
	FetchLeagueTeams(ctx context.Context, seasonID int64) ([]ExternalTeam, error)
	FetchLeagueMatches(ctx context.Context, seasonID int64) ([]ExternalMatch, error)
	FetchLeaguePlayers(ctx context.Context, seasonID int64) ([]ExternalPlayer, error)
}

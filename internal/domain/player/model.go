package player

import "fmt"

// Player carries cumulative season counters, scoped to (team, season).
// The provider assigns no stable per-player id across seasons, so identity
// is the natural key (name, team, season).
type Player struct {
	ID            int64
	Name          string
	TeamID        int64
	TeamName      string
	LeagueID      int64
	SeasonID      int64
	Position      string
	Goals         int
	Assists       int
	MatchesPlayed int
	MinutesPlayed int
	CleanSheets   int
	YellowCards   int
	RedCards      int
	Age           int
	URL           string
}

func (p Player) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("player name is required")
	}
	if p.TeamID <= 0 || p.SeasonID <= 0 {
		return fmt.Errorf("player team and season scope are required")
	}

	return nil
}

package team

import "fmt"

// Team is one club inside a (league, season) scope. The same provider team id
// appears in multiple seasons as distinct rows.
type Team struct {
	ID              int64
	LeagueID        int64
	SeasonID        int64
	Name            string
	CleanName       string
	Country         string
	Image           string
	URL             string
	TablePosition   int
	PerformanceRank int
}

func (t Team) Validate() error {
	if t.ID <= 0 {
		return fmt.Errorf("team id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}
	if t.LeagueID <= 0 || t.SeasonID <= 0 {
		return fmt.Errorf("team league and season scope are required")
	}

	return nil
}

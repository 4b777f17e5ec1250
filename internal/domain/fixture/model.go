package fixture

import (
	"fmt"
	"strings"
)

// Provider lifecycle statuses, lowercased at the ingestion boundary.
const (
	StatusScheduled = "scheduled"
	StatusComplete  = "complete"
	StatusCanceled  = "canceled"
	StatusSuspended = "suspended"
)

// Fixture is one scheduled or played match with its raw result fields.
type Fixture struct {
	ID              int64
	LeagueID        int64
	SeasonID        int64
	HomeTeamID      int64
	AwayTeamID      int64
	HomeTeamName    string
	AwayTeamName    string
	Status          string
	DateUnix        int64
	HomeGoals       int
	AwayGoals       int
	TotalGoals      int
	HomeCorners     int
	AwayCorners     int
	HomePossession  int
	AwayPossession  int
	HomeShots       int
	AwayShots       int
	HomeXG          float64
	AwayXG          float64
	HomeYellowCards int
	AwayYellowCards int
	HomeRedCards    int
	AwayRedCards    int
	StadiumName     string
}

func (f Fixture) Validate() error {
	if f.ID <= 0 {
		return fmt.Errorf("fixture id is required")
	}
	if f.HomeTeamID <= 0 || f.AwayTeamID <= 0 {
		return fmt.Errorf("fixture team ids are required")
	}
	if f.HomeTeamID == f.AwayTeamID {
		return fmt.Errorf("fixture home and away team must differ")
	}

	return nil
}

func NormalizeStatus(value string) string {
	status := strings.ToLower(strings.TrimSpace(value))
	if status == "" {
		return StatusScheduled
	}
	return status
}

// IsComplete is the strict completed-match predicate used by aggregation.
func IsComplete(status string) bool {
	return NormalizeStatus(status) == StatusComplete
}

func IsLiveStatus(status string) bool {
	switch NormalizeStatus(status) {
	case "live", "1h", "2h", "ht", "et", "p", "inprogress":
		return true
	default:
		return false
	}
}

func IsUpcomingStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusScheduled, "notstarted":
		return true
	default:
		return false
	}
}

func IsFinishedStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusComplete, "finished", "ft", "aet", "pen":
		return true
	default:
		return false
	}
}

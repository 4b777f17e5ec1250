package league

import "fmt"

// League is one tracked competition, pinned to its active provider season.
type League struct {
	ID         int64
	Name       string
	Country    string
	Image      string
	SeasonID   int64
	SeasonYear int
}

func (l League) Validate() error {
	if l.ID <= 0 {
		return fmt.Errorf("league id is required")
	}
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}
	if l.SeasonID <= 0 {
		return fmt.Errorf("league season id is required")
	}

	return nil
}

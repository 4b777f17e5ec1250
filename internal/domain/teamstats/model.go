package teamstats

// Statistics is a fully derived league-table row for one (team, league,
// season). It is rebuilt from fixtures on every aggregation pass; rank and
// position are written only by the ranking pass.
type Statistics struct {
	TeamID        int64
	LeagueID      int64
	SeasonID      int64
	SeasonYear    int
	MatchesPlayed int
	Wins          int
	Draws         int
	Losses        int
	GoalsFor      int
	GoalsAgainst  int
	Points        int
	Rank          int
	Position      int
}

func (s Statistics) GoalDifference() int {
	return s.GoalsFor - s.GoalsAgainst
}

package model

import (
	"time"
)

// Lineup is one team's roster for one week. Starters maps canonical
// slots to players, at most one player per slot. Bench is a separate
// ordered list, which is what keeps bench players out of the point
// totals - RecomputeTotals sums Starters and never sees Bench.
type Lineup struct {
	ID     string
	TeamID string
	Week   int
	Season int

	Starters map[Slot]Player
	Bench    []Player

	ProjectedTotal float64
	ActualTotal    float64

	// Placeholder marks lineups synthesized when every fetch or parse
	// strategy failed. Callers can tell degraded data from real data.
	Placeholder bool

	LastUpdated time.Time
}

const (
	WeekMin = 1
	WeekMax = 18
)

func ValidWeek(week int) bool {
	return week >= WeekMin && week <= WeekMax
}

// RecomputeTotals rederives the aggregate point totals from the current
// starters. Called by adapters after assembling a lineup.
func (l *Lineup) RecomputeTotals() {
	l.ProjectedTotal = 0
	l.ActualTotal = 0
	for _, p := range l.Starters {
		l.ProjectedTotal += p.ProjectedPoints
		l.ActualTotal += p.ActualPoints
	}
}

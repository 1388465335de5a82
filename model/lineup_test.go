package model

import (
	"math"
	"testing"
)

func TestRecomputeTotals(t *testing.T) {
	l := &Lineup{
		Starters: map[Slot]Player{
			SLOT_QB:  {Name: "QB", ProjectedPoints: 21.5, ActualPoints: 18.2},
			SLOT_RB1: {Name: "RB", ProjectedPoints: 14.0, ActualPoints: 22.7},
			SLOT_WR1: {Name: "WR", ProjectedPoints: 11.3, ActualPoints: 0},
		},
		// Bench points never count toward the totals.
		Bench: []Player{
			{Name: "Bench1", ProjectedPoints: 9.5, ActualPoints: 12.0},
			{Name: "Bench2", ProjectedPoints: 4.0, ActualPoints: 0},
		},
	}
	l.RecomputeTotals()

	if math.Abs(l.ProjectedTotal-46.8) > 0.001 {
		t.Errorf("expected projected total 46.8, got %f", l.ProjectedTotal)
	}
	if math.Abs(l.ActualTotal-40.9) > 0.001 {
		t.Errorf("expected actual total 40.9, got %f", l.ActualTotal)
	}
}

func TestRecomputeTotalsResets(t *testing.T) {
	l := &Lineup{
		Starters:       map[Slot]Player{SLOT_QB: {ProjectedPoints: 10}},
		ProjectedTotal: 99,
		ActualTotal:    99,
	}
	l.RecomputeTotals()

	if l.ProjectedTotal != 10 {
		t.Errorf("expected projected total 10, got %f", l.ProjectedTotal)
	}
	if l.ActualTotal != 0 {
		t.Errorf("expected actual total 0, got %f", l.ActualTotal)
	}
}

func TestValidWeek(t *testing.T) {
	for _, w := range []int{1, 9, 18} {
		if !ValidWeek(w) {
			t.Errorf("week %d should be valid", w)
		}
	}
	for _, w := range []int{0, -1, 19, 100} {
		if ValidWeek(w) {
			t.Errorf("week %d should not be valid", w)
		}
	}
}

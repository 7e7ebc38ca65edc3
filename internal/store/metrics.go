package store

import (
	"github.com/derekprior/wcsched/internal/schedule"
	"github.com/derekprior/wcsched/internal/units"
)

// Totals is a travel summary expressed in a display unit.
type Totals struct {
	Unit            units.Unit
	Distance        float64
	RegionCrossings int
}

// TeamTotals is one team's travel in a display unit.
type TeamTotals struct {
	Team            string
	Matches         int
	Distance        float64
	RegionCrossings int
}

// Report describes the active schedule's travel and how it compares with
// the optimal baseline. When the optimal schedule itself is active the
// deltas are zero and Baseline is set.
type Report struct {
	Mode           Mode
	Totals         Totals
	DistanceDelta  float64
	CrossingsDelta int
	Baseline       bool
	Teams          []TeamTotals
}

// MetricsFor summarizes any schedule in unit.
func (s *Store) MetricsFor(sched *schedule.Schedule, unit units.Unit) Totals {
	sum := s.calc.Summarize(sched)
	return Totals{
		Unit:            unit,
		Distance:        unit.FromKm(sum.DistanceKm),
		RegionCrossings: sum.RegionCrossings,
	}
}

// Metrics reports on the active schedule.
func (s *Store) Metrics(unit units.Unit) (Report, error) {
	if s.active == nil {
		return Report{}, ErrNotInitialized
	}
	r := Report{
		Mode:   s.mode,
		Totals: s.MetricsFor(s.active, unit),
	}
	if s.mode == Optimal {
		r.Baseline = true
	} else {
		base := s.MetricsFor(s.optimal, unit)
		r.DistanceDelta = r.Totals.Distance - base.Distance
		r.CrossingsDelta = r.Totals.RegionCrossings - base.RegionCrossings
	}
	for _, ts := range s.calc.Teams(s.active) {
		r.Teams = append(r.Teams, TeamTotals{
			Team:            ts.Team,
			Matches:         ts.Matches,
			Distance:        unit.FromKm(ts.DistanceKm),
			RegionCrossings: ts.RegionCrossings,
		})
	}
	return r, nil
}

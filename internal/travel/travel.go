// Package travel derives team travel paths from a schedule and totals the
// distance covered and the number of region crossings.
package travel

import (
	"github.com/derekprior/wcsched/internal/config"
	"github.com/derekprior/wcsched/internal/geo"
	"github.com/derekprior/wcsched/internal/schedule"
)

// Summary aggregates travel over a whole schedule. Distance is always in
// kilometers.
type Summary struct {
	DistanceKm      float64
	RegionCrossings int
}

// Leg is one trip between consecutive matches of a team.
type Leg struct {
	From, To      schedule.Match
	DistanceKm    float64
	CrossesRegion bool
}

// TeamSummary is the travel record of a single team.
type TeamSummary struct {
	Team            string
	Matches         int
	DistanceKm      float64
	RegionCrossings int
	Legs            []Leg
}

// Calculator computes travel metrics against fixed venue reference data.
type Calculator struct {
	regions map[string]string
	dist    *geo.Matrix
}

// NewCalculator precomputes the venue distance matrix for a tournament.
func NewCalculator(t *config.Tournament) *Calculator {
	sites := make([]geo.Site, 0, len(t.Venues))
	regions := make(map[string]string, len(t.Venues))
	for _, v := range t.Venues {
		sites = append(sites, geo.Site{Key: v.Key, Point: geo.Point{Lat: v.Lat, Lon: v.Lon}})
		regions[v.Key] = v.Region
	}
	return &Calculator{regions: regions, dist: geo.NewMatrix(sites)}
}

// Distance returns the great-circle distance in kilometers between two venues.
func (c *Calculator) Distance(a, b string) float64 {
	return c.dist.Distance(a, b)
}

// TeamPaths returns, for every team, its matches ordered by date.
func (c *Calculator) TeamPaths(s *schedule.Schedule) map[string][]schedule.Match {
	paths := make(map[string][]schedule.Match)
	for _, team := range s.Teams() {
		paths[team] = s.TeamMatches(team)
	}
	return paths
}

// Summarize totals distance and region crossings over every team's path.
func (c *Calculator) Summarize(s *schedule.Schedule) Summary {
	var sum Summary
	for _, ts := range c.Teams(s) {
		sum.DistanceKm += ts.DistanceKm
		sum.RegionCrossings += ts.RegionCrossings
	}
	return sum
}

// Teams returns a travel summary per team, sorted by team name.
func (c *Calculator) Teams(s *schedule.Schedule) []TeamSummary {
	paths := c.TeamPaths(s)
	var out []TeamSummary
	for _, team := range s.Teams() {
		path := paths[team]
		ts := TeamSummary{Team: team, Matches: len(path)}
		for i := 0; i+1 < len(path); i++ {
			leg := c.leg(path[i], path[i+1])
			ts.DistanceKm += leg.DistanceKm
			if leg.CrossesRegion {
				ts.RegionCrossings++
			}
			ts.Legs = append(ts.Legs, leg)
		}
		out = append(out, ts)
	}
	return out
}

func (c *Calculator) leg(from, to schedule.Match) Leg {
	l := Leg{
		From:       from,
		To:         to,
		DistanceKm: c.dist.Distance(from.Venue, to.Venue),
	}
	r1, ok1 := c.regions[from.Venue]
	r2, ok2 := c.regions[to.Venue]
	l.CrossesRegion = ok1 && ok2 && r1 != r2
	return l
}

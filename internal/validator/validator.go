package validator

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/derekprior/wcsched/internal/config"
	"github.com/derekprior/wcsched/internal/schedule"
)

// ErrRuleViolation matches every *Violation via errors.Is.
var ErrRuleViolation = errors.New("rest rule violated")

// Rule names a rest constraint.
type Rule string

const (
	VenueRest Rule = "venue_rest"
	TeamRest  Rule = "team_rest"
)

// Violation describes a pair of matches that sit too close together at the
// same venue or for the same team.
type Violation struct {
	Rule      Rule
	Subject   string // venue key or team
	Match     string // the match being checked
	Date      time.Time
	Other     string // its nearest neighbour
	OtherDate time.Time
	Days      int
	MinDays   int
	Message   string
}

func (v *Violation) Error() string { return v.Message }

func (v *Violation) Is(target error) bool { return target == ErrRuleViolation }

// Validator enforces the tournament's venue and team rest rules.
type Validator struct {
	rules  config.Rules
	venues map[string]string // key -> display name
}

// New returns a Validator for the tournament's rules.
func New(t *config.Tournament) *Validator {
	venues := make(map[string]string, len(t.Venues))
	for _, v := range t.Venues {
		venues[v.Key] = v.Name
	}
	return &Validator{rules: t.Rules, venues: venues}
}

// Check validates the matches in changed, in order, against s. For each
// match the venue rule runs before the team rule, and T1 before T2. The
// first violation found is returned; nil means the schedule is acceptable.
func (v *Validator) Check(s *schedule.Schedule, changed []string) *Violation {
	for _, id := range changed {
		m, ok := s.Match(id)
		if !ok {
			continue
		}
		if viol := v.checkVenue(s, m); viol != nil {
			return viol
		}
		for _, team := range m.Teams() {
			if viol := v.checkTeam(s, m, team); viol != nil {
				return viol
			}
		}
	}
	return nil
}

func (v *Validator) checkVenue(s *schedule.Schedule, m schedule.Match) *Violation {
	other, ok := nearestNeighbour(s.VenueMatches(m.Venue), m.ID)
	if !ok {
		return nil
	}
	return v.venueViolation(m, other)
}

func (v *Validator) checkTeam(s *schedule.Schedule, m schedule.Match, team string) *Violation {
	other, ok := nearestNeighbour(s.TeamMatches(team), m.ID)
	if !ok {
		return nil
	}
	return v.teamViolation(m, other, team)
}

func (v *Validator) venueViolation(m, other schedule.Match) *Violation {
	days := schedule.DaysBetween(m.Date, other.Date)
	if days >= v.rules.VenueMinDays {
		return nil
	}
	return &Violation{
		Rule:      VenueRest,
		Subject:   m.Venue,
		Match:     m.ID,
		Date:      m.Date,
		Other:     other.ID,
		OtherDate: other.Date,
		Days:      days,
		MinDays:   v.rules.VenueMinDays,
		Message: fmt.Sprintf("%s needs a rest day: %s on %s and %s on %s are %d day(s) apart (min %d)",
			v.venueName(m.Venue), m.ID, m.Date.Format("01/02"), other.ID, other.Date.Format("01/02"),
			days, v.rules.VenueMinDays),
	}
}

func (v *Validator) teamViolation(m, other schedule.Match, team string) *Violation {
	days := schedule.DaysBetween(m.Date, other.Date)
	if days >= v.rules.TeamMinDays {
		return nil
	}
	return &Violation{
		Rule:      TeamRest,
		Subject:   team,
		Match:     m.ID,
		Date:      m.Date,
		Other:     other.ID,
		OtherDate: other.Date,
		Days:      days,
		MinDays:   v.rules.TeamMinDays,
		Message: fmt.Sprintf("%s plays too soon: %s on %s and %s on %s are %d day(s) apart (min %d, %d full rest days)",
			team, m.ID, m.Date.Format("01/02"), other.ID, other.Date.Format("01/02"),
			days, v.rules.TeamMinDays, max(v.rules.TeamMinDays-1, 0)),
	}
}

// nearestNeighbour finds id in the date-sorted list and returns whichever of
// its immediate predecessor or successor is closer. The predecessor wins ties.
func nearestNeighbour(sorted []schedule.Match, id string) (schedule.Match, bool) {
	pos := -1
	for i, m := range sorted {
		if m.ID == id {
			pos = i
			break
		}
	}
	if pos < 0 {
		return schedule.Match{}, false
	}

	var (
		best  schedule.Match
		gap   int
		found bool
	)
	for _, i := range []int{pos - 1, pos + 1} {
		if i < 0 || i >= len(sorted) {
			continue
		}
		days := schedule.DaysBetween(sorted[pos].Date, sorted[i].Date)
		if !found || days < gap {
			best, gap, found = sorted[i], days, true
		}
	}
	return best, found
}

func (v *Validator) venueName(key string) string {
	if name, ok := v.venues[key]; ok && name != "" {
		return name
	}
	return key
}

// Audit checks every pair of consecutive matches at each venue and for each
// team, returning all violations with the tightest gaps first.
func (v *Validator) Audit(s *schedule.Schedule) []Violation {
	var violations []Violation

	venues := make(map[string]bool)
	for _, m := range s.Matches() {
		venues[m.Venue] = true
	}
	for venue := range venues {
		ms := s.VenueMatches(venue)
		for i := 1; i < len(ms); i++ {
			if viol := v.venueViolation(ms[i], ms[i-1]); viol != nil {
				violations = append(violations, *viol)
			}
		}
	}

	for _, team := range s.Teams() {
		ms := s.TeamMatches(team)
		for i := 1; i < len(ms); i++ {
			if viol := v.teamViolation(ms[i], ms[i-1], team); viol != nil {
				violations = append(violations, *viol)
			}
		}
	}

	// Sort by severity: fewest days (worst) first
	sort.SliceStable(violations, func(i, j int) bool {
		if violations[i].Days != violations[j].Days {
			return violations[i].Days < violations[j].Days
		}
		if violations[i].Rule != violations[j].Rule {
			return violations[i].Rule > violations[j].Rule
		}
		if violations[i].Subject != violations[j].Subject {
			return violations[i].Subject < violations[j].Subject
		}
		return violations[i].Match < violations[j].Match
	})
	return violations
}

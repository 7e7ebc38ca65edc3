package schedule

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	ErrMatchNotFound = errors.New("match not found")
	ErrDuplicateID   = errors.New("duplicate match id")
	ErrCellOccupied  = errors.New("cell already occupied")
)

// Match is a game between two teams at a venue on a date. ID, Group and the
// teams never change once created; Venue and Date change only via Move.
type Match struct {
	ID    string
	Group string
	T1    string
	T2    string
	Venue string
	Date  time.Time
}

// Cell returns the (venue, date) cell the match occupies.
func (m Match) Cell() Cell {
	return Cell{Venue: m.Venue, Date: m.Date}
}

// Involves reports whether team plays in this match.
func (m Match) Involves(team string) bool {
	return m.T1 == team || m.T2 == team
}

// Teams returns both team identifiers, T1 first.
func (m Match) Teams() []string {
	return []string{m.T1, m.T2}
}

// Schedule is a set of matches with unique IDs where no two matches share
// a cell. It is not safe for concurrent mutation.
type Schedule struct {
	matches []Match
	byID    map[string]int
	byCell  map[Cell]int
}

// New builds a Schedule, rejecting duplicate IDs and occupied cells.
func New(matches ...Match) (*Schedule, error) {
	s := &Schedule{
		byID:   make(map[string]int, len(matches)),
		byCell: make(map[Cell]int, len(matches)),
	}
	for _, m := range matches {
		if err := s.Add(m); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add inserts a match into the schedule.
func (s *Schedule) Add(m Match) error {
	m.Date = Day(m.Date)
	if _, ok := s.byID[m.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, m.ID)
	}
	if other, ok := s.byCell[m.Cell()]; ok {
		return fmt.Errorf("%w: %s is held by %s", ErrCellOccupied, m.Cell(), s.matches[other].ID)
	}
	s.byID[m.ID] = len(s.matches)
	s.byCell[m.Cell()] = len(s.matches)
	s.matches = append(s.matches, m)
	return nil
}

// Clone returns an independent copy; mutating the copy never affects s.
func (s *Schedule) Clone() *Schedule {
	c := &Schedule{
		matches: append([]Match(nil), s.matches...),
		byID:    make(map[string]int, len(s.byID)),
		byCell:  make(map[Cell]int, len(s.byCell)),
	}
	for k, v := range s.byID {
		c.byID[k] = v
	}
	for k, v := range s.byCell {
		c.byCell[k] = v
	}
	return c
}

// Len returns the number of matches.
func (s *Schedule) Len() int {
	if s == nil {
		return 0
	}
	return len(s.matches)
}

// Match returns the match with the given ID.
func (s *Schedule) Match(id string) (Match, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Match{}, false
	}
	return s.matches[i], true
}

// At returns the match occupying a cell.
func (s *Schedule) At(c Cell) (Match, bool) {
	i, ok := s.byCell[Cell{Venue: c.Venue, Date: Day(c.Date)}]
	if !ok {
		return Match{}, false
	}
	return s.matches[i], true
}

// Matches returns a copy of all matches ordered by date, venue, then ID.
func (s *Schedule) Matches() []Match {
	if s == nil {
		return nil
	}
	out := append([]Match(nil), s.matches...)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		if out[i].Venue != out[j].Venue {
			return out[i].Venue < out[j].Venue
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Move relocates match id into cell to. If another match holds that cell it
// is moved into id's original cell. It returns the IDs of the matches whose
// cell changed: the mover first, then the displaced match if any. Moving a
// match onto its own cell changes nothing and returns no IDs.
func (s *Schedule) Move(id string, to Cell) ([]string, error) {
	i, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, id)
	}
	to.Date = Day(to.Date)
	from := s.matches[i].Cell()
	if from == to {
		return nil, nil
	}

	changed := []string{id}
	if j, ok := s.byCell[to]; ok {
		s.matches[j].Venue, s.matches[j].Date = from.Venue, from.Date
		s.byCell[from] = j
		changed = append(changed, s.matches[j].ID)
	} else {
		delete(s.byCell, from)
	}
	s.matches[i].Venue, s.matches[i].Date = to.Venue, to.Date
	s.byCell[to] = i
	return changed, nil
}

// Assignments maps every match ID to its cell.
func (s *Schedule) Assignments() map[string]Cell {
	out := make(map[string]Cell, s.Len())
	if s == nil {
		return out
	}
	for _, m := range s.matches {
		out[m.ID] = m.Cell()
	}
	return out
}

// Equal reports whether both schedules hold the same matches in the same cells.
func (s *Schedule) Equal(o *Schedule) bool {
	if s.Len() != o.Len() {
		return false
	}
	if s.Len() == 0 {
		return true
	}
	for _, m := range s.matches {
		other, ok := o.Match(m.ID)
		if !ok || other != m {
			return false
		}
	}
	return true
}

// Teams returns every team that appears in the schedule, sorted.
func (s *Schedule) Teams() []string {
	seen := make(map[string]bool)
	var teams []string
	for _, m := range s.Matches() {
		for _, t := range m.Teams() {
			if !seen[t] {
				seen[t] = true
				teams = append(teams, t)
			}
		}
	}
	sort.Strings(teams)
	return teams
}

// TeamMatches returns the matches team plays, ordered by date then ID.
func (s *Schedule) TeamMatches(team string) []Match {
	var out []Match
	for _, m := range s.Matches() {
		if m.Involves(team) {
			out = append(out, m)
		}
	}
	sortByDate(out)
	return out
}

// VenueMatches returns the matches held at venue, ordered by date then ID.
func (s *Schedule) VenueMatches(venue string) []Match {
	var out []Match
	for _, m := range s.Matches() {
		if m.Venue == venue {
			out = append(out, m)
		}
	}
	sortByDate(out)
	return out
}

func sortByDate(ms []Match) {
	sort.SliceStable(ms, func(i, j int) bool {
		if !ms[i].Date.Equal(ms[j].Date) {
			return ms[i].Date.Before(ms[j].Date)
		}
		return ms[i].ID < ms[j].ID
	})
}

package schedule

import (
	"fmt"
	"math"
	"time"

	"github.com/derekprior/wcsched/internal/config"
)

// Cell is a (venue, date) position in the schedule grid.
type Cell struct {
	Venue string
	Date  time.Time
}

func (c Cell) String() string {
	return fmt.Sprintf("%s/%s", c.Venue, c.Date.Format(config.DateLayout))
}

// Day truncates t to midnight UTC of its calendar date, so dates compare
// and subtract as whole days regardless of the zone they were parsed in.
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns |b - a| in whole calendar days.
func DaysBetween(a, b time.Time) int {
	h := Day(b).Sub(Day(a)).Hours()
	return int(math.Abs(math.Round(h / 24)))
}

// GenerateCells builds every (venue, date) cell of the tournament grid,
// venues in config order and dates ascending within each venue.
func GenerateCells(t *config.Tournament) []Cell {
	dates := t.Dates()
	cells := make([]Cell, 0, len(t.Venues)*len(dates))
	for _, v := range t.Venues {
		for _, d := range dates {
			cells = append(cells, Cell{Venue: v.Key, Date: d})
		}
	}
	return cells
}

// ContainsCell reports whether c lies on the tournament grid.
func ContainsCell(t *config.Tournament, c Cell) bool {
	if _, ok := t.Venue(c.Venue); !ok {
		return false
	}
	return t.HasDate(Day(c.Date))
}

// OpenCells returns the grid cells no match occupies.
func OpenCells(t *config.Tournament, s *Schedule) []Cell {
	var open []Cell
	for _, c := range GenerateCells(t) {
		if _, ok := s.At(c); !ok {
			open = append(open, c)
		}
	}
	return open
}

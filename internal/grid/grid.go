// Package grid decodes and encodes venue × date schedule tables. The first
// row holds the dates, the first column the venue keys, and every other
// cell is either empty or a single match.
package grid

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/derekprior/wcsched/internal/config"
	"github.com/derekprior/wcsched/internal/logger"
	"github.com/derekprior/wcsched/internal/schedule"
	"github.com/derekprior/wcsched/internal/telemetry"
)

var (
	ErrEmptyTable = errors.New("schedule table has no header row")
	ErrBadCell    = errors.New("malformed match cell")
)

// Skip reasons.
const (
	SkipUnknownVenue  = "unknown_venue"
	SkipBadDate       = "bad_date"
	SkipNoDate        = "no_date"
	SkipMalformedCell = "malformed_cell"
	SkipUnknownGroup  = "unknown_group"
	SkipDuplicateID   = "duplicate_id"
	SkipDuplicateCell = "duplicate_cell"
)

// Skip records input that was dropped. Row and Col are zero-based indexes
// into the table; Col is -1 when the whole row was dropped.
type Skip struct {
	Row    int
	Col    int
	Reason string
	Value  string
}

func (s Skip) String() string {
	if s.Col < 0 {
		return fmt.Sprintf("row %d: %s %q", s.Row+1, s.Reason, s.Value)
	}
	return fmt.Sprintf("row %d col %d: %s %q", s.Row+1, s.Col+1, s.Reason, s.Value)
}

// Result is a decoded schedule plus everything that was skipped on the way.
type Result struct {
	Schedule *schedule.Schedule
	Skips    []Skip
}

// Option configures Decode.
type Option func(*decoder)

// WithLogger sets the logger skips are reported to.
func WithLogger(l logger.Logger) Option {
	return func(d *decoder) {
		if l != nil {
			d.log = l
		}
	}
}

// WithRecorder sets the telemetry recorder skips are counted in.
func WithRecorder(r telemetry.Recorder) Option {
	return func(d *decoder) {
		if r != nil {
			d.rec = r
		}
	}
}

type decoder struct {
	t      *config.Tournament
	log    logger.Logger
	rec    telemetry.Recorder
	result *Result
}

// cellPattern matches "m12 (A1): Mexico vs South Africa". The vs separator
// is case-insensitive and may carry a trailing dot.
var cellPattern = regexp.MustCompile(`^\s*m(\d+)\s*\(\s*([A-Za-z]\d*)\s*\)\s*:\s*(\S.*?)\s+(?i:vs)\.?\s+(\S.*?)\s*$`)

// ParseCell parses one match cell. The returned match has no venue or date.
func ParseCell(s string) (schedule.Match, error) {
	parts := cellPattern.FindStringSubmatch(s)
	if parts == nil {
		return schedule.Match{}, fmt.Errorf("%w: %q", ErrBadCell, s)
	}
	return schedule.Match{
		ID:    "m" + parts[1],
		Group: strings.ToUpper(parts[2]),
		T1:    parts[3],
		T2:    parts[4],
	}, nil
}

// FormatCell renders a match the way ParseCell reads it.
func FormatCell(m schedule.Match) string {
	return fmt.Sprintf("%s (%s): %s vs %s", m.ID, m.Group, m.T1, m.T2)
}

// Decode builds a schedule from rows. Rows with an unknown venue, header
// dates outside the tournament, cells with no usable header date, unreadable
// cells, unknown groups and repeated match IDs are skipped and reported in
// Result.Skips. Only a missing header row is an error.
func Decode(rows [][]string, t *config.Tournament, opts ...Option) (*Result, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyTable
	}
	d := &decoder{
		t:      t,
		log:    logger.NopLogger{},
		rec:    telemetry.Nop{},
		result: &Result{},
	}
	for _, opt := range opts {
		opt(d)
	}

	dates := d.header(rows[0])
	s, _ := schedule.New()
	for r := 1; r < len(rows); r++ {
		row := rows[r]
		if blankRow(row) {
			continue
		}
		venue := strings.TrimSpace(row[0])
		if _, ok := t.Venue(venue); !ok {
			d.skip(r, -1, SkipUnknownVenue, venue)
			continue
		}
		for c := 1; c < len(row); c++ {
			raw := strings.TrimSpace(row[c])
			if raw == "" {
				continue
			}
			date, ok := dates[c]
			if !ok {
				// empty, unusable or missing header date
				d.skip(r, c, SkipNoDate, raw)
				continue
			}
			m, err := ParseCell(raw)
			if err != nil {
				d.skip(r, c, SkipMalformedCell, raw)
				continue
			}
			if !t.HasGroup(m.Group[:1]) {
				d.skip(r, c, SkipUnknownGroup, raw)
				continue
			}
			m.Venue, m.Date = venue, date
			if err := s.Add(m); err != nil {
				switch {
				case errors.Is(err, schedule.ErrDuplicateID):
					d.skip(r, c, SkipDuplicateID, raw)
				default:
					d.skip(r, c, SkipDuplicateCell, raw)
				}
			}
		}
	}
	d.result.Schedule = s
	return d.result, nil
}

// header maps column index to date for every usable header cell.
func (d *decoder) header(row []string) map[int]time.Time {
	dates := make(map[int]time.Time, len(row))
	for c := 1; c < len(row); c++ {
		raw := strings.TrimSpace(row[c])
		if raw == "" {
			continue
		}
		date, err := config.ParseDate(raw)
		if err != nil || !d.t.HasDate(date) {
			d.skip(0, c, SkipBadDate, raw)
			continue
		}
		dates[c] = date
	}
	return dates
}

func (d *decoder) skip(row, col int, reason, value string) {
	d.result.Skips = append(d.result.Skips, Skip{Row: row, Col: col, Reason: reason, Value: value})
	d.log.Warnw("skipping schedule input", map[string]any{
		"row":    row + 1,
		"col":    col + 1,
		"reason": reason,
		"value":  value,
	})
	d.rec.ParseSkipped(reason)
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Rows lays a schedule out as a table: a header of "venue" plus every
// tournament date, then one row per venue in config order. Matches outside
// the tournament grid are not representable and are left out.
func Rows(s *schedule.Schedule, t *config.Tournament) [][]string {
	dates := t.Dates()
	header := make([]string, 0, len(dates)+1)
	header = append(header, "venue")
	for _, date := range dates {
		header = append(header, date.Format(config.DateLayout))
	}
	rows := [][]string{header}
	for _, v := range t.Venues {
		row := make([]string, len(dates)+1)
		row[0] = v.Key
		for i, date := range dates {
			if m, ok := s.At(schedule.Cell{Venue: v.Key, Date: date}); ok {
				row[i+1] = FormatCell(m)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

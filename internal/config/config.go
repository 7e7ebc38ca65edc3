package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DateLayout is the calendar-day format used in config and schedule files.
const DateLayout = "2006-01-02"

//go:embed tournament.yaml
var defaultTournament []byte

// Template returns the default tournament YAML, suitable for writing out as
// a starter file.
func Template() []byte {
	return append([]byte(nil), defaultTournament...)
}

// Date is a wrapper around time.Time for YAML date parsing.
type Date struct {
	Time time.Time
}

func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	t, err := ParseDate(value.Value)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

type Season struct {
	StartDate Date `yaml:"start_date"`
	EndDate   Date `yaml:"end_date"`
}

// Venue is a host stadium. Key is what schedule files reference.
type Venue struct {
	Key     string  `yaml:"key"`
	Name    string  `yaml:"name"`
	Stadium string  `yaml:"stadium"`
	Lat     float64 `yaml:"lat"`
	Lon     float64 `yaml:"lon"`
	Region  string  `yaml:"region"`
}

// Rules are the minimum gaps, in calendar days, between two matches that
// share a venue or a team. A value of 0 disables the rule.
type Rules struct {
	VenueMinDays int `yaml:"venue_min_days"`
	TeamMinDays  int `yaml:"team_min_days"`
}

// DefaultRules applies to any rule a tournament file leaves out.
func DefaultRules() Rules {
	return Rules{VenueMinDays: 2, TeamMinDays: 4}
}

// Tournament holds the fixed reference tables: venues, dates, groups and
// rest rules.
type Tournament struct {
	Name    string   `yaml:"name"`
	Season  Season   `yaml:"season"`
	Regions []string `yaml:"regions"`
	Venues  []Venue  `yaml:"venues"`
	Groups  []string `yaml:"groups"`
	Rules   Rules    `yaml:"rules"`

	venueIndex map[string]int
	dates      []time.Time
	dateIndex  map[time.Time]int
	groupSet   map[string]bool
}

// Dates returns every match day from start through end date, in order.
func (t *Tournament) Dates() []time.Time {
	return append([]time.Time(nil), t.dates...)
}

// HasDate reports whether d is one of the tournament's match days.
func (t *Tournament) HasDate(d time.Time) bool {
	_, ok := t.dateIndex[d]
	return ok
}

// Venue looks up a venue by key.
func (t *Tournament) Venue(key string) (Venue, bool) {
	i, ok := t.venueIndex[key]
	if !ok {
		return Venue{}, false
	}
	return t.Venues[i], true
}

// HasGroup reports whether g is a configured group label.
func (t *Tournament) HasGroup(g string) bool {
	return t.groupSet[g]
}

// Default returns the embedded 2026 tournament tables.
func Default() (*Tournament, error) {
	return LoadFromBytes(defaultTournament)
}

// LoadFromBytes parses YAML bytes into a Tournament and validates it.
func LoadFromBytes(data []byte) (*Tournament, error) {
	// yaml only overwrites keys present in the file, so omitted rules keep
	// their defaults while an explicit 0 stays 0.
	t := Tournament{Rules: DefaultRules()}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing tournament: %w", err)
	}
	if err := t.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTournament, err)
	}
	t.index()
	return &t, nil
}

// LoadFromFile reads and parses a YAML tournament file.
func LoadFromFile(path string) (*Tournament, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tournament file: %w", err)
	}
	return LoadFromBytes(data)
}

func (t *Tournament) validate() error {
	if t.Season.StartDate.Time.IsZero() || t.Season.EndDate.Time.IsZero() {
		return fmt.Errorf("season start_date and end_date are required")
	}
	if t.Season.EndDate.Time.Before(t.Season.StartDate.Time) {
		return fmt.Errorf("end date %s must not be before start date %s",
			t.Season.EndDate.Time.Format(DateLayout),
			t.Season.StartDate.Time.Format(DateLayout))
	}

	if len(t.Venues) == 0 {
		return fmt.Errorf("at least one venue is required")
	}
	if len(t.Groups) == 0 {
		return fmt.Errorf("at least one group is required")
	}

	regions := make(map[string]bool)
	for _, r := range t.Regions {
		regions[r] = true
	}

	seen := make(map[string]bool)
	for _, v := range t.Venues {
		if v.Key == "" {
			return fmt.Errorf("venue %q has no key", v.Name)
		}
		if seen[v.Key] {
			return fmt.Errorf("venue %q is listed twice", v.Key)
		}
		seen[v.Key] = true
		if !regions[v.Region] {
			return fmt.Errorf("venue %q: unknown region %q", v.Key, v.Region)
		}
		if v.Lat < -90 || v.Lat > 90 || v.Lon < -180 || v.Lon > 180 {
			return fmt.Errorf("venue %q: coordinates out of range (%v, %v)", v.Key, v.Lat, v.Lon)
		}
	}

	groups := make(map[string]bool)
	for _, g := range t.Groups {
		if g == "" || groups[g] {
			return fmt.Errorf("group labels must be unique and non-empty, got %q", g)
		}
		groups[g] = true
	}

	if t.Rules.VenueMinDays < 0 || t.Rules.TeamMinDays < 0 {
		return fmt.Errorf("rest rules must not be negative")
	}
	return nil
}

func (t *Tournament) index() {
	t.venueIndex = make(map[string]int, len(t.Venues))
	for i, v := range t.Venues {
		t.venueIndex[v.Key] = i
	}

	t.dates = nil
	t.dateIndex = make(map[time.Time]int)
	d := t.Season.StartDate.Time
	for !d.After(t.Season.EndDate.Time) {
		t.dateIndex[d] = len(t.dates)
		t.dates = append(t.dates, d)
		d = d.AddDate(0, 0, 1)
	}

	t.groupSet = make(map[string]bool, len(t.Groups))
	for _, g := range t.Groups {
		t.groupSet[g] = true
	}
}

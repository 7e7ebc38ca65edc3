package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func mustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

const testTournamentYAML = `
name: Test Cup
season:
  start_date: "2026-06-11"
  end_date: "2026-06-15"
regions: [West, East]
venues:
  - key: Seattle
    name: Seattle
    lat: 47.6062
    lon: -122.3321
    region: West
  - key: Foxborough
    name: Boston
    stadium: Gillette Stadium
    lat: 42.0909
    lon: -71.2643
    region: East
groups: [A, B]
rules:
  venue_min_days: 3
  team_min_days: 5
`

func TestLoadTournament(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(testTournamentYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("dates cover the season inclusively", func(t *testing.T) {
		dates := cfg.Dates()
		if len(dates) != 5 {
			t.Fatalf("dates = %d, want 5", len(dates))
		}
		if dates[0] != mustDate("2026-06-11") || dates[4] != mustDate("2026-06-15") {
			t.Errorf("dates = %v .. %v", dates[0], dates[4])
		}
		if !cfg.HasDate(mustDate("2026-06-13")) {
			t.Error("2026-06-13 should be a match day")
		}
		if cfg.HasDate(mustDate("2026-06-16")) {
			t.Error("2026-06-16 should not be a match day")
		}
	})

	t.Run("venue lookup", func(t *testing.T) {
		v, ok := cfg.Venue("Foxborough")
		if !ok {
			t.Fatal("Foxborough not found")
		}
		if v.Name != "Boston" || v.Region != "East" || v.Stadium != "Gillette Stadium" {
			t.Errorf("venue = %+v", v)
		}
		if _, ok := cfg.Venue("Atlantis"); ok {
			t.Error("unknown venue should not be found")
		}
	})

	t.Run("groups", func(t *testing.T) {
		if !cfg.HasGroup("A") || cfg.HasGroup("Z") {
			t.Errorf("group lookup wrong: A=%v Z=%v", cfg.HasGroup("A"), cfg.HasGroup("Z"))
		}
	})

	t.Run("rules", func(t *testing.T) {
		if cfg.Rules.VenueMinDays != 3 || cfg.Rules.TeamMinDays != 5 {
			t.Errorf("rules = %+v", cfg.Rules)
		}
	})

	t.Run("dates are independent copies", func(t *testing.T) {
		dates := cfg.Dates()
		dates[0] = time.Time{}
		if cfg.Dates()[0].IsZero() {
			t.Error("Dates() leaked internal slice")
		}
	})
}

func TestRuleDefaults(t *testing.T) {
	yaml := strings.Replace(testTournamentYAML, "rules:\n  venue_min_days: 3\n  team_min_days: 5\n", "", 1)
	cfg, err := LoadFromBytes([]byte(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Rules.VenueMinDays != 2 || cfg.Rules.TeamMinDays != 4 {
		t.Errorf("rules = %+v, want 2/4 defaults", cfg.Rules)
	}
}

func TestExplicitZeroRule(t *testing.T) {
	yaml := strings.Replace(testTournamentYAML,
		"rules:\n  venue_min_days: 3\n  team_min_days: 5\n",
		"rules:\n  venue_min_days: 0\n", 1)
	cfg, err := LoadFromBytes([]byte(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Rules.VenueMinDays != 0 {
		t.Errorf("venue_min_days = %d, want explicit 0 kept", cfg.Rules.VenueMinDays)
	}
	if cfg.Rules.TeamMinDays != 4 {
		t.Errorf("team_min_days = %d, want default 4", cfg.Rules.TeamMinDays)
	}
}

func TestDefaultTournament(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	if len(cfg.Venues) != 16 {
		t.Errorf("venues = %d, want 16", len(cfg.Venues))
	}
	if len(cfg.Dates()) != 17 {
		t.Errorf("dates = %d, want 17", len(cfg.Dates()))
	}
	if len(cfg.Groups) != 12 {
		t.Errorf("groups = %d, want 12", len(cfg.Groups))
	}
	if v, _ := cfg.Venue("Mexico_City"); v.Region != "Central" {
		t.Errorf("Mexico_City region = %q, want Central", v.Region)
	}
}

func TestValidation(t *testing.T) {
	cases := []struct {
		name    string
		from    string
		to      string
		wantErr string
	}{
		{"end before start", `end_date: "2026-06-15"`, `end_date: "2026-06-01"`, "must not be before"},
		{"unknown region", "region: East", "region: North", "unknown region"},
		{"duplicate venue", "key: Foxborough", "key: Seattle", "listed twice"},
		{"duplicate group", "groups: [A, B]", "groups: [A, A]", "unique"},
		{"bad latitude", "lat: 42.0909", "lat: 142.0909", "out of range"},
		{"negative rule", "team_min_days: 5", "team_min_days: -1", "negative"},
		{"no groups", "groups: [A, B]", "groups: []", "at least one group"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			yaml := strings.Replace(testTournamentYAML, tc.from, tc.to, 1)
			_, err := LoadFromBytes([]byte(yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrInvalidTournament) {
				t.Errorf("error %v should wrap ErrInvalidTournament", err)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q should mention %q", err, tc.wantErr)
			}
		})
	}

	t.Run("invalid date", func(t *testing.T) {
		yaml := strings.Replace(testTournamentYAML, `"2026-06-11"`, `"June 11"`, 1)
		if _, err := LoadFromBytes([]byte(yaml)); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tournament.yaml")
	if err := os.WriteFile(path, Template(), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if cfg.Name != "2026 Group Stage" {
		t.Errorf("name = %q", cfg.Name)
	}

	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

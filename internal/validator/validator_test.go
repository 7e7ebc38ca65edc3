package validator

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/derekprior/wcsched/internal/config"
	"github.com/derekprior/wcsched/internal/schedule"
)

func d(day int) time.Time {
	return time.Date(2026, 6, day, 0, 0, 0, 0, time.UTC)
}

func testValidator(t *testing.T) *Validator {
	t.Helper()
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("config.Default() error: %v", err)
	}
	return New(cfg)
}

func mustSchedule(t *testing.T, matches ...schedule.Match) *schedule.Schedule {
	t.Helper()
	s, err := schedule.New(matches...)
	if err != nil {
		t.Fatalf("schedule.New() error: %v", err)
	}
	return s
}

func TestVenueRest(t *testing.T) {
	v := testValidator(t)

	t.Run("violation when a venue hosts on consecutive days", func(t *testing.T) {
		s := mustSchedule(t,
			schedule.Match{ID: "m1", T1: "A1", T2: "A2", Venue: "Mexico_City", Date: d(12)},
			schedule.Match{ID: "m2", T1: "B1", T2: "B2", Venue: "Mexico_City", Date: d(13)},
		)
		viol := v.Check(s, []string{"m1"})
		if viol == nil {
			t.Fatal("expected a venue rest violation")
		}
		if viol.Rule != VenueRest || viol.Subject != "Mexico_City" || viol.Other != "m2" || viol.Days != 1 {
			t.Errorf("violation = %+v", viol)
		}
		if !strings.Contains(viol.Message, "Mexico City needs a rest day") {
			t.Errorf("message = %q", viol.Message)
		}
	})

	t.Run("two days apart is fine", func(t *testing.T) {
		s := mustSchedule(t,
			schedule.Match{ID: "m1", T1: "A1", T2: "A2", Venue: "Mexico_City", Date: d(12)},
			schedule.Match{ID: "m2", T1: "B1", T2: "B2", Venue: "Mexico_City", Date: d(14)},
		)
		if viol := v.Check(s, []string{"m1"}); viol != nil {
			t.Errorf("unexpected violation: %v", viol)
		}
	})

	t.Run("predecessor is checked as well as successor", func(t *testing.T) {
		s := mustSchedule(t,
			schedule.Match{ID: "m1", T1: "A1", T2: "A2", Venue: "Toronto", Date: d(11)},
			schedule.Match{ID: "m2", T1: "B1", T2: "B2", Venue: "Toronto", Date: d(12)},
			schedule.Match{ID: "m3", T1: "C1", T2: "C2", Venue: "Toronto", Date: d(20)},
		)
		viol := v.Check(s, []string{"m2"})
		if viol == nil || viol.Other != "m1" {
			t.Errorf("violation = %+v, want neighbour m1", viol)
		}
	})
}

func TestTeamRest(t *testing.T) {
	v := testValidator(t)

	t.Run("team playing again after one day is rejected", func(t *testing.T) {
		// A1 plays 06-11 and 06-14; moving m53 to 06-15 puts A1 one day after 06-14.
		s := mustSchedule(t,
			schedule.Match{ID: "m1", T1: "A1", T2: "A2", Venue: "Mexico_City", Date: d(11)},
			schedule.Match{ID: "m26", T1: "A1", T2: "A3", Venue: "Guadalajara", Date: d(14)},
			schedule.Match{ID: "m53", T1: "A4", T2: "A1", Venue: "Monterrey", Date: d(15)},
		)
		viol := v.Check(s, []string{"m53"})
		if viol == nil {
			t.Fatal("expected a team rest violation")
		}
		if viol.Rule != TeamRest || viol.Subject != "A1" || viol.Other != "m26" || viol.Days != 1 || viol.MinDays != 4 {
			t.Errorf("violation = %+v", viol)
		}
		if !strings.Contains(viol.Message, "A1 plays too soon") {
			t.Errorf("message = %q", viol.Message)
		}
	})

	t.Run("four days apart is fine", func(t *testing.T) {
		s := mustSchedule(t,
			schedule.Match{ID: "m1", T1: "A1", T2: "A2", Venue: "Mexico_City", Date: d(11)},
			schedule.Match{ID: "m26", T1: "A1", T2: "A3", Venue: "Guadalajara", Date: d(15)},
		)
		if viol := v.Check(s, []string{"m26"}); viol != nil {
			t.Errorf("unexpected violation: %v", viol)
		}
	})

	t.Run("three days apart is rejected", func(t *testing.T) {
		s := mustSchedule(t,
			schedule.Match{ID: "m1", T1: "A1", T2: "A2", Venue: "Mexico_City", Date: d(11)},
			schedule.Match{ID: "m26", T1: "A3", T2: "A1", Venue: "Guadalajara", Date: d(14)},
		)
		viol := v.Check(s, []string{"m26"})
		if viol == nil || viol.Days != 3 {
			t.Errorf("violation = %+v, want 3-day gap", viol)
		}
	})
}

func TestCheckOrder(t *testing.T) {
	v := testValidator(t)

	t.Run("venue rule is reported before team rule", func(t *testing.T) {
		s := mustSchedule(t,
			schedule.Match{ID: "m1", T1: "A1", T2: "A2", Venue: "Toronto", Date: d(11)},
			schedule.Match{ID: "m2", T1: "A1", T2: "A3", Venue: "Toronto", Date: d(12)},
		)
		if viol := v.Check(s, []string{"m2"}); viol == nil || viol.Rule != VenueRest {
			t.Errorf("violation = %+v, want venue rest", viol)
		}
	})

	t.Run("t1 is reported before t2", func(t *testing.T) {
		s := mustSchedule(t,
			schedule.Match{ID: "m1", T1: "A1", T2: "B1", Venue: "Toronto", Date: d(11)},
			schedule.Match{ID: "m2", T1: "A2", T2: "B2", Venue: "Seattle", Date: d(12)},
			schedule.Match{ID: "m3", T1: "B2", T2: "A2", Venue: "Miami_Gardens", Date: d(13)},
			schedule.Match{ID: "m4", T1: "A1", T2: "B1", Venue: "Houston", Date: d(13)},
		)
		viol := v.Check(s, []string{"m4"})
		if viol == nil || viol.Subject != "A1" {
			t.Errorf("violation = %+v, want A1", viol)
		}
		viol = v.Check(s, []string{"m3"})
		if viol == nil || viol.Subject != "B2" {
			t.Errorf("violation = %+v, want B2", viol)
		}
	})

	t.Run("changed matches are checked in the order supplied", func(t *testing.T) {
		s := mustSchedule(t,
			schedule.Match{ID: "m1", T1: "A1", T2: "A2", Venue: "Toronto", Date: d(11)},
			schedule.Match{ID: "m2", T1: "B1", T2: "B2", Venue: "Toronto", Date: d(12)},
			schedule.Match{ID: "m3", T1: "C1", T2: "C2", Venue: "Seattle", Date: d(11)},
			schedule.Match{ID: "m4", T1: "C1", T2: "C3", Venue: "Houston", Date: d(12)},
		)
		if viol := v.Check(s, []string{"m4", "m2"}); viol == nil || viol.Match != "m4" {
			t.Errorf("violation = %+v, want m4 first", viol)
		}
		if viol := v.Check(s, []string{"m2", "m4"}); viol == nil || viol.Match != "m2" {
			t.Errorf("violation = %+v, want m2 first", viol)
		}
	})

	t.Run("unknown ids are ignored", func(t *testing.T) {
		s := mustSchedule(t, schedule.Match{ID: "m1", T1: "A1", T2: "A2", Venue: "Toronto", Date: d(11)})
		if viol := v.Check(s, []string{"m99"}); viol != nil {
			t.Errorf("unexpected violation: %v", viol)
		}
	})
}

func TestViolationError(t *testing.T) {
	v := testValidator(t)
	s := mustSchedule(t,
		schedule.Match{ID: "m1", T1: "A1", T2: "A2", Venue: "Toronto", Date: d(11)},
		schedule.Match{ID: "m2", T1: "B1", T2: "B2", Venue: "Toronto", Date: d(12)},
	)
	var err error = v.Check(s, []string{"m2"})
	if !errors.Is(err, ErrRuleViolation) {
		t.Errorf("errors.Is(%v, ErrRuleViolation) = false", err)
	}
	var viol *Violation
	if !errors.As(err, &viol) || viol.Match != "m2" {
		t.Errorf("errors.As failed: %v", err)
	}
}

func TestAudit(t *testing.T) {
	v := testValidator(t)

	t.Run("clean schedule has no violations", func(t *testing.T) {
		s := mustSchedule(t,
			schedule.Match{ID: "m1", T1: "A1", T2: "A2", Venue: "Mexico_City", Date: d(11)},
			schedule.Match{ID: "m26", T1: "A1", T2: "A3", Venue: "Guadalajara", Date: d(18)},
			schedule.Match{ID: "m53", T1: "A1", T2: "A4", Venue: "Mexico_City", Date: d(24)},
		)
		if got := v.Audit(s); len(got) != 0 {
			t.Errorf("violations = %v", got)
		}
	})

	t.Run("reports every violation, tightest first", func(t *testing.T) {
		s := mustSchedule(t,
			schedule.Match{ID: "m1", T1: "A1", T2: "A2", Venue: "Toronto", Date: d(11)},
			schedule.Match{ID: "m2", T1: "B1", T2: "B2", Venue: "Toronto", Date: d(12)},
			schedule.Match{ID: "m3", T1: "A1", T2: "A3", Venue: "Seattle", Date: d(14)},
		)
		got := v.Audit(s)
		if len(got) != 2 {
			t.Fatalf("violations = %d, want 2: %v", len(got), got)
		}
		if got[0].Rule != VenueRest || got[0].Days != 1 {
			t.Errorf("first = %+v, want 1-day venue gap", got[0])
		}
		if got[1].Rule != TeamRest || got[1].Subject != "A1" || got[1].Days != 3 {
			t.Errorf("second = %+v, want 3-day A1 gap", got[1])
		}
	})
}

package units

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// milesPerKm converts kilometers to statute miles.
const milesPerKm = 0.621371

// Unit is a distance unit used when presenting travel totals. The core
// always works in kilometers; conversion happens at the reporting edge.
type Unit struct {
	Name  string // "km" or "mi"
	Label string
	perKm float64
}

var (
	Kilometers = Unit{Name: "km", Label: "kilometers", perKm: 1}
	Miles      = Unit{Name: "mi", Label: "miles", perKm: milesPerKm}
)

// Get returns a Unit by name.
func Get(name string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "km", "kilometers", "kilometres":
		return Kilometers, nil
	case "mi", "miles":
		return Miles, nil
	default:
		return Unit{}, fmt.Errorf("unknown distance unit: %q", name)
	}
}

// FromKm converts a kilometer distance into this unit.
func (u Unit) FromKm(km float64) float64 {
	if u.perKm == 0 {
		return km
	}
	return km * u.perKm
}

// ToKm converts a distance in this unit back to kilometers.
func (u Unit) ToKm(v float64) float64 {
	if u.perKm == 0 {
		return v
	}
	return v / u.perKm
}

func (u Unit) String() string { return u.Name }

// mileRegions are the locale regions that customarily measure road
// distance in miles.
var mileRegions = map[string]bool{
	"US": true,
	"GB": true,
	"UK": true,
	"LR": true,
	"MM": true,
}

// ForLocale picks the default unit for a locale hint such as "en-US",
// "en_GB.UTF-8" or "C". Only an explicit region counts; anything else falls
// back to kilometers.
func ForLocale(locale string) Unit {
	// POSIX locales carry a codeset and modifier after the tag.
	if i := strings.IndexAny(locale, ".@"); i >= 0 {
		locale = locale[:i]
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return Kilometers
	}
	region, conf := tag.Region()
	if conf != language.Exact {
		return Kilometers
	}
	if mileRegions[region.String()] {
		return Miles
	}
	return Kilometers
}

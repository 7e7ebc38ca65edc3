// Package excel writes schedules to xlsx workbooks and reads the master
// grid back.
package excel

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/derekprior/wcsched/internal/config"
	"github.com/derekprior/wcsched/internal/grid"
	"github.com/derekprior/wcsched/internal/schedule"
	"github.com/derekprior/wcsched/internal/travel"
	"github.com/derekprior/wcsched/internal/units"
)

// MasterSheet is the name of the venue × date grid sheet.
const MasterSheet = "Master Schedule"

// TravelSheet summarizes travel per team.
const TravelSheet = "Travel"

// groupFills colours match cells by group letter, cycling for any group
// past the end of the palette.
var groupFills = []string{
	"#DDEBF7", "#E2EFDA", "#FFF2CC", "#FCE4D6", "#EDE1F5", "#D9F2F2",
	"#F2DCDB", "#E7E6E6", "#DEEAF1", "#FFF0E1", "#E4F1D9", "#F8E5EC",
}

// Generate creates a workbook with the master grid, a travel summary and one
// sheet per team. Distances are shown in unit.
func Generate(t *config.Tournament, s *schedule.Schedule, calc *travel.Calculator, unit units.Unit) (*excelize.File, error) {
	f := excelize.NewFile()

	// Set default font for the workbook
	f.SetDefaultFont("Arial")

	// Reuse the default sheet so no team sheet can collide with it.
	if err := f.SetSheetName("Sheet1", MasterSheet); err != nil {
		return nil, fmt.Errorf("naming master sheet: %w", err)
	}

	if err := writeMasterSheet(f, t, s); err != nil {
		return nil, fmt.Errorf("writing master sheet: %w", err)
	}

	teams := calc.Teams(s)
	if err := writeTravelSheet(f, teams, unit); err != nil {
		return nil, fmt.Errorf("writing travel sheet: %w", err)
	}

	if err := writeTeamSheets(f, t, s, teams, unit); err != nil {
		return nil, fmt.Errorf("writing team sheets: %w", err)
	}

	return f, nil
}

// ReadSchedule decodes the master grid of the workbook at path.
func ReadSchedule(path string, t *config.Tournament, opts ...grid.Option) (*grid.Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(MasterSheet)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", MasterSheet, err)
	}
	return grid.Decode(rows, t, opts...)
}

// UpdateTeamSheets rebuilds the travel and team sheets of the workbook at
// path from its master grid, so hand edits to the grid show up everywhere.
func UpdateTeamSheets(path string, t *config.Tournament, calc *travel.Calculator, unit units.Unit) error {
	res, err := ReadSchedule(path, t)
	if err != nil {
		return err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	for _, name := range f.GetSheetList() {
		if name != MasterSheet {
			if err := f.DeleteSheet(name); err != nil {
				return fmt.Errorf("removing sheet %s: %w", name, err)
			}
		}
	}

	teams := calc.Teams(res.Schedule)
	if err := writeTravelSheet(f, teams, unit); err != nil {
		return fmt.Errorf("writing travel sheet: %w", err)
	}
	if err := writeTeamSheets(f, t, res.Schedule, teams, unit); err != nil {
		return fmt.Errorf("writing team sheets: %w", err)
	}
	return f.Save()
}

func headerStyle(f *excelize.File) int {
	style, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 14, Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	return style
}

func writeHeaders(f *excelize.File, sheet string, headers []string) {
	for i, h := range headers {
		f.SetCellValue(sheet, cellRef(i+1, 1), h)
	}
	if style := headerStyle(f); style != 0 {
		f.SetCellStyle(sheet, cellRef(1, 1), cellRef(len(headers), 1), style)
	}
}

func writeMasterSheet(f *excelize.File, t *config.Tournament, s *schedule.Schedule) error {
	sheet := MasterSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	rows := grid.Rows(s, t)
	writeHeaders(f, sheet, rows[0])

	venueStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14, Family: "Arial"},
	})

	// one style per group letter, created lazily
	groupStyles := make(map[string]int)
	styleFor := func(group string) int {
		letter := strings.ToUpper(group[:1])
		if style, ok := groupStyles[letter]; ok {
			return style
		}
		fill := groupFills[int(letter[0]-'A')%len(groupFills)]
		style, _ := f.NewStyle(&excelize.Style{
			Font:      &excelize.Font{Size: 12, Family: "Arial"},
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{fill}},
			Alignment: &excelize.Alignment{Horizontal: "center", WrapText: true},
		})
		groupStyles[letter] = style
		return style
	}

	dates := t.Dates()
	for r, row := range rows[1:] {
		rowNum := r + 2
		f.SetCellValue(sheet, cellRef(1, rowNum), row[0])
		if venueStyle != 0 {
			f.SetCellStyle(sheet, cellRef(1, rowNum), cellRef(1, rowNum), venueStyle)
		}
		for c, date := range dates {
			m, ok := s.At(schedule.Cell{Venue: row[0], Date: date})
			if !ok {
				continue
			}
			ref := cellRef(c+2, rowNum)
			f.SetCellValue(sheet, ref, row[c+1])
			if m.Group != "" {
				if style := styleFor(m.Group); style != 0 {
					f.SetCellStyle(sheet, ref, ref, style)
				}
			}
		}
	}

	f.SetColWidth(sheet, "A", "A", 20)
	if len(dates) > 0 {
		f.SetColWidth(sheet, "B", colLetter(len(dates)+1), 34)
	}
	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      1,
		YSplit:      1,
		TopLeftCell: "B2",
		ActivePane:  "bottomRight",
	})
	return nil
}

func writeTravelSheet(f *excelize.File, teams []travel.TeamSummary, unit units.Unit) error {
	sheet := TravelSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	writeHeaders(f, sheet, []string{"Team", "Matches", "Distance (" + unit.Name + ")", "Region crossings"})

	var total float64
	var crossings int
	for i, ts := range teams {
		row := i + 2
		dist := unit.FromKm(ts.DistanceKm)
		f.SetCellValue(sheet, cellRef(1, row), ts.Team)
		f.SetCellValue(sheet, cellRef(2, row), ts.Matches)
		f.SetCellValue(sheet, cellRef(3, row), round1(dist))
		f.SetCellValue(sheet, cellRef(4, row), ts.RegionCrossings)
		total += dist
		crossings += ts.RegionCrossings
	}

	totalRow := len(teams) + 2
	f.SetCellValue(sheet, cellRef(1, totalRow), "Total")
	f.SetCellValue(sheet, cellRef(3, totalRow), round1(total))
	f.SetCellValue(sheet, cellRef(4, totalRow), crossings)
	if bold, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Family: "Arial"}}); bold != 0 {
		f.SetCellStyle(sheet, cellRef(1, totalRow), cellRef(4, totalRow), bold)
	}

	widths := map[string]float64{"A": 24, "B": 10, "C": 16, "D": 18}
	for col, w := range widths {
		f.SetColWidth(sheet, col, col, w)
	}
	return nil
}

func writeTeamSheets(f *excelize.File, t *config.Tournament, s *schedule.Schedule, teams []travel.TeamSummary, unit units.Unit) error {
	used := map[string]bool{
		strings.ToLower(MasterSheet): true,
		strings.ToLower(TravelSheet): true,
	}
	for _, ts := range teams {
		sheet := sheetName(ts.Team, used)
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("team %s: %w", ts.Team, err)
		}

		headers := []string{"Date", "Day", "Venue", "Opponent", "Group", "Match", "Leg (" + unit.Name + ")"}
		writeHeaders(f, sheet, headers)

		// Legs[i-1] is the trip into path[i]; the first match has no leg.
		path := s.TeamMatches(ts.Team)
		for i, m := range path {
			row := i + 2
			opponent := m.T2
			if m.T2 == ts.Team {
				opponent = m.T1
			}
			venue := m.Venue
			if v, ok := t.Venue(m.Venue); ok && v.Name != "" {
				venue = v.Name
			}
			f.SetCellValue(sheet, cellRef(1, row), m.Date.Format("01/02/2006"))
			f.SetCellValue(sheet, cellRef(2, row), m.Date.Format("Mon"))
			f.SetCellValue(sheet, cellRef(3, row), venue)
			f.SetCellValue(sheet, cellRef(4, row), opponent)
			f.SetCellValue(sheet, cellRef(5, row), m.Group)
			f.SetCellValue(sheet, cellRef(6, row), m.ID)
			if i > 0 && i-1 < len(ts.Legs) {
				f.SetCellValue(sheet, cellRef(7, row), round1(unit.FromKm(ts.Legs[i-1].DistanceKm)))
			}
		}

		widths := map[string]float64{"A": 14, "B": 8, "C": 20, "D": 22, "E": 8, "F": 8, "G": 12}
		for col, w := range widths {
			f.SetColWidth(sheet, col, col, w)
		}
	}
	return nil
}

// sheetName makes a valid, unique worksheet name from a team name. Excel
// limits names to 31 characters, forbids a handful of punctuation marks and
// compares names case-insensitively, so used is keyed by lower case.
func sheetName(team string, used map[string]bool) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, team)
	name = strings.Trim(name, "'")
	if name == "" {
		name = "Team"
	}
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	base := name
	for i := 2; used[strings.ToLower(name)]; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		r := []rune(base)
		if len(r)+len(suffix) > 31 {
			r = r[:31-len(suffix)]
		}
		name = string(r) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func round1(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}

func cellRef(col, row int) string {
	return fmt.Sprintf("%s%d", colLetter(col), row)
}

func colLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}

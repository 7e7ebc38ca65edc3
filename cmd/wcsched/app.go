package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/derekprior/wcsched/internal/config"
	"github.com/derekprior/wcsched/internal/excel"
	"github.com/derekprior/wcsched/internal/grid"
	"github.com/derekprior/wcsched/internal/logger"
	"github.com/derekprior/wcsched/internal/schedule"
	"github.com/derekprior/wcsched/internal/store"
	"github.com/derekprior/wcsched/internal/telemetry"
	"github.com/derekprior/wcsched/internal/travel"
	"github.com/derekprior/wcsched/internal/units"
	"github.com/derekprior/wcsched/internal/validator"
)

type rootOptions struct {
	settingsFile   string
	tournamentFile string
	official       string
	optimal        string
	unit           string
	telemetry      bool

	registry *prometheus.Registry
}

// app is everything a command needs, built from settings and flags.
type app struct {
	settings   *config.Settings
	tournament *config.Tournament
	unit       units.Unit
	log        logger.Logger
	rec        telemetry.Recorder
	store      *store.Store
}

// setup resolves settings (defaults < file < env < flags) and builds the
// tournament, logger and telemetry, but loads no schedules.
func (o *rootOptions) setup() (*app, error) {
	s, err := config.LoadSettings(o.settingsFile)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	if o.tournamentFile != "" {
		s.Tournament = o.tournamentFile
	}
	if o.official != "" {
		s.Official = o.official
	}
	if o.optimal != "" {
		s.Optimal = o.optimal
	}
	if o.unit != "" {
		s.Unit = o.unit
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	logger.SetLevel(s.LogLevel)

	var t *config.Tournament
	if s.Tournament != "" {
		t, err = config.LoadFromFile(s.Tournament)
	} else {
		t, err = config.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("loading tournament: %w", err)
	}

	unit := units.ForLocale(s.Locale)
	if s.Unit != "" {
		if unit, err = units.Get(s.Unit); err != nil {
			return nil, err
		}
	}

	var rec telemetry.Recorder = telemetry.Nop{}
	if o.telemetry {
		o.registry = prometheus.NewRegistry()
		prom, err := telemetry.NewProm(o.registry)
		if err != nil {
			return nil, fmt.Errorf("registering telemetry: %w", err)
		}
		rec = prom
	}

	a := &app{
		settings:   s,
		tournament: t,
		unit:       unit,
		log:        logger.New("wcsched"),
		rec:        rec,
	}
	a.store = store.New(t,
		store.WithLogger(logger.New("store")),
		store.WithRecorder(rec),
	)
	return a, nil
}

// load runs setup and then loads both baseline schedules.
func (o *rootOptions) load(ctx context.Context) (*app, error) {
	a, err := o.setup()
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err = a.store.LoadBaselines(ctx, a.fileSource(a.settings.Official), a.fileSource(a.settings.Optimal))
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (a *app) parseOptions() []grid.Option {
	return []grid.Option{
		grid.WithLogger(logger.New("grid")),
		grid.WithRecorder(a.rec),
	}
}

// readSchedule decodes a .csv or .xlsx schedule file.
func (a *app) readSchedule(path string) (*grid.Result, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return excel.ReadSchedule(path, a.tournament, a.parseOptions()...)
	case ".csv", "":
		return grid.ReadCSVFile(path, a.tournament, a.parseOptions()...)
	default:
		return nil, fmt.Errorf("unsupported schedule file %s: want .csv or .xlsx", path)
	}
}

func (a *app) fileSource(path string) store.Source {
	return store.SourceFunc(func(ctx context.Context) (*schedule.Schedule, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := a.readSchedule(path)
		if err != nil {
			return nil, err
		}
		if len(res.Skips) > 0 {
			a.log.Warnf("%s: skipped %d entries", path, len(res.Skips))
		}
		return res.Schedule, nil
	})
}

func (a *app) switchMode(name string) error {
	mode, err := store.ParseMode(name)
	if err != nil {
		return err
	}
	return a.store.SetMode(mode)
}

func runInit(outputPath string) error {
	if _, err := os.Stat(outputPath); err == nil {
		return fmt.Errorf("%s already exists; remove it first or use -o to write elsewhere", outputPath)
	}

	if err := os.WriteFile(outputPath, config.Template(), 0644); err != nil {
		return fmt.Errorf("writing tournament: %w", err)
	}

	fmt.Printf("✓ Created %s\n", outputPath)
	return nil
}

func (a *app) runMetrics(w io.Writer, mode string) error {
	if err := a.switchMode(mode); err != nil {
		return err
	}
	return a.printMetrics(w)
}

func (a *app) printMetrics(w io.Writer) error {
	r, err := a.store.Metrics(a.unit)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Schedule: %s\n", r.Mode)
	fmt.Fprintf(w, "  Total distance:   %.0f %s\n", r.Totals.Distance, a.unit.Name)
	fmt.Fprintf(w, "  Region crossings: %d\n", r.Totals.RegionCrossings)
	if r.Baseline {
		fmt.Fprintln(w, "  (baseline)")
	} else {
		fmt.Fprintf(w, "  vs optimal:       %+.0f %s, %+d crossings\n", r.DistanceDelta, a.unit.Name, r.CrossingsDelta)
	}

	fmt.Fprintln(w, "\nPer Team Travel:")
	fmt.Fprintf(w, "  %-15s %7s %10s %9s\n", "Team", "Matches", "Distance", "Crossings")
	for _, tt := range r.Teams {
		fmt.Fprintf(w, "  %-15s %7d %10.0f %9d\n", tt.Team, tt.Matches, tt.Distance, tt.RegionCrossings)
	}
	return nil
}

func (a *app) runOpen(w io.Writer, mode, venue string) error {
	if err := a.switchMode(mode); err != nil {
		return err
	}
	if venue != "" {
		if _, ok := a.tournament.Venue(venue); !ok {
			return fmt.Errorf("%w: %q", store.ErrUnknownVenue, venue)
		}
	}
	cells, err := a.store.OpenCells()
	if err != nil {
		return err
	}
	printOpenCells(w, cells, venue)
	return nil
}

// printOpenCells writes one line per venue listing its free dates.
func printOpenCells(w io.Writer, cells []schedule.Cell, venue string) {
	var (
		current string
		dates   []string
		total   int
	)
	flush := func() {
		if current != "" {
			fmt.Fprintf(w, "  %-16s %s\n", current, strings.Join(dates, " "))
		}
	}
	fmt.Fprintln(w, "Open cells:")
	for _, c := range cells {
		if venue != "" && c.Venue != venue {
			continue
		}
		if c.Venue != current {
			flush()
			current, dates = c.Venue, nil
		}
		dates = append(dates, c.Date.Format("01/02"))
		total++
	}
	flush()
	fmt.Fprintf(w, "%d open cells\n", total)
}

func (a *app) runEdit(w io.Writer, mode string, moves []string, output string) error {
	if err := a.switchMode(mode); err != nil {
		return err
	}

	rejected := 0
	for _, raw := range moves {
		id, cell, err := parseMove(raw)
		if err != nil {
			return err
		}
		if _, err := a.store.ProposeMove(id, cell.Venue, cell.Date); err != nil {
			rejected++
			var viol *validator.Violation
			if errors.As(err, &viol) {
				fmt.Fprintf(w, "✗ %s: %s\n", raw, viol.Message)
			} else {
				fmt.Fprintf(w, "✗ %s: %s\n", raw, err)
			}
			continue
		}
		fmt.Fprintf(w, "✓ %s\n", raw)
	}

	for _, h := range a.store.History() {
		if h.Swapped != "" {
			fmt.Fprintf(w, "  %s %s -> %s (swapped with %s)\n", h.Match, h.From, h.To, h.Swapped)
		}
	}

	fmt.Fprintln(w)
	if err := a.printMetrics(w); err != nil {
		return err
	}

	if output != "" {
		if err := a.export(w, output); err != nil {
			return err
		}
	}
	if rejected > 0 {
		return fmt.Errorf("%d of %d moves rejected", rejected, len(moves))
	}
	return nil
}

// parseMove reads "m12=Toronto/2026-06-14".
func parseMove(s string) (string, schedule.Cell, error) {
	id, target, ok := strings.Cut(s, "=")
	if !ok {
		return "", schedule.Cell{}, fmt.Errorf("invalid move %q: want ID=VENUE/YYYY-MM-DD", s)
	}
	venue, date, ok := strings.Cut(target, "/")
	if !ok {
		return "", schedule.Cell{}, fmt.Errorf("invalid move %q: want ID=VENUE/YYYY-MM-DD", s)
	}
	d, err := config.ParseDate(date)
	if err != nil {
		return "", schedule.Cell{}, fmt.Errorf("invalid move %q: %w", s, err)
	}
	return strings.TrimSpace(id), schedule.Cell{Venue: strings.TrimSpace(venue), Date: d}, nil
}

func (a *app) export(w io.Writer, path string) error {
	s := a.store.ActiveSchedule()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		f, err := excel.Generate(a.tournament, s, travel.NewCalculator(a.tournament), a.unit)
		if err != nil {
			return fmt.Errorf("generating Excel: %w", err)
		}
		if err := f.SaveAs(path); err != nil {
			return fmt.Errorf("saving file: %w", err)
		}
	case ".csv":
		out, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating file: %w", err)
		}
		if err := grid.WriteCSV(out, s, a.tournament); err != nil {
			out.Close()
			return err
		}
		if err := out.Close(); err != nil {
			return fmt.Errorf("saving file: %w", err)
		}
	default:
		return fmt.Errorf("unsupported output %s: want .csv or .xlsx", path)
	}

	fmt.Fprintf(w, "\n✓ Schedule saved to %s\n", path)
	return nil
}

func (a *app) runValidate(w io.Writer, path string) error {
	res, err := a.readSchedule(path)
	if err != nil {
		return fmt.Errorf("reading schedule: %w", err)
	}
	for _, skip := range res.Skips {
		fmt.Fprintf(w, "⚠ Skipped %s\n", skip)
	}

	violations := validator.New(a.tournament).Audit(res.Schedule)
	for _, v := range violations {
		fmt.Fprintf(w, "✗ Rule violation: %s\n", v.Message)
	}
	fmt.Fprintf(w, "\nValidation complete: %d matches, %d rule violations, %d skipped entries\n",
		res.Schedule.Len(), len(violations), len(res.Skips))

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		if err := excel.UpdateTeamSheets(path, a.tournament, travel.NewCalculator(a.tournament), a.unit); err != nil {
			return fmt.Errorf("updating team sheets: %w", err)
		}
		fmt.Fprintf(w, "✓ Team sheets updated in %s\n", path)
	}

	if len(violations) > 0 {
		return fmt.Errorf("%d rule violations found", len(violations))
	}
	return nil
}

// printTelemetry writes every counter in reg as name{labels} value.
func printTelemetry(w io.Writer, reg prometheus.Gatherer) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gathering telemetry: %w", err)
	}
	fmt.Fprintln(w, "\nTelemetry:")
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			fmt.Fprintf(w, "  %s%s %g\n", mf.GetName(), formatLabels(m.GetLabel()), counterValue(m))
		}
	}
	return nil
}

func formatLabels(labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return ""
	}
	parts := make([]string, 0, len(labels))
	for _, l := range labels {
		parts = append(parts, fmt.Sprintf("%s=%q", l.GetName(), l.GetValue()))
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ",") + "}"
}

func counterValue(m *dto.Metric) float64 {
	if c := m.GetCounter(); c != nil {
		return c.GetValue()
	}
	if g := m.GetGauge(); g != nil {
		return g.GetValue()
	}
	return 0
}

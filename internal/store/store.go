// Package store keeps the official and optimal baseline schedules, the
// user's custom edit of them and whichever of the three is active. Every
// change to the active schedule goes through ProposeMove, which only
// commits moves that pass the rest rules.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/derekprior/wcsched/internal/config"
	"github.com/derekprior/wcsched/internal/logger"
	"github.com/derekprior/wcsched/internal/schedule"
	"github.com/derekprior/wcsched/internal/telemetry"
	"github.com/derekprior/wcsched/internal/travel"
	"github.com/derekprior/wcsched/internal/validator"
)

// Mode selects the dataset backing the active schedule.
type Mode string

const (
	Official Mode = "official"
	Optimal  Mode = "optimal"
	Custom   Mode = "custom"
)

// ParseMode returns the Mode named by s.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case Official, Optimal, Custom:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Source produces a baseline schedule.
type Source interface {
	Load(ctx context.Context) (*schedule.Schedule, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (*schedule.Schedule, error)

func (f SourceFunc) Load(ctx context.Context) (*schedule.Schedule, error) { return f(ctx) }

// MoveRecord is a committed move.
type MoveRecord struct {
	ID      uuid.UUID
	Match   string
	From    schedule.Cell
	To      schedule.Cell
	Swapped string // ID of the displaced match, empty for a move into a free cell
	At      time.Time
}

// Option configures a Store.
type Option func(*Store)

func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

func WithRecorder(r telemetry.Recorder) Option {
	return func(s *Store) {
		if r != nil {
			s.rec = r
		}
	}
}

// WithClock overrides the time source used to stamp history records.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store is not safe for concurrent use.
type Store struct {
	tournament *config.Tournament
	validator  *validator.Validator
	calc       *travel.Calculator
	log        logger.Logger
	rec        telemetry.Recorder
	now        func() time.Time

	official *schedule.Schedule
	optimal  *schedule.Schedule
	custom   *schedule.Schedule
	active   *schedule.Schedule
	mode     Mode
	history  []MoveRecord
}

// New returns an empty Store for the tournament. Call LoadBaselines before
// anything else.
func New(t *config.Tournament, opts ...Option) *Store {
	s := &Store{
		tournament: t,
		validator:  validator.New(t),
		calc:       travel.NewCalculator(t),
		log:        logger.NopLogger{},
		rec:        telemetry.Nop{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadBaselines loads both baselines concurrently. Both must succeed; on
// failure the error wraps ErrLoadFailure and the store keeps its previous
// state. On success the custom schedule and the move history are cleared
// and the optimal schedule becomes active.
func (s *Store) LoadBaselines(ctx context.Context, official, optimal Source) error {
	if official == nil || optimal == nil {
		return fmt.Errorf("%w: missing source", ErrLoadFailure)
	}

	var off, opt *schedule.Schedule
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sched, err := load(gctx, Official, official)
		off = sched
		return err
	})
	g.Go(func() error {
		sched, err := load(gctx, Optimal, optimal)
		opt = sched
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Errorf("baseline load failed: %v", err)
		return err
	}

	s.official, s.optimal = off, opt
	s.custom = nil
	s.history = nil
	s.mode = Optimal
	s.active = opt.Clone()
	s.log.Infof("loaded baselines: %d official, %d optimal matches", off.Len(), opt.Len())
	return nil
}

func load(ctx context.Context, mode Mode, src Source) (*schedule.Schedule, error) {
	sched, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadFailure, mode, err)
	}
	if sched == nil {
		return nil, fmt.Errorf("%w: %s: no schedule", ErrLoadFailure, mode)
	}
	return sched, nil
}

// Mode returns the active mode. It is empty before the first load.
func (s *Store) Mode() Mode {
	return s.mode
}

// ActiveSchedule returns a copy of the active schedule, or nil before the
// first load.
func (s *Store) ActiveSchedule() *schedule.Schedule {
	if s.active == nil {
		return nil
	}
	return s.active.Clone()
}

// Baseline returns a copy of the schedule backing mode, or false if that
// mode has no data.
func (s *Store) Baseline(mode Mode) (*schedule.Schedule, bool) {
	var b *schedule.Schedule
	switch mode {
	case Official:
		b = s.official
	case Optimal:
		b = s.optimal
	case Custom:
		b = s.custom
	}
	if b == nil {
		return nil, false
	}
	return b.Clone(), true
}

// SetMode makes mode's dataset active. Switching to custom before any edit
// has been committed fails with ErrModeUnavailable.
func (s *Store) SetMode(mode Mode) error {
	switch mode {
	case Official, Optimal, Custom:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	if s.active == nil {
		return ErrNotInitialized
	}
	backing, ok := s.Baseline(mode)
	if !ok {
		return fmt.Errorf("%w: %s", ErrModeUnavailable, mode)
	}
	s.active = backing
	if s.mode != mode {
		s.log.Infof("switched mode %s -> %s", s.mode, mode)
		s.rec.ModeSwitched(string(mode))
	}
	s.mode = mode
	return nil
}

// ProposeMove moves match id to (venue, date), swapping with any match
// already there. The moved matches are checked against the rest rules,
// mover first. An accepted move becomes the custom schedule and switches
// the store to custom mode; the new active schedule is returned. A rejected
// move returns a *validator.Violation and changes nothing.
func (s *Store) ProposeMove(id, venue string, date time.Time) (*schedule.Schedule, error) {
	if s.active == nil {
		return nil, ErrNotInitialized
	}
	to := schedule.Cell{Venue: venue, Date: schedule.Day(date)}
	if !schedule.ContainsCell(s.tournament, to) {
		if _, ok := s.tournament.Venue(venue); !ok {
			s.rec.MoveRejected("unknown_venue")
			return nil, fmt.Errorf("%w: %q", ErrUnknownVenue, venue)
		}
		s.rec.MoveRejected("unknown_date")
		return nil, fmt.Errorf("%w: %s", ErrUnknownDate, to.Date.Format(config.DateLayout))
	}
	from, ok := s.active.Match(id)
	if !ok {
		s.rec.MoveRejected("match_not_found")
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, id)
	}

	candidate := s.active.Clone()
	changed, err := candidate.Move(id, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMatchNotFound, err)
	}
	if len(changed) == 0 {
		return s.active.Clone(), nil
	}

	if viol := s.validator.Check(candidate, changed); viol != nil {
		s.log.Warnw("move rejected", map[string]any{
			"match": id,
			"to":    to.String(),
			"rule":  string(viol.Rule),
			"error": viol.Message,
		})
		s.rec.MoveRejected(string(viol.Rule))
		return nil, viol
	}

	rec := MoveRecord{
		ID:    uuid.New(),
		Match: id,
		From:  from.Cell(),
		To:    to,
		At:    s.now(),
	}
	if len(changed) > 1 {
		rec.Swapped = changed[1]
	}
	s.history = append(s.history, rec)
	s.active = candidate
	s.custom = candidate.Clone()
	if s.mode != Custom {
		s.rec.ModeSwitched(string(Custom))
	}
	s.mode = Custom
	s.rec.MoveAccepted(rec.Swapped != "")
	s.log.Infof("moved %s %s -> %s (swapped: %q)", id, rec.From, rec.To, rec.Swapped)
	return s.active.Clone(), nil
}

// OpenCells returns the tournament cells the active schedule leaves free,
// venues in config order and dates ascending. A match can move into any of
// them without displacing another.
func (s *Store) OpenCells() ([]schedule.Cell, error) {
	if s.active == nil {
		return nil, ErrNotInitialized
	}
	return schedule.OpenCells(s.tournament, s.active), nil
}

// History returns every committed move since the last load, oldest first.
func (s *Store) History() []MoveRecord {
	return append([]MoveRecord(nil), s.history...)
}

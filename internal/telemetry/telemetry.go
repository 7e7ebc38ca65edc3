// Package telemetry counts parser skips, move outcomes and mode switches
// in Prometheus collectors.
package telemetry

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder receives events from the parser and the store.
type Recorder interface {
	ParseSkipped(reason string)
	MoveAccepted(swapped bool)
	MoveRejected(reason string)
	ModeSwitched(mode string)
}

// Nop discards every event.
type Nop struct{}

func (Nop) ParseSkipped(string) {}
func (Nop) MoveAccepted(bool)   {}
func (Nop) MoveRejected(string) {}
func (Nop) ModeSwitched(string) {}

// Prom records events in Prometheus counters.
type Prom struct {
	skips *prometheus.CounterVec
	moves *prometheus.CounterVec
	modes *prometheus.CounterVec
}

// NewProm registers the counters on reg. If reg is nil, the default
// registerer is used. Collectors that are already registered are reused.
func NewProm(reg prometheus.Registerer) (*Prom, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	skips, err := registerCounter(reg, prometheus.CounterOpts{
		Name: "wcsched_parse_skips_total",
		Help: "Schedule cells or rows dropped while parsing",
	}, "reason")
	if err != nil {
		return nil, err
	}
	moves, err := registerCounter(reg, prometheus.CounterOpts{
		Name: "wcsched_moves_total",
		Help: "Proposed moves by outcome",
	}, "result")
	if err != nil {
		return nil, err
	}
	modes, err := registerCounter(reg, prometheus.CounterOpts{
		Name: "wcsched_mode_switches_total",
		Help: "Active dataset switches by target mode",
	}, "mode")
	if err != nil {
		return nil, err
	}
	return &Prom{skips: skips, moves: moves, modes: modes}, nil
}

func registerCounter(reg prometheus.Registerer, opts prometheus.CounterOpts, label string) (*prometheus.CounterVec, error) {
	c := prometheus.NewCounterVec(opts, []string{label})
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return c, nil
}

func (p *Prom) ParseSkipped(reason string) {
	p.skips.WithLabelValues(reason).Inc()
}

func (p *Prom) MoveAccepted(swapped bool) {
	if swapped {
		p.moves.WithLabelValues("swapped").Inc()
		return
	}
	p.moves.WithLabelValues("moved").Inc()
}

func (p *Prom) MoveRejected(reason string) {
	p.moves.WithLabelValues("rejected_" + reason).Inc()
}

func (p *Prom) ModeSwitched(mode string) {
	p.modes.WithLabelValues(mode).Inc()
}

package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProm(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := NewProm(reg)
	require.NoError(t, err)

	p.ParseSkipped("unknown_venue")
	p.ParseSkipped("unknown_venue")
	p.ParseSkipped("malformed_cell")
	p.MoveAccepted(false)
	p.MoveAccepted(true)
	p.MoveRejected("team_rest")
	p.ModeSwitched("official")

	assert.Equal(t, 2.0, testutil.ToFloat64(p.skips.WithLabelValues("unknown_venue")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.skips.WithLabelValues("malformed_cell")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.moves.WithLabelValues("moved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.moves.WithLabelValues("swapped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.moves.WithLabelValues("rejected_team_rest")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.modes.WithLabelValues("official")))
}

func TestPromReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewProm(reg)
	require.NoError(t, err)
	second, err := NewProm(reg)
	require.NoError(t, err)

	first.ModeSwitched("custom")
	second.ModeSwitched("custom")
	assert.Equal(t, 2.0, testutil.ToFloat64(first.modes.WithLabelValues("custom")))
}

func TestNop(t *testing.T) {
	var r Recorder = Nop{}
	r.ParseSkipped("x")
	r.MoveAccepted(true)
	r.MoveRejected("x")
	r.ModeSwitched("x")
}

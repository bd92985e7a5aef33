package alt

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strobe-lab/loomstim/internal/kinematics"
	"github.com/strobe-lab/loomstim/internal/stimulus"
)

func constantModel(t *testing.T) *stimulus.ConstantSpeedModel {
	t.Helper()
	m, err := stimulus.NewConstantSpeedModel(stimulus.ConstantSpeedParams{
		ScreenDistance:   20,
		FrameRate:        30,
		Speed:            500,
		AttackerDiameter: 10,
		StartDistance:    500,
	})
	require.NoError(t, err)
	return m
}

func diameterModel(t *testing.T) *stimulus.DiameterModel {
	t.Helper()
	m, err := stimulus.NewDiameterModel(stimulus.DiameterParams{
		StartDiameter: 2,
		EndDiameter:   40,
		Duration:      1,
		FrameRate:     30,
		Policy:        stimulus.PolicyConstantSpeed,
	})
	require.NoError(t, err)
	return m
}

func TestExtractConstantSpeedMatchesClosedForm(t *testing.T) {
	m := constantModel(t)
	rep, err := Extract(m, Params{ResponseFrame: 29})
	require.NoError(t, err)

	assert.Equal(t, 29, rep.ResponseFrame)
	assert.Equal(t, 29, rep.ResponseFrameAdjusted)
	assert.Equal(t, 0.0, rep.LatencyApplied)

	dist := m.Series()[28].Distance
	want := kinematics.AngularVelocityClosedForm(500, 10, dist)
	assert.InDelta(t, want, rep.ALT, 1e-6)
	assert.InDelta(t, kinematics.RadToDeg(want), rep.ALTDeg, 1e-4)
	assert.False(t, math.IsNaN(rep.ALT))

	// The model's own distance and speed are reported for comparison.
	assert.Equal(t, dist, rep.DistanceInModel)
	assert.Equal(t, 500.0, rep.SpeedInModel)
	assert.True(t, math.IsNaN(rep.NewDistanceApplied))
}

func TestExtractLatencyShiftsSample(t *testing.T) {
	m := constantModel(t)

	// 0.1s at 30 fps shifts the sample 3 frames earlier.
	rep, err := Extract(m, Params{ResponseFrame: 29, Latency: 0.1})
	require.NoError(t, err)
	assert.Equal(t, 26, rep.ResponseFrameAdjusted)
	assert.Equal(t, 0.1, rep.LatencyApplied)

	direct, err := Extract(m, Params{ResponseFrame: 26})
	require.NoError(t, err)
	assert.Equal(t, direct.ALT, rep.ALT)
}

func TestExtractPerceivedMatchesModelDistance(t *testing.T) {
	// With no alternate viewing distance, the perceived distance implied
	// by the angle inverts the visual-angle relation exactly.
	m := constantModel(t)
	rep, err := Extract(m, Params{ResponseFrame: 20})
	require.NoError(t, err)

	assert.InDelta(t, rep.DistanceInModel, rep.DistancePerceived, 1e-9)
	// Distances are stored at 2dp, so the differenced speed carries up to
	// ~0.01*frame_rate of rounding jitter.
	assert.InDelta(t, rep.SpeedInModel, rep.SpeedPerceived, 0.5)
}

func TestExtractNewDistanceRecomputes(t *testing.T) {
	m := constantModel(t)
	nd := 40.0
	rep, err := Extract(m, Params{ResponseFrame: 29, NewDistance: &nd})
	require.NoError(t, err)

	assert.Equal(t, nd, rep.NewDistanceApplied)

	series := m.Series()
	alphaPrev := kinematics.VisualAngle(series[27].DiamOnScreen, nd)
	alphaAt := kinematics.VisualAngle(series[28].DiamOnScreen, nd)
	want := (alphaAt - alphaPrev) * 30
	assert.InDelta(t, want, rep.ALT, 1e-9)

	// Doubling the viewing distance halves the subtended angle, so the
	// ALT drops below the modelled one.
	own, err := Extract(m, Params{ResponseFrame: 29})
	require.NoError(t, err)
	assert.Less(t, rep.ALT, own.ALT)
}

func TestExtractDiameterModel(t *testing.T) {
	m := diameterModel(t)
	nd := 25.0
	rep, err := Extract(m, Params{ResponseFrame: 15, NewDistance: &nd})
	require.NoError(t, err)

	assert.False(t, math.IsNaN(rep.ALT))
	assert.Greater(t, rep.ALT, 0.0)

	// A diameter model carries no attacker size: perceived metrics and
	// model distance/speed can never be produced.
	assert.True(t, math.IsNaN(rep.DistancePerceived))
	assert.True(t, math.IsNaN(rep.SpeedPerceived))
	assert.True(t, math.IsNaN(rep.DistanceInModel))
	assert.True(t, math.IsNaN(rep.SpeedInModel))
}

func TestExtractValidation(t *testing.T) {
	cs := constantModel(t)
	dm := diameterModel(t)
	nd := 25.0

	tests := []struct {
		name    string
		model   stimulus.Model
		params  Params
		wantErr error
	}{
		{"missing response frame", cs, Params{}, stimulus.ErrMissingParameter},
		{"response frame 1", cs, Params{ResponseFrame: 1}, stimulus.ErrUnextractable},
		{"one past series end", cs, Params{ResponseFrame: cs.FrameCount() + 1}, stimulus.ErrOutOfRange},
		{"diameter model without new distance", dm, Params{ResponseFrame: 10}, stimulus.ErrMissingParameter},
		{"latency shifts to frame 1", cs, Params{ResponseFrame: 4, Latency: 0.1}, stimulus.ErrUnextractable},
		{"latency shifts before start", cs, Params{ResponseFrame: 3, Latency: 0.1}, stimulus.ErrOutOfRange},
		{"nil model", nil, Params{ResponseFrame: 5}, stimulus.ErrInvalidInput},
		{"diameter ok with new distance frame 1", dm, Params{ResponseFrame: 1, NewDistance: &nd}, stimulus.ErrUnextractable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.model, tt.params)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestExtractDoesNotMutateModel(t *testing.T) {
	m := constantModel(t)
	before := m.Series()

	nd := 35.0
	rep, err := Extract(m, Params{ResponseFrame: 20, NewDistance: &nd, Latency: 0.05})
	require.NoError(t, err)

	after := m.Series()
	for i := range before {
		if before[i].Alpha != after[i].Alpha || before[i].DiamOnScreen != after[i].DiamOnScreen {
			t.Fatalf("model series changed at frame %d", i+1)
		}
	}

	// The adjusted series is a distinct value the caller may hold
	// alongside the original.
	assert.NotEqual(t, before[19].Alpha, rep.AdjustedSeries[19].Alpha)
}

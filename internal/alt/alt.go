// Package alt extracts the Apparent Looming Threshold from a stimulus model:
// the rate of change of visual angle at the frame where the specimen
// initiated an escape response, optionally re-derived for a viewing distance
// other than the one the stimulus was modelled at, and shifted earlier by a
// response latency.
package alt

import (
	"fmt"
	"math"

	"github.com/strobe-lab/loomstim/internal/kinematics"
	"github.com/strobe-lab/loomstim/internal/stimulus"
)

// Params are the extraction inputs. ResponseFrame is required (1-based);
// NewDistance substitutes an alternate viewing distance in cm; Latency is a
// response delay in seconds applied by shifting the sampled frame backward.
type Params struct {
	ResponseFrame int
	NewDistance   *float64
	Latency       float64
}

// Report is the read-only extraction result. Numeric fields that do not
// apply to the model variant hold NaN. The original model is carried
// unmodified alongside the adjusted series so the two can be compared.
type Report struct {
	ALT    float64
	ALTDeg float64

	ResponseFrame         int
	ResponseFrameAdjusted int
	LatencyApplied        float64

	DistancePerceived float64
	SpeedPerceived    float64
	DistanceInModel   float64
	SpeedInModel      float64

	// NewDistanceApplied is NaN when the model's own screen distance was
	// used.
	NewDistanceApplied float64

	AdjustedSeries stimulus.Series
	Model          stimulus.Model
}

// Extract validates the request, re-derives the angle series for the
// effective viewing distance, and samples the ALT at the latency-adjusted
// response frame. The input model is never mutated.
func Extract(m stimulus.Model, p Params) (*Report, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil model", stimulus.ErrInvalidInput)
	}

	var (
		frameRate    float64
		attackerDiam float64
		hasGeometry  bool
		speedAt      func(frame int) float64
	)
	switch mm := m.(type) {
	case *stimulus.ConstantSpeedModel:
		frameRate = mm.FrameRate()
		attackerDiam = mm.AttackerDiameter()
		hasGeometry = true
		speedAt = func(int) float64 { return mm.Speed() }
	case *stimulus.VariableSpeedModel:
		frameRate = mm.FrameRate()
		attackerDiam = mm.AttackerDiameter()
		hasGeometry = true
		speedAt = mm.SpeedAt
	case *stimulus.DiameterModel:
		frameRate = mm.FrameRate()
		speedAt = func(int) float64 { return math.NaN() }
	default:
		return nil, fmt.Errorf("%w: unrecognised model kind %T", stimulus.ErrInvalidInput, m)
	}

	if p.ResponseFrame <= 0 {
		return nil, fmt.Errorf("%w: response_frame is required", stimulus.ErrMissingParameter)
	}
	if p.ResponseFrame == 1 {
		return nil, fmt.Errorf("%w: angular velocity is undefined at frame 1", stimulus.ErrUnextractable)
	}

	series := m.Series()
	if p.ResponseFrame > len(series) {
		return nil, fmt.Errorf("%w: response_frame %d beyond series length %d",
			stimulus.ErrOutOfRange, p.ResponseFrame, len(series))
	}

	// A diameter model has no attacker size, so an angle can only be
	// derived against an externally supplied viewing distance.
	if !hasGeometry && p.NewDistance == nil {
		return nil, fmt.Errorf("%w: new_distance is required for a diameter model", stimulus.ErrMissingParameter)
	}

	adjusted := p.ResponseFrame - int(math.Round(frameRate*p.Latency))
	if adjusted < 1 || adjusted > len(series) {
		return nil, fmt.Errorf("%w: latency-adjusted response frame %d outside series 1..%d",
			stimulus.ErrOutOfRange, adjusted, len(series))
	}
	if adjusted == 1 {
		return nil, fmt.Errorf("%w: latency shifts the response to frame 1, where angular velocity is undefined",
			stimulus.ErrUnextractable)
	}

	out := series.Clone()
	if p.NewDistance != nil {
		// Re-derive the angle each frame's on-screen diameter subtends at
		// the new viewing distance; no closed form applies, so the
		// derivative is discrete.
		diams := out.ScreenDiameters()
		alphas := make([]float64, len(out))
		for i, d := range diams {
			alphas[i] = kinematics.VisualAngle(d, *p.NewDistance)
		}
		dadt := kinematics.AngularVelocityDiscrete(alphas, frameRate)
		for i := range out {
			out[i].Alpha = alphas[i]
			out[i].Dadt = dadt[i]
		}
	}
	// Without a new distance the model's own series already holds the
	// angle and derivative for its screen distance; a round trip through
	// the on-screen diameter would only reintroduce rounding noise.

	if hasGeometry {
		fillPerceived(out, attackerDiam, frameRate)
	}

	sample := out[adjusted-1]
	report := &Report{
		ALT:                   sample.Dadt,
		ALTDeg:                kinematics.RadToDeg(sample.Dadt),
		ResponseFrame:         p.ResponseFrame,
		ResponseFrameAdjusted: adjusted,
		LatencyApplied:        p.Latency,
		DistancePerceived:     sample.PerceivedDistance,
		SpeedPerceived:        sample.PerceivedSpeed,
		DistanceInModel:       series[adjusted-1].Distance,
		SpeedInModel:          speedAt(adjusted),
		NewDistanceApplied:    math.NaN(),
		AdjustedSeries:        out,
		Model:                 m,
	}
	if p.NewDistance != nil {
		report.NewDistanceApplied = *p.NewDistance
	}
	return report, nil
}

// fillPerceived writes the perceived distance/speed columns: the distance
// implied by each frame's angle given the attacker's true diameter, and its
// negated discrete derivative (distance falls as the attacker approaches).
func fillPerceived(s stimulus.Series, attackerDiam, frameRate float64) {
	for i := range s {
		half := s[i].Alpha / 2
		s[i].PerceivedDistance = math.Cos(half) * (attackerDiam / 2) / math.Sin(half)
	}
	for i := len(s) - 1; i >= 1; i-- {
		s[i].PerceivedSpeed = -(s[i].PerceivedDistance - s[i-1].PerceivedDistance) * frameRate
	}
	s[0].PerceivedSpeed = math.NaN()
}

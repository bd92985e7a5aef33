package stimulus

import (
	"fmt"
	"math"

	"github.com/strobe-lab/loomstim/internal/kinematics"
)

// ExpansionPolicy selects how a diameter model interpolates between the
// start and end diameters.
type ExpansionPolicy string

const (
	// PolicyConstantSpeed treats 1/diameter as a distance proxy, producing
	// diameter growth that accelerates over time the way a constant
	// physical closing speed would (foreshortening-correct).
	PolicyConstantSpeed ExpansionPolicy = "constant_speed"

	// PolicyConstantDiameter interpolates the diameter linearly.
	PolicyConstantDiameter ExpansionPolicy = "constant_diameter"
)

// DiameterParams describe a pure on-screen diameter trajectory. No attacker
// size or screen distance is specified, so the physical columns (distance,
// alpha, dadt) and the perceived metrics are structurally absent from this
// variant.
type DiameterParams struct {
	StartDiameter float64         `json:"start_diameter"`
	EndDiameter   float64         `json:"end_diameter"`
	Duration      float64         `json:"duration"`
	FrameRate     float64         `json:"frame_rate"`
	Policy        ExpansionPolicy `json:"expansion_policy"`
}

// DiameterModel is the on-screen diameter trajectory variant.
type DiameterModel struct {
	params DiameterParams
	series Series
}

// NewDiameterModel builds the diameter trajectory over
// ceil(duration*frame_rate) frames under the chosen expansion policy.
func NewDiameterModel(p DiameterParams) (*DiameterModel, error) {
	if p.Policy != PolicyConstantSpeed && p.Policy != PolicyConstantDiameter {
		return nil, fmt.Errorf("%w: unknown expansion policy %q (valid: %q, %q)",
			ErrInvalidConfig, p.Policy, PolicyConstantSpeed, PolicyConstantDiameter)
	}
	if p.StartDiameter <= 0 {
		return nil, fmt.Errorf("%w: start_diameter must be positive, got %g", ErrInvalidInput, p.StartDiameter)
	}
	if p.EndDiameter <= 0 {
		return nil, fmt.Errorf("%w: end_diameter must be positive, got %g", ErrInvalidInput, p.EndDiameter)
	}
	if p.Duration <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive, got %g", ErrInvalidInput, p.Duration)
	}
	if p.FrameRate <= 0 {
		return nil, fmt.Errorf("%w: frame_rate must be positive, got %g", ErrInvalidInput, p.FrameRate)
	}

	totalFrames := int(math.Ceil(p.Duration * p.FrameRate))

	series := make(Series, totalFrames)
	for i := 1; i <= totalFrames; i++ {
		series[i-1] = Frame{
			Index:             i,
			Time:              float64(i) / p.FrameRate,
			Distance:          math.NaN(),
			Alpha:             math.NaN(),
			Dadt:              math.NaN(),
			DiamOnScreen:      kinematics.ClampDiameter(diameterAt(p, i, totalFrames)),
			PerceivedDistance: math.NaN(),
			PerceivedSpeed:    math.NaN(),
		}
	}

	return &DiameterModel{params: p, series: series}, nil
}

// diameterAt returns the raw (unclamped) diameter for 1-based frame i of n.
func diameterAt(p DiameterParams, i, n int) float64 {
	if n == 1 {
		return p.StartDiameter
	}
	switch p.Policy {
	case PolicyConstantSpeed:
		startProxy := 1 / p.StartDiameter
		endProxy := 1 / p.EndDiameter
		step := (startProxy - endProxy) / float64(n-1)
		return 1 / (startProxy - float64(i-1)*step)
	default: // PolicyConstantDiameter
		return p.StartDiameter + float64(i-1)*(p.EndDiameter-p.StartDiameter)/float64(n-1)
	}
}

func (m *DiameterModel) Kind() Kind         { return KindDiameter }
func (m *DiameterModel) Series() Series     { return m.series.Clone() }
func (m *DiameterModel) FrameRate() float64 { return m.params.FrameRate }
func (m *DiameterModel) FrameCount() int    { return len(m.series) }

// Params returns the originating parameters.
func (m *DiameterModel) Params() DiameterParams { return m.params }

func (m *DiameterModel) sealedModel() {}

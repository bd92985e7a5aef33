package stimulus

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/strobe-lab/loomstim/internal/kinematics"
)

// VariableSpeedParams describe an attacker whose closing speed is sampled
// per frame. The last profile sample is assumed to coincide with zero
// distance; the distance series is back-calculated from the cumulative
// per-frame travel.
type VariableSpeedParams struct {
	SpeedProfile     []float64 `json:"speed_profile"`
	ScreenDistance   float64   `json:"screen_distance"`
	FrameRate        float64   `json:"frame_rate"`
	AttackerDiameter float64   `json:"attacker_diameter"`
}

// VariableSpeedModel is the per-frame speed profile variant.
type VariableSpeedModel struct {
	params VariableSpeedParams
	series Series
}

// NewVariableSpeedModel builds the frame series for a variable-speed
// approach. total_frames = len(speed_profile). The angular velocity is the
// discrete backward difference: no closed form exists for an arbitrary
// profile. Screen diameters are clamped per frame because high acceleration
// late in a profile can push intermediate frames near-infinite, not just the
// terminal ones.
func NewVariableSpeedModel(p VariableSpeedParams) (*VariableSpeedModel, error) {
	if len(p.SpeedProfile) == 0 {
		return nil, fmt.Errorf("%w: speed_profile must be a non-empty numeric sequence", ErrInvalidInput)
	}
	for i, v := range p.SpeedProfile {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: speed_profile[%d] is not finite", ErrInvalidInput, i)
		}
	}
	if p.FrameRate <= 0 {
		return nil, fmt.Errorf("%w: frame_rate must be positive, got %g", ErrInvalidInput, p.FrameRate)
	}
	if p.AttackerDiameter <= 0 {
		return nil, fmt.Errorf("%w: attacker_diameter must be positive, got %g", ErrInvalidInput, p.AttackerDiameter)
	}
	if p.ScreenDistance <= 0 {
		return nil, fmt.Errorf("%w: screen_distance must be positive, got %g", ErrInvalidInput, p.ScreenDistance)
	}

	n := len(p.SpeedProfile)

	// Per-frame travel, then cumulative travel from the start of the
	// approach. The total travel defines the start distance so that the
	// final frame lands at exactly zero.
	perFrame := make([]float64, n)
	for i, v := range p.SpeedProfile {
		perFrame[i] = v / p.FrameRate
	}
	travelled := make([]float64, n)
	floats.CumSum(travelled, perFrame)
	startDistance := travelled[n-1]

	alphas := make([]float64, n)
	distances := make([]float64, n)
	for i := 0; i < n; i++ {
		distances[i] = startDistance - travelled[i]
		alphas[i] = kinematics.VisualAngle(p.AttackerDiameter, distances[i])
	}
	dadt := kinematics.AngularVelocityDiscrete(alphas, p.FrameRate)

	series := make(Series, n)
	for i := 0; i < n; i++ {
		series[i] = Frame{
			Index:             i + 1,
			Time:              float64(i+1) / p.FrameRate,
			Distance:          distances[i],
			Alpha:             alphas[i],
			Dadt:              dadt[i],
			DiamOnScreen:      kinematics.ScreenDiameter(alphas[i], p.ScreenDistance),
			PerceivedDistance: math.NaN(),
			PerceivedSpeed:    math.NaN(),
		}
	}

	profile := make([]float64, n)
	copy(profile, p.SpeedProfile)
	p.SpeedProfile = profile

	return &VariableSpeedModel{params: p, series: series}, nil
}

func (m *VariableSpeedModel) Kind() Kind         { return KindVariableSpeed }
func (m *VariableSpeedModel) Series() Series     { return m.series.Clone() }
func (m *VariableSpeedModel) FrameRate() float64 { return m.params.FrameRate }
func (m *VariableSpeedModel) FrameCount() int    { return len(m.series) }

// Params returns the originating parameters.
func (m *VariableSpeedModel) Params() VariableSpeedParams { return m.params }

// ScreenDistance returns the modelled viewing distance (cm).
func (m *VariableSpeedModel) ScreenDistance() float64 { return m.params.ScreenDistance }

// AttackerDiameter returns the attacker's physical diameter (cm).
func (m *VariableSpeedModel) AttackerDiameter() float64 { return m.params.AttackerDiameter }

// SpeedAt returns the profile speed (cm/s) at a 1-based frame index.
func (m *VariableSpeedModel) SpeedAt(frame int) float64 {
	return m.params.SpeedProfile[frame-1]
}

func (m *VariableSpeedModel) sealedModel() {}

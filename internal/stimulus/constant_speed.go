package stimulus

import (
	"fmt"
	"math"

	"github.com/strobe-lab/loomstim/internal/kinematics"
)

// ConstantSpeedParams describe an attacker of fixed diameter closing at a
// constant speed, viewed on a screen at ScreenDistance. Distances and
// diameters are in cm, speed in cm/s.
type ConstantSpeedParams struct {
	ScreenDistance   float64 `json:"screen_distance"`
	FrameRate        float64 `json:"frame_rate"`
	Speed            float64 `json:"speed"`
	AttackerDiameter float64 `json:"attacker_diameter"`
	StartDistance    float64 `json:"start_distance"`
}

// ConstantSpeedModel is the constant-closing-speed variant.
type ConstantSpeedModel struct {
	params ConstantSpeedParams
	series Series
}

// NewConstantSpeedModel builds the frame series for a constant-speed
// approach. The frame count is ceil((start_distance/speed)*frame_rate), so
// the final frame lands at (near) zero distance: frame 1 already represents
// one time step of travel rather than the starting position.
func NewConstantSpeedModel(p ConstantSpeedParams) (*ConstantSpeedModel, error) {
	if p.FrameRate <= 0 {
		return nil, fmt.Errorf("%w: frame_rate must be positive, got %g", ErrInvalidInput, p.FrameRate)
	}
	if p.Speed <= 0 {
		return nil, fmt.Errorf("%w: speed must be positive, got %g", ErrInvalidInput, p.Speed)
	}
	if p.AttackerDiameter <= 0 {
		return nil, fmt.Errorf("%w: attacker_diameter must be positive, got %g", ErrInvalidInput, p.AttackerDiameter)
	}
	if p.StartDistance <= 0 {
		return nil, fmt.Errorf("%w: start_distance must be positive, got %g", ErrInvalidInput, p.StartDistance)
	}
	if p.ScreenDistance <= 0 {
		return nil, fmt.Errorf("%w: screen_distance must be positive, got %g", ErrInvalidInput, p.ScreenDistance)
	}

	totalFrames := int(math.Ceil(p.StartDistance / p.Speed * p.FrameRate))
	perFrame := p.Speed / p.FrameRate

	series := make(Series, totalFrames)
	for i := 1; i <= totalFrames; i++ {
		distance := kinematics.Round2(p.StartDistance - float64(i)*perFrame)
		alpha := kinematics.VisualAngle(p.AttackerDiameter, distance)

		dadt := math.NaN()
		if i > 1 {
			dadt = kinematics.AngularVelocityClosedForm(p.Speed, p.AttackerDiameter, distance)
		}

		series[i-1] = Frame{
			Index:             i,
			Time:              float64(i) / p.FrameRate,
			Distance:          distance,
			Alpha:             alpha,
			Dadt:              dadt,
			DiamOnScreen:      kinematics.ScreenDiameter(alpha, p.ScreenDistance),
			PerceivedDistance: math.NaN(),
			PerceivedSpeed:    math.NaN(),
		}
	}

	return &ConstantSpeedModel{params: p, series: series}, nil
}

func (m *ConstantSpeedModel) Kind() Kind         { return KindConstantSpeed }
func (m *ConstantSpeedModel) Series() Series     { return m.series.Clone() }
func (m *ConstantSpeedModel) FrameRate() float64 { return m.params.FrameRate }
func (m *ConstantSpeedModel) FrameCount() int    { return len(m.series) }

// Params returns the originating parameters.
func (m *ConstantSpeedModel) Params() ConstantSpeedParams { return m.params }

// ScreenDistance returns the modelled viewing distance (cm).
func (m *ConstantSpeedModel) ScreenDistance() float64 { return m.params.ScreenDistance }

// AttackerDiameter returns the attacker's physical diameter (cm).
func (m *ConstantSpeedModel) AttackerDiameter() float64 { return m.params.AttackerDiameter }

// Speed returns the closing speed (cm/s).
func (m *ConstantSpeedModel) Speed() float64 { return m.params.Speed }

func (m *ConstantSpeedModel) sealedModel() {}

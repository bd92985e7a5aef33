package stimulus

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/strobe-lab/loomstim/internal/kinematics"
)

func testConstantSpeedParams() ConstantSpeedParams {
	return ConstantSpeedParams{
		ScreenDistance:   20,
		FrameRate:        30,
		Speed:            500,
		AttackerDiameter: 10,
		StartDistance:    500,
	}
}

func TestConstantSpeedModelFrameCount(t *testing.T) {
	tests := []struct {
		name      string
		speed     float64
		startDist float64
		frameRate float64
		want      int
	}{
		{"one second approach", 500, 500, 30, 30},
		{"half second approach", 500, 250, 30, 15},
		{"non-integral rounds up", 500, 510, 30, 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testConstantSpeedParams()
			p.Speed = tt.speed
			p.StartDistance = tt.startDist
			p.FrameRate = tt.frameRate
			m, err := NewConstantSpeedModel(p)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if m.FrameCount() != tt.want {
				t.Errorf("FrameCount() = %d, want %d", m.FrameCount(), tt.want)
			}
		})
	}
}

func TestConstantSpeedModelSeries(t *testing.T) {
	m, err := NewConstantSpeedModel(testConstantSpeedParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := m.Series()

	if len(s) != 30 {
		t.Fatalf("series length = %d, want 30", len(s))
	}

	last := s[len(s)-1]
	if last.Distance > 0 {
		t.Errorf("final distance = %f, want <= 0", last.Distance)
	}
	if math.Abs(last.Time-1.0) > 1e-12 {
		t.Errorf("final time = %f, want 1.0", last.Time)
	}

	// Distance is non-increasing, alpha non-negative, time strictly
	// increasing by 1/frame_rate.
	for i, f := range s {
		if f.Index != i+1 {
			t.Errorf("frame %d has index %d", i, f.Index)
		}
		if f.Alpha < 0 {
			t.Errorf("frame %d alpha = %f, want >= 0", f.Index, f.Alpha)
		}
		if i > 0 {
			if f.Distance > s[i-1].Distance {
				t.Errorf("distance increased at frame %d: %f -> %f", f.Index, s[i-1].Distance, f.Distance)
			}
			if math.Abs((f.Time-s[i-1].Time)-1.0/30) > 1e-12 {
				t.Errorf("time step at frame %d = %f, want 1/30", f.Index, f.Time-s[i-1].Time)
			}
		}
	}
}

func TestConstantSpeedModelDadt(t *testing.T) {
	p := testConstantSpeedParams()
	m, err := NewConstantSpeedModel(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := m.Series()

	if !math.IsNaN(s[0].Dadt) {
		t.Errorf("dadt at frame 1 = %f, want NaN", s[0].Dadt)
	}
	for _, f := range s[1:] {
		want := kinematics.AngularVelocityClosedForm(p.Speed, p.AttackerDiameter, f.Distance)
		if math.Abs(f.Dadt-want) > 1e-9 {
			t.Errorf("frame %d dadt = %f, want closed form %f", f.Index, f.Dadt, want)
		}
	}
}

func TestConstantSpeedModelValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ConstantSpeedParams)
	}{
		{"zero frame rate", func(p *ConstantSpeedParams) { p.FrameRate = 0 }},
		{"negative speed", func(p *ConstantSpeedParams) { p.Speed = -10 }},
		{"zero diameter", func(p *ConstantSpeedParams) { p.AttackerDiameter = 0 }},
		{"zero start distance", func(p *ConstantSpeedParams) { p.StartDistance = 0 }},
		{"zero screen distance", func(p *ConstantSpeedParams) { p.ScreenDistance = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testConstantSpeedParams()
			tt.mutate(&p)
			if _, err := NewConstantSpeedModel(p); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestConstantSpeedModelIdempotent(t *testing.T) {
	p := testConstantSpeedParams()
	m1, err := NewConstantSpeedModel(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m2, err := NewConstantSpeedModel(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(m1.Series(), m2.Series(), cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("series differ between identical builds (-first +second):\n%s", diff)
	}
}

func TestSeriesCloneIsIndependent(t *testing.T) {
	m, err := NewConstantSpeedModel(testConstantSpeedParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := m.Series()
	s[0].DiamOnScreen = -1
	if m.Series()[0].DiamOnScreen == -1 {
		t.Error("mutating a returned series leaked into the model")
	}
}

func TestVariableSpeedModel(t *testing.T) {
	profile := []float64{100, 200, 400, 800, 800}
	p := VariableSpeedParams{
		SpeedProfile:     profile,
		ScreenDistance:   20,
		FrameRate:        10,
		AttackerDiameter: 5,
	}
	m, err := NewVariableSpeedModel(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := m.Series()

	if len(s) != len(profile) {
		t.Fatalf("series length = %d, want %d", len(s), len(profile))
	}

	// Start distance is the total per-frame travel; the last frame lands
	// at exactly zero by construction.
	wantStart := (100 + 200 + 400 + 800 + 800) / 10.0
	if got := s[0].Distance + profile[0]/10; math.Abs(got-wantStart) > 1e-9 {
		t.Errorf("implied start distance = %f, want %f", got, wantStart)
	}
	if s[len(s)-1].Distance != 0 {
		t.Errorf("final distance = %f, want 0", s[len(s)-1].Distance)
	}

	// The discrete derivative property holds exactly on this path.
	if !math.IsNaN(s[0].Dadt) {
		t.Errorf("dadt at frame 1 = %f, want NaN", s[0].Dadt)
	}
	alphas := s.Alphas()
	for i := 1; i < len(s); i++ {
		want := (alphas[i] - alphas[i-1]) * p.FrameRate
		if math.Abs(s[i].Dadt-want) > 1e-12 {
			t.Errorf("frame %d dadt = %f, want discrete %f", s[i].Index, s[i].Dadt, want)
		}
	}

	// Final frame is at contact: the clamp must have engaged.
	if s[len(s)-1].DiamOnScreen != kinematics.MaxScreenDiameter {
		t.Errorf("final diameter = %f, want clamp %f", s[len(s)-1].DiamOnScreen, kinematics.MaxScreenDiameter)
	}
}

func TestVariableSpeedModelClampEveryFrame(t *testing.T) {
	// A profile with a huge late burst pushes intermediate frames close to
	// contact; no frame may exceed the ceiling.
	p := VariableSpeedParams{
		SpeedProfile:     []float64{10, 10, 10, 1e6, 1},
		ScreenDistance:   50,
		FrameRate:        10,
		AttackerDiameter: 5,
	}
	m, err := NewVariableSpeedModel(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, f := range m.Series() {
		if f.DiamOnScreen > kinematics.MaxScreenDiameter {
			t.Errorf("frame %d diameter %f exceeds clamp", f.Index, f.DiamOnScreen)
		}
	}
}

func TestVariableSpeedModelValidation(t *testing.T) {
	base := VariableSpeedParams{
		SpeedProfile:     []float64{100, 200},
		ScreenDistance:   20,
		FrameRate:        10,
		AttackerDiameter: 5,
	}

	tests := []struct {
		name   string
		mutate func(*VariableSpeedParams)
	}{
		{"empty profile", func(p *VariableSpeedParams) { p.SpeedProfile = nil }},
		{"NaN in profile", func(p *VariableSpeedParams) { p.SpeedProfile = []float64{100, math.NaN()} }},
		{"Inf in profile", func(p *VariableSpeedParams) { p.SpeedProfile = []float64{100, math.Inf(1)} }},
		{"zero frame rate", func(p *VariableSpeedParams) { p.FrameRate = 0 }},
		{"zero diameter", func(p *VariableSpeedParams) { p.AttackerDiameter = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.mutate(&p)
			if _, err := NewVariableSpeedModel(p); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func testDiameterParams(policy ExpansionPolicy) DiameterParams {
	return DiameterParams{
		StartDiameter: 2,
		EndDiameter:   50,
		Duration:      1,
		FrameRate:     10,
		Policy:        policy,
	}
}

func TestDiameterModelConstantDiameter(t *testing.T) {
	m, err := NewDiameterModel(testDiameterParams(PolicyConstantDiameter))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := m.Series()

	if len(s) != 10 {
		t.Fatalf("series length = %d, want 10", len(s))
	}
	if s[0].DiamOnScreen != 2 {
		t.Errorf("first diameter = %f, want 2", s[0].DiamOnScreen)
	}
	if s[len(s)-1].DiamOnScreen != 50 {
		t.Errorf("last diameter = %f, want 50", s[len(s)-1].DiamOnScreen)
	}

	// Linear interpolation: constant step.
	step := s[1].DiamOnScreen - s[0].DiamOnScreen
	for i := 2; i < len(s); i++ {
		got := s[i].DiamOnScreen - s[i-1].DiamOnScreen
		if math.Abs(got-step) > 0.02 { // 2dp rounding wobble
			t.Errorf("step %d = %f, want %f", i, got, step)
		}
	}

	// The physical columns are structurally absent.
	for _, f := range s {
		if !math.IsNaN(f.Distance) || !math.IsNaN(f.Alpha) || !math.IsNaN(f.Dadt) {
			t.Errorf("frame %d has physical values on a diameter model", f.Index)
		}
	}
}

func TestDiameterModelConstantSpeed(t *testing.T) {
	m, err := NewDiameterModel(testDiameterParams(PolicyConstantSpeed))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := m.Series()

	if s[0].DiamOnScreen != 2 {
		t.Errorf("first diameter = %f, want 2", s[0].DiamOnScreen)
	}
	if s[len(s)-1].DiamOnScreen != 50 {
		t.Errorf("last diameter = %f, want 50", s[len(s)-1].DiamOnScreen)
	}

	// Growth accelerates: each diameter step exceeds the previous one.
	for i := 2; i < len(s); i++ {
		prev := s[i-1].DiamOnScreen - s[i-2].DiamOnScreen
		cur := s[i].DiamOnScreen - s[i-1].DiamOnScreen
		if cur < prev {
			t.Errorf("growth decelerated at frame %d: %f after %f", s[i].Index, cur, prev)
		}
	}
}

func TestDiameterModelUnknownPolicy(t *testing.T) {
	p := testDiameterParams("linear")
	_, err := NewDiameterModel(p)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	// The error names both valid options.
	if !strings.Contains(err.Error(), string(PolicyConstantSpeed)) ||
		!strings.Contains(err.Error(), string(PolicyConstantDiameter)) {
		t.Errorf("error does not name the valid policies: %v", err)
	}
}

func TestDiameterModelIdempotent(t *testing.T) {
	p := testDiameterParams(PolicyConstantSpeed)
	m1, _ := NewDiameterModel(p)
	m2, _ := NewDiameterModel(p)
	if diff := cmp.Diff(m1.Series(), m2.Series(), cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("series differ between identical builds (-first +second):\n%s", diff)
	}
}

func TestClampCeilingHoldsForAllModels(t *testing.T) {
	models := []Model{}

	cs, err := NewConstantSpeedModel(testConstantSpeedParams())
	if err != nil {
		t.Fatal(err)
	}
	models = append(models, cs)

	vs, err := NewVariableSpeedModel(VariableSpeedParams{
		SpeedProfile:     []float64{50, 100, 5000},
		ScreenDistance:   30,
		FrameRate:        5,
		AttackerDiameter: 8,
	})
	if err != nil {
		t.Fatal(err)
	}
	models = append(models, vs)

	dm, err := NewDiameterModel(DiameterParams{
		StartDiameter: 1,
		EndDiameter:   5000,
		Duration:      0.5,
		FrameRate:     20,
		Policy:        PolicyConstantDiameter,
	})
	if err != nil {
		t.Fatal(err)
	}
	models = append(models, dm)

	for _, m := range models {
		for _, f := range m.Series() {
			if f.DiamOnScreen > kinematics.MaxScreenDiameter {
				t.Errorf("%s frame %d diameter %f exceeds clamp", m.Kind(), f.Index, f.DiamOnScreen)
			}
		}
	}
}

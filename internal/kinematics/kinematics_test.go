package kinematics

import (
	"math"
	"testing"
)

func TestVisualAngle(t *testing.T) {
	tests := []struct {
		name     string
		diameter float64
		distance float64
		expected float64
	}{
		{"10cm object at 50cm", 10.0, 50.0, 2 * math.Atan(5.0/50.0)},
		{"equal diameter and distance", 20.0, 20.0, 2 * math.Atan(0.5)},
		{"far object shrinks", 10.0, 10000.0, 2 * math.Atan(5.0 / 10000.0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := VisualAngle(tt.diameter, tt.distance)
			if math.Abs(result-tt.expected) > 1e-12 {
				t.Errorf("VisualAngle(%f, %f) = %f, want %f", tt.diameter, tt.distance, result, tt.expected)
			}
		})
	}
}

func TestVisualAngleNeverNegative(t *testing.T) {
	// Near and past contact the arctangent argument changes sign; the
	// reported angle must stay non-negative throughout.
	for _, distance := range []float64{50, 1, 0.01, 0, -0.01, -5} {
		if alpha := VisualAngle(10, distance); alpha < 0 {
			t.Errorf("VisualAngle(10, %f) = %f, want >= 0", distance, alpha)
		}
	}
}

func TestVisualAngleAtZeroDistance(t *testing.T) {
	// (d/2)/0 is +Inf in IEEE float; atan(+Inf) is pi/2, so the object
	// subtends a half circle at contact.
	alpha := VisualAngle(10, 0)
	if math.Abs(alpha-math.Pi) > 1e-12 {
		t.Errorf("VisualAngle(10, 0) = %f, want pi", alpha)
	}
}

func TestAngularVelocityClosedForm(t *testing.T) {
	tests := []struct {
		name     string
		speed    float64
		diameter float64
		distance float64
		expected float64
	}{
		{"textbook values", 500.0, 10.0, 100.0, 4 * 500 * 10 / (4*100*100 + 10*10)},
		{"close range grows fast", 500.0, 10.0, 10.0, 4 * 500 * 10 / (4*10*10 + 10*10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := AngularVelocityClosedForm(tt.speed, tt.diameter, tt.distance)
			if math.Abs(result-tt.expected) > 1e-12 {
				t.Errorf("AngularVelocityClosedForm(%f, %f, %f) = %f, want %f",
					tt.speed, tt.diameter, tt.distance, result, tt.expected)
			}
		})
	}
}

func TestAngularVelocityDiscrete(t *testing.T) {
	alpha := []float64{0.1, 0.15, 0.25, 0.5}
	dadt := AngularVelocityDiscrete(alpha, 10)

	if !math.IsNaN(dadt[0]) {
		t.Errorf("dadt[0] = %f, want NaN", dadt[0])
	}
	want := []float64{0, 0.5, 1.0, 2.5}
	for i := 1; i < len(alpha); i++ {
		if math.Abs(dadt[i]-want[i]) > 1e-12 {
			t.Errorf("dadt[%d] = %f, want %f", i, dadt[i], want[i])
		}
	}
}

func TestAngularVelocityDiscreteEmpty(t *testing.T) {
	if dadt := AngularVelocityDiscrete(nil, 30); len(dadt) != 0 {
		t.Errorf("expected empty output for empty input, got %d values", len(dadt))
	}
}

func TestScreenDiameter(t *testing.T) {
	// A 10cm object at 50cm viewed on a screen at 50cm projects back to
	// 10cm exactly (modulo the 2dp rounding).
	alpha := VisualAngle(10, 50)
	if got := ScreenDiameter(alpha, 50); got != 10.0 {
		t.Errorf("ScreenDiameter round trip = %f, want 10.0", got)
	}
}

func TestScreenDiameterClamp(t *testing.T) {
	tests := []struct {
		name  string
		alpha float64
	}{
		{"near pi diverges", math.Pi - 1e-9},
		{"pi is infinite", math.Pi},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScreenDiameter(tt.alpha, 50); got != MaxScreenDiameter {
				t.Errorf("ScreenDiameter(%f, 50) = %f, want clamp %f", tt.alpha, got, MaxScreenDiameter)
			}
		})
	}
}

func TestClampDiameter(t *testing.T) {
	tests := []struct {
		name     string
		in       float64
		expected float64
	}{
		{"rounds to 2dp", 10.555, 10.56},
		{"under ceiling untouched", 999.99, 999.99},
		{"over ceiling clamped", 1000.01, MaxScreenDiameter},
		{"infinite clamped", math.Inf(1), MaxScreenDiameter},
		{"large negative clamped", -2000, MaxScreenDiameter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampDiameter(tt.in); got != tt.expected {
				t.Errorf("ClampDiameter(%f) = %f, want %f", tt.in, got, tt.expected)
			}
		})
	}
}

func TestRadDegConversions(t *testing.T) {
	if got := RadToDeg(math.Pi); math.Abs(got-180) > 1e-12 {
		t.Errorf("RadToDeg(pi) = %f, want 180", got)
	}
	if got := DegToRad(90); math.Abs(got-math.Pi/2) > 1e-12 {
		t.Errorf("DegToRad(90) = %f, want pi/2", got)
	}
}

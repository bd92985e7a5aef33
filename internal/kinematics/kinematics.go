// Package kinematics provides the trigonometric primitives shared by the
// stimulus model builders and the ALT extractor: visual angle, angular
// velocity (closed-form and discrete), and on-screen diameter with the
// display clamp. Units are centimetres, cm/s, radians, and seconds.
package kinematics

import "math"

// MaxScreenDiameter is the ceiling (cm) applied to every on-screen diameter.
// As the attacker distance approaches zero the raw projection diverges; any
// value beyond this is not displayable and is pinned to the ceiling.
const MaxScreenDiameter = 1000.0

// VisualAngle returns the angle (radians) subtended at the observer by an
// object of the given diameter at the given distance. The result is always
// non-negative; the arctangent's sign can flip near zero distance from
// floating point rounding, so the absolute value is taken.
func VisualAngle(diameter, distance float64) float64 {
	return math.Abs(2 * math.Atan((diameter/2)/distance))
}

// AngularVelocityClosedForm returns the analytic da/dt (rad/s) of the visual
// angle for an object of fixed diameter closing at constant speed.
func AngularVelocityClosedForm(speed, diameter, distance float64) float64 {
	return 4 * speed * diameter / (4*distance*distance + diameter*diameter)
}

// AngularVelocityDiscrete returns the backward first difference of alpha
// multiplied by the frame rate. The first element is NaN: a backward
// difference has no predecessor at the first frame.
func AngularVelocityDiscrete(alpha []float64, frameRate float64) []float64 {
	out := make([]float64, len(alpha))
	if len(out) == 0 {
		return out
	}
	out[0] = math.NaN()
	for i := 1; i < len(alpha); i++ {
		out[i] = (alpha[i] - alpha[i-1]) * frameRate
	}
	return out
}

// ScreenDiameter returns the on-screen diameter (cm) that subtends alpha at
// the given screen distance, rounded to 2 decimal places and clamped.
func ScreenDiameter(alpha, screenDistance float64) float64 {
	return ClampDiameter(2 * screenDistance * math.Tan(alpha/2))
}

// ClampDiameter rounds a raw on-screen diameter to 2 decimal places and pins
// values beyond MaxScreenDiameter to the ceiling.
func ClampDiameter(diam float64) float64 {
	d := Round2(diam)
	if math.Abs(d) > MaxScreenDiameter {
		return MaxScreenDiameter
	}
	return d
}

// Round2 rounds to 2 decimal places.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

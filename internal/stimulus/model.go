// Package stimulus builds frame-by-frame kinematic descriptions of a
// simulated attacker approaching an observer. Three model kinds exist:
// constant speed, variable speed (per-frame speed profile), and diameter
// (pure on-screen diameter trajectory with no physical geometry). Builders
// are pure functions: the same parameters always produce an identical
// series.
package stimulus

// Kind identifies a model variant.
type Kind string

const (
	KindConstantSpeed Kind = "constant_speed"
	KindVariableSpeed Kind = "variable_speed"
	KindDiameter      Kind = "diameter"
)

// Model is the closed set of stimulus model variants. Consumers type-switch
// over the three concrete types; the unexported method keeps the set closed
// so a new variant cannot appear without updating every switch.
type Model interface {
	Kind() Kind
	// Series returns a copy of the model's frame series. The model's own
	// series is immutable once built.
	Series() Series
	FrameRate() float64
	// FrameCount returns the series length without copying.
	FrameCount() int

	sealedModel()
}

package stimulus

// Frame is one time step of an attacker approach. Indices are 1-based and
// Time is Index/frameRate. Fields that are undefined for a frame hold NaN:
// Dadt at index 1 (backward difference has no predecessor), Distance/Alpha/
// Dadt throughout a diameter model (no physical geometry is specified), and
// the Perceived values until ALT extraction fills them in.
type Frame struct {
	Index             int
	Time              float64
	Distance          float64
	Alpha             float64
	Dadt              float64
	DiamOnScreen      float64
	PerceivedDistance float64
	PerceivedSpeed    float64
}

// Series is an ordered sequence of frames. A Series is owned by the model
// that built it and is never mutated in place: every transform (padding,
// correction, re-angling) works on a copy so the original stays comparable.
type Series []Frame

// Clone returns an independent copy of the series.
func (s Series) Clone() Series {
	out := make(Series, len(s))
	copy(out, s)
	return out
}

// Alphas returns the visual angle column.
func (s Series) Alphas() []float64 {
	out := make([]float64, len(s))
	for i, f := range s {
		out[i] = f.Alpha
	}
	return out
}

// ScreenDiameters returns the on-screen diameter column.
func (s Series) ScreenDiameters() []float64 {
	out := make([]float64, len(s))
	for i, f := range s {
		out[i] = f.DiamOnScreen
	}
	return out
}

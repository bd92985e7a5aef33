// Package sequence turns a stimulus frame series into the annotated frame
// list handed to a renderer: display-corrected diameters, optional lead-in
// padding, and per-frame annotation scheduling (dot markers, frame-number
// labels, start marker). The assembly is a pure transform; the input series
// is never modified.
package sequence

import (
	"fmt"
	"math"
	"strconv"

	"github.com/strobe-lab/loomstim/internal/stimulus"
)

// Options control one assembly pass.
type Options struct {
	// CorrectionFactor is the display-calibration scalar determined by the
	// calibration utility. Zero means no correction.
	CorrectionFactor float64

	// PadSeconds prepends ceil(PadSeconds*frameRate) frames before frame 1.
	PadSeconds float64

	// PadBlank forces the padding frames invisible (diameter 0) instead of
	// holding the first visual state.
	PadBlank bool

	// DotsInterval schedules a dot marker on every animation frame whose
	// number is a multiple of the interval. Values below 1 disable the
	// interval dots; the first and final animation frames always get one.
	DotsInterval int

	// Width and Height are the display dimensions (px) passed through to
	// the renderer unchanged.
	Width  int
	Height int
}

// Frame is one entry of the annotated sequence handed to the renderer.
type Frame struct {
	stimulus.Frame

	IsPadding bool

	// AnimationFrameNumber counts within the original (unpadded) series;
	// padding frames get zero or negative values and should not use it.
	AnimationFrameNumber int

	DotScheduled     bool
	FrameNumberLabel string
	StartMarker      bool
}

// Annotated is the renderer-facing sequence: one image per frame, in order,
// encoded at FrameRate.
type Annotated struct {
	FrameRate float64
	Width     int
	Height    int
	Frames    []Frame
}

// Assemble applies display correction, prepends padding, reindexes the
// result contiguously, and computes the annotation schedule.
func Assemble(s stimulus.Series, frameRate float64, opts Options) (*Annotated, error) {
	if len(s) == 0 {
		return nil, fmt.Errorf("%w: empty frame series", stimulus.ErrInvalidInput)
	}
	if frameRate <= 0 {
		return nil, fmt.Errorf("%w: frame_rate must be positive, got %g", stimulus.ErrInvalidInput, frameRate)
	}
	if opts.CorrectionFactor < 0 {
		return nil, fmt.Errorf("%w: correction_factor must be non-negative, got %g", stimulus.ErrInvalidInput, opts.CorrectionFactor)
	}
	if opts.PadSeconds < 0 {
		return nil, fmt.Errorf("%w: pad_seconds must be non-negative, got %g", stimulus.ErrInvalidInput, opts.PadSeconds)
	}

	corrected := s.Clone()
	if opts.CorrectionFactor > 0 {
		for i := range corrected {
			corrected[i].DiamOnScreen *= opts.CorrectionFactor
		}
	}

	padFrames := 0
	if opts.PadSeconds > 0 {
		padFrames = int(math.Ceil(opts.PadSeconds * frameRate))
	}

	frames := make([]Frame, 0, padFrames+len(corrected))

	// Padding holds the first visual state (or an invisible stimulus when
	// blanked); distance/alpha/dadt replicate frame 1 either way so the
	// kinematic columns stay continuous for downstream inspection.
	hold := corrected[0]
	if opts.PadBlank {
		hold.DiamOnScreen = 0
	}
	for i := 0; i < padFrames; i++ {
		frames = append(frames, Frame{Frame: hold})
	}
	for _, f := range corrected {
		frames = append(frames, Frame{Frame: f})
	}

	if len(frames) != len(s)+padFrames {
		// A builder bug, not a caller error: abort rather than hand a
		// mis-sized sequence to the renderer.
		panic(fmt.Sprintf("sequence: padded length invariant violated: got %d frames, want %d",
			len(frames), len(s)+padFrames))
	}

	total := len(frames)
	firstAnimation := total - len(s) + 1

	padCounter := 0
	for i := range frames {
		index := i + 1
		frames[i].Index = index
		frames[i].Time = float64(index) / frameRate
		frames[i].StartMarker = index == 1

		animationNumber := len(s) - (total - index)
		frames[i].AnimationFrameNumber = animationNumber
		frames[i].IsPadding = index < firstAnimation

		if frames[i].IsPadding {
			// Padding has its own counter so the two numbering spaces
			// never collide on screen.
			padCounter++
			frames[i].FrameNumberLabel = fmt.Sprintf("%d (pad)", padCounter)
			continue
		}

		frames[i].FrameNumberLabel = strconv.Itoa(animationNumber)
		frames[i].DotScheduled = index == firstAnimation ||
			index == total ||
			(opts.DotsInterval >= 1 && animationNumber%opts.DotsInterval == 0)
	}

	return &Annotated{
		FrameRate: frameRate,
		Width:     opts.Width,
		Height:    opts.Height,
		Frames:    frames,
	}, nil
}

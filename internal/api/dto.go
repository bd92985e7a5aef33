package api

import (
	"math"

	"github.com/strobe-lab/loomstim/internal/alt"
	"github.com/strobe-lab/loomstim/internal/sequence"
	"github.com/strobe-lab/loomstim/internal/stimulus"
	"github.com/strobe-lab/loomstim/internal/units"
)

// FrameAPI is the wire form of a stimulus frame. Kinematic columns are
// nullable because NaN (undefined for the model variant or for frame 1) has
// no JSON encoding. Distances are cm, angles rad, rates rad/s.
type FrameAPI struct {
	Index             int      `json:"index"`
	Time              float64  `json:"time"`
	Distance          *float64 `json:"distance"`
	Alpha             *float64 `json:"alpha"`
	Dadt              *float64 `json:"dadt"`
	DiamOnScreen      *float64 `json:"diam_on_screen"`
	PerceivedDistance *float64 `json:"perceived_distance"`
	PerceivedSpeed    *float64 `json:"perceived_speed"`
}

// FrameToAPI converts a frame for JSON output, mapping NaN to null.
func FrameToAPI(f stimulus.Frame) FrameAPI {
	return FrameAPI{
		Index:             f.Index,
		Time:              f.Time,
		Distance:          apiFloat(f.Distance),
		Alpha:             apiFloat(f.Alpha),
		Dadt:              apiFloat(f.Dadt),
		DiamOnScreen:      apiFloat(f.DiamOnScreen),
		PerceivedDistance: apiFloat(f.PerceivedDistance),
		PerceivedSpeed:    apiFloat(f.PerceivedSpeed),
	}
}

// SeriesToAPI converts a full frame series for JSON output.
func SeriesToAPI(s stimulus.Series) []FrameAPI {
	out := make([]FrameAPI, len(s))
	for i, f := range s {
		out[i] = FrameToAPI(f)
	}
	return out
}

// ReportAPI is the wire form of an extraction report. The ALT is reported in
// the configured angular units and speeds in the configured speed units;
// both unit names are included so the payload is self-describing.
type ReportAPI struct {
	ALT          *float64 `json:"alt"`
	AngularUnits string   `json:"angular_units"`

	ResponseFrame         int     `json:"response_frame"`
	ResponseFrameAdjusted int     `json:"response_frame_adjusted"`
	Latency               float64 `json:"latency"`

	DistancePerceived *float64 `json:"distance_perceived"`
	SpeedPerceived    *float64 `json:"speed_perceived"`
	DistanceInModel   *float64 `json:"distance_in_model"`
	SpeedInModel      *float64 `json:"speed_in_model"`
	SpeedUnits        string   `json:"speed_units"`

	NewDistance *float64 `json:"new_distance"`
}

// ReportToAPI converts an extraction report, applying the reporting unit
// conversions. Internal values stay rad/s and cm/s; only the payload is
// converted.
func ReportToAPI(r *alt.Report, angularUnits, speedUnits string) ReportAPI {
	return ReportAPI{
		ALT:                   apiConverted(r.ALT, angularUnits, units.ConvertAngularRate),
		AngularUnits:          angularUnits,
		ResponseFrame:         r.ResponseFrame,
		ResponseFrameAdjusted: r.ResponseFrameAdjusted,
		Latency:               r.LatencyApplied,
		DistancePerceived:     apiFloat(r.DistancePerceived),
		SpeedPerceived:        apiConverted(r.SpeedPerceived, speedUnits, units.ConvertSpeed),
		DistanceInModel:       apiFloat(r.DistanceInModel),
		SpeedInModel:          apiConverted(r.SpeedInModel, speedUnits, units.ConvertSpeed),
		SpeedUnits:            speedUnits,
		NewDistance:           apiFloat(r.NewDistanceApplied),
	}
}

// SequenceFrameAPI is the wire form of one annotated sequence frame.
type SequenceFrameAPI struct {
	FrameAPI
	IsPadding            bool   `json:"is_padding"`
	AnimationFrameNumber int    `json:"animation_frame_number"`
	DotScheduled         bool   `json:"dot_scheduled"`
	FrameNumberLabel     string `json:"frame_number_label"`
	StartMarker          bool   `json:"start_marker"`
}

// AnnotatedAPI is the wire form of an assembled sequence.
type AnnotatedAPI struct {
	FrameRate float64            `json:"frame_rate"`
	Width     int                `json:"width"`
	Height    int                `json:"height"`
	Frames    []SequenceFrameAPI `json:"frames"`
}

// AnnotatedToAPI converts an assembled sequence for JSON output.
func AnnotatedToAPI(a *sequence.Annotated) AnnotatedAPI {
	frames := make([]SequenceFrameAPI, len(a.Frames))
	for i, f := range a.Frames {
		frames[i] = SequenceFrameAPI{
			FrameAPI:             FrameToAPI(f.Frame),
			IsPadding:            f.IsPadding,
			AnimationFrameNumber: f.AnimationFrameNumber,
			DotScheduled:         f.DotScheduled,
			FrameNumberLabel:     f.FrameNumberLabel,
			StartMarker:          f.StartMarker,
		}
	}
	return AnnotatedAPI{
		FrameRate: a.FrameRate,
		Width:     a.Width,
		Height:    a.Height,
		Frames:    frames,
	}
}

func apiFloat(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func apiConverted(v float64, targetUnits string, convert func(float64, string) float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	c := convert(v, targetUnits)
	return &c
}

// Package plots renders looming model kinematics for visual inspection:
// an interactive HTML chart (go-echarts) for the browser debug endpoint and
// a static PNG (gonum/plot) for export alongside animation frames.
package plots

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/strobe-lab/loomstim/internal/stimulus"
)

// RenderProfileChart writes an HTML line chart of the model's expansion
// profile to w: on-screen diameter and visual angle per frame, with the rate
// of angular expansion on a second axis. Frames where a value is undefined
// (NaN) are skipped rather than drawn as zero.
func RenderProfileChart(m stimulus.Model, title string, w io.Writer) error {
	series := m.Series()
	if len(series) == 0 {
		return fmt.Errorf("model has no frames")
	}

	x := make([]string, 0, len(series))
	diam := make([]opts.LineData, 0, len(series))
	alpha := make([]opts.LineData, 0, len(series))
	dadt := make([]opts.LineData, 0, len(series))
	for _, f := range series {
		x = append(x, fmt.Sprintf("%d", f.Index))
		diam = append(diam, lineValue(f.DiamOnScreen))
		alpha = append(alpha, lineValue(f.Alpha))
		dadt = append(dadt, lineValue(f.Dadt))
	}

	if title == "" {
		title = "Looming Profile"
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Theme: "dark", Width: "1200px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("kind=%s frames=%d rate=%g fps", m.Kind(), m.FrameCount(), m.FrameRate()),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Frame"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Diameter (cm) / Alpha (rad)"}),
	)
	line.ExtendYAxis(opts.YAxis{Name: "da/dt (rad/s)", Type: "value"})

	line.SetXAxis(x).
		AddSeries("diameter on screen", diam).
		AddSeries("visual angle", alpha).
		AddSeries("expansion rate", dadt, charts.WithLineChartOpts(opts.LineChart{YAxisIndex: 1}))

	return line.Render(w)
}

// lineValue maps a NaN to a nil data point so echarts leaves a gap.
func lineValue(v float64) opts.LineData {
	if math.IsNaN(v) {
		return opts.LineData{Value: nil}
	}
	return opts.LineData{Value: v}
}

// WriteProfilePNG writes a static PNG of the on-screen diameter and visual
// angle over time. The angle trace is scaled into the diameter axis range so
// both shapes are visible on one plot.
func WriteProfilePNG(m stimulus.Model, title string, w io.Writer) error {
	series := m.Series()
	if len(series) == 0 {
		return fmt.Errorf("model has no frames")
	}

	p := plot.New()
	if title == "" {
		title = fmt.Sprintf("Looming Profile (%s)", m.Kind())
	}
	p.Title.Text = title
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Diameter on screen (cm)"

	maxDiam := 0.0
	maxAlpha := 0.0
	for _, f := range series {
		if !math.IsNaN(f.DiamOnScreen) && f.DiamOnScreen > maxDiam {
			maxDiam = f.DiamOnScreen
		}
		if !math.IsNaN(f.Alpha) && f.Alpha > maxAlpha {
			maxAlpha = f.Alpha
		}
	}
	alphaScale := 1.0
	if maxAlpha > 0 && maxDiam > 0 {
		alphaScale = maxDiam / maxAlpha
	}

	diamPts := make(plotter.XYs, 0, len(series))
	alphaPts := make(plotter.XYs, 0, len(series))
	for _, f := range series {
		if !math.IsNaN(f.DiamOnScreen) {
			diamPts = append(diamPts, plotter.XY{X: f.Time, Y: f.DiamOnScreen})
		}
		if !math.IsNaN(f.Alpha) {
			alphaPts = append(alphaPts, plotter.XY{X: f.Time, Y: f.Alpha * alphaScale})
		}
	}

	if len(diamPts) > 0 {
		diamLine, err := plotter.NewLine(diamPts)
		if err != nil {
			return err
		}
		diamLine.Width = vg.Points(1.5)
		p.Add(diamLine)
		p.Legend.Add("diameter on screen", diamLine)
	}

	if len(alphaPts) > 0 {
		alphaLine, err := plotter.NewLine(alphaPts)
		if err != nil {
			return err
		}
		alphaLine.Width = vg.Points(1)
		alphaLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(alphaLine)
		p.Legend.Add("visual angle (scaled)", alphaLine)
	}

	p.Legend.Top = true
	p.Legend.Left = true

	wt, err := p.WriterTo(10*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("failed to create png writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write png: %w", err)
	}
	return nil
}

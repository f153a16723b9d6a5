package render

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	equityWidth  = 1000
	equityHeight = 500
)

// ErrEmptySeries is returned when there is nothing to plot.
var ErrEmptySeries = errors.New("empty equity series")

// EquityCurve renders the cumulative RR series as a 1000x500 PNG line chart.
// The curve starts from a zero origin point before the first trade.
func (r *Renderer) EquityCurve(series []float64) ([]byte, error) {
	if len(series) == 0 {
		return nil, ErrEmptySeries
	}

	xs := make([]float64, len(series)+1)
	ys := make([]float64, len(series)+1)
	for i, v := range series {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("equity point %d is not finite", i+1)
		}
		xs[i+1] = float64(i + 1)
		ys[i+1] = v
	}

	lo, hi := yRange(ys)

	background := drawing.ColorFromHex("0b1120")
	axis := chart.Style{
		FontColor:   drawing.ColorWhite,
		StrokeColor: drawing.ColorFromHex("334155"),
		FontSize:    11,
	}

	graph := chart.Chart{
		Width:      equityWidth,
		Height:     equityHeight,
		Font:       r.font,
		Background: chart.Style{FillColor: background, Padding: chart.Box{Top: 30, Left: 20, Right: 30, Bottom: 20}},
		Canvas:     chart.Style{FillColor: background},
		XAxis: chart.XAxis{
			Style: axis,
			Range: &chart.ContinuousRange{Min: 0, Max: float64(len(series))},
			Ticks: xTicks(len(series)),
		},
		YAxis: chart.YAxis{
			Style:          axis,
			ValueFormatter: rrFormatter,
			Range:          &chart.ContinuousRange{Min: lo, Max: hi},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Equity",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: drawing.ColorFromHex("22d3ee"),
					StrokeWidth: 3,
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render equity curve: %w", err)
	}
	return buf.Bytes(), nil
}

// yRange pads the data range so a flat curve still has a drawable axis.
func yRange(ys []float64) (float64, float64) {
	lo, hi := ys[0], ys[0]
	for _, v := range ys[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	pad := (hi - lo) * 0.1
	if pad == 0 {
		pad = 1
	}
	return lo - pad, hi + pad
}

// xTicks labels trade numbers with at most ~10 evenly spaced ticks.
func xTicks(n int) []chart.Tick {
	step := int(math.Ceil(float64(n) / 10))
	if step < 1 {
		step = 1
	}
	var ticks []chart.Tick
	for i := 0; i <= n; i += step {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: fmt.Sprintf("%d", i)})
	}
	if last := ticks[len(ticks)-1]; int(last.Value) != n {
		ticks = append(ticks, chart.Tick{Value: float64(n), Label: fmt.Sprintf("%d", n)})
	}
	return ticks
}

func rrFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.2f", f)
	}
	return ""
}

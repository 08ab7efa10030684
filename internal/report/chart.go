package report

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	chartTitle  = "Mood Frequency Over Time"
	chartXLabel = "Mood"
	chartYLabel = "Count"
	barColor    = "6C63FF"

	chartWidth  = 800
	chartHeight = 400
)

// RenderTrendsPNG draws the mood counts as a bar chart and writes it as PNG.
func RenderTrendsPNG(w io.Writer, counts []Count) error {
	if len(counts) == 0 {
		return ErrNoData
	}

	color := drawing.ColorFromHex(barColor)
	bars := make([]chart.Value, 0, len(counts))
	highest := 0
	for _, c := range counts {
		bars = append(bars, chart.Value{
			Label: c.Label,
			Value: float64(c.Count),
			Style: chart.Style{FillColor: color, StrokeColor: color},
		})
		if c.Count > highest {
			highest = c.Count
		}
	}

	barWidth := (chartWidth - 120) / (2 * len(bars))
	if barWidth > 60 {
		barWidth = 60
	}
	if barWidth < 6 {
		barWidth = 6
	}

	graph := chart.BarChart{
		Title:      chartTitle,
		Width:      chartWidth,
		Height:     chartHeight,
		BarWidth:   barWidth,
		BarSpacing: barWidth / 2,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 30},
		},
		YAxis: chart.YAxis{
			Name:  chartYLabel,
			Range: &chart.ContinuousRange{Min: 0, Max: float64(highest + 1)},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Bars:     bars,
		Elements: []chart.Renderable{xAxisLabel(chartXLabel)},
	}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render trends chart: %w", err)
	}
	return nil
}

// xAxisLabel draws text centred under the plot area.
func xAxisLabel(text string) chart.Renderable {
	return func(r chart.Renderer, canvas chart.Box, defaults chart.Style) {
		style := chart.Style{
			Font:      defaults.Font,
			FontSize:  11,
			FontColor: drawing.ColorBlack,
		}
		style.WriteToRenderer(r)
		tb := r.MeasureText(text)
		x := canvas.Left + (canvas.Width()-tb.Width())/2
		r.Text(text, x, chartHeight-8)
	}
}

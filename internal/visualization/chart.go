package visualization

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/shaigundersen/CoronaSimulator/internal/epidemic"
	"github.com/shaigundersen/CoronaSimulator/internal/pathutil"
)

// ErrTooFewPoints is returned when a history is too short to plot.
var ErrTooFewPoints = errors.New("history needs at least two generations to plot")

// ChartOptions sizes the rendered plot.
type ChartOptions struct {
	Width  int
	Height int
	Title  string
}

// DefaultChartOptions returns an 800x400 plot.
func DefaultChartOptions() ChartOptions {
	return ChartOptions{
		Width:  800,
		Height: 400,
		Title:  "Infected population",
	}
}

var infectedColor = drawing.Color{R: 200, G: 30, B: 30, A: 255}

// RenderChart writes a PNG line plot of infected percentage per generation.
func RenderChart(h epidemic.History, opts ChartOptions, w io.Writer) error {
	if h.Len() < 2 {
		return ErrTooFewPoints
	}

	percent := make([]float64, len(h.InfectedFractions))
	for i, f := range h.InfectedFractions {
		percent[i] = f * 100
	}

	graph := chart.Chart{
		Title:  opts.Title,
		Width:  opts.Width,
		Height: opts.Height,
		XAxis: chart.XAxis{
			Name:  "generation",
			Style: chart.Style{FontSize: 10.0},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%d", int(v.(float64)))
			},
		},
		YAxis: chart.YAxis{
			Name:  "infected %",
			Style: chart.Style{FontSize: 10.0},
			Range: &chart.ContinuousRange{Min: 0, Max: 100},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.0f%%", v.(float64))
			},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "infected",
				XValues: h.Generations,
				YValues: percent,
				Style:   chart.Style{StrokeColor: infectedColor, StrokeWidth: 2.0},
			},
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	_, err := w.Write(buffer.Bytes())
	return err
}

// SaveChart renders the plot to a .png file at path.
func SaveChart(path string, h epidemic.History, opts ChartOptions) error {
	if err := pathutil.ValidateOutputPath(path, ".png"); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := RenderChart(h, opts, &buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing chart to %s: %w", pathutil.RedactPath(path), err)
	}
	return nil
}

package metrics

import (
	"os"

	"github.com/pkg/errors"
	chart "github.com/wcharczuk/go-chart"
)

// SavePlot renders the F-measure trajectory of every name into a PNG file.
// Before the first averaged iteration it renders the empty axes.
func (a *Accumulator) SavePlot(path string) error {
	var series []chart.Series
	for i, name := range a.names {
		points := a.Trajectory(name)
		if len(points) == 0 {
			continue
		}
		xs := make([]float64, len(points))
		ys := make([]float64, len(points))
		for j, p := range points {
			xs[j] = float64(p.Iteration)
			ys[j] = p.FMeasure
		}
		series = append(series, chart.ContinuousSeries{
			Name:    name,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				Show:        true,
				StrokeColor: chart.GetAlternateColor(i),
			},
		})
	}
	if len(series) == 0 {
		// go-chart needs one visible series to draw the axes
		series = append(series, chart.ContinuousSeries{
			Name:    "no averaged iterations",
			XValues: []float64{0, 1},
			YValues: []float64{0, 0},
			Style: chart.Style{
				Show:        true,
				StrokeColor: chart.ColorTransparent,
			},
		})
	}

	last := float64(a.Iterations() - 1)
	if last < 1 {
		last = 1
	}
	graph := chart.Chart{
		Title:      "F-measure per iteration",
		TitleStyle: chart.StyleShow(),
		XAxis: chart.XAxis{
			Name:      "Iteration",
			NameStyle: chart.StyleShow(),
			Style:     chart.StyleShow(),
			Range:     &chart.ContinuousRange{Min: 0, Max: last},
		},
		YAxis: chart.YAxis{
			Name:      "F-measure",
			NameStyle: chart.StyleShow(),
			Style:     chart.StyleShow(),
			Range:     &chart.ContinuousRange{Min: 0, Max: 1},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating plot")
	}
	err = graph.Render(chart.PNG, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return errors.Wrapf(err, "rendering plot %s", path)
}

package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/IlikeChooros/go-hdagger/pkg/dagger"
)

// One line of the chart, Values[i] belongs to round i
type Series struct {
	Name   string
	Values []float64
}

func ReturnSeries(name string, results []dagger.RoundResult) Series {
	s := Series{Name: name, Values: make([]float64, len(results))}
	for i, res := range results {
		s.Values[i] = res.Return
	}
	return s
}

// Line chart of the discounted return per round
func ReturnChart(title string, series ...Series) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(opts.Initialization{Theme: "shine"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "round"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "discounted return"}),
	)

	rounds := 0
	for _, s := range series {
		rounds = max(rounds, len(s.Values))
	}
	xs := make([]string, rounds)
	for i := range xs {
		xs[i] = fmt.Sprintf("%d", i)
	}
	line.SetXAxis(xs)

	for _, s := range series {
		items := make([]opts.LineData, 0, len(s.Values))
		for _, v := range s.Values {
			items = append(items, opts.LineData{Value: v})
		}
		line.AddSeries(s.Name, items)
	}
	return line
}

func WriteChart(w io.Writer, title string, series ...Series) error {
	page := components.NewPage()
	page.AddCharts(ReturnChart(title, series...))
	return page.Render(w)
}

// Renders the chart to an html file, creating its directory
func SaveChart(path, title string, series ...Series) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("report: chart dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: chart file: %w", err)
	}
	if err := WriteChart(f, title, series...); err != nil {
		f.Close()
		return fmt.Errorf("report: render chart: %w", err)
	}
	return f.Close()
}

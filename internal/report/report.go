package report

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/ZaninAndrea/compressor/internal/job"
)

var ErrNoData = errors.New("no statistics to report")

// WriteTable prints one row per job, aligned in columns.
func WriteTable(w io.Writer, stats []job.Stats) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "input\tscheme\top\tin\tout\tratio\ttime\t")
	for _, s := range stats {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%.3f\t%s\t\n",
			s.Job.Input, s.Job.Scheme, s.Job.Op, s.InBytes, s.OutBytes, s.Ratio(), s.Duration.Round(time.Microsecond))
	}
	return tw.Flush()
}

// ChartFormat picks the renderer from the file extension, PNG unless ".svg".
func ChartFormat(path string) chart.RendererProvider {
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		return chart.SVG
	}
	return chart.PNG
}

// WriteChart renders the compression ratio of every job as a bar chart.
func WriteChart(w io.Writer, stats []job.Stats, format chart.RendererProvider) error {
	if len(stats) == 0 {
		return ErrNoData
	}

	singleInput := true
	for _, s := range stats {
		if s.Job.Input != stats[0].Job.Input {
			singleInput = false
			break
		}
	}

	bars := make([]chart.Value, 0, len(stats))
	maxRatio := 0.0
	for _, s := range stats {
		label := s.Job.Scheme
		if !singleInput {
			label = filepath.Base(s.Job.Input) + " " + s.Job.Scheme
		}

		bars = append(bars, chart.Value{Label: label, Value: s.Ratio()})
		maxRatio = max(maxRatio, s.Ratio())
	}

	// A flat range breaks tick generation, so always leave headroom above zero.
	if maxRatio == 0 {
		maxRatio = 1
	}

	graph := chart.BarChart{
		Title: "Compressed size / original size",
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		Width:    max(640, 90*len(bars)),
		Height:   480,
		BarWidth: 50,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: maxRatio * 1.1},
		},
		Bars: bars,
	}

	return graph.Render(format, w)
}

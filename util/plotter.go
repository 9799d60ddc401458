package util

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"roomrec-server/models"
)

// gap is how echarts marks a missing point in a line series.
const gap = "-"

// RenderRankingChart writes an HTML bar chart of the recommended rooms' scores.
func RenderRankingChart(w io.Writer, title string, rooms []models.RankedRoom) error {
	names := make([]string, 0, len(rooms))
	scores := make([]opts.BarData, 0, len(rooms))
	for _, r := range rooms {
		names = append(names, fmt.Sprintf("#%.0f %s", r.Rank, r.RoomName))
		scores = append(scores, opts.BarData{Value: r.Score})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Room ranking",
			Width:     "900px",
			Height:    "500px",
		}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "score"}),
	)
	bar.SetXAxis(names).AddSeries("score", scores,
		charts.WithLabelOpts(opts.Label{
			Show:     opts.Bool(true),
			Position: "top",
		}),
	)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render ranking chart: %w", err)
	}
	return nil
}

// RenderRoomMetricsChart writes an HTML line chart of one room's readings, one series per
// metric. Unknown values leave a gap in their series.
func RenderRoomMetricsChart(w io.Writer, room string, readings []models.SensorReading) error {
	times := make([]string, 0, len(readings))
	for _, r := range readings {
		times = append(times, r.Timestamp.Format("2006-01-02 15:04"))
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: room + " readings",
			Width:     "1000px",
			Height:    "600px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    room,
			Subtitle: fmt.Sprintf("%d readings", len(readings)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	line.SetXAxis(times)

	for _, name := range models.AllMetrics {
		points := make([]opts.LineData, 0, len(readings))
		known := false
		for _, r := range readings {
			if v, ok := r.Metric(name).Get(); ok {
				points = append(points, opts.LineData{Value: v})
				known = true
			} else {
				points = append(points, opts.LineData{Value: gap})
			}
		}
		if known {
			line.AddSeries(string(name), points)
		}
	}

	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render metrics chart for room %s: %w", room, err)
	}
	return nil
}

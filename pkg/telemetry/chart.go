package telemetry

import (
	"fmt"
	"strings"
	"time"
)

const (
	ChartWidth  = 960.0
	ChartHeight = 350.0
	ChartTicks  = 24
)

type ChartPoint struct {
	X     float64
	Y     float64
	Label string
	Time  time.Time
}

type Tick struct {
	X     float64
	Label string
}

// Chart is the drawable form of a series on a 0-100 % axis spanning the window.
type Chart struct {
	Width  float64
	Height float64
	Points []ChartPoint
	Ticks  []Tick
	Line   string
	Area   string
}

func NewChart(points []Point, w Window, loc *time.Location) *Chart {
	chart := &Chart{Width: ChartWidth, Height: ChartHeight}

	span := w.Span().Seconds()
	xOf := func(t time.Time) float64 {
		if span <= 0 {
			return 0
		}
		return clamp(t.Sub(w.Start).Seconds()/span, 0, 1) * chart.Width
	}
	yOf := func(v float64) float64 {
		return chart.Height - clamp(v, 0, 100)/100*chart.Height
	}

	for _, p := range points {
		chart.Points = append(chart.Points, ChartPoint{
			X:     xOf(p.Time),
			Y:     yOf(p.Value),
			Label: FormatPercent(p.Value),
			Time:  p.Time,
		})
	}

	if span > 0 {
		step := w.Span() / ChartTicks
		for i := 0; i <= ChartTicks; i++ {
			t := w.Start.Add(time.Duration(i) * step)
			chart.Ticks = append(chart.Ticks, Tick{X: xOf(t), Label: t.In(loc).Format("Jan 2 15:04")})
		}
	}

	if len(chart.Points) > 0 {
		var line strings.Builder
		for i, p := range chart.Points {
			cmd := "L"
			if i == 0 {
				cmd = "M"
			}
			fmt.Fprintf(&line, "%s%.1f %.1f ", cmd, p.X, p.Y)
		}
		chart.Line = strings.TrimSpace(line.String())
		first, last := chart.Points[0], chart.Points[len(chart.Points)-1]
		chart.Area = fmt.Sprintf("%s L%.1f %.1f L%.1f %.1f Z", chart.Line, last.X, chart.Height, first.X, chart.Height)
	}

	return chart
}

func (c *Chart) Empty() bool {
	return len(c.Points) == 0
}

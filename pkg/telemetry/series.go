package telemetry

import (
	"fmt"
	"sort"
	"time"

	"liyu1981.xyz/tank-console/pkg/models"
)

type Point struct {
	Time  time.Time `json:"x"`
	Value float64   `json:"y"`
}

func BuildSeries(readings []models.Reading) []Point {
	points := make([]Point, len(readings))
	for i, r := range readings {
		points[i] = Point{Time: r.Timestamp, Value: r.Value}
	}
	return points
}

// Index answers nearest-timestamp queries over a set of raw readings.
type Index struct {
	readings []models.Reading
}

func NewIndex(readings []models.Reading) *Index {
	sorted := make([]models.Reading, len(readings))
	copy(sorted, readings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return &Index{readings: sorted}
}

// Nearest returns the reading whose timestamp has the smallest absolute
// distance to t. On a tie the earlier reading wins.
func (idx *Index) Nearest(t time.Time) (models.Reading, bool) {
	n := len(idx.readings)
	if n == 0 {
		return models.Reading{}, false
	}

	i := sort.Search(n, func(i int) bool {
		return !idx.readings[i].Timestamp.Before(t)
	})

	switch {
	case i == 0:
		return idx.readings[0], true
	case i == n:
		return idx.readings[n-1], true
	}

	before, after := idx.readings[i-1], idx.readings[i]
	if t.Sub(before.Timestamp) <= after.Timestamp.Sub(t) {
		return before, true
	}
	return after, true
}

func FormatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// FillLevel is the gauge height in percent for a device's percentage_full.
func FillLevel(percentageFull *float64) float64 {
	if percentageFull == nil {
		return 0
	}
	return clamp(*percentageFull, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

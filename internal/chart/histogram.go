package chart

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"

	gochart "github.com/wcharczuk/go-chart/v2"
)

// histogramPlotWidth is the horizontal space shared by all bars.
const histogramPlotWidth = 600

// Bin is one histogram bucket covering [Low, High).
type Bin struct {
	Low   float64
	High  float64
	Count int
}

// Label renders the bucket range for an axis tick.
func (b Bin) Label() string {
	return tick(b.Low) + "-" + tick(b.High)
}

func tick(v float64) string {
	if math.Abs(v) < 1e6 {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'g', 3, 64)
}

// Bins splits the finite values into n equal-width buckets spanning their
// min and max. The last bucket is closed so the maximum is counted.
func Bins(values []float64, n int) []Bin {
	if n <= 0 {
		return nil
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	count := 0
	for _, v := range values {
		if !finite(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		count++
	}
	if count == 0 {
		return nil
	}

	// hi/n - lo/n stays finite where hi - lo would overflow.
	width := hi/float64(n) - lo/float64(n)
	if hi == lo || width <= 0 || !finite(width) {
		return []Bin{{Low: lo, High: hi, Count: count}}
	}

	bins := make([]Bin, n)
	for i := range bins {
		bins[i] = Bin{Low: lo + float64(i)*width, High: lo + float64(i+1)*width}
	}
	bins[n-1].High = hi
	for _, v := range values {
		if !finite(v) {
			continue
		}
		bins[binIndex(v/width-lo/width, n)].Count++
	}
	return bins
}

// binIndex clamps a fractional bucket position into [0, n-1].
func binIndex(pos float64, n int) int {
	switch {
	case math.IsNaN(pos) || pos < 0:
		return 0
	case pos >= float64(n):
		return n - 1
	}
	return min(int(pos), n-1)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// HistogramSVG renders the distribution of values as an SVG bar chart.
func HistogramSVG(values []float64, n int, title string) ([]byte, error) {
	bins := Bins(values, n)
	if len(bins) == 0 {
		return nil, errors.New("histogram: no values")
	}

	maxCount := 0
	bars := make([]gochart.Value, len(bins))
	for i, b := range bins {
		bars[i] = gochart.Value{Label: b.Label(), Value: float64(b.Count)}
		maxCount = max(maxCount, b.Count)
	}

	slot := histogramPlotWidth / len(bars)
	graph := gochart.BarChart{
		Title:      title,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10}},
		Width:      720,
		Height:     320,
		BarWidth:   max(1, slot*3/4),
		BarSpacing: max(1, slot/4),
		XAxis:      gochart.Style{FontSize: 7},
		YAxis: gochart.YAxis{
			Name:  "rows",
			Range: &gochart.ContinuousRange{Min: 0, Max: float64(maxCount)},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(gochart.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render histogram: %w", err)
	}
	return buf.Bytes(), nil
}

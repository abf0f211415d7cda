package domain

import (
	"math"
	"sort"
)

// NumericSummary is the describe() row set for one numeric column.
type NumericSummary struct {
	Name  string
	Count int
	Mean  float64
	Std   float64 // sample standard deviation; NaN below two values
	Min   float64
	P25   float64
	P50   float64
	P75   float64
	Max   float64
}

// TextSummary is the describe() row set for one text column.
type TextSummary struct {
	Name   string
	Count  int
	Unique int
	Top    string
	Freq   int
}

// Description summarises a table. Numeric columns are described when any exist;
// otherwise the text columns are.
type Description struct {
	Numeric []NumericSummary
	Text    []TextSummary
}

// Describe computes per-column summary statistics.
func Describe(t *Table) Description {
	var d Description
	for i := range t.Columns {
		if t.Columns[i].Kind == KindNumeric {
			d.Numeric = append(d.Numeric, describeNumeric(&t.Columns[i]))
		}
	}
	if len(d.Numeric) > 0 {
		return d
	}
	for i := range t.Columns {
		d.Text = append(d.Text, describeText(&t.Columns[i]))
	}
	return d
}

func describeNumeric(c *Column) NumericSummary {
	values := c.Numbers()
	s := NumericSummary{Name: c.Name, Count: len(values)}
	if len(values) == 0 {
		nan := math.NaN()
		s.Mean, s.Std, s.Min, s.P25, s.P50, s.P75, s.Max = nan, nan, nan, nan, nan, nan, nan
		return s
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	st := Stats(values)
	s.Mean, s.Min, s.Max = st.Mean, st.Min, st.Max
	s.Std = sampleStd(values, st.Mean)
	s.P25 = quantileSorted(sorted, 0.25)
	s.P50 = quantileSorted(sorted, 0.50)
	s.P75 = quantileSorted(sorted, 0.75)
	return s
}

func describeText(c *Column) TextSummary {
	s := TextSummary{Name: c.Name}
	counts := map[string]int{}
	var order []string
	for _, cell := range c.Cells {
		if IsMissing(cell) {
			continue
		}
		s.Count++
		if counts[cell] == 0 {
			order = append(order, cell)
		}
		counts[cell]++
	}
	s.Unique = len(order)
	for _, v := range order {
		if counts[v] > s.Freq {
			s.Top, s.Freq = v, counts[v]
		}
	}
	return s
}

func sampleStd(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1))
}

// quantileSorted uses linear interpolation between closest ranks.
func quantileSorted(sorted []float64, q float64) float64 {
	n := float64(len(sorted))
	index := q * (n - 1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}
	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Headers returns the describe() statistic labels in display order.
func (NumericSummary) Headers() []string {
	return []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}
}

// Values returns the statistics in the order of Headers.
func (s NumericSummary) Values() []float64 {
	return []float64{float64(s.Count), s.Mean, s.Std, s.Min, s.P25, s.P50, s.P75, s.Max}
}

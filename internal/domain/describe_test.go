package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe_NumericColumns(t *testing.T) {
	tbl := loadString(t, "City,noise\nA,1\nB,2\nC,3\nD,4\nE,\n")

	d := Describe(tbl)

	require.Len(t, d.Numeric, 1)
	assert.Empty(t, d.Text)

	s := d.Numeric[0]
	assert.Equal(t, "noise", s.Name)
	assert.Equal(t, 4, s.Count)
	assert.InDelta(t, 2.5, s.Mean, 1e-9)
	assert.InDelta(t, 1.2909944487, s.Std, 1e-9)
	assert.Equal(t, 1.0, s.Min)
	assert.InDelta(t, 1.75, s.P25, 1e-9)
	assert.InDelta(t, 2.5, s.P50, 1e-9)
	assert.InDelta(t, 3.25, s.P75, 1e-9)
	assert.Equal(t, 4.0, s.Max)
	assert.Len(t, s.Values(), len(s.Headers()))
}

func TestDescribe_SingleValueHasNaNStd(t *testing.T) {
	tbl := loadString(t, "noise\n70\n")

	d := Describe(tbl)

	require.Len(t, d.Numeric, 1)
	assert.True(t, math.IsNaN(d.Numeric[0].Std))
	assert.Equal(t, 70.0, d.Numeric[0].P50)
}

func TestDescribe_TextOnly(t *testing.T) {
	tbl := loadString(t, "City,Zone\nPune,A\nMumbai,B\nPune,\n")

	d := Describe(tbl)

	assert.Empty(t, d.Numeric)
	require.Len(t, d.Text, 2)
	assert.Equal(t, TextSummary{Name: "City", Count: 3, Unique: 2, Top: "Pune", Freq: 2}, d.Text[0])
	assert.Equal(t, TextSummary{Name: "Zone", Count: 2, Unique: 2, Top: "A", Freq: 1}, d.Text[1])
}

func TestNoise2019(t *testing.T) {
	tbl := Noise2019()

	assert.Equal(t, []string{"City", "Average_dB", "Peak_dB"}, tbl.Names())
	assert.Equal(t, 6, tbl.Len())

	avg, ok := tbl.Column("Average_dB")
	require.True(t, ok)
	assert.Equal(t, KindNumeric, avg.Kind)
	assert.Equal(t, 72.5, avg.Values[0])
}

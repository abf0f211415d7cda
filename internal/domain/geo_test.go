package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var uploadColumns = GeoColumns{Lat: "latitude", Lon: "longitude", Value: "noise_level"}

func TestAggregate_CenterIsCoordinateMean(t *testing.T) {
	tbl := loadString(t, "latitude,longitude\n1,2\n3,4\n")

	agg, err := Aggregate(tbl, GeoColumns{Lat: "latitude", Lon: "longitude"}, MaharashtraCenter)
	require.NoError(t, err)

	assert.Equal(t, LatLng{Lat: 2, Lon: 3}, agg.Center)
	assert.False(t, agg.FallbackCenter)
	assert.False(t, agg.Weighted())
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, agg.HeatData())
}

func TestAggregate_TwoCityScenario(t *testing.T) {
	tbl := loadString(t, "latitude,longitude,noise_level\n19.07,72.87,72.0\n18.52,73.85,70.5\n")

	agg, err := Aggregate(tbl, uploadColumns, MaharashtraCenter)
	require.NoError(t, err)

	assert.InDelta(t, 18.795, agg.Center.Lat, 1e-9)
	assert.InDelta(t, 73.36, agg.Center.Lon, 1e-9)
	assert.True(t, agg.Weighted())
	assert.Equal(t, [][]float64{{19.07, 72.87, 72.0}, {18.52, 73.85, 70.5}}, agg.HeatData())
}

func TestAggregate_DropsMissingRowsKeepingOrder(t *testing.T) {
	tbl := loadString(t, "latitude,longitude,noise_level\n"+
		"10,20,50\n"+
		",21,51\n"+
		"12,22,\n"+
		"13,NaN,53\n"+
		"14,24,54\n")

	agg, err := Aggregate(tbl, uploadColumns, MaharashtraCenter)
	require.NoError(t, err)

	assert.Equal(t, [][]float64{{10, 20, 50}, {14, 24, 54}}, agg.HeatData())
	assert.Equal(t, 3, agg.DroppedMissing)
	assert.Equal(t, LatLng{Lat: 12, Lon: 22}, agg.Center)
}

func TestAggregate_DropsInfiniteWeights(t *testing.T) {
	tbl := loadString(t, "latitude,longitude,noise_level\n19.07,72.87,72\n18.52,73.85,inf\n")

	agg, err := Aggregate(tbl, uploadColumns, MaharashtraCenter)
	require.NoError(t, err)

	assert.Equal(t, [][]float64{{19.07, 72.87, 72}}, agg.HeatData())
	assert.Equal(t, 1, agg.DroppedMissing)
}

func TestAggregate_UnweightedIgnoresValueGaps(t *testing.T) {
	tbl := loadString(t, "latitude,longitude,noise_level\n10,20,\n12,22,\n")

	agg, err := Aggregate(tbl, GeoColumns{Lat: "latitude", Lon: "longitude"}, MaharashtraCenter)
	require.NoError(t, err)

	assert.Len(t, agg.Points, 2)
	assert.Zero(t, agg.DroppedMissing)
}

func TestAggregate_DropsOutOfRangeCoordinates(t *testing.T) {
	tbl := loadString(t, "latitude,longitude,noise_level\n95,20,50\n10,190,50\n10,20,60\n")

	agg, err := Aggregate(tbl, uploadColumns, MaharashtraCenter)
	require.NoError(t, err)

	assert.Equal(t, 2, agg.DroppedRange)
	assert.Equal(t, [][]float64{{10, 20, 60}}, agg.HeatData())
}

func TestAggregate_EmptyAfterFilterFallsBack(t *testing.T) {
	tbl := loadString(t, "latitude,longitude,noise_level\n,,\n")

	agg, err := Aggregate(tbl, uploadColumns, MaharashtraCenter)
	require.NoError(t, err)

	assert.True(t, agg.FallbackCenter)
	assert.Equal(t, MaharashtraCenter, agg.Center)
	assert.Empty(t, agg.HeatData())
	assert.False(t, agg.Weighted())
}

func TestAggregate_ColumnErrors(t *testing.T) {
	tbl := loadString(t, "latitude,longitude,noise_level\n10,20,loud\n")

	_, err := Aggregate(tbl, uploadColumns, MaharashtraCenter)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "noise_level")

	_, err = Aggregate(tbl, GeoColumns{Lat: "lat", Lon: "longitude"}, MaharashtraCenter)
	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, []string{"lat"}, se.Missing)
}

func TestValidCoordinate(t *testing.T) {
	assert.True(t, ValidCoordinate(19.0760, 72.8777))
	assert.True(t, ValidCoordinate(-45, -170))
	assert.False(t, ValidCoordinate(90.5, 0))
	assert.False(t, ValidCoordinate(0, -180.5))
}

func TestStats(t *testing.T) {
	s := Stats([]float64{72.0, 70.5, 66.0})

	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 69.5, s.Mean, 1e-9)
	assert.Equal(t, 66.0, s.Min)
	assert.Equal(t, 72.0, s.Max)

	assert.Equal(t, ColumnStats{}, Stats(nil))

	wide := Stats([]float64{1e308, 1e308})
	assert.Equal(t, 1e308, wide.Mean)
	assert.False(t, math.IsInf(wide.Mean, 0))
}

func TestCitySamplePoints(t *testing.T) {
	points := CitySamplePoints()
	require.Len(t, points, len(MaharashtraCities))
	assert.Equal(t, GeoPoint{Lat: 19.0760, Lon: 72.8777, Weight: 72.0, HasWeight: true}, points[0])
}

package domain

import (
	"fmt"

	"github.com/golang/geo/s2"
)

// LatLng is a WGS-84 coordinate pair in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// GeoPoint is one reading placed on the map. Weight is meaningful only when HasWeight is set.
type GeoPoint struct {
	Lat       float64
	Lon       float64
	Weight    float64
	HasWeight bool
}

// GeoColumns names the table columns the aggregator reads. An empty Value means unweighted.
type GeoColumns struct {
	Lat   string
	Lon   string
	Value string
}

// Aggregation is the reduced form of a table: its centre and heat points.
type Aggregation struct {
	Center LatLng
	// FallbackCenter is set when no rows survived filtering and Center is the caller default.
	FallbackCenter bool
	Points         []GeoPoint
	DroppedMissing int
	DroppedRange   int
}

// Weighted reports whether the points carry an intensity.
func (a Aggregation) Weighted() bool {
	return len(a.Points) > 0 && a.Points[0].HasWeight
}

// HeatData returns the points as [lat, lon] or [lat, lon, value] triples in row order.
func (a Aggregation) HeatData() [][]float64 {
	out := make([][]float64, len(a.Points))
	for i, p := range a.Points {
		if p.HasWeight {
			out[i] = []float64{p.Lat, p.Lon, p.Weight}
		} else {
			out[i] = []float64{p.Lat, p.Lon}
		}
	}
	return out
}

// Aggregate reduces a table to a centre point and an ordered point list.
//
// Rows missing any used column are dropped, as are rows whose coordinates lie
// outside the valid latitude/longitude ranges. The centre is the mean of the
// surviving latitudes and longitudes; with no survivors it is fallback.
func Aggregate(t *Table, cols GeoColumns, fallback LatLng) (Aggregation, error) {
	lat, err := numericColumn(t, cols.Lat)
	if err != nil {
		return Aggregation{}, err
	}
	lon, err := numericColumn(t, cols.Lon)
	if err != nil {
		return Aggregation{}, err
	}
	var val *Column
	if cols.Value != "" {
		if val, err = numericColumn(t, cols.Value); err != nil {
			return Aggregation{}, err
		}
	}

	agg := Aggregation{Points: make([]GeoPoint, 0, t.Len())}
	var sumLat, sumLon float64
	for i := range t.Len() {
		if lat.Missing(i) || lon.Missing(i) || (val != nil && val.Missing(i)) {
			agg.DroppedMissing++
			continue
		}
		p := GeoPoint{Lat: lat.Values[i], Lon: lon.Values[i]}
		if !ValidCoordinate(p.Lat, p.Lon) {
			agg.DroppedRange++
			continue
		}
		if val != nil {
			p.Weight = val.Values[i]
			p.HasWeight = true
		}
		sumLat += p.Lat
		sumLon += p.Lon
		agg.Points = append(agg.Points, p)
	}

	if len(agg.Points) == 0 {
		agg.Center = fallback
		agg.FallbackCenter = true
		return agg, nil
	}
	n := float64(len(agg.Points))
	agg.Center = LatLng{Lat: sumLat / n, Lon: sumLon / n}
	return agg, nil
}

// ValidCoordinate reports whether lat/lon fall within [-90,90] and [-180,180].
func ValidCoordinate(lat, lon float64) bool {
	return s2.LatLngFromDegrees(lat, lon).IsValid()
}

// numericColumn fetches a column and requires it to hold numbers.
func numericColumn(t *Table, name string) (*Column, error) {
	col, ok := t.Column(name)
	if !ok {
		return nil, &SchemaError{Missing: []string{name}, Required: []string{name}}
	}
	if col.Kind != KindNumeric {
		return nil, fmt.Errorf("column %q is not numeric", name)
	}
	return col, nil
}

// ColumnStats summarises a numeric column, ignoring missing cells.
type ColumnStats struct {
	Count int
	Mean  float64
	Min   float64
	Max   float64
}

// Stats computes count, mean, min and max of values. An empty input returns the zero value.
func Stats(values []float64) ColumnStats {
	if len(values) == 0 {
		return ColumnStats{}
	}
	s := ColumnStats{Count: len(values), Min: values[0], Max: values[0]}
	n := float64(len(values))
	for _, v := range values {
		s.Mean += v / n
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	return s
}

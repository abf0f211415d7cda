package domain

import (
	"strconv"
	"strings"
)

// CityRecord is a fixed reference city with a representative noise level in dB.
type CityRecord struct {
	Name        string
	Lat         float64
	Lon         float64
	SampleValue float64
}

// MaharashtraCenter is the default map centre for the state view.
var MaharashtraCenter = LatLng{Lat: 19.7515, Lon: 75.7139}

// MaharashtraZoom is the default zoom level for the state view.
const MaharashtraZoom = 6

// MaharashtraCities lists the major cities drawn as markers and used as sample heat data.
var MaharashtraCities = []CityRecord{
	{Name: "Mumbai", Lat: 19.0760, Lon: 72.8777, SampleValue: 72.0},
	{Name: "Pune", Lat: 18.5204, Lon: 73.8567, SampleValue: 70.5},
	{Name: "Nagpur", Lat: 21.1458, Lon: 79.0882, SampleValue: 66.0},
	{Name: "Nashik", Lat: 19.9975, Lon: 73.7898, SampleValue: 68.2},
	{Name: "Thane", Lat: 19.2183, Lon: 72.9781, SampleValue: 73.1},
	{Name: "Aurangabad", Lat: 19.8762, Lon: 75.3433, SampleValue: 71.9},
	{Name: "Solapur", Lat: 17.6599, Lon: 75.9064, SampleValue: 69.8},
	{Name: "Kolhapur", Lat: 16.7045, Lon: 74.2444, SampleValue: 70.2},
	{Name: "Amravati", Lat: 20.9320, Lon: 77.7790, SampleValue: 67.5},
	{Name: "Akola", Lat: 20.7057, Lon: 76.9840, SampleValue: 65.8},
}

// CitySamplePoints returns the reference cities as weighted points.
func CitySamplePoints() []GeoPoint {
	points := make([]GeoPoint, len(MaharashtraCities))
	for i, c := range MaharashtraCities {
		points[i] = GeoPoint{Lat: c.Lat, Lon: c.Lon, Weight: c.SampleValue, HasWeight: true}
	}
	return points
}

// CitiesTable returns the reference cities as a display table.
func CitiesTable() *Table {
	records := make([][]string, len(MaharashtraCities))
	for i, c := range MaharashtraCities {
		records[i] = []string{c.Name, formatFloat(c.Lat), formatFloat(c.Lon), formatFloat(c.SampleValue)}
	}
	return NewTable([]string{"city", "latitude", "longitude", "sample_value"}, records)
}

// GalleryCity is a city shown on the cities page with a photo from the asset directory.
type GalleryCity struct {
	Name  string
	Image string // file name relative to the asset directory
}

// Gallery lists the cities pictured on the cities page, in display order.
var Gallery = []GalleryCity{
	{Name: "Amravati", Image: "amravati.jpg"},
	{Name: "Nagpur", Image: "nagpur.jpg"},
	{Name: "Mumbai", Image: "mumbai.jpg"},
	{Name: "Pune", Image: "pune.jpg"},
	{Name: "Nashik", Image: "nashik.jpg"},
}

// LookupGalleryCity finds a gallery city by name, case-insensitively.
func LookupGalleryCity(name string) (GalleryCity, bool) {
	for _, c := range Gallery {
		if strings.EqualFold(c.Name, strings.TrimSpace(name)) {
			return c, true
		}
	}
	return GalleryCity{}, false
}

// DatasetCityColumn is the column the city dataset is filtered on.
const DatasetCityColumn = "City"

// Noise2019 returns the 2019 city noise survey as a wide table:
// City, Average_dB, Peak_dB.
func Noise2019() *Table {
	rows := []struct {
		city          string
		average, peak float64
	}{
		{"Mumbai", 72.5, 84.2},
		{"Pune", 71.2, 82.5},
		{"Nagpur", 66.5, 80.3},
		{"Nashik", 67.8, 81.1},
		{"Aurangabad", 70.1, 83.7},
		{"Solapur", 69.0, 82.0},
	}
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = []string{r.city, formatFloat(r.average), formatFloat(r.peak)}
	}
	return NewTable([]string{"City", "Average_dB", "Peak_dB"}, records)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

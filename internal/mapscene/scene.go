package mapscene

import (
	"encoding/json"

	"github.com/couchcryptid/noise-dashboard/internal/domain"
)

// Zoom bounds for the state map controls.
const (
	MinZoom     = 5
	MaxZoom     = 10
	DefaultZoom = domain.MaharashtraZoom
)

// UploadZoom is the fixed zoom of the heatmap generator map.
const UploadZoom = 12

// HeatOptions are the Leaflet.heat drawing parameters.
type HeatOptions struct {
	Radius  int `json:"radius"`
	Blur    int `json:"blur"`
	MaxZoom int `json:"maxZoom,omitempty"`
}

var (
	// UploadHeat draws the heatmap generator upload.
	UploadHeat = HeatOptions{Radius: 15, Blur: 10, MaxZoom: 1}
	// OverlayHeat draws a CSV uploaded on the state map.
	OverlayHeat = HeatOptions{Radius: 15, Blur: 10}
	// CitySampleHeat draws the built-in city sample values.
	CitySampleHeat = HeatOptions{Radius: 20, Blur: 15}
)

// PathStyle is a Leaflet vector style.
type PathStyle struct {
	FillColor string `json:"fillColor"`
	Color     string `json:"color"`
	Weight    int    `json:"weight"`
}

// BoundaryStyle outlines an administrative boundary without filling it.
var BoundaryStyle = PathStyle{FillColor: "transparent", Color: "#ff7800", Weight: 2}

// LayerKind identifies an optional layer.
type LayerKind string

const (
	LayerBoundary LayerKind = "boundary"
	LayerMarkers  LayerKind = "markers"
	LayerHeat     LayerKind = "heat"
)

// Marker is a pin with a hover tooltip and a click popup.
type Marker struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Tooltip string  `json:"tooltip"`
	Popup   string  `json:"popup"`
}

// CityMarkers returns one marker per reference city, labelled with its name.
func CityMarkers() []Marker {
	markers := make([]Marker, len(domain.MaharashtraCities))
	for i, c := range domain.MaharashtraCities {
		markers[i] = Marker{Lat: c.Lat, Lon: c.Lon, Tooltip: c.Name, Popup: c.Name}
	}
	return markers
}

// Layer is one optional overlay. Only the fields for its Kind are set.
type Layer struct {
	Kind    LayerKind       `json:"kind"`
	Name    string          `json:"name"`
	GeoJSON json.RawMessage `json:"geojson,omitempty"`
	Style   *PathStyle      `json:"style,omitempty"`
	Markers []Marker        `json:"markers,omitempty"`
	Points  [][]float64     `json:"points,omitempty"`
	Heat    *HeatOptions    `json:"heat,omitempty"`
	// Max is the intensity mapped to the hottest colour; zero for unweighted points.
	Max float64 `json:"max,omitempty"`
}

// Scene is everything the map widget needs to draw one map.
type Scene struct {
	Center       domain.LatLng `json:"center"`
	Zoom         int           `json:"zoom"`
	Tiles        Tiles         `json:"tiles"`
	Layers       []Layer       `json:"layers"`
	LayerControl bool          `json:"layerControl"`
}

// Has reports whether the scene carries a layer of the given kind.
func (s Scene) Has(kind LayerKind) bool {
	for _, l := range s.Layers {
		if l.Kind == kind {
			return true
		}
	}
	return false
}

// Builder assembles a Scene. Layers may be added in any order; Build
// always stacks them boundary, markers, heat.
type Builder struct {
	center   domain.LatLng
	zoom     int
	tiles    Tiles
	boundary *Layer
	markers  *Layer
	heat     *Layer
}

// NewBuilder starts a scene on the default tiles.
func NewBuilder(center domain.LatLng, zoom int) *Builder {
	return &Builder{center: center, zoom: zoom, tiles: MustTiles(DefaultTileStyle)}
}

// Tiles selects the base tile set.
func (b *Builder) Tiles(t Tiles) *Builder {
	b.tiles = t
	return b
}

// Boundary adds an outline drawn with BoundaryStyle.
func (b *Builder) Boundary(bd *Boundary) *Builder {
	style := BoundaryStyle
	b.boundary = &Layer{Kind: LayerBoundary, Name: bd.Name, GeoJSON: bd.GeoJSON, Style: &style}
	return b
}

// Markers adds a marker group.
func (b *Builder) Markers(name string, markers []Marker) *Builder {
	b.markers = &Layer{Kind: LayerMarkers, Name: name, Markers: markers}
	return b
}

// Heat adds a heat layer of the given points.
func (b *Builder) Heat(name string, points []domain.GeoPoint, opts HeatOptions) *Builder {
	layer := &Layer{Kind: LayerHeat, Name: name, Heat: &opts, Points: make([][]float64, len(points))}
	for i, p := range points {
		if p.HasWeight {
			layer.Points[i] = []float64{p.Lat, p.Lon, p.Weight}
			if p.Weight > layer.Max {
				layer.Max = p.Weight
			}
		} else {
			layer.Points[i] = []float64{p.Lat, p.Lon}
		}
	}
	b.heat = layer
	return b
}

// Build returns the scene. The layer control is enabled only when more than
// one optional layer is present.
func (b *Builder) Build() Scene {
	s := Scene{Center: b.center, Zoom: b.zoom, Tiles: b.tiles, Layers: []Layer{}}
	for _, l := range []*Layer{b.boundary, b.markers, b.heat} {
		if l != nil {
			s.Layers = append(s.Layers, *l)
		}
	}
	s.LayerControl = len(s.Layers) > 1
	return s
}

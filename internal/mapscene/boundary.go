package mapscene

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/noise-dashboard/internal/domain"
)

// Boundary is a parsed boundary document ready to overlay on a map.
type Boundary struct {
	Name string
	// GeoJSON is the document normalised to a FeatureCollection.
	GeoJSON  json.RawMessage
	Features int
	Bound    orb.Bound
}

var errNoType = errors.New(`missing "type" member`)

// ParseBoundary parses a GeoJSON FeatureCollection, Feature or bare Geometry.
// Failures are reported as *domain.ParseError.
func ParseBoundary(name string, data []byte) (*Boundary, error) {
	fc, err := decodeCollection(data)
	if err != nil {
		return nil, &domain.ParseError{Source: "geojson", Err: err}
	}

	raw, err := json.Marshal(fc)
	if err != nil {
		return nil, &domain.ParseError{Source: "geojson", Err: err}
	}

	b := &Boundary{Name: name, GeoJSON: raw, Features: len(fc.Features)}
	first := true
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		if first {
			b.Bound = f.Geometry.Bound()
			first = false
			continue
		}
		b.Bound = b.Bound.Union(f.Geometry.Bound())
	}
	return b, nil
}

func decodeCollection(data []byte) (*geojson.FeatureCollection, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}

	switch head.Type {
	case "":
		return nil, errNoType
	case "FeatureCollection":
		return geojson.UnmarshalFeatureCollection(data)
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, err
		}
		fc := geojson.NewFeatureCollection()
		fc.Append(f)
		return fc, nil
	case "Point", "MultiPoint", "LineString", "MultiLineString", "Polygon", "MultiPolygon", "GeometryCollection":
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("geometry %q: %w", head.Type, err)
		}
		fc := geojson.NewFeatureCollection()
		fc.Append(geojson.NewFeature(g.Geometry()))
		return fc, nil
	default:
		return nil, fmt.Errorf("unsupported type %q", head.Type)
	}
}

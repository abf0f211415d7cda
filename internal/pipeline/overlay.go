package pipeline

import (
	"context"
	"strings"

	"github.com/couchcryptid/noise-dashboard/internal/domain"
	"github.com/couchcryptid/noise-dashboard/internal/mapscene"
)

// BoundarySource selects where the boundary outline comes from.
type BoundarySource string

const (
	BoundaryNone   BoundarySource = "none"
	BoundaryUpload BoundarySource = "upload"
	BoundaryURL    BoundarySource = "url"
)

// MapControls are the state map settings chosen in the page form.
type MapControls struct {
	Zoom           int
	Tiles          mapscene.TileStyle
	Markers        bool
	Heatmap        bool
	BoundarySource BoundarySource
	BoundaryURL    string
}

// DefaultMapControls is the state of the controls on first visit.
func DefaultMapControls() MapControls {
	return MapControls{
		Zoom:           mapscene.DefaultZoom,
		Tiles:          mapscene.DefaultTileStyle,
		Markers:        true,
		BoundarySource: BoundaryNone,
	}
}

// MapInput is one submission of the state map form.
type MapInput struct {
	Controls MapControls
	Boundary *Upload
	CSV      *Upload
}

// MapResult is the output of the state map pass.
type MapResult struct {
	Pass
	Controls MapControls
	Scene    mapscene.Scene
	Cities   *Preview
}

// Map runs the overlay flow: fixed state centre, optional boundary outline,
// optional city markers and an optional heat layer. The heat layer reads an
// uploaded CSV when one is given, matching column names case-insensitively,
// and falls back to the built-in city sample values otherwise.
func (p *Pipeline) Map(ctx context.Context, in MapInput) MapResult {
	res := MapResult{Pass: NewPass(), Controls: in.Controls, Cities: NewPreview(domain.CitiesTable(), 0)}

	tiles, ok := mapscene.LookupTiles(in.Controls.Tiles)
	if !ok {
		res.Notify(LevelWarning, "Unknown tile style %q; using %s.", in.Controls.Tiles, mapscene.DefaultTileStyle)
		tiles = mapscene.MustTiles(mapscene.DefaultTileStyle)
		res.Controls.Tiles = mapscene.DefaultTileStyle
	}
	b := mapscene.NewBuilder(domain.MaharashtraCenter, in.Controls.Zoom).Tiles(tiles)

	if bd := p.boundary(ctx, &res.Pass, in); bd != nil {
		b.Boundary(bd)
	}
	if in.Controls.Markers {
		b.Markers("Major cities", mapscene.CityMarkers())
	}
	if in.Controls.Heatmap {
		p.overlayHeat(&res.Pass, b, in.CSV)
	}

	res.Scene = b.Build()
	return res
}

func (p *Pipeline) boundary(ctx context.Context, pass *Pass, in MapInput) *mapscene.Boundary {
	switch in.Controls.BoundarySource {
	case BoundaryUpload:
		if in.Boundary == nil {
			return nil
		}
		bd, err := mapscene.ParseBoundary(in.Boundary.Name, in.Boundary.Data)
		if err != nil {
			pass.Notify(LevelError, "Failed to parse uploaded GeoJSON: %v", err)
			return nil
		}
		pass.Notify(LevelSuccess, "GeoJSON loaded (upload).")
		return bd

	case BoundaryURL:
		u := strings.TrimSpace(in.Controls.BoundaryURL)
		if u == "" {
			return nil
		}
		data, err := p.fetcher.Fetch(ctx, u)
		if err != nil {
			pass.Notify(LevelError, "Failed to fetch GeoJSON: %v", err)
			return nil
		}
		bd, err := mapscene.ParseBoundary(u, data)
		if err != nil {
			pass.Notify(LevelError, "Failed to parse GeoJSON from URL: %v", err)
			return nil
		}
		pass.Notify(LevelSuccess, "GeoJSON loaded (URL).")
		return bd
	}
	return nil
}

// overlayHeat draws the uploaded CSV as heat, or the city sample heat when
// there is no readable CSV.
func (p *Pipeline) overlayHeat(pass *Pass, b *mapscene.Builder, csv *Upload) {
	if csv == nil {
		sampleHeat(b)
		return
	}

	t, err := p.load(FlowOverlay, csv)
	if err != nil {
		pass.Notify(LevelError, "Failed to read CSV: %v", err)
		sampleHeat(b)
		return
	}
	pass.Notify(LevelSuccess, "CSV loaded for heatmap.")

	v := domain.Validate(t, domain.OverlayCoordinateColumns, domain.MatchFold)
	if !v.OK {
		p.metrics.Uploads.WithLabelValues(FlowOverlay, "schema_error").Inc()
		pass.Notify(LevelError, "No heatmap drawn: the CSV has no %s column.", strings.Join(v.Missing, " or "))
		return
	}

	cols := domain.GeoColumns{}
	cols.Lat, _ = domain.ResolveColumn(t, "latitude", domain.MatchFold)
	cols.Lon, _ = domain.ResolveColumn(t, "longitude", domain.MatchFold)
	if value, ok := domain.ResolveValueColumn(t); ok {
		cols.Value = value
	} else {
		pass.Notify(LevelInfo, "No value column (%s) found; heat shows point density only.", strings.Join(domain.ValueAliases, ", "))
	}

	agg, err := domain.Aggregate(t, cols, domain.MaharashtraCenter)
	if err != nil {
		p.metrics.Uploads.WithLabelValues(FlowOverlay, outcome(err)).Inc()
		pass.Notify(LevelError, "No heatmap drawn: %v", err)
		return
	}
	p.reportDropped(pass, FlowOverlay, agg)
	if len(agg.Points) == 0 {
		pass.Notify(LevelWarning, "No heatmap drawn: no rows have usable coordinates.")
		p.metrics.Uploads.WithLabelValues(FlowOverlay, "empty").Inc()
		return
	}

	b.Heat("Noise heat", agg.Points, mapscene.OverlayHeat)
	p.metrics.Uploads.WithLabelValues(FlowOverlay, "ok").Inc()
}

func sampleHeat(b *mapscene.Builder) {
	b.Heat("Sample noise heat", domain.CitySamplePoints(), mapscene.CitySampleHeat)
}

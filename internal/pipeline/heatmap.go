package pipeline

import (
	"context"
	"html/template"
	"strings"

	"github.com/couchcryptid/noise-dashboard/internal/chart"
	"github.com/couchcryptid/noise-dashboard/internal/domain"
	"github.com/couchcryptid/noise-dashboard/internal/mapscene"
)

const histogramBins = 10

// HeatmapResult is the output of the heatmap generator pass.
type HeatmapResult struct {
	Pass
	Preview *Preview
	Missing []string
	Scene   *mapscene.Scene
	Stats   *domain.ColumnStats
	// Histogram is an inline SVG of the noise level distribution.
	Histogram template.HTML
}

// Heatmap runs the strict upload flow: the file must carry latitude,
// longitude and noise_level under exactly those names. A nil upload yields an
// info notice and nothing else.
func (p *Pipeline) Heatmap(_ context.Context, up *Upload) HeatmapResult {
	res := HeatmapResult{Pass: NewPass()}
	required := strings.Join(domain.RequiredUploadColumns, ", ")
	if up == nil {
		res.Notify(LevelInfo, "Please upload a CSV file with columns: %s", required)
		return res
	}

	t, err := p.load(FlowHeatmap, up)
	if err != nil {
		res.Notify(LevelError, "Could not read %s: %v", up.Name, err)
		return res
	}
	res.Preview = NewPreview(t, PreviewRows)

	v := domain.Validate(t, domain.RequiredUploadColumns, domain.MatchExact)
	if !v.OK {
		p.metrics.Uploads.WithLabelValues(FlowHeatmap, "schema_error").Inc()
		res.Missing = v.Missing
		res.Notify(LevelError, "CSV must contain columns: %s (missing: %s)", required, strings.Join(v.Missing, ", "))
		return res
	}

	cols := domain.GeoColumns{Lat: "latitude", Lon: "longitude", Value: "noise_level"}
	agg, err := domain.Aggregate(t, cols, domain.MaharashtraCenter)
	if err != nil {
		p.metrics.Uploads.WithLabelValues(FlowHeatmap, outcome(err)).Inc()
		res.Notify(LevelError, "Cannot map %s: %v", up.Name, err)
		return res
	}
	p.reportDropped(&res.Pass, FlowHeatmap, agg)
	if agg.FallbackCenter {
		res.Notify(LevelWarning, "No rows have usable coordinates; the map is centred on Maharashtra.")
	}

	scene := mapscene.NewBuilder(agg.Center, mapscene.UploadZoom).
		Tiles(mapscene.MustTiles(mapscene.TileCartoDBPositron)).
		Heat("Noise heatmap", agg.Points, mapscene.UploadHeat).
		Build()
	res.Scene = &scene

	noise, _ := t.Column(cols.Value)
	values := noise.Numbers()
	if len(values) > 0 {
		st := domain.Stats(values)
		res.Stats = &st
		svg, err := chart.HistogramSVG(values, histogramBins, "Noise level distribution (dB)")
		if err != nil {
			p.logger.Warn("histogram render failed", "error", err)
			res.Notify(LevelWarning, "Could not draw the noise level histogram.")
		} else {
			res.Histogram = template.HTML(svg) //nolint:gosec // generated by go-chart, not user input
		}
	}

	p.metrics.Uploads.WithLabelValues(FlowHeatmap, "ok").Inc()
	return res
}

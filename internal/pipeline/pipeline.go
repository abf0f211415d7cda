// Package pipeline runs the render passes behind each dashboard page:
// read the upload, validate it, aggregate it and describe what to draw.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/noise-dashboard/internal/domain"
	"github.com/couchcryptid/noise-dashboard/internal/observability"
)

// Flow labels used for metrics and logs.
const (
	FlowHeatmap  = "heatmap"
	FlowOverlay  = "overlay"
	FlowDatasets = "datasets"
	FlowCities   = "cities"
)

// Level is the severity of a Notice.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a message shown inline on the page.
type Notice struct {
	Level Level
	Text  string
}

// Pass carries what every render pass reports besides its own output.
type Pass struct {
	RenderedAt time.Time
	Notices    []Notice
}

// NewPass starts a pass stamped with the current time.
func NewPass() Pass {
	return Pass{RenderedAt: domain.Now()}
}

// Notify appends a notice to the pass.
func (p *Pass) Notify(level Level, format string, args ...any) {
	p.Notices = append(p.Notices, Notice{Level: level, Text: fmt.Sprintf(format, args...)})
}

// Failed reports whether the pass raised an error notice.
func (p *Pass) Failed() bool {
	for _, n := range p.Notices {
		if n.Level == LevelError {
			return true
		}
	}
	return false
}

// Upload is a file submitted with the page form.
type Upload struct {
	Name string
	Data []byte
}

// Options configures a Pipeline.
type Options struct {
	MaxRows     int
	DatasetPath string
	AssetsDir   string
}

// Pipeline runs render passes. It holds no per-request state and is safe for
// concurrent use.
type Pipeline struct {
	fetcher domain.BoundaryFetcher
	logger  *slog.Logger
	metrics *observability.Metrics
	opts    Options
}

// New creates a Pipeline. fetcher retrieves boundary documents given by URL.
func New(fetcher domain.BoundaryFetcher, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	return &Pipeline{
		fetcher: fetcher,
		logger:  logger,
		metrics: metrics,
		opts:    opts,
	}
}

// CheckReadiness returns nil when the asset directory and, if configured, the
// city dataset are readable.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.opts.AssetsDir != "" {
		info, err := os.Stat(p.opts.AssetsDir)
		if err != nil {
			return fmt.Errorf("assets directory: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("assets directory: %s is not a directory", p.opts.AssetsDir)
		}
	}
	if p.opts.DatasetPath != "" {
		if _, err := os.Stat(p.opts.DatasetPath); err != nil {
			return fmt.Errorf("dataset: %w", err)
		}
	}
	return nil
}

// load parses an upload and records its outcome.
func (p *Pipeline) load(flow string, up *Upload) (*domain.Table, error) {
	p.metrics.UploadBytes.Observe(float64(len(up.Data)))
	t, err := domain.LoadCSV(bytes.NewReader(up.Data), domain.LoadOptions{MaxRows: p.opts.MaxRows})
	if err != nil {
		p.metrics.Uploads.WithLabelValues(flow, "parse_error").Inc()
		p.logger.Info("upload rejected", "flow", flow, "file", up.Name, "error", err)
		return nil, err
	}
	return t, nil
}

// reportDropped turns aggregation drop counts into notices and metrics.
func (p *Pipeline) reportDropped(pass *Pass, flow string, agg domain.Aggregation) {
	if agg.DroppedMissing > 0 {
		p.metrics.RowsDropped.WithLabelValues(flow, "missing").Add(float64(agg.DroppedMissing))
		pass.Notify(LevelWarning, "Skipped %d rows with missing values.", agg.DroppedMissing)
	}
	if agg.DroppedRange > 0 {
		p.metrics.RowsDropped.WithLabelValues(flow, "out_of_range").Add(float64(agg.DroppedRange))
		pass.Notify(LevelWarning, "Skipped %d rows with coordinates outside latitude [-90, 90] or longitude [-180, 180].", agg.DroppedRange)
	}
}

func outcome(err error) string {
	var se *domain.SchemaError
	if errors.As(err, &se) {
		return "schema_error"
	}
	return "invalid"
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/noise-dashboard/internal/chart"
	"github.com/couchcryptid/noise-dashboard/internal/domain"
)

// DatasetResult is the output of the dataset upload pass.
type DatasetResult struct {
	Pass
	Preview     *Preview
	Description *domain.Description
}

// Dataset previews an uploaded CSV in full and summarises its columns.
func (p *Pipeline) Dataset(_ context.Context, up *Upload) DatasetResult {
	res := DatasetResult{Pass: NewPass()}
	if up == nil {
		res.Notify(LevelInfo, "Upload a CSV file to preview and summarise it.")
		return res
	}

	t, err := p.load(FlowDatasets, up)
	if err != nil {
		res.Notify(LevelError, "Could not read %s: %v", up.Name, err)
		return res
	}
	p.metrics.Uploads.WithLabelValues(FlowDatasets, "ok").Inc()
	res.Notify(LevelSuccess, "File uploaded successfully!")

	res.Preview = NewPreview(t, 0)
	d := domain.Describe(t)
	res.Description = &d
	return res
}

// CityResult is the output of the cities page pass.
type CityResult struct {
	Pass
	Gallery []domain.GalleryCity
	City    *domain.GalleryCity
	Rows    *Preview
}

var errNoDataset = errors.New("no dataset configured")

// City shows the gallery and, when a city is selected, the rows of the
// configured dataset whose City column matches it case-insensitively.
func (p *Pipeline) City(_ context.Context, name string) CityResult {
	res := CityResult{Pass: NewPass(), Gallery: domain.Gallery}
	if name == "" {
		return res
	}

	city, ok := domain.LookupGalleryCity(name)
	if !ok {
		res.Notify(LevelError, "Unknown city %q.", name)
		return res
	}
	res.City = &city

	t, err := p.dataset()
	if errors.Is(err, errNoDataset) {
		res.Notify(LevelWarning, "No dataset configured; set DATASET_PATH to show city data.")
		return res
	}
	if err != nil {
		p.logger.Warn("dataset unavailable", "path", p.opts.DatasetPath, "error", err)
		res.Notify(LevelError, "Could not load the dataset: %v", err)
		return res
	}

	rows, err := t.FilterFold(domain.DatasetCityColumn, city.Name)
	if err != nil {
		res.Notify(LevelError, "Dataset has no %s column.", domain.DatasetCityColumn)
		return res
	}
	res.Notify(LevelInfo, "Showing %s Data...", city.Name)
	if rows.Len() == 0 {
		res.Notify(LevelWarning, "The dataset has no rows for %s.", city.Name)
	}
	res.Rows = NewPreview(rows, 0)
	return res
}

// dataset reads the configured city dataset. It is read on every pass.
func (p *Pipeline) dataset() (*domain.Table, error) {
	if p.opts.DatasetPath == "" {
		return nil, errNoDataset
	}
	f, err := os.Open(p.opts.DatasetPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return domain.LoadCSV(f, domain.LoadOptions{MaxRows: p.opts.MaxRows})
}

// ChartsResult is the output of the 2019 charts pass.
type ChartsResult struct {
	Pass
	Preview *Preview
}

// Charts prepares the 2019 survey page. The widgets themselves are served
// separately by ChartWidgets.
func (p *Pipeline) Charts(_ context.Context) ChartsResult {
	return ChartsResult{Pass: NewPass(), Preview: NewPreview(domain.Noise2019(), 0)}
}

// ChartWidgets writes the interactive chart page for the 2019 survey.
func (p *Pipeline) ChartWidgets(w io.Writer) error {
	panels, err := chart.Noise2019Panels()
	if err != nil {
		return fmt.Errorf("build chart panels: %w", err)
	}
	if err := chart.RenderPage(w, "Noise Charts 2019", panels); err != nil {
		p.logger.Error("chart render failed", "error", err)
		return err
	}
	return nil
}

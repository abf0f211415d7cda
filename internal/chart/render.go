package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/couchcryptid/noise-dashboard/internal/domain"
)

const (
	widgetWidth  = "1000px"
	widgetHeight = "460px"
	// bubbleMax is the diameter in pixels of the largest scatter marker.
	bubbleMax = 40
	pieOuter  = 70.0
)

// visualMapColors runs from quiet to loud.
var visualMapColors = []string{"#0d0887", "#7e03a8", "#cc4778", "#f89540", "#f0f921"}

// Panel pairs a chart spec with the table it reads.
type Panel struct {
	Spec  Spec
	Table *domain.Table
}

// Noise2019Panels returns the four panels of the 2019 survey page.
func Noise2019Panels() ([]Panel, error) {
	specs := Noise2019Specs()
	tables, err := Noise2019Tables()
	if err != nil {
		return nil, err
	}
	panels := make([]Panel, len(specs))
	for i := range specs {
		panels[i] = Panel{Spec: specs[i], Table: tables[i]}
	}
	return panels, nil
}

// RenderPage writes an HTML page holding one widget per panel. Panels are
// built independently: a panel that fails is left out and its error returned
// after the rest of the page is written.
func RenderPage(w io.Writer, title string, panels []Panel) error {
	page := components.NewPage()
	page.PageTitle = title
	page.SetLayout(components.PageFlexLayout)

	var errs []error
	for i, p := range panels {
		c, err := Build(fmt.Sprintf("chart-%d", i), p.Spec, p.Table)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s chart %q: %w", p.Spec.Kind, p.Spec.Title, err))
			continue
		}
		page.AddCharts(c)
	}
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render chart page: %w", err)
	}
	return errors.Join(errs...)
}

// Build turns one spec into a chart widget with a stable element id.
func Build(id string, spec Spec, t *domain.Table) (components.Charter, error) {
	var (
		c   components.Charter
		err error
	)
	switch spec.Kind {
	case KindLine:
		c, err = buildLine(id, spec, t)
	case KindBar:
		c, err = buildBar(id, spec, t)
	case KindPie:
		c, err = buildPie(id, spec, t)
	case KindScatter:
		c, err = buildScatter(id, spec, t)
	default:
		err = fmt.Errorf("unsupported chart kind %s", spec.Kind)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func globals(id string, spec Spec) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{ChartID: id, Width: widgetWidth, Height: widgetHeight}),
		charts.WithTitleOpts(opts.Title{Title: spec.Title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "30px"}),
	}
}

func buildLine(id string, spec Spec, t *domain.Table) (*charts.Line, error) {
	x, err := textColumn(t, spec.X)
	if err != nil {
		return nil, err
	}
	y, err := numberColumn(t, spec.Y)
	if err != nil {
		return nil, err
	}

	categories := distinct(x.Cells)
	var series []string
	var group *domain.Column
	if spec.Color != "" {
		if group, err = textColumn(t, spec.Color); err != nil {
			return nil, err
		}
		series = distinct(group.Cells)
	} else {
		series = []string{spec.Y}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(append(globals(id, spec),
		charts.WithXAxisOpts(opts.XAxis{Name: axisTitle(spec.XTitle, spec.X)}),
		charts.WithYAxisOpts(opts.YAxis{Name: axisTitle(spec.YTitle, spec.Y)}),
	)...)
	line.SetXAxis(categories)

	index := indexOf(categories)
	for _, name := range series {
		data := make([]opts.LineData, len(categories))
		for i := range data {
			data[i] = opts.LineData{Value: "-"}
		}
		for row := range t.Len() {
			if group != nil && group.Cells[row] != name {
				continue
			}
			if domain.IsMissing(x.Cells[row]) || y.Missing(row) {
				continue
			}
			data[index[x.Cells[row]]] = opts.LineData{Value: y.Values[row]}
		}
		line.AddSeries(name, data, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}))
	}
	return line, nil
}

func buildBar(id string, spec Spec, t *domain.Table) (*charts.Bar, error) {
	x, err := textColumn(t, spec.X)
	if err != nil {
		return nil, err
	}
	y, err := numberColumn(t, spec.Y)
	if err != nil {
		return nil, err
	}

	global := append(globals(id, spec),
		charts.WithXAxisOpts(opts.XAxis{Name: axisTitle(spec.XTitle, spec.X)}),
		charts.WithYAxisOpts(opts.YAxis{Name: axisTitle(spec.YTitle, spec.Y)}),
	)
	if spec.Color != "" {
		scale, err := numberColumn(t, spec.Color)
		if err != nil {
			return nil, err
		}
		st := domain.Stats(scale.Numbers())
		global = append(global, charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        float32(st.Min),
			Max:        float32(st.Max),
			InRange:    &opts.VisualMapInRange{Color: visualMapColors},
		}))
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(global...)
	categories := make([]string, 0, t.Len())
	data := make([]opts.BarData, 0, t.Len())
	for row := range t.Len() {
		if y.Missing(row) {
			continue
		}
		categories = append(categories, x.Cells[row])
		data = append(data, opts.BarData{Value: y.Values[row]})
	}
	bar.SetXAxis(categories)

	var series []charts.SeriesOpts
	if spec.Text != "" {
		series = append(series, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}))
	}
	bar.AddSeries(spec.Y, data, series...)
	return bar, nil
}

func buildPie(id string, spec Spec, t *domain.Table) (*charts.Pie, error) {
	names, err := textColumn(t, spec.X)
	if err != nil {
		return nil, err
	}
	values, err := numberColumn(t, spec.Y)
	if err != nil {
		return nil, err
	}

	data := make([]opts.PieData, 0, t.Len())
	for row := range t.Len() {
		if values.Missing(row) {
			continue
		}
		data = append(data, opts.PieData{Name: names.Cells[row], Value: values.Values[row]})
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(globals(id, spec)...)
	pie.AddSeries(spec.Y, data,
		charts.WithPieChartOpts(opts.PieChart{Radius: pieRadius(spec.Hole)}),
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}\n{d}%"}),
	)
	return pie, nil
}

// pieRadius converts a donut hole ratio into inner and outer radii.
func pieRadius(hole float64) []string {
	outer := strconv.FormatFloat(pieOuter, 'f', -1, 64) + "%"
	if hole <= 0 || hole >= 1 {
		return []string{"0%", outer}
	}
	inner := strconv.FormatFloat(math.Round(hole*pieOuter*10)/10, 'f', -1, 64) + "%"
	return []string{inner, outer}
}

func buildScatter(id string, spec Spec, t *domain.Table) (*charts.Scatter, error) {
	x, err := numberColumn(t, spec.X)
	if err != nil {
		return nil, err
	}
	y, err := numberColumn(t, spec.Y)
	if err != nil {
		return nil, err
	}
	var size, group, text *domain.Column
	if spec.Size != "" {
		if size, err = numberColumn(t, spec.Size); err != nil {
			return nil, err
		}
	}
	if spec.Color != "" {
		if group, err = textColumn(t, spec.Color); err != nil {
			return nil, err
		}
	}
	if spec.Text != "" {
		if text, err = textColumn(t, spec.Text); err != nil {
			return nil, err
		}
	}

	var maxSize float64
	if size != nil {
		maxSize = domain.Stats(size.Numbers()).Max
	}

	sc := charts.NewScatter()
	sc.SetGlobalOptions(append(globals(id, spec),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: axisTitle(spec.XTitle, spec.X), Min: "dataMin", Max: "dataMax"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: axisTitle(spec.YTitle, spec.Y), Min: "dataMin", Max: "dataMax"}),
	)...)

	order := []string{spec.Y}
	if group != nil {
		order = distinct(group.Cells)
	}
	points := make(map[string][]opts.ScatterData, len(order))
	for row := range t.Len() {
		if x.Missing(row) || y.Missing(row) || (size != nil && size.Missing(row)) {
			continue
		}
		key := spec.Y
		if group != nil {
			key = group.Cells[row]
		}
		d := opts.ScatterData{Value: []float64{x.Values[row], y.Values[row]}, SymbolSize: bubbleMax / 2}
		if size != nil {
			d.SymbolSize = bubbleSize(size.Values[row], maxSize)
		}
		if text != nil {
			d.Name = text.Cells[row]
		}
		points[key] = append(points[key], d)
	}

	for _, name := range order {
		var series []charts.SeriesOpts
		if text != nil {
			series = append(series, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top", Formatter: "{b}"}))
		}
		sc.AddSeries(name, points[name], series...)
	}
	return sc, nil
}

// bubbleSize scales marker area with v, so the diameter grows with its square root.
func bubbleSize(v, maxValue float64) int {
	if maxValue <= 0 || v <= 0 {
		return 1
	}
	d := int(math.Round(bubbleMax * math.Sqrt(v/maxValue)))
	if d < 1 {
		return 1
	}
	return d
}

func axisTitle(title, column string) string {
	if title != "" {
		return title
	}
	return column
}

func textColumn(t *domain.Table, name string) (*domain.Column, error) {
	col, ok := t.Column(name)
	if !ok {
		return nil, &domain.SchemaError{Missing: []string{name}, Required: []string{name}}
	}
	return col, nil
}

func numberColumn(t *domain.Table, name string) (*domain.Column, error) {
	col, err := textColumn(t, name)
	if err != nil {
		return nil, err
	}
	if col.Kind != domain.KindNumeric {
		return nil, fmt.Errorf("column %q is not numeric", name)
	}
	return col, nil
}

// distinct returns the non-missing values of cells in first-seen order.
func distinct(cells []string) []string {
	seen := make(map[string]bool, len(cells))
	var out []string
	for _, c := range cells {
		if domain.IsMissing(c) || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

func indexOf(values []string) map[string]int {
	idx := make(map[string]int, len(values))
	for i, v := range values {
		idx[v] = i
	}
	return idx
}

package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"math"
	"strconv"

	"github.com/couchcryptid/noise-dashboard/internal/domain"
	"github.com/couchcryptid/noise-dashboard/internal/pipeline"
)

// Page is one entry of the sidebar. Exactly one page renders per request.
type Page int

const (
	PageHome Page = iota
	PageMap
	PageHeatmap
	PageCharts
	PageCities
	PageDatasets
)

// Pages lists the sidebar entries in display order.
var Pages = []Page{PageHome, PageMap, PageHeatmap, PageCharts, PageCities, PageDatasets}

var pageInfo = map[Page]struct {
	key, title, path string
}{
	PageHome:     {"home", "Main Website", "/"},
	PageMap:      {"map", "Maharashtra Map", "/map"},
	PageHeatmap:  {"heatmap", "Noise Heatmap Generator", "/heatmap"},
	PageCharts:   {"charts", "Noise Charts 2019", "/charts"},
	PageCities:   {"cities", "Cities", "/cities"},
	PageDatasets: {"datasets", "Datasets", "/datasets"},
}

// String returns the page key used in metrics and template names.
func (p Page) String() string {
	if info, ok := pageInfo[p]; ok {
		return info.key
	}
	return fmt.Sprintf("page(%d)", int(p))
}

// Title is the sidebar label and heading.
func (p Page) Title() string { return pageInfo[p].title }

// Path is the route serving the page.
func (p Page) Path() string { return pageInfo[p].path }

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"dB":     func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) + " dB" },
	"num":    formatNumber,
	"notice": noticeClass,
	"stats":  statRows,
}

func formatNumber(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func noticeClass(l pipeline.Level) string {
	switch l {
	case pipeline.LevelSuccess:
		return "notice notice-success"
	case pipeline.LevelWarning:
		return "notice notice-warning"
	case pipeline.LevelError:
		return "notice notice-error"
	default:
		return "notice notice-info"
	}
}

// statRow is one line of a describe table: a statistic across all columns.
type statRow struct {
	Stat   string
	Values []string
}

// statTable is a describe summary laid out for display.
type statTable struct {
	Columns []string
	Rows    []statRow
}

// statRows transposes a description so statistics run down and columns across.
func statRows(d *domain.Description) statTable {
	var t statTable
	if len(d.Numeric) > 0 {
		headers := domain.NumericSummary{}.Headers()
		t.Rows = make([]statRow, len(headers))
		for i, h := range headers {
			t.Rows[i].Stat = h
		}
		for _, s := range d.Numeric {
			t.Columns = append(t.Columns, s.Name)
			for i, v := range s.Values() {
				t.Rows[i].Values = append(t.Rows[i].Values, formatNumber(v))
			}
		}
		return t
	}
	t.Rows = []statRow{{Stat: "count"}, {Stat: "unique"}, {Stat: "top"}, {Stat: "freq"}}
	for _, s := range d.Text {
		t.Columns = append(t.Columns, s.Name)
		t.Rows[0].Values = append(t.Rows[0].Values, strconv.Itoa(s.Count))
		t.Rows[1].Values = append(t.Rows[1].Values, strconv.Itoa(s.Unique))
		t.Rows[2].Values = append(t.Rows[2].Values, s.Top)
		t.Rows[3].Values = append(t.Rows[3].Values, strconv.Itoa(s.Freq))
	}
	return t
}

type pageTemplates struct {
	byPage map[Page]*template.Template
}

// mustParsePages parses the layout and partials once per page so every page
// can define its own content block.
func mustParsePages() *pageTemplates {
	pt := &pageTemplates{byPage: make(map[Page]*template.Template, len(Pages))}
	for _, p := range Pages {
		pt.byPage[p] = template.Must(template.New("layout.html").Funcs(templateFuncs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/partials.html",
			"templates/"+p.String()+".html",
		))
	}
	return pt
}

// view is the data every page template receives.
type view struct {
	Page  Page
	Pages []Page
	Data  any
}

func (pt *pageTemplates) render(p Page, data any) ([]byte, error) {
	tmpl, ok := pt.byPage[p]
	if !ok {
		return nil, fmt.Errorf("no template for page %s", p)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", view{Page: p, Pages: Pages, Data: data}); err != nil {
		return nil, fmt.Errorf("render %s: %w", p, err)
	}
	return buf.Bytes(), nil
}

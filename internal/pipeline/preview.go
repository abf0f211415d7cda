package pipeline

import "github.com/couchcryptid/noise-dashboard/internal/domain"

// PreviewRows is how many rows an upload preview shows.
const PreviewRows = 5

// Preview is a table excerpt ready to render.
type Preview struct {
	Columns []string
	Rows    [][]string
	Total   int
}

// NewPreview takes the first n rows of t; n <= 0 keeps every row.
func NewPreview(t *domain.Table, n int) *Preview {
	return &Preview{Columns: t.Names(), Rows: t.Head(n), Total: t.Len()}
}

// Truncated reports whether rows were left out of the preview.
func (p *Preview) Truncated() bool {
	return len(p.Rows) < p.Total
}

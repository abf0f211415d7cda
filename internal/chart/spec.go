// Package chart renders tables as interactive chart widgets and static figures.
package chart

import (
	"fmt"

	"github.com/couchcryptid/noise-dashboard/internal/domain"
)

// Kind is a chart family.
type Kind int

const (
	KindLine Kind = iota
	KindBar
	KindPie
	KindScatter
)

func (k Kind) String() string {
	switch k {
	case KindLine:
		return "line"
	case KindBar:
		return "bar"
	case KindPie:
		return "pie"
	case KindScatter:
		return "scatter"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Spec describes one chart over a table. Field meaning depends on Kind:
//
//	line:    X category, Y value, Color splits series
//	bar:     X category, Y value with a colour scale and value labels
//	pie:     X slice name, Y slice value, Hole is the donut ratio
//	scatter: X and Y numeric, Size scales markers, Color splits series, Text labels points
type Spec struct {
	Kind   Kind
	Title  string
	X      string
	Y      string
	Color  string
	Size   string
	Text   string
	XTitle string
	YTitle string
	Hole   float64
}

// Melt reshapes t from wide to long format. For each value column in turn it
// emits one row per input row: id, the value column's name, and its cell.
func Melt(t *domain.Table, idVar string, valueVars []string, varName, valueName string) (*domain.Table, error) {
	id, ok := t.Column(idVar)
	if !ok {
		return nil, &domain.SchemaError{Missing: []string{idVar}, Required: append([]string{idVar}, valueVars...)}
	}
	values := make([]*domain.Column, len(valueVars))
	var missing []string
	for i, name := range valueVars {
		if values[i], ok = t.Column(name); !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.SchemaError{Missing: missing, Required: append([]string{idVar}, valueVars...)}
	}

	records := make([][]string, 0, t.Len()*len(valueVars))
	for i, col := range values {
		for row := range t.Len() {
			records = append(records, []string{id.Cells[row], valueVars[i], col.Cells[row]})
		}
	}
	return domain.NewTable([]string{idVar, varName, valueName}, records), nil
}

// Noise2019Specs are the four charts of the 2019 city survey page.
func Noise2019Specs() []Spec {
	return []Spec{
		{
			Kind:   KindLine,
			Title:  "Average vs Peak Noise Levels by City (2019)",
			X:      "City",
			Y:      "dB Level",
			Color:  "Noise Type",
			YTitle: "Noise Level (dB)",
		},
		{
			Kind:   KindBar,
			Title:  "Average Noise Levels by City (2019)",
			X:      "City",
			Y:      "Average_dB",
			Color:  "Average_dB",
			Text:   "Average_dB",
			YTitle: "Average Noise Level (dB)",
		},
		{
			Kind:  KindPie,
			Title: "City-wise Contribution (2019)",
			X:     "City",
			Y:     "Average_dB",
			Hole:  0.3,
		},
		{
			Kind:   KindScatter,
			Title:  "Average vs Peak Noise Levels",
			X:      "Average_dB",
			Y:      "Peak_dB",
			Size:   "Peak_dB",
			Color:  "City",
			Text:   "City",
			XTitle: "Average Noise Level (dB)",
			YTitle: "Peak Noise Level (dB)",
		},
	}
}

// Noise2019Tables returns the table each of Noise2019Specs draws from, in the same order.
// The line chart reads the melted form.
func Noise2019Tables() ([]*domain.Table, error) {
	wide := domain.Noise2019()
	long, err := Melt(wide, "City", []string{"Average_dB", "Peak_dB"}, "Noise Type", "dB Level")
	if err != nil {
		return nil, err
	}
	return []*domain.Table{long, wide, wide, wide}, nil
}

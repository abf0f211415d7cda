package domain

import "strings"

// MatchMode selects how required column names are compared with a table header.
type MatchMode int

const (
	// MatchExact compares names byte for byte. Used by the heatmap generator upload.
	MatchExact MatchMode = iota
	// MatchFold compares names case-insensitively. Used by the map overlay upload.
	MatchFold
)

func (m MatchMode) String() string {
	if m == MatchFold {
		return "fold"
	}
	return "exact"
}

// RequiredUploadColumns are the columns the heatmap generator insists on.
var RequiredUploadColumns = []string{"latitude", "longitude", "noise_level"}

// OverlayCoordinateColumns are the columns the map overlay needs to place points.
var OverlayCoordinateColumns = []string{"latitude", "longitude"}

// ValueAliases are the accepted intensity column names, highest priority first.
var ValueAliases = []string{"value", "noise", "noise_level", "average_db", "avg_db"}

// ValidationResult is the outcome of checking a table against required columns.
type ValidationResult struct {
	OK       bool
	Missing  []string
	Required []string
}

// Err returns a SchemaError describing the missing columns, or nil when validation passed.
func (r ValidationResult) Err() error {
	if r.OK {
		return nil
	}
	return &SchemaError{Missing: r.Missing, Required: r.Required}
}

// Validate checks that every required column is present under the given mode.
// Missing names are reported in the order they were required.
func Validate(t *Table, required []string, mode MatchMode) ValidationResult {
	missing := []string{}
	for _, name := range required {
		if _, ok := ResolveColumn(t, name, mode); !ok {
			missing = append(missing, name)
		}
	}
	return ValidationResult{
		OK:       len(missing) == 0,
		Missing:  missing,
		Required: required,
	}
}

// ResolveColumn returns the header name matching name under mode.
// With MatchFold the first matching column in file order wins.
func ResolveColumn(t *Table, name string, mode MatchMode) (string, bool) {
	for i := range t.Columns {
		col := t.Columns[i].Name
		switch mode {
		case MatchFold:
			if strings.EqualFold(col, name) {
				return col, true
			}
		default:
			if col == name {
				return col, true
			}
		}
	}
	return "", false
}

// ResolveValueColumn picks the intensity column: the first alias in ValueAliases
// present in the table, compared case-insensitively.
func ResolveValueColumn(t *Table) (string, bool) {
	for _, alias := range ValueAliases {
		if col, ok := ResolveColumn(t, alias, MatchFold); ok {
			return col, true
		}
	}
	return "", false
}

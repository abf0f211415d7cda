package domain

import (
	"fmt"
	"strings"
)

// ParseError reports a CSV or GeoJSON document that could not be parsed.
type ParseError struct {
	Source string // "csv" or "geojson"
	Line   int    // 1-based line, 0 when unknown
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s: line %d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SchemaError reports required columns absent from a table.
type SchemaError struct {
	Missing  []string
	Required []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// FetchError reports a failed retrieval of a remote boundary document.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

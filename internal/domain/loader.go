package domain

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// LoadOptions bounds how much of an upload LoadCSV accepts.
type LoadOptions struct {
	// MaxRows limits the number of data rows; 0 means unlimited.
	MaxRows int
}

var errNoColumns = errors.New("no columns to parse from file")

// LoadCSV parses a CSV byte stream into a Table. Column names are kept exactly
// as written, apart from a leading UTF-8 byte order mark. Duplicate names get a
// ".N" suffix. Rows shorter than the header are padded with missing cells;
// longer rows are rejected.
func LoadCSV(r io.Reader, opts LoadOptions) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ParseError{Source: "csv", Err: errNoColumns}
	}
	if err != nil {
		return nil, csvParseError(err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	if len(header) == 1 && strings.TrimSpace(header[0]) == "" {
		return nil, &ParseError{Source: "csv", Line: 1, Err: errNoColumns}
	}
	header = dedupeHeader(header)

	var records [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, csvParseError(err)
		}
		if len(rec) > len(header) {
			line, _ := cr.FieldPos(0)
			return nil, &ParseError{
				Source: "csv",
				Line:   line,
				Err:    fmt.Errorf("expected %d fields, saw %d", len(header), len(rec)),
			}
		}
		if opts.MaxRows > 0 && len(records) == opts.MaxRows {
			return nil, &ParseError{Source: "csv", Err: fmt.Errorf("more than %d data rows", opts.MaxRows)}
		}
		records = append(records, rec)
	}

	return NewTable(header, records), nil
}

func csvParseError(err error) *ParseError {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &ParseError{Source: "csv", Line: pe.Line, Err: pe.Err}
	}
	return &ParseError{Source: "csv", Err: err}
}

// dedupeHeader renames repeated column names to name.1, name.2, ...
func dedupeHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	taken := make(map[string]bool, len(header))
	for _, h := range header {
		taken[h] = true
	}
	for i, h := range header {
		n, dup := seen[h]
		seen[h] = n + 1
		if !dup {
			out[i] = h
			continue
		}
		name := fmt.Sprintf("%s.%d", h, n)
		for taken[name] {
			n++
			name = fmt.Sprintf("%s.%d", h, n)
		}
		seen[h] = n + 1
		taken[name] = true
		out[i] = name
	}
	return out
}

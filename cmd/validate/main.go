// Command validate checks noise reading CSVs against what the dashboard
// accepts: it loads each file, applies the strict heatmap schema and the
// relaxed overlay schema, and aggregates the coordinates, reporting PASS or
// FAIL per phase.
//
// Usage:
//
//	go run ./cmd/validate data/mock/noise_readings.csv [more.csv ...]
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/couchcryptid/noise-dashboard/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
	notes  []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) notef(format string, args ...any) {
	p.notes = append(p.notes, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	maxRows := flag.Int("max-rows", 200000, "row limit applied when loading (0 disables)")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	code := 0
	for _, path := range flag.Args() {
		if c := run(path, *maxRows); c != 0 {
			code = c
		}
	}
	os.Exit(code)
}

func run(path string, maxRows int) int {
	fmt.Printf("=== %s ===\n", path)

	load := &phase{name: "Load CSV"}
	t := loadFile(load, path, maxRows)

	var phases []*phase
	phases = append(phases, load)
	if t != nil {
		phases = append(phases,
			validateStrict(t),
			validateOverlay(t),
			validateAggregation(t),
		)
	}

	allPassed := report(phases)
	if t != nil {
		fmt.Printf("Rows: %d, columns: %s\n", t.Len(), strings.Join(t.Names(), ", "))
	}
	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func report(phases []*phase) bool {
	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
		for _, n := range p.notes {
			fmt.Printf("      %s\n", n)
		}
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}
	return allPassed
}

func loadFile(p *phase, path string, maxRows int) *domain.Table {
	f, err := os.Open(path)
	if err != nil {
		p.errorf("open: %v", err)
		return nil
	}
	defer f.Close()

	t, err := domain.LoadCSV(f, domain.LoadOptions{MaxRows: maxRows})
	if err != nil {
		p.errorf("%v", err)
		return nil
	}
	if t.Len() == 0 {
		p.errorf("no data rows")
	}
	return t
}

// validateStrict applies the heatmap generator's exact-name check.
func validateStrict(t *domain.Table) *phase {
	p := &phase{name: "Heatmap schema (exact names)"}
	v := domain.Validate(t, domain.RequiredUploadColumns, domain.MatchExact)
	if !v.OK {
		p.errorf("missing columns: %s", strings.Join(v.Missing, ", "))
	}
	return p
}

// validateOverlay applies the state map's case-insensitive check and reports
// which column would weight the heat layer.
func validateOverlay(t *domain.Table) *phase {
	p := &phase{name: "Overlay schema (case-insensitive)"}
	v := domain.Validate(t, domain.OverlayCoordinateColumns, domain.MatchFold)
	if !v.OK {
		p.errorf("missing columns: %s", strings.Join(v.Missing, ", "))
		return p
	}
	if value, ok := domain.ResolveValueColumn(t); ok {
		p.notef("value column: %s", value)
	} else {
		p.notef("no value column; heat would show density only")
	}
	return p
}

// validateAggregation runs the overlay aggregation and fails on any dropped row.
func validateAggregation(t *domain.Table) *phase {
	p := &phase{name: "Coordinate aggregation"}
	lat, okLat := domain.ResolveColumn(t, "latitude", domain.MatchFold)
	lon, okLon := domain.ResolveColumn(t, "longitude", domain.MatchFold)
	if !okLat || !okLon {
		p.errorf("no coordinate columns to aggregate")
		return p
	}
	cols := domain.GeoColumns{Lat: lat, Lon: lon}
	cols.Value, _ = domain.ResolveValueColumn(t)

	agg, err := domain.Aggregate(t, cols, domain.MaharashtraCenter)
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	if agg.DroppedMissing > 0 {
		p.errorf("%d rows have missing values", agg.DroppedMissing)
	}
	if agg.DroppedRange > 0 {
		p.errorf("%d rows have out-of-range coordinates", agg.DroppedRange)
	}
	if agg.FallbackCenter {
		p.errorf("no usable rows")
		return p
	}
	p.notef("%d points, centre %.4f, %.4f", len(agg.Points), agg.Center.Lat, agg.Center.Lon)
	return p
}

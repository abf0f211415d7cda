// Command genmock writes a deterministic sample of noise readings scattered
// around the reference cities. The output works both as a heatmap upload and
// as the DATASET_PATH of the cities page.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock/noise_readings.csv -per-city 50
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"

	"github.com/couchcryptid/noise-dashboard/internal/domain"
)

// Readings spread this far (degrees) around each city centre.
const spread = 0.08

// reading is one generated row.
type reading struct {
	city  string
	lat   float64
	lon   float64
	noise float64
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the readings CSV")
	perCity := flag.Int("per-city", 50, "readings generated per city")
	seed := flag.Uint64("seed", 2019, "random seed")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if *perCity <= 0 {
		return fmt.Errorf("-per-city must be positive, got %d", *perCity)
	}

	readings := generate(rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15)), *perCity)
	if err := writeCSV(*out, readings); err != nil {
		return fmt.Errorf("writing readings: %w", err)
	}
	log.Printf("wrote %d readings: %s", len(readings), *out)

	printStats(readings)
	return nil
}

// generate draws readings around every reference city. Noise levels are
// normally distributed around the city's sample value.
func generate(r *rand.Rand, perCity int) []reading {
	readings := make([]reading, 0, perCity*len(domain.MaharashtraCities))
	for _, c := range domain.MaharashtraCities {
		for range perCity {
			readings = append(readings, reading{
				city:  c.Name,
				lat:   c.Lat + (r.Float64()*2-1)*spread,
				lon:   c.Lon + (r.Float64()*2-1)*spread,
				noise: math.Max(30, c.SampleValue+r.NormFloat64()*4),
			})
		}
	}
	return readings
}

func writeCSV(path string, readings []reading) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{domain.DatasetCityColumn, "latitude", "longitude", "noise_level"}); err != nil {
		return err
	}
	for _, rd := range readings {
		if err := w.Write([]string{
			rd.city,
			strconv.FormatFloat(rd.lat, 'f', 5, 64),
			strconv.FormatFloat(rd.lon, 'f', 5, 64),
			strconv.FormatFloat(rd.noise, 'f', 1, 64),
		}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func printStats(readings []reading) {
	byCity := map[string][]float64{}
	for _, rd := range readings {
		byCity[rd.city] = append(byCity[rd.city], rd.noise)
	}

	fmt.Println()
	fmt.Printf("  %-12s %6s %8s %8s %8s\n", "City", "Rows", "Mean", "Min", "Max")
	for _, c := range domain.MaharashtraCities {
		st := domain.Stats(byCity[c.Name])
		fmt.Printf("  %-12s %6d %8.2f %8.2f %8.2f\n", c.Name, st.Count, st.Mean, st.Min, st.Max)
	}
}

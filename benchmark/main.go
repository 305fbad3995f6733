// Package main provides a performance benchmarking tool for the finmap CLI.
// It generates synthetic region grids of increasing size, renders each one
// from the metrics file and from a SQLite metrics store, running each test
// multiple times, treating the first successful run as cold and averaging the rest as warm,
// generating CSV output for performance analysis and documentation.
//
// Prerequisites:
// - finmap binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where datasets and maps are generated (default: a temp dir)
package main

import (
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// BenchmarkResult holds the result of a benchmark run (cold run and average of warm runs).
type BenchmarkResult struct {
	Dataset  string
	Source   string
	Regions  int
	ColdTime string
	WarmTime string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir  string
	Timeout  time.Duration
	Workers  int
	Runs     int
	Years    int
	Datasets map[string]int // name -> grid side (regions = side*side)
	Order    []string
}

// Dataset is a generated geometry and metrics pair.
type Dataset struct {
	Name     string
	Regions  int
	Geometry string
	Metrics  string
}

func main() {
	workDir := ""
	switch len(os.Args) {
	case 1:
		dir, err := os.MkdirTemp("", "finmap-bench-*")
		if err != nil {
			fmt.Printf("Failed to create work dir: %v\n", err)
			os.Exit(1)
		}
		workDir = dir
	case 2:
		workDir = os.Args[1]
	default:
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir: workDir,
		Timeout: 5 * time.Minute,
		Workers: 8,
		Runs:    4,
		Years:   10,
		Datasets: map[string]int{
			"small":  4,
			"medium": 12,
			"large":  32,
		},
		Order: []string{"small", "medium", "large"},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the finmap binary exists and the work dir is usable
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("finmap"); err != nil {
		return fmt.Errorf("finmap binary not found in PATH")
	}
	return os.MkdirAll(config.WorkDir, 0o755)
}

// runBenchmarks executes all benchmark tests across configured datasets
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d datasets, %v timeout, %d workers, %d runs\n",
		len(config.Order), config.Timeout, config.Workers, config.Runs)

	for _, name := range config.Order {
		ds, err := generateDataset(config.WorkDir, name, config.Datasets[name], config.Years)
		if err != nil {
			fmt.Printf("Failed to generate %s dataset: %v\n", name, err)
			continue
		}
		fmt.Printf("Benchmarking %s (%d regions)\n", name, ds.Regions)

		results = append(results, runBenchmarkSuite(config, ds, "file", nil))

		dbPath := filepath.Join(config.WorkDir, name+".db")
		storeArgs := []string{"--metrics-backend", "sqlite", "--metrics-db-connect", dbPath}
		importArgs := append([]string{"metrics", "import", ds.Metrics, "--replace"}, storeArgs...)
		if output, err := exec.Command("finmap", importArgs...).CombinedOutput(); err != nil {
			fmt.Printf("Warning: failed to import %s: %v\nOutput: %s\n", name, err, string(output))
			continue
		}
		results = append(results, runBenchmarkSuite(config, ds, "sqlite", storeArgs))
	}

	return results
}

// runBenchmarkSuite renders one dataset repeatedly from one metrics source
func runBenchmarkSuite(config BenchmarkConfig, ds Dataset, source string, extraArgs []string) BenchmarkResult {
	fmt.Printf("  %s source (%d runs)\n", source, config.Runs)

	coldTime, warmTimes := runBenchmark(config, ds, extraArgs)

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}
	warmAvg := "TIMEOUT"
	if len(warmTimes) > 0 {
		var sum float64
		for _, t := range warmTimes {
			sum += t
		}
		warmAvg = fmt.Sprintf("%.3fs", sum/float64(len(warmTimes)))
	}

	fmt.Printf("  Cold time: %s, Warm average: %s\n", coldTimeStr, warmAvg)

	return BenchmarkResult{
		Dataset:  ds.Name,
		Source:   source,
		Regions:  ds.Regions,
		ColdTime: coldTimeStr,
		WarmTime: warmAvg,
	}
}

// runBenchmark executes finmap render multiple times and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, ds Dataset, extraArgs []string) (coldTime float64, warmTimes []float64) {
	args := []string{
		"render",
		"--geometry", ds.Geometry,
		"--metrics", ds.Metrics,
		"--output", filepath.Join(config.WorkDir, ds.Name+".html"),
		"--workers", strconv.Itoa(config.Workers),
	}
	args = append(args, extraArgs...)

	var times []float64
	for run := 1; run <= config.Runs; run++ {
		start := time.Now()

		cmd := exec.Command("finmap", args...)

		done := make(chan bool)
		var cmdErr error

		go func() {
			_, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
			<-done
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// generateDataset writes a side x side grid of square regions and yearly metrics for each
func generateDataset(dir, name string, side, years int) (Dataset, error) {
	ds := Dataset{
		Name:     name,
		Regions:  side * side,
		Geometry: filepath.Join(dir, name+".geojson"),
		Metrics:  filepath.Join(dir, name+".csv"),
	}

	rng := rand.New(rand.NewPCG(uint64(side), uint64(years)))
	fc := &geojson.FeatureCollection{}

	metricsFile, err := os.Create(ds.Metrics)
	if err != nil {
		return ds, err
	}
	defer func() { _ = metricsFile.Close() }()

	writer := csv.NewWriter(metricsFile)
	if err := writer.Write([]string{"Region", "Year", "Investment", "Income"}); err != nil {
		return ds, fmt.Errorf("failed to write CSV header: %w", err)
	}

	const cell = 0.5
	for row := range side {
		for col := range side {
			regionName := fmt.Sprintf("R%03d-%03d", row, col)
			lon, lat := -120+float64(col)*cell, 45+float64(row)*cell
			polygon, err := geom.NewPolygon(geom.XY).SetCoords([][]geom.Coord{{
				{lon, lat}, {lon + cell, lat}, {lon + cell, lat + cell}, {lon, lat + cell}, {lon, lat},
			}})
			if err != nil {
				return ds, err
			}
			fc.Features = append(fc.Features, &geojson.Feature{
				Geometry:   polygon,
				Properties: map[string]any{"name": regionName},
			})

			for y := range years {
				investment := 1000 + rng.Float64()*9000
				income := 500 + rng.Float64()*4500
				record := []string{
					regionName,
					strconv.Itoa(2010 + y),
					strconv.FormatFloat(investment, 'f', 2, 64),
					strconv.FormatFloat(income, 'f', 2, 64),
				}
				if err := writer.Write(record); err != nil {
					return ds, fmt.Errorf("failed to write CSV record: %w", err)
				}
			}
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return ds, err
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return ds, err
	}
	return ds, os.WriteFile(ds.Geometry, data, 0o644)
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("finmap_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"dataset", "source", "regions", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		record := []string{result.Dataset, result.Source, strconv.Itoa(result.Regions), result.ColdTime, result.WarmTime}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, source := range []string{"file", "sqlite"} {
		fmt.Printf("Source %s:\n", source)
		for _, result := range results {
			if result.Source == source {
				fmt.Printf("  %-8s (%5d regions): Cold: %s, Warm: %s\n", result.Dataset, result.Regions, result.ColdTime, result.WarmTime)
			}
		}
	}
	fmt.Printf("Benchmark script completed successfully\n")
}

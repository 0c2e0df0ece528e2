// Package main benchmarks headless simulation throughput across several
// seeds and reports tick-time statistics.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/nebula/config"
	"github.com/pthm-cable/nebula/game"
)

// seedResult holds measurements for one benchmark run.
type seedResult struct {
	seed        int64
	ticks       int
	wall        time.Duration
	tickSeconds []float64
	liveAtEnd   int
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	ticks := flag.Int("ticks", 6000, "Simulation ticks per run")
	seeds := flag.Int("seeds", 3, "Number of seeded runs")
	stepsPerUpdate := flag.Int("steps-per-update", 4, "Simulation ticks per update call")
	outputDir := flag.String("output", "", "Output directory for per-run CSV (empty = stdout only)")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if *outputDir != "" {
		if err := os.MkdirAll(*outputDir, 0755); err != nil {
			log.Fatalf("failed to create output directory: %v", err)
		}
	}

	results := make([]seedResult, 0, *seeds)
	for i := 0; i < *seeds; i++ {
		seed := int64(i*1000 + 42)
		fmt.Printf("Run %d/%d (seed %d): ", i+1, *seeds, seed)
		res := runSeed(seed, *ticks, *stepsPerUpdate)
		results = append(results, res)
		fmt.Printf("%d ticks in %s (%.0f ticks/s, %d live at end)\n",
			res.ticks, res.wall.Round(time.Millisecond),
			float64(res.ticks)/res.wall.Seconds(), res.liveAtEnd)
	}

	printSummary(results)

	if *outputDir != "" {
		if err := writeCSV(filepath.Join(*outputDir, "bench.csv"), results); err != nil {
			log.Fatalf("failed to write results: %v", err)
		}
		fmt.Printf("\nPer-tick timings written to %s\n", filepath.Join(*outputDir, "bench.csv"))
	}
}

// runSeed runs one headless simulation and records per-update timings.
func runSeed(seed int64, ticks, stepsPerUpdate int) seedResult {
	g := game.NewGameWithOptions(game.Options{
		Seed:           seed,
		Headless:       true,
		StepsPerUpdate: stepsPerUpdate,
	})
	defer g.Unload()

	res := seedResult{seed: seed}
	start := time.Now()

	for int(g.Tick()) < ticks {
		t0 := time.Now()
		g.UpdateHeadless()
		perTick := time.Since(t0).Seconds() / float64(stepsPerUpdate)
		for s := 0; s < stepsPerUpdate; s++ {
			res.tickSeconds = append(res.tickSeconds, perTick)
		}
	}

	res.wall = time.Since(start)
	res.ticks = int(g.Tick())
	res.liveAtEnd = g.Group().LiveCount()
	return res
}

// printSummary reports aggregate tick-time statistics across all runs.
func printSummary(results []seedResult) {
	var all []float64
	for _, r := range results {
		all = append(all, r.tickSeconds...)
	}
	if len(all) == 0 {
		return
	}
	sort.Float64s(all)

	mean := stat.Mean(all, nil)
	std := stat.StdDev(all, nil)
	p50 := stat.Quantile(0.50, stat.Empirical, all, nil)
	p95 := stat.Quantile(0.95, stat.Empirical, all, nil)
	p99 := stat.Quantile(0.99, stat.Empirical, all, nil)

	fmt.Printf("\nTick time over %d ticks (%d runs):\n", len(all), len(results))
	fmt.Printf("  mean   %s\n", seconds(mean))
	fmt.Printf("  stddev %s\n", seconds(std))
	fmt.Printf("  p50    %s\n", seconds(p50))
	fmt.Printf("  p95    %s\n", seconds(p95))
	fmt.Printf("  p99    %s\n", seconds(p99))
}

func seconds(s float64) string {
	return time.Duration(s * float64(time.Second)).Round(time.Microsecond).String()
}

// writeCSV dumps every per-tick timing with its seed.
func writeCSV(path string, results []seedResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"seed", "tick", "tick_seconds"}); err != nil {
		return err
	}
	for _, r := range results {
		for i, s := range r.tickSeconds {
			row := []string{
				strconv.FormatInt(r.seed, 10),
				strconv.Itoa(i),
				strconv.FormatFloat(s, 'f', 9, 64),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	return w.Error()
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/noah-isme/ra-lab-allocator/internal/allocation"
	"github.com/noah-isme/ra-lab-allocator/internal/ingest"
	"github.com/noah-isme/ra-lab-allocator/internal/models"
)

type output struct {
	Allocations     []models.Allocation `json:"allocations"`
	UnallocatedLabs []models.Allocation `json:"unallocatedLabs"`
	Seed            uint64              `json:"seed"`
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "allocate:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("allocate", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		coursesPath string
		rasPath     string
		slotMapPath string
		outPath     string
		labTypes    string
		seed        uint64
		workers     int
		minCourses  int
		maxCourses  int
		verbose     bool
	)
	fs.StringVar(&coursesPath, "courses", "", "course catalogue CSV")
	fs.StringVar(&rasPath, "ras", "", "assistant roster CSV")
	fs.StringVar(&slotMapPath, "slot-map", "", "slot map file (.csv or .yaml); built-in timetable when empty")
	fs.StringVarP(&outPath, "out", "o", "", "write JSON here instead of stdout")
	fs.StringVar(&labTypes, "lab-types", strings.Join(allocation.DefaultLabTypes, ","), "comma separated course types treated as labs")
	fs.Uint64Var(&seed, "seed", 0, "run seed; drawn at random when unset")
	fs.IntVar(&workers, "workers", 0, "concurrent workers; GOMAXPROCS when zero")
	fs.IntVar(&minCourses, "min-courses", allocation.MinCourses, "fewest distinct courses per assistant")
	fs.IntVar(&maxCourses, "max-courses", allocation.MaxCourses, "most distinct courses per assistant")
	fs.BoolVarP(&verbose, "verbose", "v", false, "log run details")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if coursesPath == "" || rasPath == "" {
		return fmt.Errorf("--courses and --ras are required")
	}

	logr := zap.NewNop()
	if verbose {
		cfg := zap.NewDevelopmentConfig()
		cfg.OutputPaths = []string{"stderr"}
		built, err := cfg.Build()
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logr = built
		defer logr.Sync() //nolint:errcheck
	}

	courses, err := ingest.LoadCourses(coursesPath)
	if err != nil {
		return err
	}
	ras, err := ingest.LoadAssistants(rasPath)
	if err != nil {
		return err
	}
	slots, err := ingest.LoadSlotMap(slotMapPath)
	if err != nil {
		return err
	}

	engine := allocation.NewEngine(allocation.Config{
		Band:     allocation.Band{Min: minCourses, Max: maxCourses},
		LabTypes: splitList(labTypes),
		Workers:  workers,
		Logger:   logr,
	})
	var result allocation.Result
	if fs.Changed("seed") {
		result = engine.Run(courses, ras, slots, seed)
	} else {
		result = engine.Allocate(courses, ras, slots)
	}
	logr.Info("allocation finished",
		zap.Uint64("seed", result.Seed),
		zap.Int("pool", result.PoolSize),
		zap.Int("allocated", len(result.Allocations)),
		zap.Int("unallocated", len(result.Unallocated)),
	)

	if err := writeOutput(outPath, stdout, output{
		Allocations:     result.Allocations,
		UnallocatedLabs: result.Unallocated,
		Seed:            result.Seed,
	}); err != nil {
		return err
	}

	printStats(stderr, summarize(result, ras, slots, engine.Band()), result)
	return nil
}

// summarize covers allocated and unallocated rows so unallocated totals are
// reported.
func summarize(result allocation.Result, ras []models.Assistant, slots allocation.SlotMap, band allocation.Band) models.AllocationStats {
	rows := make([]models.Allocation, 0, len(result.Allocations)+len(result.Unallocated))
	rows = append(rows, result.Allocations...)
	rows = append(rows, result.Unallocated...)
	return allocation.Summarize(rows, ras, slots, band)
}

func writeOutput(path string, stdout io.Writer, out output) error {
	if path == "" {
		return encodeOutput(stdout, out)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := encodeOutput(f, out); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}

func encodeOutput(w io.Writer, out output) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func printStats(w io.Writer, stats models.AllocationStats, result allocation.Result) {
	fmt.Fprintf(w, "seed %d: %d of %d lab units allocated, %d unallocated\n",
		result.Seed, stats.TotalAllocations, result.PoolSize, stats.TotalUnallocated)
	fmt.Fprintf(w, "assistants %d, labs per assistant avg %.2f min %d (%s) max %d (%s), discrepancies %d\n",
		stats.TotalRAs, stats.AvgLabsPerRA, stats.MinLabs, stats.RAWithMinLabs,
		stats.MaxLabs, stats.RAWithMaxLabs, stats.TotalDiscrepancies)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RA\tASSIGNED\tREQUIRED\tCOURSES\tISSUES")
	for _, s := range stats.Assistants {
		if len(s.Discrepancies) == 0 {
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n", s.RAName, s.LabsAssigned, s.LabsRequired, len(s.Courses), strings.Join(s.Discrepancies, "; "))
	}
	_ = tw.Flush()
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

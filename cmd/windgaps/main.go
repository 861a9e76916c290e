package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/planbiir/windclean/internal/clean"
	"github.com/planbiir/windclean/internal/export"
	"github.com/planbiir/windclean/internal/s3db"
	"github.com/planbiir/windclean/internal/timefix"
	"github.com/planbiir/windclean/internal/wind"
)

func main() {
	cfg := timefix.DefaultConfig()
	cleanCfg := clean.DefaultConfig()

	gapFlag := flag.Duration("gap", cfg.GapThreshold, "Minimum silence to report as a gap (e.g. 30m)")
	patternFlag := flag.String("pattern", s3db.DefaultPattern, "Glob for logger files inside the directory")
	excludeFlag := flag.String("exclude", "", "Comma-separated logger file names to skip")
	methodFlag := flag.String("method", string(cleanCfg.Method), "Outlier method for the flag count: iqr or zscore")
	thresholdFlag := flag.Float64("threshold", cleanCfg.Threshold, "IQR multiplier or z-score limit")
	dstFlag := flag.String("dst", "", "Shift timestamps before analysis: forward or back")
	outFlag := flag.String("out", "", "Optional path to write the gap list as CSV")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		log.Fatalf("usage: %s [flags] <raw_data_dir>", os.Args[0])
	}

	var exclude []string
	if *excludeFlag != "" {
		for _, name := range strings.Split(*excludeFlag, ",") {
			exclude = append(exclude, strings.TrimSpace(name))
		}
	}

	files, err := s3db.FindFiles(args[0], *patternFlag, exclude)
	if err != nil {
		log.Fatalf("find files: %v", err)
	}
	readings, err := s3db.Load(context.Background(), files, s3db.DefaultOptions())
	if err != nil {
		log.Fatalf("load wind data: %v", err)
	}
	fmt.Printf("Loaded %d records from %d files\n", len(readings), len(files))

	switch *dstFlag {
	case "":
	case "forward", "back":
		readings = timefix.ShiftDST(readings, *dstFlag == "forward", cfg.DSTShift)
		fmt.Printf("Shifted timestamps %s by %v\n", *dstFlag, cfg.DSTShift)
	default:
		log.Fatalf("-dst must be forward or back, got %q", *dstFlag)
	}

	cleanCfg.Method = clean.Method(*methodFlag)
	cleanCfg.Threshold = *thresholdFlag
	flagged, err := clean.DetectOutliers(readings, cleanCfg)
	if err != nil {
		log.Fatalf("detect outliers: %v", err)
	}

	gaps := timefix.FindGaps(flagged, *gapFlag)
	printSensorStats(flagged, gaps, *gapFlag)

	if *outFlag != "" {
		err := export.WriteFile(*outFlag, func(w io.Writer) error {
			return export.WriteGaps(w, gaps)
		})
		if err != nil {
			log.Fatalf("write gaps: %v", err)
		}
		fmt.Printf("\nGap list written to %s\n", *outFlag)
	}
}

func printSensorStats(readings []wind.Reading, gaps []wind.Gap, threshold time.Duration) {
	bySensor := make(map[string][]wind.Gap)
	for _, g := range gaps {
		bySensor[g.Sensor] = append(bySensor[g.Sensor], g)
	}

	for _, c := range clean.CountOutliers(readings) {
		first, last := timeBounds(readings, c.Sensor)
		fmt.Printf("\nSensor %s: %d records, %s – %s\n", c.Sensor, c.Total, first.Format(time.DateTime), last.Format(time.DateTime))
		fmt.Printf("  outliers: %d (%.1f%%)\n", c.Outliers, float64(c.Outliers)/float64(c.Total)*100)

		sensorGaps := bySensor[c.Sensor]
		if len(sensorGaps) == 0 {
			fmt.Printf("  no gaps exceeding %v\n", threshold)
			continue
		}
		var missing time.Duration
		for idx, g := range sensorGaps {
			d := g.End.Sub(g.Start)
			missing += d
			fmt.Printf("  Gap #%d: %s – %s (duration %v)\n", idx+1, g.Start.Format(time.DateTime), g.End.Format(time.DateTime), d)
		}
		fmt.Printf("  total missing: %v\n", missing)
	}
}

func timeBounds(readings []wind.Reading, sensor string) (time.Time, time.Time) {
	var first, last time.Time
	for _, r := range readings {
		if r.Sensor != sensor {
			continue
		}
		if first.IsZero() || r.Time.Before(first) {
			first = r.Time
		}
		if last.IsZero() || r.Time.After(last) {
			last = r.Time
		}
	}
	return first, last
}

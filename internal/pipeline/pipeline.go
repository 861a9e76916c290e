package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/planbiir/windclean/internal/clean"
	"github.com/planbiir/windclean/internal/deploy"
	"github.com/planbiir/windclean/internal/export"
	"github.com/planbiir/windclean/internal/s3db"
	"github.com/planbiir/windclean/internal/timefix"
	"github.com/planbiir/windclean/internal/wind"
)

// Result holds every in-memory artifact of a run
type Result struct {
	Readings    []wind.Reading // cleaned
	Gaps        []wind.Gap
	Association deploy.Association
	Joined      []wind.AssociatedReading
	Summaries   []deploy.Summary
	Report      Report
}

// Process runs DST correction, outlier detection and resolution, gap
// detection and deployment association over readings already in memory.
// Configuration errors abort the run; per-sensor problems end up in the
// report.
func Process(readings []wind.Reading, deployments []wind.Deployment, opts Options) (Result, error) {
	startTime := time.Now()
	out := opts.out()

	report := Report{
		RunID:       uuid.NewString(),
		Readings:    len(readings),
		Sensors:     len(wind.Sensors(readings)),
		Deployments: len(deployments),
	}

	if opts.DST != nil {
		direction := "back"
		if opts.DST.Forward {
			direction = "forward"
		}
		readings = timefix.ShiftDST(readings, opts.DST.Forward, opts.DST.Amount)
		fmt.Fprintf(out, "🕐 Shifted %d timestamps %s by %v\n", len(readings), direction, dstAmount(opts.DST))
	}

	if !opts.SkipCleaning {
		fmt.Fprintf(out, "🔬 Outlier detection on %s (%s, threshold %.2f)...\n",
			opts.Clean.Column, opts.Clean.Method, opts.Clean.Threshold)

		flagged, err := clean.DetectOutliers(readings, opts.Clean)
		if err != nil {
			return Result{}, fmt.Errorf("detect outliers: %w", err)
		}

		report.OutlierCounts = clean.CountOutliers(flagged)
		for _, c := range report.OutlierCounts {
			report.Outliers += c.Outliers
			if c.Outliers > 0 {
				fmt.Fprintf(out, "   %s: %d of %d readings flagged (%.1f%%)\n",
					c.Sensor, c.Outliers, c.Total, float64(c.Outliers)/float64(c.Total)*100)
			}
		}

		resolution, err := clean.ResolveOutliers(flagged, opts.Clean)
		if err != nil {
			return Result{}, fmt.Errorf("resolve outliers: %w", err)
		}
		readings = resolution.Readings
		report.Removed = resolution.Removed
		report.Repaired = resolution.Repaired
		for _, p := range resolution.Problems {
			report.Problems = append(report.Problems, p.Error())
			fmt.Fprintf(out, "   ⚠️  %v\n", p)
		}

		switch opts.Clean.Mode {
		case clean.ModeRemove:
			fmt.Fprintf(out, "   Removed %d outliers\n", resolution.Removed)
		default:
			fmt.Fprintf(out, "   Replaced %d outliers (%s)\n", resolution.Repaired, opts.Clean.Replacement)
		}
	}

	gaps := timefix.FindGaps(readings, opts.GapThreshold)
	report.Gaps = len(gaps)
	report.GapStats = timefix.SummarizeGaps(gaps)
	fmt.Fprintf(out, "🕳️  Found %d gaps longer than %v\n", len(gaps), gapThreshold(opts.GapThreshold))

	association := deploy.Associate(readings, deployments)
	joined := association.Joined()
	summaries := deploy.Summarize(joined)
	report.Matched = association.Matched
	report.Unmatched = association.Unmatched()
	report.MatchedPercent = association.Percent()
	report.Summaries = summaries
	fmt.Fprintf(out, "🔗 Associated %d of %d wind records with deployments (%.1f%%)\n",
		association.Matched, association.Total, association.Percent())

	report.ProcessingTime = time.Since(startTime)

	return Result{
		Readings:    readings,
		Gaps:        gaps,
		Association: association,
		Joined:      joined,
		Summaries:   summaries,
		Report:      report,
	}, nil
}

// Run loads the deployment sheet and logger databases, processes them and
// writes the configured artifacts.
func Run(ctx context.Context, opts Options) (Report, error) {
	startTime := time.Now()
	out := opts.out()

	if opts.DeploymentsFile == "" {
		return Report{}, errors.New("no deployment sheet given")
	}

	fmt.Fprintf(out, "📖 Reading deployments: %s\n", opts.DeploymentsFile)
	sheet, err := deploy.ParseFile(opts.DeploymentsFile)
	if err != nil {
		return Report{}, fmt.Errorf("read deployments: %w", err)
	}
	for _, w := range sheet.Warnings {
		fmt.Fprintf(out, "   ⚠️  %s\n", w)
	}
	meters := sheet.Meters()
	fmt.Fprintf(out, "   %d deployments across %d wind meters\n", len(sheet.Deployments), len(meters))

	files, missing, err := resolveFiles(opts, meters)
	if err != nil {
		return Report{}, err
	}
	for _, m := range missing {
		fmt.Fprintf(out, "   ⚠️  Could not find file for wind meter %s\n", m)
	}
	fmt.Fprintf(out, "📖 Loading %d wind meter files\n", len(files))

	readings, err := s3db.Load(ctx, files, opts.Load)
	if err != nil {
		return Report{}, fmt.Errorf("load wind data: %w", err)
	}
	fmt.Fprintf(out, "📊 Loaded %d wind records across %d meters\n", len(readings), len(wind.Sensors(readings)))

	result, err := Process(readings, sheet.Deployments, opts)
	if err != nil {
		return Report{}, err
	}

	report := result.Report
	report.Files = len(files)
	report.MissingMeters = missing
	report.Warnings = sheet.Warnings

	if opts.DryRun {
		fmt.Fprintf(out, "🔍 Dry run completed - no files written\n")
		report.ProcessingTime = time.Since(startTime)
		return report, nil
	}

	if err := writeArtifacts(ctx, opts, result, &report); err != nil {
		return report, err
	}

	report.ProcessingTime = time.Since(startTime)
	return report, nil
}

func resolveFiles(opts Options, meters []string) (files, missing []string, err error) {
	candidates := opts.Files
	if len(candidates) == 0 {
		candidates, missing = s3db.MeterFiles(opts.RawDir, meters)
	}

	skip := make(map[string]bool, len(opts.Exclude))
	for _, name := range opts.Exclude {
		skip[name] = true
	}
	for _, f := range candidates {
		if !skip[filepath.Base(f)] {
			files = append(files, f)
		}
	}
	if len(files) == 0 {
		return nil, missing, fmt.Errorf("no wind meter files found in %s", opts.RawDir)
	}
	return files, missing, nil
}

func writeArtifacts(ctx context.Context, opts Options, result Result, report *Report) error {
	out := opts.out()

	if opts.OutputFile != "" {
		fmt.Fprintf(out, "💾 Writing wind data: %s\n", opts.OutputFile)
		err := export.WriteFile(opts.OutputFile, func(w io.Writer) error {
			return export.WriteReadings(w, result.Joined)
		})
		if err != nil {
			return fmt.Errorf("write %s: %w", opts.OutputFile, err)
		}
		report.Written = len(result.Joined)
		fmt.Fprintf(out, "   Saved %d records across %d deployments\n", len(result.Joined), len(result.Summaries))
	}

	if opts.SummaryFile != "" {
		fmt.Fprintf(out, "💾 Writing deployment summary: %s\n", opts.SummaryFile)
		err := export.WriteFile(opts.SummaryFile, func(w io.Writer) error {
			return export.WriteSummary(w, result.Summaries)
		})
		if err != nil {
			return fmt.Errorf("write %s: %w", opts.SummaryFile, err)
		}
	}

	if opts.GapsFile != "" {
		fmt.Fprintf(out, "💾 Writing gap report: %s\n", opts.GapsFile)
		err := export.WriteFile(opts.GapsFile, func(w io.Writer) error {
			return export.WriteGaps(w, result.Gaps)
		})
		if err != nil {
			return fmt.Errorf("write %s: %w", opts.GapsFile, err)
		}
	}

	if opts.SQL.Enabled() {
		runID, err := uuid.Parse(report.RunID)
		if err != nil {
			return fmt.Errorf("run id: %w", err)
		}
		fmt.Fprintf(out, "💾 Copying wind data to %s database\n", opts.SQL.Driver)
		n, err := export.WriteSQL(ctx, opts.SQL, runID, result.Joined)
		if err != nil {
			return fmt.Errorf("write sql: %w", err)
		}
		report.SQLRows = n
	}

	return nil
}

func dstAmount(d *DST) time.Duration {
	if d.Amount == 0 {
		return timefix.DefaultDSTShift
	}
	return d.Amount
}

func gapThreshold(d time.Duration) time.Duration {
	if d <= 0 {
		return timefix.DefaultConfig().GapThreshold
	}
	return d
}

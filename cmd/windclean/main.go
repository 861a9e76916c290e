package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/planbiir/windclean/internal/clean"
	"github.com/planbiir/windclean/internal/pipeline"
)

const version = "windclean v1.0.0 - wind meter data cleaner"

type cliFlags struct {
	showStats bool
	statsJSON bool
	version   bool
}

// parseFlags binds the command line onto pipeline.DefaultOptions
func parseFlags(args []string, stderr io.Writer) (pipeline.Options, cliFlags, error) {
	opts := pipeline.DefaultOptions()
	var cli cliFlags

	fs := flag.NewFlagSet("windclean", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.DeploymentsFile, "deployments", "", "Deployment sheet (CSV)")
	fs.StringVar(&opts.RawDir, "raw", opts.RawDir, "Directory with <wind_meter_name>.s3db files")
	exclude := fs.String("exclude", "", "Comma-separated logger file names to skip")
	fs.StringVar(&opts.OutputFile, "out", opts.OutputFile, "Output CSV with wind data joined to deployments")
	fs.StringVar(&opts.SummaryFile, "summary", opts.SummaryFile, "Output CSV with one row per deployment (empty disables)")
	fs.StringVar(&opts.GapsFile, "gaps", "", "Output CSV listing data gaps (empty disables)")

	column := fs.String("column", string(opts.Clean.Column), "Column to clean: speed, speed_mph, gust, gust_mph")
	method := fs.String("method", string(opts.Clean.Method), "Outlier method: iqr or zscore")
	fs.Float64Var(&opts.Clean.Threshold, "threshold", opts.Clean.Threshold, "IQR multiplier or z-score limit")
	absMax := fs.Float64("abs-max", 0, "Flag any value above this regardless of method (0 disables)")
	mode := fs.String("mode", string(opts.Clean.Mode), "Outlier handling: remove or replace")
	replacement := fs.String("replacement", string(opts.Clean.Replacement), "Replacement: median, mean or interpolate")
	fs.BoolVar(&opts.SkipCleaning, "no-clean", false, "Skip outlier detection and resolution")
	fs.DurationVar(&opts.GapThreshold, "gap-threshold", opts.GapThreshold, "Minimum silence reported as a gap (e.g. 30m)")

	dst := fs.String("dst", "", "Shift all timestamps: forward or back")
	dstAmount := fs.Duration("dst-amount", time.Hour, "DST shift amount")
	noMPH := fs.Bool("no-mph", false, "Do not derive mph columns")

	fs.StringVar(&opts.SQL.Driver, "sql-driver", opts.SQL.Driver, "Database for the SQL copy: sqlite or pgx")
	fs.StringVar(&opts.SQL.DSN, "sql-dsn", "", "SQLite path or PostgreSQL connection string (empty disables)")
	fs.StringVar(&opts.SQL.Table, "sql-table", "wind_readings", "Table for the SQL copy")

	fs.BoolVar(&opts.DryRun, "dry-run", false, "Show statistics without writing output files")
	fs.BoolVar(&cli.showStats, "stats", false, "Show detailed statistics")
	fs.BoolVar(&cli.statsJSON, "stats-json", false, "Output statistics as JSON")
	fs.BoolVar(&cli.version, "version", false, "Show version information")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "windclean - Clean wind meter data and join it to deployments\n\n")
		fmt.Fprintf(stderr, "usage: windclean -deployments deployments.csv -raw raw_data\n\n")
		fmt.Fprintf(stderr, "examples:\n")
		fmt.Fprintf(stderr, "  windclean -deployments deployments2023.csv\n")
		fmt.Fprintf(stderr, "  windclean -deployments deployments2023.csv -method zscore -threshold 3 -mode remove\n")
		fmt.Fprintf(stderr, "  windclean -deployments deployments2023.csv -dst back -gaps gaps.csv\n\n")
		fmt.Fprintf(stderr, "options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, cli, err
	}
	if cli.version {
		return opts, cli, nil
	}
	if opts.DeploymentsFile == "" {
		fs.Usage()
		return opts, cli, fmt.Errorf("-deployments is required")
	}

	opts.Clean.Column = clean.Column(*column)
	opts.Clean.Method = clean.Method(*method)
	opts.Clean.Mode = clean.Mode(*mode)
	opts.Clean.Replacement = clean.Replacement(*replacement)
	if *absMax > 0 {
		opts.Clean.AbsMax = absMax
	}

	if *noMPH {
		opts.Load.ConvertToMPH = false
		switch opts.Clean.Column {
		case clean.ColumnSpeedMPH:
			opts.Clean.Column = clean.ColumnSpeed
		case clean.ColumnGustMPH:
			opts.Clean.Column = clean.ColumnGust
		}
	}

	switch strings.ToLower(*dst) {
	case "":
	case "forward":
		opts.DST = &pipeline.DST{Forward: true, Amount: *dstAmount}
	case "back", "backward":
		opts.DST = &pipeline.DST{Forward: false, Amount: *dstAmount}
	default:
		return opts, cli, fmt.Errorf("-dst must be forward or back, got %q", *dst)
	}

	if ex := strings.TrimSpace(*exclude); ex != "" {
		for _, name := range strings.Split(ex, ",") {
			opts.Exclude = append(opts.Exclude, strings.TrimSpace(name))
		}
	}

	return opts, cli, nil
}

func main() {
	opts, cli, err := parseFlags(os.Args[1:], os.Stderr)
	if err == flag.ErrHelp {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if cli.version {
		fmt.Println(version)
		os.Exit(0)
	}

	if cli.statsJSON {
		// Keep stdout clean for the JSON document
		opts.Out = os.Stderr
	}

	report, err := pipeline.Run(context.Background(), opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error processing wind data: %v\n", err)
		os.Exit(1)
	}

	if cli.statsJSON {
		jsonData, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error marshaling stats: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(jsonData))
		return
	}

	if cli.showStats || opts.DryRun {
		printStats(report)
	}

	fmt.Printf("✅ Wind data processed successfully!\n")
	fmt.Printf("   %d → %d records (%.1f%% associated with deployments)\n",
		report.Readings, report.Matched, report.MatchedPercent)
}

func printStats(r pipeline.Report) {
	fmt.Printf("\n📊 Cleaning Statistics:\n")
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Printf("🆔 Run: %s\n", r.RunID)
	fmt.Printf("📁 Files: %d (%d meters missing)\n", r.Files, len(r.MissingMeters))
	fmt.Printf("📍 Records: %d across %d sensors\n", r.Readings, r.Sensors)
	fmt.Printf("🔬 Outliers: %d flagged, %d removed, %d replaced\n", r.Outliers, r.Removed, r.Repaired)
	for _, p := range r.Problems {
		fmt.Printf("   ⚠️  %s\n", p)
	}
	fmt.Printf("🕳️  Gaps: %d\n", r.Gaps)
	for _, g := range r.GapStats {
		fmt.Printf("   • %s: %d gaps, %v missing, longest %v\n", g.Sensor, g.Gaps, g.Missing, g.Longest)
	}
	fmt.Printf("🔗 Deployments: %d, matched %d records, %d unmatched (%.1f%%)\n",
		r.Deployments, r.Matched, r.Unmatched, r.MatchedPercent)
	for _, s := range r.Summaries {
		fmt.Printf("   • %s %s/%s: %d records, %s → %s\n", s.DeploymentID, s.CameraName, s.Sensor,
			s.RecordCount, s.Start.Format(time.DateTime), s.End.Format(time.DateTime))
	}
	fmt.Printf("⏱️  Processing Time: %v\n", r.ProcessingTime)
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
}

package pipeline

import (
	"io"
	"os"
	"time"

	"github.com/planbiir/windclean/internal/clean"
	"github.com/planbiir/windclean/internal/export"
	"github.com/planbiir/windclean/internal/s3db"
	"github.com/planbiir/windclean/internal/timefix"
)

// DST describes the optional clock correction applied before detection
type DST struct {
	Forward bool
	Amount  time.Duration
}

// Options configures a pipeline run
type Options struct {
	// Inputs
	DeploymentsFile string
	RawDir          string   // directory holding <meter>.s3db files
	Files           []string // explicit logger files; overrides the meter lookup
	Exclude         []string // base names to skip
	Load            s3db.Options

	// Cleaning
	DST          *DST // nil leaves timestamps alone
	SkipCleaning bool
	Clean        clean.Config
	GapThreshold time.Duration

	// Outputs, empty paths are not written
	OutputFile  string
	SummaryFile string
	GapsFile    string
	SQL         export.SQLConfig
	DryRun      bool

	// Progress messages; nil means os.Stdout
	Out io.Writer
}

// DefaultOptions returns the configuration used for season exports
func DefaultOptions() Options {
	return Options{
		RawDir:       "raw_data",
		Load:         s3db.DefaultOptions(),
		Clean:        clean.DefaultConfig(),
		GapThreshold: timefix.DefaultConfig().GapThreshold,
		OutputFile:   "wind_data.csv",
		SummaryFile:  "wind_data_summary.csv",
		SQL:          export.SQLConfig{Driver: "sqlite"},
	}
}

func (o Options) out() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

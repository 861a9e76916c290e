package pipeline

import (
	"time"

	"github.com/planbiir/windclean/internal/clean"
	"github.com/planbiir/windclean/internal/deploy"
	"github.com/planbiir/windclean/internal/timefix"
)

// Report summarises a pipeline run
type Report struct {
	RunID string `json:"run_id"`

	// Input
	Files         int      `json:"files"`
	MissingMeters []string `json:"missing_meters,omitempty"`
	Readings      int      `json:"readings"`
	Sensors       int      `json:"sensors"`
	Deployments   int      `json:"deployments"`
	Warnings      []string `json:"warnings,omitempty"`

	// Cleaning
	Outliers      int                 `json:"outliers"`
	OutlierCounts []clean.SensorCount `json:"outlier_counts,omitempty"`
	Removed       int                 `json:"removed"`
	Repaired      int                 `json:"repaired"`
	Problems      []string            `json:"problems,omitempty"`

	// Quality
	Gaps     int                `json:"gaps"`
	GapStats []timefix.GapStats `json:"gap_stats,omitempty"`

	// Association
	Matched        int              `json:"matched"`
	Unmatched      int              `json:"unmatched"`
	MatchedPercent float64          `json:"matched_percent"`
	Summaries      []deploy.Summary `json:"summaries,omitempty"`

	// Output
	Written        int           `json:"written"`
	SQLRows        int           `json:"sql_rows"`
	ProcessingTime time.Duration `json:"processing_time_ns"`
}

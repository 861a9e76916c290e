package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/planbiir/windclean/internal/deploy"
	"github.com/planbiir/windclean/internal/wind"
)

// TimeLayout is how timestamps are written to every artifact
const TimeLayout = "2006-01-02 15:04:05"

// ReadingColumns is the fixed column order of the joined dataset:
// deployment metadata, sensor identity, then measurements.
var ReadingColumns = []string{
	"deployment_id", "camera_name", "wind_meter_name",
	"height_m", "horizontal_dist_to_cluster_m", "view_direction", "cluster_count",
	"latitude", "longitude",
	"time", "speed", "gust", "direction", "speed_mph", "gust_mph", "direction_category",
}

// SummaryColumns is the column order of the deployment summary
var SummaryColumns = []string{
	"deployment_id", "camera_name", "wind_meter_name", "record_count",
	"start_time", "end_time", "latitude", "longitude",
}

// GapColumns is the column order of the gap report
var GapColumns = []string{"sensor", "gap_start", "gap_end", "gap_duration_minutes"}

// WriteFile creates filename and hands it to write
func WriteFile(filename string, write func(io.Writer) error) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// WriteReadings writes matched readings. Rows without a deployment are skipped.
func WriteReadings(w io.Writer, joined []wind.AssociatedReading) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ReadingColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, r := range joined {
		if !r.Matched() {
			continue
		}
		d := r.Deployment
		record := []string{
			r.DeploymentID, d.CameraName, r.Sensor,
			d.HeightM, d.HorizontalDistM, d.ViewDirection, d.ClusterCount,
			d.Latitude, d.Longitude,
			formatTime(r.Time),
			formatFloat(r.Speed),
			formatFloat(r.Gust),
			formatFloat(r.Direction),
			formatFloat(r.SpeedMPH),
			formatFloat(r.GustMPH),
			formatFloat(r.DirectionCategory),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteSummary writes one row per deployment
func WriteSummary(w io.Writer, summaries []deploy.Summary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SummaryColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, s := range summaries {
		record := []string{
			s.DeploymentID, s.CameraName, s.Sensor,
			strconv.Itoa(s.RecordCount),
			formatTime(s.Start), formatTime(s.End),
			s.Latitude, s.Longitude,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteGaps writes the gap report. The header is written even when there
// are no gaps.
func WriteGaps(w io.Writer, gaps []wind.Gap) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(GapColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, g := range gaps {
		record := []string{
			g.Sensor, formatTime(g.Start), formatTime(g.End), formatFloat(g.DurationMinutes),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimeLayout)
}

// formatFloat writes NaN as an empty cell
func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

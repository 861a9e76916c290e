package wind

import (
	"time"
)

// Reading is one wind sensor observation
type Reading struct {
	Sensor string
	Time   time.Time

	// Native units (m/s)
	Speed float64
	Gust  float64

	// Derived units, zero when conversion is disabled
	SpeedMPH float64
	GustMPH  float64

	Direction         float64 // degrees, 0-360, NaN when not recorded
	DirectionCategory float64 // compass bin centre

	IsOutlier bool // set by the outlier detector
	Repaired  bool // flagged value replaced by the resolver
}

// Gap is a period without measurements for one sensor
type Gap struct {
	Sensor          string    `json:"sensor"`
	Start           time.Time `json:"gap_start"`
	End             time.Time `json:"gap_end"`
	DurationMinutes float64   `json:"gap_duration_minutes"`
}

// Deployment is a time-bounded placement of a wind meter and its camera.
// Start and End are both inclusive.
type Deployment struct {
	ID     string
	Sensor string // wind_meter_name
	Start  time.Time
	End    time.Time

	// Descriptive metadata, kept verbatim from the deployment sheet
	CameraName      string
	HeightM         string
	HorizontalDistM string
	ViewDirection   string
	ClusterCount    string
	Latitude        string
	Longitude       string
}

// Contains reports whether t falls inside the deployment window
func (d Deployment) Contains(t time.Time) bool {
	if d.Start.IsZero() || d.End.IsZero() {
		return false
	}
	return !t.Before(d.Start) && !t.After(d.End)
}

// AssociatedReading is a reading joined with the deployment active when it
// was recorded. Deployment is nil for unmatched readings.
type AssociatedReading struct {
	Reading
	DeploymentID string
	Deployment   *Deployment
}

// Matched reports whether a deployment with an id was attached
func (a AssociatedReading) Matched() bool {
	return a.Deployment != nil && a.DeploymentID != ""
}

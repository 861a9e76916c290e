package deploy

import (
	"sort"
	"strconv"
	"time"

	"github.com/planbiir/windclean/internal/wind"
)

// Association is the outcome of Associate
type Association struct {
	Readings []wind.AssociatedReading // every input reading, in input order
	Matched  int
	Total    int
}

// Unmatched is the number of readings outside every deployment window
func (a Association) Unmatched() int {
	return a.Total - a.Matched
}

// Percent is the share of readings attached to a deployment
func (a Association) Percent() float64 {
	if a.Total == 0 {
		return 0
	}
	return float64(a.Matched) / float64(a.Total) * 100
}

// Associate attaches to each reading the deployment of the same sensor whose
// [Start, End] window contains the reading time.
//
// Deployments are applied in input order and each one overwrites earlier
// assignments, so where two windows of one sensor overlap the later
// deployment in the sheet wins. Downstream analyses depend on this order.
// A deployment without an id claims its window but leaves it unmatched,
// clearing any earlier assignment.
func Associate(readings []wind.Reading, deployments []wind.Deployment) Association {
	out := make([]wind.AssociatedReading, len(readings))
	bySensor := make(map[string][]int)
	for i, r := range readings {
		out[i] = wind.AssociatedReading{Reading: r}
		bySensor[r.Sensor] = append(bySensor[r.Sensor], i)
	}

	// Own copy so the attached pointers outlive caller edits
	deps := make([]wind.Deployment, len(deployments))
	copy(deps, deployments)

	for i := range deps {
		d := &deps[i]
		if d.Sensor == "" {
			continue
		}
		for _, idx := range bySensor[d.Sensor] {
			if !d.Contains(out[idx].Time) {
				continue
			}
			if d.ID == "" {
				out[idx].DeploymentID = ""
				out[idx].Deployment = nil
				continue
			}
			out[idx].DeploymentID = d.ID
			out[idx].Deployment = d
		}
	}

	matched := 0
	for _, r := range out {
		if r.Matched() {
			matched++
		}
	}

	return Association{
		Readings: out,
		Matched:  matched,
		Total:    len(readings),
	}
}

// Joined returns the matched readings sorted by deployment id, then time
func (a Association) Joined() []wind.AssociatedReading {
	joined := make([]wind.AssociatedReading, 0, a.Matched)
	for _, r := range a.Readings {
		if r.Matched() {
			joined = append(joined, r)
		}
	}

	sort.SliceStable(joined, func(i, j int) bool {
		if joined[i].DeploymentID != joined[j].DeploymentID {
			return lessID(joined[i].DeploymentID, joined[j].DeploymentID)
		}
		return joined[i].Time.Before(joined[j].Time)
	})
	return joined
}

// lessID orders numeric ids numerically and everything else as text
func lessID(a, b string) bool {
	ai, aErr := strconv.ParseInt(a, 10, 64)
	bi, bErr := strconv.ParseInt(b, 10, 64)
	if aErr == nil && bErr == nil {
		return ai < bi
	}
	return a < b
}

// Summary is one row of the per-deployment summary artifact
type Summary struct {
	DeploymentID string    `json:"deployment_id"`
	CameraName   string    `json:"camera_name"`
	Sensor       string    `json:"wind_meter_name"`
	RecordCount  int       `json:"record_count"`
	Start        time.Time `json:"start_time"`
	End          time.Time `json:"end_time"`
	Latitude     string    `json:"latitude"`
	Longitude    string    `json:"longitude"`
}

// Summarize builds one summary row per deployment present in joined,
// ordered by deployment id.
func Summarize(joined []wind.AssociatedReading) []Summary {
	var summaries []Summary
	index := make(map[string]int)

	for _, r := range joined {
		if !r.Matched() {
			continue
		}

		i, ok := index[r.DeploymentID]
		if !ok {
			i = len(summaries)
			index[r.DeploymentID] = i
			summaries = append(summaries, Summary{
				DeploymentID: r.DeploymentID,
				CameraName:   r.Deployment.CameraName,
				Sensor:       r.Sensor,
				Start:        r.Time,
				End:          r.Time,
				Latitude:     r.Deployment.Latitude,
				Longitude:    r.Deployment.Longitude,
			})
		}

		s := &summaries[i]
		s.RecordCount++
		if r.Time.Before(s.Start) {
			s.Start = r.Time
		}
		if r.Time.After(s.End) {
			s.End = r.Time
		}
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return lessID(summaries[i].DeploymentID, summaries[j].DeploymentID)
	})
	return summaries
}

package deploy

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/planbiir/windclean/internal/wind"
)

// Sheet is a parsed deployment sheet
type Sheet struct {
	Deployments []wind.Deployment

	// Rows with a missing meter or unreadable times. They are kept in
	// Deployments but can never match a reading.
	Warnings []string
}

// Meters returns the distinct wind meter names in order of first appearance
func (s Sheet) Meters() []string {
	seen := make(map[string]bool)
	var meters []string
	for _, d := range s.Deployments {
		if d.Sensor == "" || seen[d.Sensor] {
			continue
		}
		seen[d.Sensor] = true
		meters = append(meters, d.Sensor)
	}
	return meters
}

var requiredColumns = []string{"deployment_id", "wind_meter_name", "deployed_time", "recovered_time"}

// ParseFile reads a deployment sheet from disk
func ParseFile(filename string) (Sheet, error) {
	file, err := os.Open(filename)
	if err != nil {
		return Sheet{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads a deployment sheet. Column names are matched case-insensitively.
func Parse(r io.Reader) (Sheet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return Sheet{}, nil
		}
		return Sheet{}, fmt.Errorf("failed to read csv header: %w", err)
	}

	columns := make(map[string]int)
	for i, h := range headers {
		columns[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, req := range requiredColumns {
		if _, ok := columns[req]; !ok {
			return Sheet{}, fmt.Errorf("missing required csv header: %s", req)
		}
	}

	var sheet Sheet
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return Sheet{}, fmt.Errorf("csv read error at line %d: %w", line, err)
		}

		get := func(col string) string {
			if idx, ok := columns[col]; ok && idx < len(record) {
				return strings.TrimSpace(record[idx])
			}
			return ""
		}

		d := wind.Deployment{
			ID:              get("deployment_id"),
			Sensor:          get("wind_meter_name"),
			CameraName:      get("camera_name"),
			HeightM:         get("height_m"),
			HorizontalDistM: get("horizontal_dist_to_cluster_m"),
			ViewDirection:   get("view_direction"),
			ClusterCount:    get("cluster_count"),
			Latitude:        get("latitude"),
			Longitude:       get("longitude"),
		}
		if d.ID == "" && d.Sensor == "" {
			continue // blank spreadsheet row
		}
		if d.ID == "" {
			sheet.Warnings = append(sheet.Warnings, fmt.Sprintf("line %d: wind meter %s has no deployment id", line, d.Sensor))
		}
		if d.Sensor == "" {
			sheet.Warnings = append(sheet.Warnings, fmt.Sprintf("line %d: deployment %s has no wind meter", line, d.ID))
		}

		if d.Start, err = wind.ParseTime(get("deployed_time")); err != nil {
			sheet.Warnings = append(sheet.Warnings, fmt.Sprintf("line %d: deployed_time: %v", line, err))
		}
		if d.End, err = wind.ParseTime(get("recovered_time")); err != nil {
			sheet.Warnings = append(sheet.Warnings, fmt.Sprintf("line %d: recovered_time: %v", line, err))
		}

		sheet.Deployments = append(sheet.Deployments, d)
	}

	return sheet, nil
}

package s3db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/planbiir/windclean/internal/wind"

	// Logger databases are plain SQLite files
	_ "modernc.org/sqlite"
)

// Options controls the transformations applied while loading
type Options struct {
	// DirectionCategories are the compass bins directions are snapped to.
	// Nil means wind.DefaultDirectionCategories.
	DirectionCategories []float64

	// ConvertToMPH fills SpeedMPH and GustMPH
	ConvertToMPH bool
}

// DefaultOptions returns the options used for deployment season exports
func DefaultOptions() Options {
	return Options{
		DirectionCategories: wind.DefaultDirectionCategories,
		ConvertToMPH:        true,
	}
}

const windQuery = `SELECT time, speed, gust, direction FROM Wind`

// ErrNoData is returned by Load when no file was given
var ErrNoData = errors.New("no data loaded - check file paths")

// SensorName derives the sensor id from a logger file name
func SensorName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load reads every file and concatenates the readings in file order
func Load(ctx context.Context, paths []string, opts Options) ([]wind.Reading, error) {
	if len(paths) == 0 {
		return nil, ErrNoData
	}

	var all []wind.Reading
	for _, path := range paths {
		readings, err := LoadFile(ctx, path, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, readings...)
	}
	return all, nil
}

// LoadFile reads the Wind table of one logger database. The sensor id is
// the file name without extension.
func LoadFile(ctx context.Context, path string, opts Options) ([]wind.Reading, error) {
	// sql.Open would silently create a missing file
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening %s: %w", path, err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	rows, err := db.QueryContext(ctx, windQuery)
	if err != nil {
		return nil, fmt.Errorf("query Wind table in %s: %w", path, err)
	}
	defer rows.Close()

	sensor := SensorName(path)
	var readings []wind.Reading
	for rows.Next() {
		var (
			rawTime          any
			speed, gust, dir sql.NullFloat64
		)
		if err := rows.Scan(&rawTime, &speed, &gust, &dir); err != nil {
			return nil, fmt.Errorf("scan row %d of %s: %w", len(readings)+1, path, err)
		}

		ts, err := scanTime(rawTime)
		if err != nil {
			return nil, fmt.Errorf("row %d of %s: %w", len(readings)+1, path, err)
		}

		r := wind.Reading{
			Sensor:    sensor,
			Time:      ts,
			Speed:     nullToNaN(speed),
			Gust:      nullToNaN(gust),
			Direction: nullToNaN(dir),
		}
		if opts.ConvertToMPH {
			wind.ConvertUnits(&r)
		}
		r.DirectionCategory = wind.DirectionCategory(r.Direction, opts.DirectionCategories)
		readings = append(readings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read Wind table in %s: %w", path, err)
	}

	return readings, nil
}

// scanTime accepts the shapes the driver hands back for the time column
func scanTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		return wind.ParseTime(t)
	case []byte:
		return wind.ParseTime(string(t))
	case int64:
		return time.Unix(t, 0).UTC(), nil
	case nil:
		return time.Time{}, fmt.Errorf("missing timestamp")
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
	}
}

func nullToNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

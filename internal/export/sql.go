package export

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/planbiir/windclean/internal/wind"

	// Output sinks: "sqlite" (modernc) and "pgx" (PostgreSQL)
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// SQLConfig selects the database the joined dataset is copied into
type SQLConfig struct {
	Driver string // "sqlite" or "pgx"
	DSN    string // file path for sqlite, connection string for pgx
	Table  string // default "wind_readings"
}

// Enabled reports whether a sink was configured
func (c SQLConfig) Enabled() bool {
	return strings.TrimSpace(c.DSN) != ""
}

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func (c SQLConfig) normalize() (SQLConfig, error) {
	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))
	if c.Driver == "" {
		c.Driver = "sqlite"
	}
	if c.Driver != "sqlite" && c.Driver != "pgx" {
		return c, fmt.Errorf("unsupported database type: %s", c.Driver)
	}
	if c.Table == "" {
		c.Table = "wind_readings"
	}
	if !tableName.MatchString(c.Table) {
		return c, fmt.Errorf("invalid table name: %q", c.Table)
	}
	return c, nil
}

// createTable returns the DDL for the configured driver
func (c SQLConfig) createTable() string {
	timeType, floatType := "TEXT", "REAL"
	if c.Driver == "pgx" {
		timeType, floatType = "TIMESTAMP", "DOUBLE PRECISION"
	}
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	run_id TEXT NOT NULL,
	deployment_id TEXT NOT NULL,
	camera_name TEXT,
	wind_meter_name TEXT NOT NULL,
	height_m TEXT,
	horizontal_dist_to_cluster_m TEXT,
	view_direction TEXT,
	cluster_count TEXT,
	latitude TEXT,
	longitude TEXT,
	time %[2]s NOT NULL,
	speed %[3]s,
	gust %[3]s,
	direction %[3]s,
	speed_mph %[3]s,
	gust_mph %[3]s,
	direction_category %[3]s,
	is_outlier BOOLEAN,
	repaired BOOLEAN
)`, c.Table, timeType, floatType)
}

func (c SQLConfig) insert() string {
	const columns = 19
	placeholders := make([]string, columns)
	for i := range placeholders {
		if c.Driver == "pgx" {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
		} else {
			placeholders[i] = "?"
		}
	}
	return fmt.Sprintf(`INSERT INTO %s (run_id, deployment_id, camera_name, wind_meter_name,
	height_m, horizontal_dist_to_cluster_m, view_direction, cluster_count, latitude, longitude,
	time, speed, gust, direction, speed_mph, gust_mph, direction_category, is_outlier, repaired)
VALUES (%s)`, c.Table, strings.Join(placeholders, ", "))
}

// WriteSQL appends matched readings to the configured table inside one
// transaction, tagging every row with runID. It returns the rows written.
func WriteSQL(ctx context.Context, cfg SQLConfig, runID uuid.UUID, joined []wind.AssociatedReading) (int, error) {
	cfg, err := cfg.normalize()
	if err != nil {
		return 0, err
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return 0, fmt.Errorf("error opening the database: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, cfg.createTable()); err != nil {
		return 0, fmt.Errorf("create table %s: %w", cfg.Table, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, cfg.insert())
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	written := 0
	for _, r := range joined {
		if !r.Matched() {
			continue
		}
		d := r.Deployment

		var ts any = r.Time
		if cfg.Driver == "sqlite" {
			ts = r.Time.Format(TimeLayout)
		}

		_, err := stmt.ExecContext(ctx,
			runID.String(), r.DeploymentID, d.CameraName, r.Sensor,
			d.HeightM, d.HorizontalDistM, d.ViewDirection, d.ClusterCount, d.Latitude, d.Longitude,
			ts, nullable(r.Speed), nullable(r.Gust), nullable(r.Direction),
			nullable(r.SpeedMPH), nullable(r.GustMPH), nullable(r.DirectionCategory),
			r.IsOutlier, r.Repaired,
		)
		if err != nil {
			return 0, fmt.Errorf("insert reading %s@%s: %w", r.Sensor, r.Time.Format(TimeLayout), err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return written, nil
}

// nullable maps NaN to SQL NULL
func nullable(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: !math.IsNaN(v)}
}

package s3db

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeLogger creates a logger database with the given rows
func writeLogger(t *testing.T, path string, rows [][]any) {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE Wind (id INTEGER PRIMARY KEY, time TEXT, speed REAL, gust REAL, direction INTEGER)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	for _, row := range rows {
		if _, err := db.Exec(`INSERT INTO Wind (time, speed, gust, direction) VALUES (?, ?, ?, ?)`, row...); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "WM07.s3db")
	writeLogger(t, path, [][]any{
		{"2023-05-01 08:00:00", 10.0, 12.0, 355},
		{"2023-05-01 08:10:00", 1.0, 2.0, 100},
		{"2023-05-01 08:20:00", nil, 3.0, 0},
	})

	readings, err := LoadFile(context.Background(), path, DefaultOptions())
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if len(readings) != 3 {
		t.Fatalf("expected 3 readings, got %d", len(readings))
	}

	r := readings[0]
	if r.Sensor != "WM07" {
		t.Errorf("expected sensor WM07, got %q", r.Sensor)
	}
	if !r.Time.Equal(time.Date(2023, 5, 1, 8, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected time: %v", r.Time)
	}
	if r.SpeedMPH != 22.4 || r.GustMPH != 26.8 {
		t.Errorf("unexpected mph conversion: %.1f / %.1f", r.SpeedMPH, r.GustMPH)
	}
	if r.DirectionCategory != 360 {
		t.Errorf("expected 355° to bin to 360, got %.1f", r.DirectionCategory)
	}
	if readings[1].DirectionCategory != 90 {
		t.Errorf("expected 100° to bin to 90, got %.1f", readings[1].DirectionCategory)
	}
	if !math.IsNaN(readings[2].Speed) {
		t.Errorf("expected NULL speed to load as NaN, got %v", readings[2].Speed)
	}
}

func TestLoadFileNullDirection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "WM03.s3db")
	writeLogger(t, path, [][]any{
		{"2023-05-01 08:00:00", 4.0, 5.0, nil},
		{"2023-05-01 08:10:00", 4.0, 5.0, 0},
	})

	readings, err := LoadFile(context.Background(), path, DefaultOptions())
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if !math.IsNaN(readings[0].Direction) || !math.IsNaN(readings[0].DirectionCategory) {
		t.Errorf("expected NULL direction to stay missing, got %v / %v", readings[0].Direction, readings[0].DirectionCategory)
	}
	if readings[1].Direction != 0 || readings[1].DirectionCategory != 360 {
		t.Errorf("expected recorded 0° to bin to 360, got %v / %v", readings[1].Direction, readings[1].DirectionCategory)
	}
}

func TestLoadFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.s3db")
	if _, err := LoadFile(context.Background(), path, DefaultOptions()); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("LoadFile created a database for a missing file")
	}
}

func TestLoadRequiresFiles(t *testing.T) {
	if _, err := Load(context.Background(), nil, DefaultOptions()); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

func TestFindFilesAndMeterFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"B.s3db", "A.s3db", "C.s3db", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	files, err := FindFiles(dir, "", []string{"C.s3db"})
	if err != nil {
		t.Fatalf("FindFiles failed: %v", err)
	}
	if len(files) != 2 || filepath.Base(files[0]) != "A.s3db" || filepath.Base(files[1]) != "B.s3db" {
		t.Errorf("unexpected files: %v", files)
	}

	found, missing := MeterFiles(dir, []string{"B", "Z", "A"})
	if len(found) != 2 || len(missing) != 1 || missing[0] != "Z" {
		t.Errorf("unexpected meter lookup: found=%v missing=%v", found, missing)
	}
}

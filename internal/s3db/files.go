package s3db

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// DefaultPattern matches logger database files
const DefaultPattern = "*.s3db"

// FindFiles lists files in dir matching pattern, minus any whose base name is
// in exclude. The result is sorted.
func FindFiles(dir, pattern string, exclude []string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}

	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("bad file pattern %q: %w", pattern, err)
	}

	skip := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		skip[name] = true
	}

	files := make([]string, 0, len(matches))
	for _, m := range matches {
		if !skip[filepath.Base(m)] {
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

// MeterFiles resolves <dir>/<meter>.s3db for every meter. Meters without a
// file are returned in missing, in input order.
func MeterFiles(dir string, meters []string) (found []string, missing []string) {
	for _, meter := range meters {
		path := filepath.Join(dir, meter+".s3db")
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			found = append(found, path)
		} else {
			missing = append(missing, meter)
		}
	}
	return found, missing
}

package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// List reads every record under dir, newest first, for `vx metrics`'s
// `--last N` / `--json` / `--html` reporting. A record that fails to parse
// is skipped rather than aborting the whole listing — a half-written file
// from a crashed invocation shouldn't hide every other run's metrics.
func List(dir string) ([]Record, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("metrics: failed to read metrics directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	records := make([]Record, 0, len(names))
	for i := len(names) - 1; i >= 0; i-- {
		data, err := os.ReadFile(filepath.Join(dir, names[i]))
		if err != nil {
			continue
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

// Last returns at most n records, newest first.
func Last(dir string, n int) ([]Record, error) {
	all, err := List(dir)
	if err != nil {
		return nil, err
	}
	if n > 0 && n < len(all) {
		return all[:n], nil
	}
	return all, nil
}

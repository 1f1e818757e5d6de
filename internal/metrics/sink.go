package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// fileSink writes one JSON file per Record under dir. Ring pruning is not
// this type's job — see Prune — so Write alone never deletes anything.
type fileSink struct {
	dir string
}

// NewFileSink returns a Sink that writes JSON records under dir.
func NewFileSink(dir string) Sink {
	return &fileSink{dir: dir}
}

// Write encodes rec as JSON and writes it atomically (tmp file, then
// rename) under a timestamp+pid filename. Write never prunes: the caller
// — the CLI's invocation wrapper — decides when the ring gets trimmed, by
// calling Prune once the record is safely on disk.
func (s *fileSink) Write(rec Record) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("metrics: failed to create metrics directory: %w", err)
	}

	name := fmt.Sprintf("%s_%d.json", rec.StartedAt.Format("20060102_150405"), os.Getpid())
	finalPath := filepath.Join(s.dir, name)
	tmpPath := finalPath + ".tmp"

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("metrics: failed to marshal record: %w", err)
	}

	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("metrics: failed to write record: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("metrics: failed to finalize record: %w", err)
	}

	return nil
}

// Prune lists the *.json records under dir, oldest first by filename (the
// timestamp prefix sorts lexically in chronological order), and removes
// whichever lead the list until at most maxFiles remain. A file that's
// already gone by the time Remove runs is not an error: another process's
// concurrent prune may have won the race.
func Prune(dir string, maxFiles int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("metrics: failed to read metrics directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	excess := len(names) - maxFiles
	for i := 0; i < excess; i++ {
		if err := os.Remove(filepath.Join(dir, names[i])); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("metrics: failed to prune %s: %w", names[i], err)
		}
	}
	return nil
}

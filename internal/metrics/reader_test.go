package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRecord(t *testing.T, dir string, rec Record) {
	t.Helper()
	sink := NewFileSink(dir)
	require.NoError(t, sink.Write(rec))
}

func TestList_EmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	records, err := List(filepath.Join(dir, "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestList_NewestFirst(t *testing.T) {
	dir := t.TempDir()
	writeRecord(t, dir, Record{Command: "vx install node", StartedAt: time.Date(2026, 7, 29, 0, 0, 0, 0, time.UTC)})
	time.Sleep(time.Millisecond)
	writeRecord(t, dir, Record{Command: "vx run build", StartedAt: time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)})

	records, err := List(dir)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "vx run build", records[0].Command)
	assert.Equal(t, "vx install node", records[1].Command)
}

func TestList_SkipsUnparsableFiles(t *testing.T) {
	dir := t.TempDir()
	writeRecord(t, dir, Record{Command: "vx which go", StartedAt: time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260101_000000_99.json"), []byte("not json"), 0o644))

	records, err := List(dir)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "vx which go", records[0].Command)
}

func TestLast_CapsCount(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 5; i++ {
		writeRecord(t, dir, Record{Command: "vx test", StartedAt: time.Date(2026, 7, 25+i, 0, 0, 0, 0, time.UTC)})
	}

	records, err := Last(dir, 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestLast_ZeroMeansAll(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 3; i++ {
		writeRecord(t, dir, Record{Command: "vx test", StartedAt: time.Date(2026, 7, 25+i, 0, 0, 0, 0, time.UTC)})
	}

	records, err := Last(dir, 0)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

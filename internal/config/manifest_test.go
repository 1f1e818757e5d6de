package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `
[project]
name = "demo"
description = "a demo project"

[tools]
node = "20.10.0"
go = "^1.22"

[env]
FOO = "bar"

[env.required]
API_KEY = "set before running scripts that need it"

[env.optional]
DEBUG = "0"

[scripts]
build = "go build ./..."

[scripts.test]
cmd = "go test ./..."
depends_on = ["build"]
description = "run the test suite"

[settings]
auto_install = false
cache_duration = "1d"
`

func TestParseManifest(t *testing.T) {
	t.Parallel()

	cfg, err := ParseManifest([]byte(sampleManifest), "/proj")
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.Project.Name)
	assert.Equal(t, "20.10.0", cfg.Tools["node"])
	assert.Equal(t, "^1.22", cfg.Tools["go"])
	assert.Equal(t, "bar", cfg.Env.Vars["FOO"])
	assert.Equal(t, "set before running scripts that need it", cfg.Env.Required["API_KEY"])
	assert.Equal(t, "0", cfg.Env.Optional["DEBUG"])

	require.Contains(t, cfg.Scripts, "build")
	assert.Equal(t, "go build ./...", cfg.Scripts["build"].Command)

	require.Contains(t, cfg.Scripts, "test")
	assert.Equal(t, "go test ./...", cfg.Scripts["test"].Command)
	assert.Equal(t, []string{"build"}, cfg.Scripts["test"].DependsOn)
	assert.Equal(t, "run the test suite", cfg.Scripts["test"].Description)

	assert.False(t, cfg.Settings.AutoInstall)
	assert.Equal(t, "/proj", cfg.ProjectRoot)
}

func TestParseManifest_RejectsNonStringToolSpec(t *testing.T) {
	t.Parallel()

	_, err := ParseManifest([]byte(`
[tools]
node = 20
`), "/proj")
	assert.Error(t, err)
}

func TestLoadManifest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "vx.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleManifest), 0o644))

	cfg, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "20.10.0", cfg.Tools["node"])
}

func TestMarshalManifest_RoundTrip(t *testing.T) {
	t.Parallel()

	cfg, err := ParseManifest([]byte(sampleManifest), "/proj")
	require.NoError(t, err)

	data, err := MarshalManifest(cfg)
	require.NoError(t, err)

	got, err := ParseManifest(data, "/proj")
	require.NoError(t, err)

	assert.Equal(t, cfg.Project.Name, got.Project.Name)
	assert.Equal(t, cfg.Tools, got.Tools)
	assert.Equal(t, cfg.Env.Vars, got.Env.Vars)
	assert.Equal(t, cfg.Scripts["build"].Command, got.Scripts["build"].Command)
	assert.Equal(t, cfg.Scripts["test"].DependsOn, got.Scripts["test"].DependsOn)
}

func TestMarshalManifest_EmptyConfigProducesNoTables(t *testing.T) {
	t.Parallel()

	data, err := MarshalManifest(&Config{})
	require.NoError(t, err)
	assert.Empty(t, string(data))
}

func TestLoadLockfile_Missing(t *testing.T) {
	t.Parallel()

	lf, err := LoadLockfile(filepath.Join(t.TempDir(), "vx.lock"))
	require.NoError(t, err)
	assert.Nil(t, lf)
}

func TestLoadLockfile_RoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "vx.lock")
	content := `
[tools.node]
version = "20.10.0"
checksum = "sha256:abc123"
url = "https://example.com/node.tar.gz"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	lf, err := LoadLockfile(path)
	require.NoError(t, err)
	require.NotNil(t, lf)
	require.Contains(t, lf.Tools, "node")
	assert.Equal(t, "20.10.0", lf.Tools["node"].Version)
	assert.Equal(t, "sha256:abc123", lf.Tools["node"].Checksum)

	data, err := lf.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "20.10.0")
}

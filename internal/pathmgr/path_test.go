package pathmgr

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terassyi/vx/internal/platform"
)

func TestNew_DefaultHome(t *testing.T) {
	t.Setenv("VX_HOME", "")
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	p, err := New()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".vx"), p.Home())
}

func TestNew_HomeFromEnv(t *testing.T) {
	t.Setenv("VX_HOME", "/opt/vx-home")

	p, err := New()
	require.NoError(t, err)
	assert.Equal(t, "/opt/vx-home", p.Home())
}

func TestNew_WithHomeOption(t *testing.T) {
	t.Parallel()

	p, err := New(WithHome("/custom/home"))
	require.NoError(t, err)
	assert.Equal(t, "/custom/home", p.Home())
}

func TestPaths_TopLevelDirs(t *testing.T) {
	t.Parallel()

	p, err := New(WithHome("/home/u/.vx"))
	require.NoError(t, err)

	assert.Equal(t, "/home/u/.vx/store", p.StoreDir())
	assert.Equal(t, "/home/u/.vx/cache", p.CacheDir())
	assert.Equal(t, "/home/u/.vx/cache/downloads", p.DownloadsDir())
	assert.Equal(t, "/home/u/.vx/cache/versions", p.VersionsCacheDir())
	assert.Equal(t, "/home/u/.vx/cache/staging", p.StagingDir())
	assert.Equal(t, "/home/u/.vx/cache/locks", p.LocksDir())
	assert.Equal(t, "/home/u/.vx/envs", p.EnvsDir())
	assert.Equal(t, "/home/u/.vx/bin", p.BinDir())
	assert.Equal(t, "/home/u/.vx/metrics", p.MetricsDir())
	assert.Equal(t, "/home/u/.vx/config", p.ConfigDir())
}

func TestPaths_VersionAndPlatformStoreDir(t *testing.T) {
	t.Parallel()

	p, err := New(WithHome("/home/u/.vx"))
	require.NoError(t, err)
	plat := platform.Platform{OS: platform.OSLinux, Arch: platform.ArchX64}

	assert.Equal(t, "/home/u/.vx/store/node/20.10.0", p.VersionStoreDir("node", "20.10.0"))
	assert.Equal(t, "/home/u/.vx/store/node/20.10.0/linux-x64", p.PlatformStoreDir("node", "20.10.0", plat))
}

func TestPaths_ExecutablePathAndIsInStore(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	p, err := New(WithHome(tmp))
	require.NoError(t, err)
	plat := platform.Platform{OS: platform.OSLinux, Arch: platform.ArchX64}

	exe := p.ExecutablePath("node", "20.10.0", plat, filepath.Join("bin", "node"))
	assert.Equal(t, filepath.Join(tmp, "store", "node", "20.10.0", "linux-x64", "bin", "node"), exe)

	assert.False(t, p.IsVersionInStore("node", "20.10.0", plat, filepath.Join("bin", "node")))

	require.NoError(t, os.MkdirAll(filepath.Dir(exe), 0o755))
	require.NoError(t, os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755))

	assert.True(t, p.IsVersionInStore("node", "20.10.0", plat, filepath.Join("bin", "node")))
}

func TestPaths_ListStoreVersions(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	p, err := New(WithHome(tmp))
	require.NoError(t, err)
	plat := platform.Platform{OS: platform.OSLinux, Arch: platform.ArchX64}

	for _, v := range []string{"20.10.0", "18.19.0", "20.9.0"} {
		dir := p.PlatformStoreDir("node", v, plat)
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "bin"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "bin", "node"), []byte("x"), 0o755))
	}
	// A version directory with no populated platform subdir must not appear.
	require.NoError(t, os.MkdirAll(p.VersionStoreDir("node", "21.0.0"), 0o755))

	versions, err := p.ListStoreVersions("node", plat)
	require.NoError(t, err)
	assert.Equal(t, []string{"18.19.0", "20.9.0", "20.10.0"}, versions)
}

func TestPaths_ListStoreVersions_UnknownTool(t *testing.T) {
	t.Parallel()

	p, err := New(WithHome(t.TempDir()))
	require.NoError(t, err)
	plat := platform.Platform{OS: platform.OSLinux, Arch: platform.ArchX64}

	versions, err := p.ListStoreVersions("nope", plat)
	require.NoError(t, err)
	assert.Empty(t, versions)
}

func TestPaths_LockFile(t *testing.T) {
	t.Parallel()

	p, err := New(WithHome("/home/u/.vx"))
	require.NoError(t, err)
	plat := platform.Platform{OS: platform.OSDarwin, Arch: platform.ArchARM64}

	assert.Equal(t, "/home/u/.vx/cache/locks/node-20.10.0-darwin-arm64.lock", p.LockFile("node", "20.10.0", plat))
}

func TestEnsureDir(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		subPath string
	}{
		{name: "single level", subPath: "a"},
		{name: "nested levels", subPath: "a/b/c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tmpDir := t.TempDir()
			targetDir := filepath.Join(tmpDir, tt.subPath)

			err := EnsureDir(targetDir)
			require.NoError(t, err)

			info, err := os.Stat(targetDir)
			require.NoError(t, err)
			assert.True(t, info.IsDir())
		})
	}
}

func TestExpand(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "expand tilde with path", path: "~/.config/vx", want: filepath.Join(home, ".config/vx")},
		{name: "expand tilde only", path: "~", want: home},
		{name: "absolute path unchanged", path: "/usr/local/bin", want: "/usr/local/bin"},
		{name: "relative path unchanged", path: "relative/path", want: "relative/path"},
		{name: "empty path", path: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Expand(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLongPath_NonWindowsNoop(t *testing.T) {
	t.Parallel()

	long := "/" + strings.Repeat("a", 300)
	assert.Equal(t, long, LongPath(long))
}

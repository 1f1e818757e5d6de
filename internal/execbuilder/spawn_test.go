package execbuilder

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("posix shell script fixtures only")
	}
	path := filepath.Join(t.TempDir(), "script.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestSpawn_ExitCodeZero(t *testing.T) {
	path := writeScript(t, "exit 0\n")
	code, err := Spawn(context.Background(), SpawnRequest{Path: path, Env: os.Environ()})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}

func TestSpawn_NonZeroExitCode(t *testing.T) {
	path := writeScript(t, "exit 7\n")
	code, err := Spawn(context.Background(), SpawnRequest{Path: path, Env: os.Environ()})
	require.NoError(t, err)
	assert.Equal(t, 7, code)
}

func TestSpawn_NotExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bit is POSIX-only")
	}
	path := filepath.Join(t.TempDir(), "notexec")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o644))

	code, err := Spawn(context.Background(), SpawnRequest{Path: path, Env: os.Environ()})
	require.Error(t, err)
	assert.Equal(t, 126, code)
}

func TestSpawn_SpawnFailure(t *testing.T) {
	code, err := Spawn(context.Background(), SpawnRequest{Path: filepath.Join(t.TempDir(), "nonexistent"), Env: os.Environ()})
	require.Error(t, err)
	assert.Equal(t, 127, code)
}

func TestSpawn_PassesEnvAndArgs(t *testing.T) {
	path := writeScript(t, `
if [ "$MY_VAR" != "hello" ]; then exit 1; fi
if [ "$1" != "world" ]; then exit 2; fi
exit 0
`)
	code, err := Spawn(context.Background(), SpawnRequest{
		Path: path,
		Args: []string{"world"},
		Env:  append(os.Environ(), "MY_VAR=hello"),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}

package script

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terassyi/vx/internal/config"
)

func TestRun_AllSucceed(t *testing.T) {
	scripts := map[string]config.ScriptDef{
		"build": {Command: "go build"},
		"test":  {Command: "go test", DependsOn: []string{"build"}},
	}
	plan, err := Build(scripts, "test")
	require.NoError(t, err)

	var mu sync.Mutex
	var ran []string
	exec := func(ctx context.Context, name string, def config.ScriptDef) (int, error) {
		mu.Lock()
		ran = append(ran, name)
		mu.Unlock()
		return 0, nil
	}

	results, err := Run(context.Background(), plan, scripts, exec)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.ElementsMatch(t, []string{"build", "test"}, ran)
}

func TestRun_FailFastStopsLaterLayers(t *testing.T) {
	scripts := map[string]config.ScriptDef{
		"build":  {Command: "go build"},
		"deploy": {Command: "deploy.sh", DependsOn: []string{"build"}},
	}
	plan, err := Build(scripts, "deploy")
	require.NoError(t, err)

	var mu sync.Mutex
	var ran []string
	exec := func(ctx context.Context, name string, def config.ScriptDef) (int, error) {
		mu.Lock()
		ran = append(ran, name)
		mu.Unlock()
		if name == "build" {
			return 1, nil
		}
		return 0, nil
	}

	results, err := Run(context.Background(), plan, scripts, exec)
	require.Error(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, []string{"build"}, ran)
}

func TestRun_SiblingsInFlightAllFinishBeforeFailureReturned(t *testing.T) {
	scripts := map[string]config.ScriptDef{
		"release": {Command: "release.sh", DependsOn: []string{"test", "lint"}},
		"test":    {Command: "go test"},
		"lint":    {Command: "golangci-lint run"},
	}
	plan, err := Build(scripts, "release")
	require.NoError(t, err)

	var mu sync.Mutex
	finished := map[string]bool{}
	exec := func(ctx context.Context, name string, def config.ScriptDef) (int, error) {
		mu.Lock()
		finished[name] = true
		mu.Unlock()
		if name == "lint" {
			return 3, nil
		}
		return 0, nil
	}

	results, err := Run(context.Background(), plan, scripts, exec)
	require.Error(t, err)
	assert.Len(t, results, 2)
	assert.True(t, finished["test"])
	assert.True(t, finished["lint"])
}

func TestRun_ExecErrorPropagates(t *testing.T) {
	scripts := map[string]config.ScriptDef{
		"build": {Command: "go build"},
	}
	plan, err := Build(scripts, "build")
	require.NoError(t, err)

	boom := errors.New("spawn failed")
	exec := func(ctx context.Context, name string, def config.ScriptDef) (int, error) {
		return 0, boom
	}

	_, err = Run(context.Background(), plan, scripts, exec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spawn failed")
}

package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseRuntime_HooksAreNoOps(t *testing.T) {
	var b BaseRuntime
	ctx := context.Background()
	hc := HookContext{Version: "1.0.0"}

	assert.NoError(t, b.PreInstall(ctx, hc))
	assert.NoError(t, b.PostExtract(ctx, hc))
	assert.NoError(t, b.PostInstall(ctx, hc))
	assert.NoError(t, b.PreExecute(ctx, hc))
	assert.NoError(t, b.PostExecute(ctx, hc))
}

func TestVersionConstraint_ZeroValueIsUnbounded(t *testing.T) {
	var c VersionConstraint
	assert.Empty(t, c.Min)
	assert.Empty(t, c.Max)
	assert.Empty(t, c.Recommended)
}

package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpolate_PositionalArgs(t *testing.T) {
	ctx := Context{Args: []string{"first", "second"}}
	got, err := Interpolate("run {{arg1}} then {{arg2}}", ctx)
	require.NoError(t, err)
	assert.Equal(t, "run first then second", got)
}

func TestInterpolate_AllArgsAndCount(t *testing.T) {
	ctx := Context{Args: []string{"a b", "c"}}
	got, err := Interpolate("echo {{@}} ({{#}} args)", ctx)
	require.NoError(t, err)
	assert.Equal(t, `echo 'a b' 'c' (2 args)`, got)
}

func TestInterpolate_ArgsVerbatim(t *testing.T) {
	ctx := Context{Args: []string{"--flag", "value"}}
	got, err := Interpolate("tool {{args}}", ctx)
	require.NoError(t, err)
	assert.Equal(t, "tool --flag value", got)
}

func TestInterpolate_EnvProjectOsVxHome(t *testing.T) {
	ctx := Context{
		Env:     map[string]string{"STAGE": "prod"},
		Project: map[string]string{"name": "acme"},
		OS:      map[string]string{"name": "linux"},
		Vx:      map[string]string{"version": "1.2.3"},
		Home:    "/home/vx",
	}
	got, err := Interpolate("{{project.name}}-{{env.STAGE}}-{{os.name}}-{{vx.version}}-{{home}}", ctx)
	require.NoError(t, err)
	assert.Equal(t, "acme-prod-linux-1.2.3-/home/vx", got)
}

func TestInterpolate_Timestamp(t *testing.T) {
	ctx := Context{Timestamp: "20260731T000000Z"}
	got, err := Interpolate("backup-{{timestamp}}.tar", ctx)
	require.NoError(t, err)
	assert.Equal(t, "backup-20260731T000000Z.tar", got)
}

func TestInterpolate_MissingArgError(t *testing.T) {
	ctx := Context{Args: []string{"only-one"}}
	_, err := Interpolate("{{arg2}}", ctx)
	require.Error(t, err)
}

func TestInterpolate_UnknownTokenError(t *testing.T) {
	_, err := Interpolate("{{bogus}}", Context{})
	require.Error(t, err)
}

func TestInterpolate_UnterminatedTokenError(t *testing.T) {
	_, err := Interpolate("echo {{arg1", Context{Args: []string{"x"}})
	require.Error(t, err)
}

func TestInterpolate_BackticksPassThroughUntouched(t *testing.T) {
	ctx := Context{Args: []string{"x"}}
	got, err := Interpolate("echo `date` {{arg1}}", ctx)
	require.NoError(t, err)
	assert.Equal(t, "echo `date` x", got)
}

func TestInterpolate_NoTokens(t *testing.T) {
	got, err := Interpolate("go build ./...", Context{})
	require.NoError(t, err)
	assert.Equal(t, "go build ./...", got)
}

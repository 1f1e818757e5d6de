package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvAsMap(t *testing.T) {
	m := envAsMap([]string{"PATH=/usr/bin", "EMPTY=", "NOEQUALS", "A=B=C"})

	assert.Equal(t, "/usr/bin", m["PATH"])
	assert.Equal(t, "", m["EMPTY"])
	assert.Equal(t, "B=C", m["A"])
	_, ok := m["NOEQUALS"]
	assert.False(t, ok)
}

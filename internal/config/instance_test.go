package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstanceID_StableForSameConfig(t *testing.T) {
	a := Defaults()
	b := Defaults()

	idA, err := InstanceID(a)
	require.NoError(t, err)
	idB, err := InstanceID(b)
	require.NoError(t, err)

	assert.Equal(t, idA, idB, "identical configs must produce the same instance id")
	assert.Len(t, idA, 16)
}

func TestInstanceID_ChangesWithConfig(t *testing.T) {
	a := Defaults()
	b := Defaults()
	b.Editor.Bin = "/opt/nvim/bin/nvim"

	idA, err := InstanceID(a)
	require.NoError(t, err)
	idB, err := InstanceID(b)
	require.NoError(t, err)

	assert.NotEqual(t, idA, idB, "different configs must produce different instance ids")
}

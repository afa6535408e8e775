package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	backend := NewMemory()

	var out payload
	found, err := GetJSON(ctx, backend, "missing", &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, backend, "k", payload{Name: "a", Count: 2}))

	found, err = GetJSON(ctx, backend, "k", &out)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, payload{Name: "a", Count: 2}, out)
}

func TestGetJSON_CorruptValue(t *testing.T) {
	ctx := context.Background()
	backend := NewMemory()
	require.NoError(t, backend.Set(ctx, "k", "{not json"))

	var out payload
	_, err := GetJSON(ctx, backend, "k", &out)
	assert.Error(t, err)
}

func TestMemory_Remove(t *testing.T) {
	ctx := context.Background()
	backend := NewMemory()
	require.NoError(t, backend.Set(ctx, "a", "1"))
	require.NoError(t, backend.Set(ctx, "b", "2"))

	require.NoError(t, backend.Remove(ctx, "a"))
	require.NoError(t, backend.Remove(ctx, "never-set"))

	assert.Equal(t, []string{"b"}, backend.Keys())
}

package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestSetGet(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", payload{Name: "alpha", Count: 3}, time.Minute))

	var got payload
	require.NoError(t, c.Get(ctx, "k", &got))
	assert.Equal(t, payload{Name: "alpha", Count: 3}, got)
}

func TestGet_Miss(t *testing.T) {
	c := NewMemoryCache()

	var got payload
	assert.Error(t, c.Get(context.Background(), "missing", &got))
}

func TestGet_Expired(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", payload{Name: "x"}, time.Nanosecond))
	time.Sleep(time.Millisecond)

	var got payload
	assert.Error(t, c.Get(ctx, "k", &got))
}

func TestDelete(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", payload{Name: "x"}, time.Minute))
	require.NoError(t, c.Delete(ctx, "k"))

	var got payload
	assert.Error(t, c.Get(ctx, "k", &got))
}

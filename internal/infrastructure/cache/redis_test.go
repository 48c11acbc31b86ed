package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedis_UnavailableIsAMiss(t *testing.T) {
	ctx := context.Background()
	r := NewWithClient(nil, time.Minute, nil)

	var out map[string]string
	found, err := r.GetJSON(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, r.SetJSON(ctx, "k", map[string]string{"a": "b"}, 0))
	assert.NoError(t, r.Delete(ctx, "k"))
	assert.NoError(t, r.DeleteByPattern(ctx, "k:*"))
	assert.ErrorIs(t, r.Ping(ctx), ErrUnavailable)

	_, _, err = r.Hit(ctx, "rl:1.2.3.4", time.Minute)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestRedis_NilReceiver(t *testing.T) {
	var r *Redis
	found, err := r.GetJSON(context.Background(), "k", &struct{}{})
	assert.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, r.Close())
}

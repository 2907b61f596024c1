package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, ttl), mr
}

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestSetGetRoundTrip(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)

	require.NoError(t, c.SetJSON(context.Background(), "k", payload{Name: "мляко", Count: 2}))

	var got payload
	ok, err := c.GetJSON(context.Background(), "k", &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, payload{Name: "мляко", Count: 2}, got)
}

func TestGetMiss(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)

	var got payload
	ok, err := c.GetJSON(context.Background(), "absent", &got)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestInvalidate(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)

	require.NoError(t, c.SetJSON(context.Background(), "k", payload{Name: "x"}))
	require.NoError(t, c.Invalidate(context.Background(), "k"))

	var got payload
	ok, err := c.GetJSON(context.Background(), "k", &got)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEntriesExpire(t *testing.T) {
	c, mr := newTestCache(t, time.Second)

	require.NoError(t, c.SetJSON(context.Background(), "k", payload{Name: "x"}))
	mr.FastForward(2 * time.Second)

	var got payload
	ok, err := c.GetJSON(context.Background(), "k", &got)
	require.NoError(t, err)
	require.False(t, ok)
}

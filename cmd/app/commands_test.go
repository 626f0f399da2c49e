package main

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wichananm65/campus-market-backend/internal/broadcast"
)

func TestConnectRelay(t *testing.T) {
	ctx := context.Background()
	hub := broadcast.NewHub(4)

	t.Run("disabled", func(t *testing.T) {
		relay, err := connectRelay(ctx, "", hub)
		require.NoError(t, err)
		assert.Nil(t, relay)
	})

	t.Run("reachable", func(t *testing.T) {
		mr := miniredis.RunT(t)
		relay, err := connectRelay(ctx, "redis://"+mr.Addr(), hub)
		require.NoError(t, err)
		require.NotNil(t, relay)
		assert.NoError(t, relay.Close())
	})

	t.Run("unreachable falls back to the hub", func(t *testing.T) {
		mr := miniredis.NewMiniRedis()
		require.NoError(t, mr.Start())
		addr := mr.Addr()
		mr.Close()

		relay, err := connectRelay(ctx, "redis://"+addr, hub)
		require.NoError(t, err)
		assert.Nil(t, relay)
	})

	t.Run("malformed url", func(t *testing.T) {
		_, err := connectRelay(ctx, "not a url", hub)
		assert.Error(t, err)
	})
}

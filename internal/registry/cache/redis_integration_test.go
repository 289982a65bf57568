//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	platformredis "github.com/consciencex/lhb-ubo/internal/platform/redis"
	"github.com/consciencex/lhb-ubo/internal/registry"
	"github.com/consciencex/lhb-ubo/pkg/testutil/containers"
)

func TestRedisCache_Integration(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	client := &platformredis.Client{Client: rc.Client}

	var calls int
	upstream := registry.LookupFunc(func(ctx context.Context, registrationID string) (*registry.CompanyRecord, error) {
		calls++
		return &registry.CompanyRecord{
			RegistrationID: registrationID,
			NameEN:         "ACME HOLDINGS",
			Shareholders: []registry.Shareholder{
				{Kind: registry.HolderPerson, DisplayName: "SOMCHAI RATANAKORN", Percent: 50},
			},
		}, nil
	})

	cache := NewRedis(upstream, client, time.Minute, nil)
	ctx := context.Background()

	t.Run("second lookup is served from cache", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))
		calls = 0

		first, err := cache.Lookup(ctx, "0105500000011")
		require.NoError(t, err)

		second, err := cache.Lookup(ctx, "0105500000011")
		require.NoError(t, err)

		assert.Equal(t, 1, calls)
		assert.Equal(t, first.NameEN, second.NameEN)
		require.Len(t, second.Shareholders, 1)
		assert.Equal(t, "SOMCHAI RATANAKORN", second.Shareholders[0].DisplayName)
	})

	t.Run("corrupt entry falls through to upstream", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))
		calls = 0

		require.NoError(t, rc.Client.Set(ctx, "ubo:registry:0105500000011", "{not json", time.Minute).Err())

		got, err := cache.Lookup(ctx, "0105500000011")
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.Equal(t, "ACME HOLDINGS", got.NameEN)
	})

	t.Run("entries expire with the configured ttl", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))
		calls = 0

		shortCache := NewRedis(upstream, client, 100*time.Millisecond, nil)

		_, err := shortCache.Lookup(ctx, "0105500000022")
		require.NoError(t, err)

		time.Sleep(200 * time.Millisecond)

		_, err = shortCache.Lookup(ctx, "0105500000022")
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})
}

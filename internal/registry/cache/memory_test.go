package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consciencex/lhb-ubo/internal/registry"
)

func countingLookup(calls *int, record *registry.CompanyRecord, err error) registry.Lookup {
	return registry.LookupFunc(func(ctx context.Context, registrationID string) (*registry.CompanyRecord, error) {
		*calls++
		if err != nil {
			return nil, err
		}
		return record, nil
	})
}

func TestMemory_CachesSuccessfulLookups(t *testing.T) {
	var calls int
	record := &registry.CompanyRecord{RegistrationID: "0105500000011", NameEN: "ACME"}
	cache := NewMemory(countingLookup(&calls, record, nil), time.Minute)

	for range 3 {
		got, err := cache.Lookup(context.Background(), "0105500000011")
		require.NoError(t, err)
		assert.Equal(t, "ACME", got.NameEN)
	}

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, cache.Len())
}

func TestMemory_DoesNotCacheFailures(t *testing.T) {
	var calls int
	lookupErr := registry.NewLookupError(registry.ErrorProviderOutage, "0105500000011", "down", nil)
	cache := NewMemory(countingLookup(&calls, nil, lookupErr), time.Minute)

	for range 2 {
		_, err := cache.Lookup(context.Background(), "0105500000011")
		require.ErrorIs(t, err, lookupErr)
	}

	assert.Equal(t, 2, calls)
	assert.Equal(t, 0, cache.Len())
}

func TestMemory_EntriesExpire(t *testing.T) {
	var calls int
	record := &registry.CompanyRecord{RegistrationID: "0105500000011"}
	cache := NewMemory(countingLookup(&calls, record, nil), time.Minute)

	now := time.Now()
	cache.clock = func() time.Time { return now }

	_, err := cache.Lookup(context.Background(), "0105500000011")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)

	_, err = cache.Lookup(context.Background(), "0105500000011")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestMemory_ZeroTTLNeverExpires(t *testing.T) {
	var calls int
	record := &registry.CompanyRecord{RegistrationID: "0105500000011"}
	cache := NewMemory(countingLookup(&calls, record, nil), 0)

	now := time.Now()
	cache.clock = func() time.Time { return now }

	_, err := cache.Lookup(context.Background(), "0105500000011")
	require.NoError(t, err)

	now = now.Add(24 * time.Hour)

	_, err = cache.Lookup(context.Background(), "0105500000011")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

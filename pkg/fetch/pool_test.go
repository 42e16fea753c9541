package fetch

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xfery/dropship-backend/pkg/config"
)

func testPool() *Pool {
	return NewPool(config.FetchConfig{Concurrency: 2, Interval: time.Millisecond})
}

func TestCollectPreservesInputOrder(t *testing.T) {
	keys := []string{"a", "b", "c", "d"}
	results, err := Collect(context.Background(), testPool(), keys, func(ctx context.Context, key string) (string, error) {
		return "v:" + key, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"v:a", "v:b", "v:c", "v:d"}, results)
}

func TestCollectDropsFailedKeys(t *testing.T) {
	keys := []string{"a", "bad", "c"}
	results, err := Collect(context.Background(), testPool(), keys, func(ctx context.Context, key string) (string, error) {
		if key == "bad" {
			return "", errors.New("boom")
		}
		return "v:" + key, nil
	})
	require.Error(t, err, "failed keys surface through the aggregated error")
	assert.Equal(t, []string{"v:a", "v:c"}, results)
	assert.Contains(t, err.Error(), "bad")
}

func TestCollectEmptyKeys(t *testing.T) {
	results, err := Collect(context.Background(), testPool(), nil, func(ctx context.Context, key string) (string, error) {
		return key, nil
	})
	require.NoError(t, err)
	assert.Nil(t, results)
}

func TestCollectHonorsConcurrencyLimit(t *testing.T) {
	pool := NewPool(config.FetchConfig{Concurrency: 2, Interval: time.Nanosecond})

	var inFlight, peak atomic.Int32
	keys := make([]string, 10)
	for i := range keys {
		keys[i] = fmt.Sprintf("k%d", i)
	}

	_, err := Collect(context.Background(), pool, keys, func(ctx context.Context, key string) (string, error) {
		current := inFlight.Add(1)
		for {
			observed := peak.Load()
			if current <= observed || peak.CompareAndSwap(observed, current) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		inFlight.Add(-1)
		return key, nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestCollectStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Collect(ctx, NewPool(config.FetchConfig{Concurrency: 1, Interval: time.Hour}), []string{"a"}, func(ctx context.Context, key string) (string, error) {
		return key, nil
	})
	require.Error(t, err)
}

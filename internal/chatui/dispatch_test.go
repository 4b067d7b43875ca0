package chatui

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherKeepsOrderPerKey(t *testing.T) {
	d := NewDispatcher(4, 1)

	var mu sync.Mutex
	got := make(map[int64][]int)
	for i := range 200 {
		key := int64(i%5) - 2 // negative ids are group chats on Telegram
		ok := d.Submit(context.Background(), key, func() {
			mu.Lock()
			got[key] = append(got[key], i)
			mu.Unlock()
		})
		require.True(t, ok)
	}
	d.Close()

	require.Len(t, got, 5)
	for key, seq := range got {
		assert.Len(t, seq, 40, "key %d", key)
		assert.IsIncreasing(t, seq, "key %d", key)
	}
}

func TestDispatcherSubmitStopsOnCancel(t *testing.T) {
	d := NewDispatcher(1, 0)
	release := make(chan struct{})
	require.True(t, d.Submit(context.Background(), 1, func() { <-release }))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.False(t, d.Submit(ctx, 1, func() {}))

	close(release)
	d.Close()
}

func TestDispatcherWorkerIsStable(t *testing.T) {
	d := NewDispatcher(3, 0)
	defer d.Close()

	assert.Equal(t, d.worker(7), d.worker(7))
	assert.Equal(t, d.worker(-7), d.worker(-7))
	for _, key := range []int64{0, 1, -1, 1 << 40, -(1 << 40)} {
		w := d.worker(key)
		assert.GreaterOrEqual(t, w, 0)
		assert.Less(t, w, 3)
	}
}

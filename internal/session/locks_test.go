package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedMutexBlocksSameKey(t *testing.T) {
	m := newKeyedMutex()
	unlock, err := m.Lock(context.Background(), "u1")
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		release, err := m.Lock(context.Background(), "u1")
		assert.NoError(t, err)
		close(acquired)
		release()
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while first is held")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()
	unlock()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second lock never acquired")
	}
}

func TestKeyedMutexOtherKeysDoNotWait(t *testing.T) {
	m := newKeyedMutex()
	unlock, err := m.Lock(context.Background(), "u1")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	other, err := m.Lock(ctx, "u2")
	require.NoError(t, err)
	other()
}

func TestKeyedMutexHonoursContext(t *testing.T) {
	m := newKeyedMutex()
	unlock, err := m.Lock(context.Background(), "u1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = m.Lock(ctx, "u1")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	assert.Zero(t, m.size())
}

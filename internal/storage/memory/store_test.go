package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PoluyanbIch/GoQuizBot/internal/session"
)

func TestStoreRoundTripDoesNotAlias(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	rec := session.Record{Score: 1, Task: &session.Task{Question: "Q", Answer: "a"}}
	require.NoError(t, store.Set(ctx, "u", rec))
	rec.Task.CountAnswer = 99

	got, err := store.Get(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Task.CountAnswer)

	ok, err := store.Exists(ctx, "u")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStoreNotFound(t *testing.T) {
	_, err := NewStore().Get(context.Background(), "missing")
	require.ErrorIs(t, err, session.ErrNotFound)
}

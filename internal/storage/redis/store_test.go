package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PoluyanbIch/GoQuizBot/internal/session"
)

func newTestClient(t *testing.T, mr *miniredis.Miniredis, prefix string) *Client {
	t.Helper()
	logger, _ := test.NewNullLogger()
	client := NewClient(Options{
		Addr:                 mr.Addr(),
		Timeout:              200 * time.Millisecond,
		RetryAttempts:        2,
		RetryInitialInterval: time.Millisecond,
		RetryMaxInterval:     5 * time.Millisecond,
		KeyPrefix:            prefix,
		Logger:               logger,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestSessionStoreRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewSessionStore(newTestClient(t, mr, ""))
	ctx := context.Background()

	rec := session.Record{
		Score:         2,
		Task:          &session.Task{Question: "Q1", Answer: "a", CountAnswer: 1},
		SeenQuestions: []string{"0123456789abcdef"},
	}
	require.NoError(t, store.Set(ctx, "100", rec))

	got, err := store.Get(ctx, "100")
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	raw, err := mr.Get("100")
	require.NoError(t, err)
	assert.JSONEq(t, `{"score":2,"task":{"question":"Q1","answer":"a","count_answer":1},"seen_questions":["0123456789abcdef"]}`, raw)
	assert.Zero(t, mr.TTL("100"))
}

func TestSessionStoreExistsAndNotFound(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewSessionStore(newTestClient(t, mr, "tg:"))
	ctx := context.Background()

	ok, err := store.Exists(ctx, "7")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.Get(ctx, "7")
	require.ErrorIs(t, err, session.ErrNotFound)

	require.NoError(t, store.Set(ctx, "7", session.Record{}))
	ok, err = store.Exists(ctx, "7")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists("tg:7"))
}

func TestSessionStoreReadsLegacyRecord(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("55", `{"score": 4, "question_hashs": [123, -456], "task": {"question": "Q", "answer": "a", "count_answer": 2}}`))
	store := NewSessionStore(newTestClient(t, mr, ""))

	got, err := store.Get(context.Background(), "55")
	require.NoError(t, err)
	assert.Equal(t, 4, got.Score)
	assert.Equal(t, &session.Task{Question: "Q", Answer: "a", CountAnswer: 2}, got.Task)
}

func TestSessionStoreMalformedRecord(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("9", "{broken"))
	store := NewSessionStore(newTestClient(t, mr, ""))

	_, err := store.Get(context.Background(), "9")
	require.ErrorIs(t, err, session.ErrMalformedRecord)
}

func TestSessionStoreUnavailableAfterRetries(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewSessionStore(newTestClient(t, mr, ""))
	mr.Close()

	err := store.Set(context.Background(), "1", session.Record{})
	require.ErrorIs(t, err, session.ErrUnavailable)

	_, err = store.Get(context.Background(), "1")
	require.ErrorIs(t, err, session.ErrUnavailable)
}

func TestSessionStoreRecoversAfterRestart(t *testing.T) {
	mr := miniredis.RunT(t)
	client := newTestClient(t, mr, "")
	store := NewSessionStore(client)
	require.NoError(t, store.Set(context.Background(), "1", session.Record{Score: 1}))

	mr.Close()
	require.NoError(t, mr.Restart())

	got, err := store.Get(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Score)
	require.NoError(t, client.Ping(context.Background()))
}

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(errors.New("LOADING Redis is loading the dataset in memory")))
	assert.True(t, isTransient(errors.New("BUSY Redis is busy running a script")))
	assert.False(t, isTransient(errors.New("WRONGTYPE Operation against a key holding the wrong kind of value")))
	assert.False(t, isTransient(context.Canceled))
	assert.False(t, isTransient(nil))
}

func TestLeaderboardKeepsBestScore(t *testing.T) {
	mr := miniredis.RunT(t)
	lb := NewLeaderboard(newTestClient(t, mr, ""))
	ctx := context.Background()

	require.NoError(t, lb.Record(ctx, "alice", 3))
	require.NoError(t, lb.Record(ctx, "bob", 5))
	require.NoError(t, lb.Record(ctx, "alice", 1))
	require.NoError(t, lb.Record(ctx, "carol", 4))

	top, err := lb.Top(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "bob", top[0].UserID)
	assert.Equal(t, 5, top[0].Score)
	assert.Equal(t, "carol", top[1].UserID)

	all, err := lb.Top(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 3, all[2].Score)

	pos, err := lb.Position(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 3, pos)

	pos, err = lb.Position(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, -1, pos)
}

package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dailybag/core"
	"dailybag/engine"
)

// newTestClient spins up a miniredis server and returns a client plus cleanup.
func newTestClient(t *testing.T) (*redis.Client, func()) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cleanup := func() {
		_ = client.Close()
		mr.Close()
	}
	return client, cleanup
}

func TestStore_ChoreLifecycle(t *testing.T) {
	client, cleanup := newTestClient(t)
	defer cleanup()

	store := NewWithClient(client)
	ctx := context.Background()
	user := core.UserID("mia")

	require.NoError(t, store.PutRecord(ctx, core.ChoreRecord{ID: "c1", Title: "Dishes", AssignedTo: user, Points: 10}))
	require.NoError(t, store.PutRecord(ctx, core.ChoreRecord{ID: "c2", Title: "Laundry", AssignedTo: user, Points: 15}))

	records, err := store.ListRecords(ctx, user)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "c1", records[0].ID)
	assert.Equal(t, "c2", records[1].ID)

	at := time.Now().UTC().Truncate(time.Second)
	rec, err := store.CompleteRecord(ctx, user, "c1", at)
	require.NoError(t, err)
	assert.True(t, rec.Completed)
	assert.Equal(t, user, rec.CompletedBy)
	require.NotNil(t, rec.CompletedAt)
	assert.True(t, rec.CompletedAt.Equal(at))

	// completion persists
	records, err = store.ListRecords(ctx, user)
	require.NoError(t, err)
	assert.True(t, records[0].Completed)
}

func TestStore_CompleteErrors(t *testing.T) {
	client, cleanup := newTestClient(t)
	defer cleanup()

	store := NewWithClient(client)
	ctx := context.Background()
	user := core.UserID("mia")

	_, err := store.CompleteRecord(ctx, user, "missing", time.Now())
	assert.ErrorIs(t, err, engine.ErrChoreNotFound)

	require.NoError(t, store.PutRecord(ctx, core.ChoreRecord{ID: "c1", AssignedTo: user, Points: 5}))
	_, err = store.CompleteRecord(ctx, user, "c1", time.Now())
	require.NoError(t, err)

	_, err = store.CompleteRecord(ctx, user, "c1", time.Now())
	assert.ErrorIs(t, err, engine.ErrAlreadyCompleted)
}

func TestStore_PutRecordReplaces(t *testing.T) {
	client, cleanup := newTestClient(t)
	defer cleanup()

	store := NewWithClient(client)
	ctx := context.Background()
	user := core.UserID("leo")

	require.NoError(t, store.PutRecord(ctx, core.ChoreRecord{ID: "c1", Title: "Sweep", AssignedTo: user, Points: 5}))
	require.NoError(t, store.PutRecord(ctx, core.ChoreRecord{ID: "c1", Title: "Sweep the porch", AssignedTo: user, Points: 10}))

	records, err := store.ListRecords(ctx, user)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Sweep the porch", records[0].Title)
	assert.Equal(t, 10, records[0].Points)
}

func TestStore_LifetimePoints(t *testing.T) {
	client, cleanup := newTestClient(t)
	defer cleanup()

	store := NewWithClient(client)
	ctx := context.Background()
	user := core.UserID("mia")

	total, err := store.LifetimePoints(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	total, err = store.AddLifetimePoints(ctx, user, 25)
	require.NoError(t, err)
	assert.Equal(t, 25, total)

	total, err = store.AddLifetimePoints(ctx, user, 10)
	require.NoError(t, err)
	assert.Equal(t, 35, total)

	// negative deltas never shrink the counter
	total, err = store.AddLifetimePoints(ctx, user, -50)
	require.NoError(t, err)
	assert.Equal(t, 35, total)
}

func TestStore_UsersAreIsolated(t *testing.T) {
	client, cleanup := newTestClient(t)
	defer cleanup()

	store := NewWithClient(client)
	ctx := context.Background()

	require.NoError(t, store.PutRecord(ctx, core.ChoreRecord{ID: "c1", AssignedTo: "mia", Points: 5}))

	records, err := store.ListRecords(ctx, "leo")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStore_New_ConnectionFailure(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Addr = "localhost:1" // nothing listens here
	cfg.DialTimeout = 100 * time.Millisecond

	_, err := New(cfg)
	assert.Error(t, err)
}

func TestStore_EncodingRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewWithClient(client)
	ctx := context.Background()

	final := 12
	rec := core.ChoreRecord{ID: "c9", Title: "Vacuum", AssignedTo: "leo", Points: 10, FinalPoints: &final}
	require.NoError(t, store.PutRecord(ctx, rec))

	records, err := store.ListRecords(ctx, "leo")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].FinalPoints)
	assert.Equal(t, 12, *records[0].FinalPoints)
	assert.Equal(t, 12, records[0].AwardedPoints())
}

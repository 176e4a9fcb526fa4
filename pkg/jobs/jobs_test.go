package jobs

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJob(t *testing.T) {
	j := New("tower.png", 0)
	assert.True(t, strings.HasPrefix(j.ID, "job_"))
	assert.Equal(t, StatusPending, j.Status)
	assert.WithinDuration(t, j.CreatedAt.Add(DefaultTTL), j.ExpiresAt, time.Second)
	assert.NotEqual(t, j.ID, New("tower.png", 0).ID)
}

func TestJobLifecycle(t *testing.T) {
	j := New("a.png", time.Hour)
	assert.Zero(t, j.Duration())

	j.Start()
	assert.Equal(t, StatusRunning, j.Status)
	j.Finish(nil)
	assert.Equal(t, StatusDone, j.Status)
	assert.GreaterOrEqual(t, j.Duration(), time.Duration(0))
	assert.Empty(t, j.Error)

	f := New("b.png", time.Hour)
	f.Start()
	f.Finish(errors.New("decode failed"))
	assert.Equal(t, StatusFailed, f.Status)
	assert.Equal(t, "decode failed", f.Error)
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("SEAMCARVER_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("SEAMCARVER_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	s, err := NewMongoStore(ctx, uri, "seamcarver_test_"+strings.ReplaceAll(NewID(), "-", ""))
	require.NoError(t, err)
	defer func() {
		_ = s.coll.Database().Drop(ctx)
		_ = s.Close(ctx)
	}()
	testStore(t, s)
}

// testStore exercises the Store contract against any backend.
func testStore(t *testing.T, s Store) {
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	j := New("first.png", time.Hour)
	j.TargetWidth = 10
	require.NoError(t, s.Create(ctx, j))
	assert.ErrorIs(t, s.Create(ctx, j), ErrExists)

	got, err := s.Get(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, "first.png", got.Name)
	assert.Equal(t, 10, got.TargetWidth)

	// Stored copies are independent of the caller's value.
	j.Name = "mutated"
	got, err = s.Get(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, "first.png", got.Name)

	got.Start()
	got.SeamsRemoved = 4
	got.Finish(nil)
	require.NoError(t, s.Update(ctx, got))
	got, err = s.Get(ctx, j.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, got.Status)
	assert.Equal(t, 4, got.SeamsRemoved)

	assert.ErrorIs(t, s.Update(ctx, &Job{ID: "missing"}), ErrNotFound)

	second := New("second.png", time.Hour)
	second.CreatedAt = second.CreatedAt.Add(time.Second)
	require.NoError(t, s.Create(ctx, second))

	list, err := s.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")

	list, err = s.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	expired := New("old.png", time.Hour)
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, s.Create(ctx, expired))
	_, err = s.Get(ctx, expired.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Cleanup(ctx))
	list, err = s.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

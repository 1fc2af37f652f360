package polls

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classpulse/backend/internal/models"
)

var twoOptions = []models.PollOption{{Text: "Yes", IsCorrect: true}, {Text: "No"}}

func TestMemoryStore_ActivePollLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	p1, err := s.Create(ctx, "Q1", twoOptions, 30, 1)
	require.NoError(t, err)
	assert.True(t, p1.Active)

	active, err := s.FindActive(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, p1.ID, active.ID)

	require.NoError(t, s.DeactivateAll(ctx))
	p2, err := s.Create(ctx, "Q2", twoOptions, 30, 2)
	require.NoError(t, err)

	// Exactly one poll is active after a second create.
	active, err = s.FindActive(ctx)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, p2.ID, active.ID)

	last, err := s.FindLastFinished(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, p1.ID, last.ID)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMemoryStore_AtomicAppendAnswer(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	p, err := s.Create(ctx, "Q", twoOptions, 30, 1)
	require.NoError(t, err)

	t.Run("first answer succeeds", func(t *testing.T) {
		updated, err := s.AtomicAppendAnswer(ctx, p.ID, "stu-1", "Ana", 0)
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Len(t, updated.Answers, 1)
	})

	t.Run("duplicate fails", func(t *testing.T) {
		updated, err := s.AtomicAppendAnswer(ctx, p.ID, "stu-1", "Ana", 1)
		require.NoError(t, err)
		assert.Nil(t, updated)
	})

	t.Run("unknown poll fails", func(t *testing.T) {
		updated, err := s.AtomicAppendAnswer(ctx, uuid.New(), "stu-2", "Ben", 0)
		require.NoError(t, err)
		assert.Nil(t, updated)
	})

	t.Run("inactive poll fails", func(t *testing.T) {
		_, err := s.SetInactive(ctx, p.ID)
		require.NoError(t, err)
		updated, err := s.AtomicAppendAnswer(ctx, p.ID, "stu-2", "Ben", 0)
		require.NoError(t, err)
		assert.Nil(t, updated)
	})
}

// TestMemoryStore_ConcurrentDuplicateSubmissions verifies that racing
// submissions from the same student yield exactly one success.
func TestMemoryStore_ConcurrentDuplicateSubmissions(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	p, err := s.Create(ctx, "Q", twoOptions, 30, 1)
	require.NoError(t, err)

	var successes atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			updated, err := s.AtomicAppendAnswer(ctx, p.ID, "stu-1", "Ana", idx%2)
			if err == nil && updated != nil {
				successes.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), successes.Load())
	final, err := s.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, final.Answers, 1)
}

func TestMemoryStore_RemoveAnswer(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	p, err := s.Create(ctx, "Q", twoOptions, 30, 1)
	require.NoError(t, err)

	_, err = s.AtomicAppendAnswer(ctx, p.ID, "stu-1", "Ana", 0)
	require.NoError(t, err)
	require.NoError(t, s.RemoveAnswer(ctx, p.ID, "stu-1"))

	got, err := s.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Answers)

	// The slot is reclaimable after a rollback.
	updated, err := s.AtomicAppendAnswer(ctx, p.ID, "stu-1", "Ana", 1)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Len(t, updated.Answers, 1)
}

func TestMemoryStore_ListAllNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for i := 1; i <= 3; i++ {
		_, err := s.Create(ctx, "Q", twoOptions, 30, i)
		require.NoError(t, err)
	}

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 3, all[0].SequenceNumber)
	assert.Equal(t, 1, all[2].SequenceNumber)
}

func TestMemoryStore_SnapshotsAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	p, err := s.Create(ctx, "Q", twoOptions, 30, 1)
	require.NoError(t, err)

	before, err := s.Get(ctx, p.ID)
	require.NoError(t, err)
	_, err = s.AtomicAppendAnswer(ctx, p.ID, "stu-1", "Ana", 0)
	require.NoError(t, err)

	// The earlier snapshot must not see the later mutation.
	assert.Empty(t, before.Answers)
}

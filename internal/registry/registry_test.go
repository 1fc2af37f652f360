package registry

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/containerd/errdefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/classpulse/backend/internal/models"
)

// fakeProbe reports liveness from a settable map; unknown connections are
// treated as live by default so joins don't self-evict.
type fakeProbe struct {
	mu   sync.Mutex
	dead map[string]bool
}

func (p *fakeProbe) IsConnected(connID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.dead[connID]
}

func (p *fakeProbe) markDead(connID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dead == nil {
		p.dead = make(map[string]bool)
	}
	p.dead[connID] = true
}

func newTestRegistry() (*Registry, *fakeProbe) {
	probe := &fakeProbe{}
	return New(probe, zap.NewNop()), probe
}

func TestRegistry_JoinLeaveGet(t *testing.T) {
	r, _ := newTestRegistry()

	require.NoError(t, r.Join("c1", "Ana", models.RoleStudent))
	p := r.Get("c1")
	require.NotNil(t, p)
	assert.Equal(t, "Ana", p.Name)
	assert.Equal(t, models.RoleStudent, p.Role)

	r.Leave("c1")
	assert.Nil(t, r.Get("c1"))
	// Idempotent.
	r.Leave("c1")
}

func TestRegistry_SingleTeacher(t *testing.T) {
	t.Run("second live teacher rejected", func(t *testing.T) {
		r, _ := newTestRegistry()
		require.NoError(t, r.Join("t1", "Mr. A", models.RoleTeacher))

		err := r.Join("t2", "Ms. B", models.RoleTeacher)
		require.Error(t, err)
		assert.True(t, errdefs.IsConflict(err))
		assert.EqualError(t, err, "A teacher is already in the session")
		assert.Equal(t, "t1", r.FindTeacher().ID)
	})

	t.Run("stale teacher slot is reclaimable", func(t *testing.T) {
		r, probe := newTestRegistry()
		require.NoError(t, r.Join("t1", "Mr. A", models.RoleTeacher))
		probe.markDead("t1")

		require.NoError(t, r.Join("t2", "Ms. B", models.RoleTeacher))
		assert.Equal(t, "t2", r.FindTeacher().ID)
		assert.Nil(t, r.Get("t1"))
	})

	t.Run("concurrent teacher joins admit exactly one", func(t *testing.T) {
		r, _ := newTestRegistry()
		var successes atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				if err := r.Join(string(rune('a'+n)), "Teacher", models.RoleTeacher); err == nil {
					successes.Add(1)
				}
			}(i)
		}
		wg.Wait()
		assert.Equal(t, int32(1), successes.Load())
	})
}

func TestRegistry_RoleQueries(t *testing.T) {
	r, _ := newTestRegistry()
	require.NoError(t, r.Join("t1", "Teacher", models.RoleTeacher))
	require.NoError(t, r.Join("s1", "Ana", models.RoleStudent))
	require.NoError(t, r.Join("s2", "Ben", models.RoleStudent))

	assert.Len(t, r.ListAll(), 3)
	assert.Len(t, r.ListStudents(), 2)
	for _, s := range r.ListStudents() {
		assert.Equal(t, models.RoleStudent, s.Role)
	}
	require.NotNil(t, r.FindTeacher())
	assert.Equal(t, "t1", r.FindTeacher().ID)
}

func TestRegistry_Kick(t *testing.T) {
	setup := func(t *testing.T) *Registry {
		r, _ := newTestRegistry()
		require.NoError(t, r.Join("t1", "Teacher", models.RoleTeacher))
		require.NoError(t, r.Join("s1", "Ana", models.RoleStudent))
		return r
	}

	t.Run("teacher kicks student, notify fires before removal", func(t *testing.T) {
		r := setup(t)
		notified := false
		target, err := r.Kick("t1", "s1", func(target *models.Participant) {
			notified = true
			assert.Equal(t, "Ana", target.Name)
			// Still registered while being notified.
			assert.NotNil(t, r.Get("s1"))
		})
		require.NoError(t, err)
		assert.True(t, notified)
		assert.Equal(t, "s1", target.ID)
		assert.Nil(t, r.Get("s1"))
	})

	t.Run("non-teacher cannot kick", func(t *testing.T) {
		r := setup(t)
		require.NoError(t, r.Join("s2", "Ben", models.RoleStudent))
		_, err := r.Kick("s2", "s1", nil)
		require.Error(t, err)
		assert.True(t, errdefs.IsPermissionDenied(err))
		assert.EqualError(t, err, "Only teachers can kick students")
	})

	t.Run("unknown requester cannot kick", func(t *testing.T) {
		r := setup(t)
		_, err := r.Kick("ghost", "s1", nil)
		assert.True(t, errdefs.IsPermissionDenied(err))
	})

	t.Run("unknown target", func(t *testing.T) {
		r := setup(t)
		_, err := r.Kick("t1", "ghost", nil)
		require.Error(t, err)
		assert.True(t, errdefs.IsNotFound(err))
		assert.EqualError(t, err, "Student not found")
	})

	t.Run("cannot kick a teacher", func(t *testing.T) {
		r := setup(t)
		_, err := r.Kick("t1", "t1", nil)
		require.Error(t, err)
		assert.EqualError(t, err, "Cannot kick a teacher")
	})
}

// Package registry tracks the connected participants of the live session
// and enforces the single-teacher invariant.
package registry

import (
	"sync"

	"go.uber.org/zap"

	"github.com/classpulse/backend/internal/models"
	"github.com/classpulse/backend/internal/shared"
)

// ConnectionProbe reports whether a connection is still open. Used to
// detect stale teacher registrations left behind by a crashed connection.
type ConnectionProbe interface {
	IsConnected(connID string) bool
}

// Registry is the in-memory session membership registry. It owns the
// participant map exclusively; other components only read through it.
type Registry struct {
	mu           sync.RWMutex
	participants map[string]*models.Participant
	probe        ConnectionProbe
	logger       *zap.Logger
}

// New creates an empty registry. The probe verifies connection liveness
// for the teacher slot check.
func New(probe ConnectionProbe, logger *zap.Logger) *Registry {
	return &Registry{
		participants: make(map[string]*models.Participant),
		probe:        probe,
		logger:       logger,
	}
}

// Join registers a connection as a participant. A second live teacher is
// rejected; a registered but disconnected teacher is treated as stale and
// evicted before the occupancy check, so a crashed teacher's slot is
// reclaimable. Name and role validity are the caller's preconditions.
func (r *Registry) Join(connID, name string, role models.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if role == models.RoleTeacher {
		if existing := r.findTeacherLocked(); existing != nil {
			if r.probe != nil && r.probe.IsConnected(existing.ID) {
				return shared.Conflict("A teacher is already in the session")
			}
			// Stale teacher connection, reclaim the slot.
			delete(r.participants, existing.ID)
			r.logger.Info("evicted stale teacher", zap.String("conn_id", existing.ID))
		}
	}

	r.participants[connID] = &models.Participant{ID: connID, Name: name, Role: role}
	return nil
}

// Leave removes a participant. Idempotent.
func (r *Registry) Leave(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.participants, connID)
}

// Get returns the participant for a connection, or nil.
func (r *Registry) Get(connID string) *models.Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.participants[connID]; ok {
		cp := *p
		return &cp
	}
	return nil
}

// ListAll returns all participants.
func (r *Registry) ListAll() []models.Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Participant, 0, len(r.participants))
	for _, p := range r.participants {
		out = append(out, *p)
	}
	return out
}

// ListStudents returns all participants with the student role.
func (r *Registry) ListStudents() []models.Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Participant, 0, len(r.participants))
	for _, p := range r.participants {
		if p.Role == models.RoleStudent {
			out = append(out, *p)
		}
	}
	return out
}

// FindTeacher returns the registered teacher, or nil.
func (r *Registry) FindTeacher() *models.Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p := r.findTeacherLocked(); p != nil {
		cp := *p
		return &cp
	}
	return nil
}

func (r *Registry) findTeacherLocked() *models.Participant {
	for _, p := range r.participants {
		if p.Role == models.RoleTeacher {
			return p
		}
	}
	return nil
}

// Kick validates a teacher's request to remove a student, invokes notify
// for the target while it is still registered, then removes it. The caller
// severs the target's transport after Kick returns, so the target sees the
// kicked notification before its connection drops.
func (r *Registry) Kick(requesterID, targetID string, notify func(target *models.Participant)) (*models.Participant, error) {
	r.mu.Lock()
	requester, ok := r.participants[requesterID]
	if !ok || requester.Role != models.RoleTeacher {
		r.mu.Unlock()
		return nil, shared.Denied("Only teachers can kick students")
	}
	target, ok := r.participants[targetID]
	if !ok {
		r.mu.Unlock()
		return nil, shared.NotFound("Student not found")
	}
	if target.Role != models.RoleStudent {
		r.mu.Unlock()
		return nil, shared.Denied("Cannot kick a teacher")
	}
	cp := *target
	r.mu.Unlock()

	if notify != nil {
		notify(&cp)
	}

	r.mu.Lock()
	delete(r.participants, targetID)
	r.mu.Unlock()

	r.logger.Info("participant kicked",
		zap.String("target_id", targetID),
		zap.String("requester_id", requesterID),
	)
	return &cp, nil
}

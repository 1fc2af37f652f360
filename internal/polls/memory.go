package polls

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/classpulse/backend/internal/models"
)

// MemoryStore is a mutex-guarded in-memory Store. It backs the server when
// no database is configured and gives tests the same linearizability
// guarantees as the SQL implementation.
type MemoryStore struct {
	mu    sync.Mutex
	polls []*models.Poll
	byID  map[uuid.UUID]*models.Poll
}

// NewMemoryStore creates an empty in-memory poll store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[uuid.UUID]*models.Poll)}
}

func clonePoll(p *models.Poll) *models.Poll {
	cp := *p
	cp.Options = append([]models.PollOption(nil), p.Options...)
	cp.Answers = append([]models.PollAnswer(nil), p.Answers...)
	return &cp
}

// Create persists a new active poll.
func (s *MemoryStore) Create(_ context.Context, question string, options []models.PollOption, timerSeconds, sequenceNumber int) (*models.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &models.Poll{
		ID:             uuid.New(),
		Question:       question,
		Options:        append([]models.PollOption(nil), options...),
		TimerSeconds:   timerSeconds,
		SequenceNumber: sequenceNumber,
		Answers:        []models.PollAnswer{},
		Active:         true,
		CreatedAt:      time.Now(),
	}
	s.polls = append(s.polls, p)
	s.byID[p.ID] = p
	return clonePoll(p), nil
}

// Count returns the number of polls ever created.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.polls), nil
}

// DeactivateAll marks every active poll inactive.
func (s *MemoryStore) DeactivateAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.polls {
		p.Active = false
	}
	return nil
}

// FindActive returns the active poll, or nil.
func (s *MemoryStore) FindActive(_ context.Context) (*models.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.polls) - 1; i >= 0; i-- {
		if s.polls[i].Active {
			return clonePoll(s.polls[i]), nil
		}
	}
	return nil, nil
}

// FindLastFinished returns the newest inactive poll, or nil.
func (s *MemoryStore) FindLastFinished(_ context.Context) (*models.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.polls) - 1; i >= 0; i-- {
		if !s.polls[i].Active {
			return clonePoll(s.polls[i]), nil
		}
	}
	return nil, nil
}

// AtomicAppendAnswer performs the check-and-append under a single lock
// acquisition, so concurrent duplicate submissions yield exactly one success.
func (s *MemoryStore) AtomicAppendAnswer(_ context.Context, pollID uuid.UUID, studentID, studentName string, optionIndex int) (*models.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[pollID]
	if !ok || !p.Active || p.HasAnswered(studentID) {
		return nil, nil
	}
	p.Answers = append(p.Answers, models.PollAnswer{
		StudentID:   studentID,
		StudentName: studentName,
		OptionIndex: optionIndex,
		AnsweredAt:  time.Now(),
	})
	return clonePoll(p), nil
}

// RemoveAnswer deletes a student's answer from a poll.
func (s *MemoryStore) RemoveAnswer(_ context.Context, pollID uuid.UUID, studentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[pollID]
	if !ok {
		return nil
	}
	kept := p.Answers[:0]
	for _, a := range p.Answers {
		if a.StudentID != studentID {
			kept = append(kept, a)
		}
	}
	p.Answers = kept
	return nil
}

// SetInactive marks a poll inactive and returns its final snapshot.
func (s *MemoryStore) SetInactive(_ context.Context, pollID uuid.UUID) (*models.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[pollID]
	if !ok {
		return nil, nil
	}
	p.Active = false
	return clonePoll(p), nil
}

// ListAll returns every poll, newest first.
func (s *MemoryStore) ListAll(_ context.Context) ([]models.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Poll, 0, len(s.polls))
	for i := len(s.polls) - 1; i >= 0; i-- {
		out = append(out, *clonePoll(s.polls[i]))
	}
	return out, nil
}

// Get returns a poll by ID, or nil.
func (s *MemoryStore) Get(_ context.Context, pollID uuid.UUID) (*models.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.byID[pollID]
	if !ok {
		return nil, nil
	}
	return clonePoll(p), nil
}

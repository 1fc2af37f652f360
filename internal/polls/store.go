// Package polls holds the poll store, answer aggregation, and the
// read-only HTTP projections of poll history.
package polls

import (
	"context"

	"github.com/google/uuid"

	"github.com/classpulse/backend/internal/models"
)

// Store is the durable record of poll questions and their answer logs.
// Implementations must make AtomicAppendAnswer linearizable: for a given
// (pollID, studentID) pair, concurrent calls yield exactly one success.
type Store interface {
	// Create persists a new active poll with the given sequence number.
	Create(ctx context.Context, question string, options []models.PollOption, timerSeconds, sequenceNumber int) (*models.Poll, error)

	// Count returns the number of polls ever created.
	Count(ctx context.Context) (int, error)

	// DeactivateAll marks every active poll inactive. Idempotent; at most
	// one poll becomes newly inactive.
	DeactivateAll(ctx context.Context) error

	// FindActive returns the currently active poll, or nil.
	FindActive(ctx context.Context) (*models.Poll, error)

	// FindLastFinished returns the most recently created inactive poll, or nil.
	FindLastFinished(ctx context.Context) (*models.Poll, error)

	// AtomicAppendAnswer appends an answer only if the poll is active and
	// the student has not answered it yet, as a single indivisible
	// operation. A nil poll signals the condition failed; the returned
	// poll includes the new answer.
	AtomicAppendAnswer(ctx context.Context, pollID uuid.UUID, studentID, studentName string, optionIndex int) (*models.Poll, error)

	// RemoveAnswer deletes a student's answer from a poll (rollback of an
	// append that later failed range validation).
	RemoveAnswer(ctx context.Context, pollID uuid.UUID, studentID string) error

	// SetInactive marks a poll inactive and returns its final snapshot,
	// or nil if the poll does not exist.
	SetInactive(ctx context.Context, pollID uuid.UUID) (*models.Poll, error)

	// ListAll returns every poll, newest first.
	ListAll(ctx context.Context) ([]models.Poll, error)

	// Get returns a poll by ID, or nil.
	Get(ctx context.Context, pollID uuid.UUID) (*models.Poll, error)
}

package polls

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/classpulse/backend/internal/models"
)

// Repository is the PostgreSQL-backed Store.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a polls repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const pollColumns = `id, question, options, timer_seconds, sequence_number, is_active, created_at`

func (r *Repository) scanPoll(row pgx.Row) (*models.Poll, error) {
	var p models.Poll
	err := row.Scan(&p.ID, &p.Question, &p.Options, &p.TimerSeconds, &p.SequenceNumber, &p.Active, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) loadAnswers(ctx context.Context, pollID uuid.UUID) ([]models.PollAnswer, error) {
	const query = `SELECT student_id, student_name, option_index, answered_at
		FROM poll_answers WHERE poll_id = $1 ORDER BY answered_at`
	rows, err := r.pool.Query(ctx, query, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	answers := []models.PollAnswer{}
	for rows.Next() {
		var a models.PollAnswer
		if err := rows.Scan(&a.StudentID, &a.StudentName, &a.OptionIndex, &a.AnsweredAt); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// Create inserts a new active poll.
func (r *Repository) Create(ctx context.Context, question string, options []models.PollOption, timerSeconds, sequenceNumber int) (*models.Poll, error) {
	const query = `INSERT INTO polls (question, options, timer_seconds, sequence_number, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING id, created_at`
	p := &models.Poll{
		Question:       question,
		Options:        options,
		TimerSeconds:   timerSeconds,
		SequenceNumber: sequenceNumber,
		Answers:        []models.PollAnswer{},
		Active:         true,
	}
	err := r.pool.QueryRow(ctx, query, question, options, timerSeconds, sequenceNumber).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Count returns the number of polls ever created.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM polls`).Scan(&n)
	return n, err
}

// DeactivateAll marks every active poll inactive.
func (r *Repository) DeactivateAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `UPDATE polls SET is_active = FALSE WHERE is_active`)
	return err
}

// FindActive returns the currently active poll with its answers, or nil.
func (r *Repository) FindActive(ctx context.Context) (*models.Poll, error) {
	query := `SELECT ` + pollColumns + ` FROM polls WHERE is_active ORDER BY created_at DESC LIMIT 1`
	return r.findOne(ctx, query)
}

// FindLastFinished returns the most recent inactive poll, or nil.
func (r *Repository) FindLastFinished(ctx context.Context) (*models.Poll, error) {
	query := `SELECT ` + pollColumns + ` FROM polls WHERE NOT is_active ORDER BY created_at DESC LIMIT 1`
	return r.findOne(ctx, query)
}

func (r *Repository) findOne(ctx context.Context, query string, args ...interface{}) (*models.Poll, error) {
	p, err := r.scanPoll(r.pool.QueryRow(ctx, query, args...))
	if err != nil || p == nil {
		return nil, err
	}
	if p.Answers, err = r.loadAnswers(ctx, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

// AtomicAppendAnswer appends in a single INSERT guarded by the poll's
// active flag and the (poll_id, student_id) primary key, so the
// check-and-append cannot interleave with a concurrent duplicate.
func (r *Repository) AtomicAppendAnswer(ctx context.Context, pollID uuid.UUID, studentID, studentName string, optionIndex int) (*models.Poll, error) {
	const query = `INSERT INTO poll_answers (poll_id, student_id, student_name, option_index)
		SELECT p.id, $2, $3, $4 FROM polls p WHERE p.id = $1 AND p.is_active
		ON CONFLICT (poll_id, student_id) DO NOTHING`
	tag, err := r.pool.Exec(ctx, query, pollID, studentID, studentName, optionIndex)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		// Poll missing, inactive, or student already answered.
		return nil, nil
	}
	return r.Get(ctx, pollID)
}

// RemoveAnswer deletes a student's answer from a poll.
func (r *Repository) RemoveAnswer(ctx context.Context, pollID uuid.UUID, studentID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM poll_answers WHERE poll_id = $1 AND student_id = $2`, pollID, studentID)
	return err
}

// SetInactive marks a poll inactive and returns its final snapshot, or nil.
func (r *Repository) SetInactive(ctx context.Context, pollID uuid.UUID) (*models.Poll, error) {
	_, err := r.pool.Exec(ctx, `UPDATE polls SET is_active = FALSE WHERE id = $1`, pollID)
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, pollID)
}

// ListAll returns every poll with answers, newest first.
func (r *Repository) ListAll(ctx context.Context) ([]models.Poll, error) {
	query := `SELECT ` + pollColumns + ` FROM polls ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Poll
	for rows.Next() {
		var p models.Poll
		if err := rows.Scan(&p.ID, &p.Question, &p.Options, &p.TimerSeconds, &p.SequenceNumber, &p.Active, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Answers = []models.PollAnswer{}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Attach answers in one pass instead of a query per poll.
	index := make(map[uuid.UUID]int, len(out))
	for i := range out {
		index[out[i].ID] = i
	}
	ansRows, err := r.pool.Query(ctx, `SELECT poll_id, student_id, student_name, option_index, answered_at
		FROM poll_answers ORDER BY answered_at`)
	if err != nil {
		return nil, err
	}
	defer ansRows.Close()
	for ansRows.Next() {
		var pollID uuid.UUID
		var a models.PollAnswer
		if err := ansRows.Scan(&pollID, &a.StudentID, &a.StudentName, &a.OptionIndex, &a.AnsweredAt); err != nil {
			return nil, err
		}
		if i, ok := index[pollID]; ok {
			out[i].Answers = append(out[i].Answers, a)
		}
	}
	return out, ansRows.Err()
}

// Get returns a poll by ID with its answers, or nil.
func (r *Repository) Get(ctx context.Context, pollID uuid.UUID) (*models.Poll, error) {
	query := `SELECT ` + pollColumns + ` FROM polls WHERE id = $1`
	return r.findOne(ctx, query, pollID)
}

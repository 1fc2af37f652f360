package models

import (
	"time"

	"github.com/google/uuid"
)

// Timer bounds for a poll, in seconds.
const (
	MinTimerSeconds = 5
	MaxTimerSeconds = 300
)

// PollOption is one answer choice of a poll question.
type PollOption struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// PollAnswer is a single student's submitted answer. A student can answer
// each poll at most once; answers are keyed by StudentID.
type PollAnswer struct {
	StudentID   string    `json:"student_id"`
	StudentName string    `json:"student_name"`
	OptionIndex int       `json:"option_index"`
	AnsweredAt  time.Time `json:"answered_at"`
}

// Poll represents a multiple-choice poll question and its answer log.
// At most one poll is active at any instant across the whole store.
type Poll struct {
	ID             uuid.UUID    `json:"id"`
	Question       string       `json:"question"`
	Options        []PollOption `json:"options"`
	TimerSeconds   int          `json:"timer_seconds"`
	SequenceNumber int          `json:"sequence_number"`
	Answers        []PollAnswer `json:"answers"`
	Active         bool         `json:"is_active"`
	CreatedAt      time.Time    `json:"created_at"`
}

// HasAnswered reports whether the student has already answered this poll.
func (p *Poll) HasAnswered(studentID string) bool {
	for _, a := range p.Answers {
		if a.StudentID == studentID {
			return true
		}
	}
	return false
}

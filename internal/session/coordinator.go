// Package session implements the poll session coordinator: the single
// owner of the active poll and its countdown.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/classpulse/backend/internal/chat"
	"github.com/classpulse/backend/internal/events"
	"github.com/classpulse/backend/internal/models"
	"github.com/classpulse/backend/internal/polls"
	"github.com/classpulse/backend/internal/registry"
	"github.com/classpulse/backend/internal/shared"
)

// persistTimeout bounds store calls made from the countdown goroutine so a
// stalled database cannot hang the timer.
const persistTimeout = 5 * time.Second

// Broadcaster delivers events to connections. Implemented by the realtime
// hub; tests substitute a recording fake.
type Broadcaster interface {
	Broadcast(event string, payload interface{})
	SendTo(connID string, event string, payload interface{})
}

// countdown is the cancellable timer of one active poll. stop is closed
// exactly once, always under the coordinator mutex, by whichever command
// supersedes or ends the poll. once guards finalization so expiry and
// supersession can never both emit final results for the same poll.
type countdown struct {
	pollID uuid.UUID
	stop   chan struct{}
	once   sync.Once
}

// Coordinator serializes poll lifecycle commands. There is one instance
// per process; all shared poll state lives behind its mutex rather than in
// package-level variables.
type Coordinator struct {
	store    polls.Store
	chats    chat.Store
	registry *registry.Registry
	out      Broadcaster
	logger   *zap.Logger

	mu        sync.Mutex
	active    *countdown
	remaining int
	tick      time.Duration
}

// NewCoordinator creates the coordinator. The countdown ticks once per
// second.
func NewCoordinator(store polls.Store, chats chat.Store, reg *registry.Registry, out Broadcaster, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		store:    store,
		chats:    chats,
		registry: reg,
		out:      out,
		logger:   logger,
		tick:     time.Second,
	}
}

// CreatePoll validates and installs a new active poll: any prior active
// poll is finalized immediately (its countdown cancelled, partial results
// broadcast once), the new poll is persisted with the next sequence
// number, the question is broadcast with the answer key stripped, and the
// countdown starts. Returns before the countdown finishes.
func (c *Coordinator) CreatePoll(ctx context.Context, requesterID, question string, options []models.PollOption, timerSeconds int) error {
	p := c.registry.Get(requesterID)
	if p == nil || p.Role != models.RoleTeacher {
		return shared.Denied("Only teachers can create polls")
	}
	if err := polls.ValidateCreate(question, options, timerSeconds); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if prev := c.active; prev != nil {
		close(prev.stop)
		c.active = nil
		c.finalize(prev)
	}

	if err := c.store.DeactivateAll(ctx); err != nil {
		c.logger.Error("deactivate polls", zap.Error(err))
		return shared.Unavailable("Failed to create poll")
	}
	count, err := c.store.Count(ctx)
	if err != nil {
		c.logger.Error("count polls", zap.Error(err))
		return shared.Unavailable("Failed to create poll")
	}
	poll, err := c.store.Create(ctx, question, options, timerSeconds, count+1)
	if err != nil {
		c.logger.Error("create poll", zap.Error(err))
		return shared.Unavailable("Failed to create poll")
	}

	cd := &countdown{pollID: poll.ID, stop: make(chan struct{})}
	c.active = cd
	c.remaining = timerSeconds

	c.out.Broadcast(events.NewQuestion, events.NewQuestionPayload{
		PollID:         poll.ID,
		Question:       poll.Question,
		Options:        events.StripAnswerKey(poll.Options),
		TimerSeconds:   timerSeconds,
		SequenceNumber: poll.SequenceNumber,
	})

	go c.runCountdown(cd, timerSeconds)

	c.logger.Info("poll created",
		zap.String("poll_id", poll.ID.String()),
		zap.Int("sequence", poll.SequenceNumber),
		zap.Int("timer_seconds", timerSeconds),
	)
	return nil
}

// EndPoll finalizes the active poll immediately on a teacher's explicit
// command, through the same exactly-once path as expiry and supersession.
func (c *Coordinator) EndPoll(_ context.Context, requesterID string) error {
	p := c.registry.Get(requesterID)
	if p == nil || p.Role != models.RoleTeacher {
		return shared.Denied("Only teachers can end polls")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.active
	if prev == nil {
		return shared.NotFound("No active poll")
	}
	close(prev.stop)
	c.active = nil
	c.remaining = 0
	c.finalize(prev)
	return nil
}

// SubmitAnswer records a student's answer through an atomic conditional
// append, acknowledges the submitter, and broadcasts fresh live results.
// Range validation runs after the atomic slot claim; on an out-of-range
// index the claimed answer is rolled back so it never persists.
func (c *Coordinator) SubmitAnswer(ctx context.Context, connID string, pollID uuid.UUID, optionIndex int) error {
	p := c.registry.Get(connID)
	if p == nil || p.Role != models.RoleStudent {
		return shared.Denied("Only students can submit answers")
	}
	if optionIndex < 0 {
		return shared.Invalid("Invalid option selected")
	}

	updated, err := c.store.AtomicAppendAnswer(ctx, pollID, connID, p.Name, optionIndex)
	if err != nil {
		c.logger.Error("append answer", zap.Error(err), zap.String("poll_id", pollID.String()))
		return shared.Unavailable("Failed to submit answer")
	}
	if updated == nil {
		return c.submitFailureReason(ctx, pollID)
	}

	if optionIndex >= len(updated.Options) {
		if err := c.store.RemoveAnswer(ctx, pollID, connID); err != nil {
			c.logger.Error("rollback answer", zap.Error(err), zap.String("poll_id", pollID.String()))
		}
		return shared.Invalid("Invalid option selected")
	}

	c.out.SendTo(connID, events.AnswerAccepted, events.MessagePayload{Message: "Answer submitted successfully"})
	c.out.Broadcast(events.LiveResults, polls.Aggregate(updated, models.ResultStatusLive))
	return nil
}

// submitFailureReason distinguishes why the atomic append did not apply.
func (c *Coordinator) submitFailureReason(ctx context.Context, pollID uuid.UUID) error {
	poll, err := c.store.Get(ctx, pollID)
	if err != nil {
		c.logger.Error("lookup poll", zap.Error(err), zap.String("poll_id", pollID.String()))
		return shared.Unavailable("Failed to submit answer")
	}
	if poll == nil {
		return shared.NotFound("Poll not found")
	}
	if !poll.Active {
		return shared.Conflict("This poll has ended")
	}
	return shared.Conflict("You have already answered this question")
}

// HandleJoin syncs a late joiner: the current question with the true
// remaining time plus live results while a poll runs, the last outcome for
// a returning teacher otherwise, and always recent chat history.
func (c *Coordinator) HandleJoin(ctx context.Context, connID string, role models.Role) {
	active, err := c.store.FindActive(ctx)
	if err != nil {
		c.logger.Error("find active poll", zap.Error(err))
	}
	if active != nil {
		remaining := c.Remaining()
		timer := active.TimerSeconds
		if remaining > 0 {
			timer = remaining
		}
		c.out.SendTo(connID, events.NewQuestion, events.NewQuestionPayload{
			PollID:         active.ID,
			Question:       active.Question,
			Options:        events.StripAnswerKey(active.Options),
			TimerSeconds:   timer,
			SequenceNumber: active.SequenceNumber,
		})
		if remaining > 0 {
			c.out.SendTo(connID, events.LiveResults, polls.Aggregate(active, models.ResultStatusLive))
		} else {
			c.out.SendTo(connID, events.FinalResults, polls.Aggregate(active, models.ResultStatusFinal))
		}
	} else if role == models.RoleTeacher {
		last, err := c.store.FindLastFinished(ctx)
		if err != nil {
			c.logger.Error("find last poll", zap.Error(err))
		}
		if last != nil {
			c.out.SendTo(connID, events.FinalResults, polls.Aggregate(last, models.ResultStatusFinal))
		}
	}

	history, err := c.chats.Recent(ctx, chat.DefaultHistoryLimit)
	if err != nil {
		c.logger.Error("chat history", zap.Error(err))
		return
	}
	c.out.SendTo(connID, events.ChatHistory, history)
}

// Remaining returns the seconds left on the running countdown, 0 when idle.
func (c *Coordinator) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return 0
	}
	return c.remaining
}

// runCountdown owns the ticker for one poll. It exits when cancelled or
// when the timer reaches zero, finalizing in the latter case.
func (c *Coordinator) runCountdown(cd *countdown, total int) {
	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	remaining := total
	for {
		select {
		case <-cd.stop:
			return
		case <-ticker.C:
			remaining--
			c.mu.Lock()
			if c.active != cd {
				c.mu.Unlock()
				return
			}
			c.remaining = remaining
			c.mu.Unlock()

			c.out.Broadcast(events.TimerUpdate, events.TimerUpdatePayload{RemainingSeconds: remaining})
			if remaining <= 0 {
				c.finalize(cd)
				c.mu.Lock()
				if c.active == cd {
					c.active = nil
				}
				c.mu.Unlock()
				return
			}
		}
	}
}

// finalize marks the poll inactive and broadcasts final results, at most
// once per poll.
func (c *Coordinator) finalize(cd *countdown) {
	cd.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		poll, err := c.store.SetInactive(ctx, cd.pollID)
		if err != nil {
			c.logger.Error("finalize poll", zap.Error(err), zap.String("poll_id", cd.pollID.String()))
			return
		}
		if poll == nil {
			return
		}
		c.out.Broadcast(events.FinalResults, polls.Aggregate(poll, models.ResultStatusFinal))
		c.logger.Info("poll finished",
			zap.String("poll_id", poll.ID.String()),
			zap.Int("total_answers", len(poll.Answers)),
		)
	})
}

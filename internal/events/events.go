// Package events defines the canonical realtime event contract: wire names
// and payload shapes shared by the gateway and the session coordinator.
package events

import (
	"github.com/google/uuid"

	"github.com/classpulse/backend/internal/models"
)

// Client -> server events.
const (
	Join         = "join"
	CreatePoll   = "create_poll"
	SubmitAnswer = "submit_answer"
	EndPoll      = "end_poll"
	SendMessage  = "send_message"
	KickStudent  = "kick_student"
)

// Server -> client events.
const (
	Joined              = "joined"
	ParticipantsUpdated = "participants_updated"
	NewQuestion         = "new_question"
	TimerUpdate         = "timer_update"
	LiveResults         = "live_results"
	FinalResults        = "final_results"
	AnswerAccepted      = "answer_accepted"
	ChatHistory         = "chat_history"
	NewChatMessage      = "new_chat_message"
	Kicked              = "kicked"
	ErrorMessage        = "error_message"
)

// JoinPayload is the body of a join event.
type JoinPayload struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// CreatePollPayload is the body of a create_poll event.
type CreatePollPayload struct {
	Question     string              `json:"question"`
	Options      []models.PollOption `json:"options"`
	TimerSeconds int                 `json:"timer_seconds"`
}

// SubmitAnswerPayload is the body of a submit_answer event.
type SubmitAnswerPayload struct {
	PollID      uuid.UUID `json:"poll_id"`
	OptionIndex int       `json:"option_index"`
}

// SendMessagePayload is the body of a send_message event.
type SendMessagePayload struct {
	Message string `json:"message"`
}

// KickStudentPayload is the body of a kick_student event.
type KickStudentPayload struct {
	TargetID string `json:"target_id"`
}

// JoinedPayload confirms a successful join to the new connection.
type JoinedPayload struct {
	ID   string      `json:"id"`
	Name string      `json:"name"`
	Role models.Role `json:"role"`
}

// QuestionOption is a poll option as broadcast to connections. The answer
// key is stripped so students never see which option is correct.
type QuestionOption struct {
	Text string `json:"text"`
}

// NewQuestionPayload announces a newly created or currently active poll.
type NewQuestionPayload struct {
	PollID         uuid.UUID        `json:"poll_id"`
	Question       string           `json:"question"`
	Options        []QuestionOption `json:"options"`
	TimerSeconds   int              `json:"timer_seconds"`
	SequenceNumber int              `json:"sequence_number"`
}

// TimerUpdatePayload carries the remaining countdown time.
type TimerUpdatePayload struct {
	RemainingSeconds int `json:"remaining_seconds"`
}

// MessagePayload is a generic human-readable message body, used by
// answer_accepted and error_message.
type MessagePayload struct {
	Message string `json:"message"`
}

// StripAnswerKey converts poll options to their broadcast form.
func StripAnswerKey(options []models.PollOption) []QuestionOption {
	out := make([]QuestionOption, len(options))
	for i, o := range options {
		out[i] = QuestionOption{Text: o.Text}
	}
	return out
}

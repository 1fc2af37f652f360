package models

import "github.com/google/uuid"

// Result status values. Live and final results are structurally identical
// and differ only by this flag.
const (
	ResultStatusLive  = "live"
	ResultStatusFinal = "final"
)

// OptionResult is the aggregated outcome for a single poll option.
type OptionResult struct {
	Text       string `json:"text"`
	IsCorrect  bool   `json:"is_correct"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

// AggregatedResult is the derived per-option vote breakdown of a poll
// snapshot. It is computed fresh on every emission and never stored.
// Percentages are round-half-up integers and may not sum to exactly 100.
type AggregatedResult struct {
	PollID         uuid.UUID      `json:"poll_id"`
	Question       string         `json:"question"`
	SequenceNumber int            `json:"sequence_number"`
	TotalAnswers   int            `json:"total_answers"`
	Options        []OptionResult `json:"options"`
	Status         string         `json:"status"`
}

package polls

import (
	"math"

	"github.com/classpulse/backend/internal/models"
)

// Aggregate derives per-option counts and percentages from a poll
// snapshot. Percentages are round-half-up integers; with zero answers all
// percentages are 0. The rounding means option percentages may not sum to
// exactly 100, which is accepted rather than corrected.
func Aggregate(p *models.Poll, status string) models.AggregatedResult {
	counts := make([]int, len(p.Options))
	for _, a := range p.Answers {
		if a.OptionIndex >= 0 && a.OptionIndex < len(counts) {
			counts[a.OptionIndex]++
		}
	}
	total := len(p.Answers)

	options := make([]models.OptionResult, len(p.Options))
	for i, o := range p.Options {
		pct := 0
		if total > 0 {
			pct = int(math.Round(float64(counts[i]) / float64(total) * 100))
		}
		options[i] = models.OptionResult{
			Text:       o.Text,
			IsCorrect:  o.IsCorrect,
			Count:      counts[i],
			Percentage: pct,
		}
	}

	return models.AggregatedResult{
		PollID:         p.ID,
		Question:       p.Question,
		SequenceNumber: p.SequenceNumber,
		TotalAnswers:   total,
		Options:        options,
		Status:         status,
	}
}

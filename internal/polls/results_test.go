package polls

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/classpulse/backend/internal/models"
)

func pollWithAnswers(options []string, correct int, answers []int) *models.Poll {
	p := &models.Poll{
		ID:             uuid.New(),
		Question:       "What is the capital of France?",
		SequenceNumber: 1,
	}
	for i, text := range options {
		p.Options = append(p.Options, models.PollOption{Text: text, IsCorrect: i == correct})
	}
	for _, idx := range answers {
		p.Answers = append(p.Answers, models.PollAnswer{
			StudentID:   uuid.New().String(),
			StudentName: "student",
			OptionIndex: idx,
		})
	}
	return p
}

func TestAggregate(t *testing.T) {
	t.Run("counts and round-half-up percentages", func(t *testing.T) {
		// A,A,B across A,B,C: 66.6 rounds to 67, 33.3 to 33.
		p := pollWithAnswers([]string{"A", "B", "C"}, 0, []int{0, 0, 1})

		r := Aggregate(p, models.ResultStatusLive)

		assert.Equal(t, 3, r.TotalAnswers)
		assert.Equal(t, []int{2, 1, 0}, []int{r.Options[0].Count, r.Options[1].Count, r.Options[2].Count})
		assert.Equal(t, []int{67, 33, 0}, []int{r.Options[0].Percentage, r.Options[1].Percentage, r.Options[2].Percentage})
	})

	t.Run("no answers yields zero percentages", func(t *testing.T) {
		p := pollWithAnswers([]string{"Yes", "No"}, 0, nil)

		r := Aggregate(p, models.ResultStatusFinal)

		assert.Equal(t, 0, r.TotalAnswers)
		for _, o := range r.Options {
			assert.Equal(t, 0, o.Count)
			assert.Equal(t, 0, o.Percentage)
		}
	})

	t.Run("half rounds up", func(t *testing.T) {
		// 1 of 8 answers = 12.5 -> 13.
		p := pollWithAnswers([]string{"A", "B"}, 0, []int{0, 1, 1, 1, 1, 1, 1, 1})

		r := Aggregate(p, models.ResultStatusLive)

		assert.Equal(t, 13, r.Options[0].Percentage)
		assert.Equal(t, 88, r.Options[1].Percentage)
	})

	t.Run("carries poll metadata and status", func(t *testing.T) {
		p := pollWithAnswers([]string{"A", "B"}, 1, []int{1})
		p.SequenceNumber = 7

		r := Aggregate(p, models.ResultStatusFinal)

		assert.Equal(t, p.ID, r.PollID)
		assert.Equal(t, p.Question, r.Question)
		assert.Equal(t, 7, r.SequenceNumber)
		assert.Equal(t, models.ResultStatusFinal, r.Status)
		assert.True(t, r.Options[1].IsCorrect)
		assert.False(t, r.Options[0].IsCorrect)
	})
}

func TestValidateCreate(t *testing.T) {
	valid := []models.PollOption{{Text: "A", IsCorrect: true}, {Text: "B"}}

	cases := []struct {
		name     string
		question string
		options  []models.PollOption
		timer    int
		wantErr  string
	}{
		{"valid", "Q?", valid, 60, ""},
		{"empty question", "  ", valid, 60, "Question is required"},
		{"too few options", "Q?", valid[:1], 60, "At least 2 options are required"},
		{"blank option text", "Q?", []models.PollOption{{Text: "A", IsCorrect: true}, {Text: " "}}, 60, "All options must have text"},
		{"timer too short", "Q?", valid, 4, "Timer must be between 5 and 300 seconds"},
		{"timer too long", "Q?", valid, 301, "Timer must be between 5 and 300 seconds"},
		{"no correct option", "Q?", []models.PollOption{{Text: "A"}, {Text: "B"}}, 60, "At least one option must be marked as correct"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateCreate(tc.question, tc.options, tc.timer)
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tc.wantErr)
			}
		})
	}
}

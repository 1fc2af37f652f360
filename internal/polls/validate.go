package polls

import (
	"strings"

	"github.com/classpulse/backend/internal/models"
	"github.com/classpulse/backend/internal/shared"
)

// ValidateCreate checks poll creation input and returns a validation error
// naming the violated field, or nil.
func ValidateCreate(question string, options []models.PollOption, timerSeconds int) error {
	if strings.TrimSpace(question) == "" {
		return shared.Invalid("Question is required")
	}
	if len(options) < 2 {
		return shared.Invalid("At least 2 options are required")
	}
	for _, o := range options {
		if strings.TrimSpace(o.Text) == "" {
			return shared.Invalid("All options must have text")
		}
	}
	if timerSeconds < models.MinTimerSeconds || timerSeconds > models.MaxTimerSeconds {
		return shared.Invalid("Timer must be between 5 and 300 seconds")
	}
	hasCorrect := false
	for _, o := range options {
		if o.IsCorrect {
			hasCorrect = true
			break
		}
	}
	if !hasCorrect {
		return shared.Invalid("At least one option must be marked as correct")
	}
	return nil
}

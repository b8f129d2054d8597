package translation

import (
	"fmt"
	"strings"

	"github.com/feedbackfix/feedbackfix-backend/pkg/enums"
)

const fallbackExcerptLimit = 100

// SynthesizeFallback returns the fixed task set used when the model call or
// normalization fails. Deterministic for a given input and always non-empty.
func SynthesizeFallback(feedbackText string) []Task {
	excerpt := strings.TrimSpace(feedbackText)
	if runes := []rune(excerpt); len(runes) > fallbackExcerptLimit {
		excerpt = string(runes[:fallbackExcerptLimit])
	}

	review := 30
	variations := 60
	call := 15
	medium := enums.TaskDifficultyMedium
	easy := enums.TaskDifficultyEasy

	return []Task{
		{
			Description:      fmt.Sprintf("Review and interpret the following feedback: '%s'", excerpt),
			EstimatedMinutes: &review,
			Difficulty:       &medium,
		},
		{
			Description:      "Create 3 design variations exploring different interpretations of the feedback",
			EstimatedMinutes: &variations,
			Difficulty:       &medium,
		},
		{
			Description:      "Schedule a 15-minute call with the client to clarify their requirements",
			EstimatedMinutes: &call,
			Difficulty:       &easy,
		},
	}
}

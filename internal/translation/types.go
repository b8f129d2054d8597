package translation

import (
	"context"

	"github.com/feedbackfix/feedbackfix-backend/pkg/enums"
	openaiclient "github.com/feedbackfix/feedbackfix-backend/pkg/openai"
)

// Task is one actionable design task extracted or synthesized from feedback.
type Task struct {
	Description      string
	EstimatedMinutes *int
	Difficulty       *enums.TaskDifficulty
}

// ChatCompleter is the model provider surface the orchestrator depends on.
type ChatCompleter interface {
	Complete(ctx context.Context, req openaiclient.CompletionRequest) (string, error)
}

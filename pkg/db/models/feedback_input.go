package models

import (
	"time"

	"github.com/google/uuid"
)

// FeedbackInput is the immutable record of one submitted piece of client
// feedback. Rows are created exactly once per translate call and never
// mutated afterwards.
type FeedbackInput struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID    uuid.UUID `gorm:"column:project_id;type:uuid;not null;index"`
	OriginalText string    `gorm:"column:original_text;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

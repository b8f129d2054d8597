package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/feedbackfix/feedbackfix-backend/pkg/enums"
)

// GeneratedTask is one actionable design task derived from a FeedbackInput.
// Tasks are created in a batch alongside their siblings; only the completion
// flag is mutable afterwards.
type GeneratedTask struct {
	ID               uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	FeedbackInputID  uuid.UUID             `gorm:"column:feedback_input_id;type:uuid;not null;index"`
	Description      string                `gorm:"column:description;not null"`
	EstimatedMinutes *int                  `gorm:"column:estimated_minutes"`
	Difficulty       *enums.TaskDifficulty `gorm:"column:difficulty;type:task_difficulty"`
	Completed        bool                  `gorm:"column:completed;not null;default:false"`
	CreatedAt        time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

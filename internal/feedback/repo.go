package feedback

import (
	"context"
	"errors"

	"github.com/feedbackfix/feedbackfix-backend/pkg/db/models"
	"github.com/feedbackfix/feedbackfix-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes persistence helpers for feedback inputs and their tasks.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateInput(ctx context.Context, input *models.FeedbackInput) error
	CreateTasks(ctx context.Context, tasks []models.GeneratedTask) error
	ListInputs(ctx context.Context, params listInputsParams) ([]models.FeedbackInput, *pagination.Cursor, error)
	FindInputForProject(ctx context.Context, inputID, projectID uuid.UUID) (*models.FeedbackInput, error)
	FindTasksForInputs(ctx context.Context, inputIDs []uuid.UUID) ([]models.GeneratedTask, error)
	FindTaskForUser(ctx context.Context, taskID, userID uuid.UUID) (*models.GeneratedTask, error)
	UpdateTaskCompleted(ctx context.Context, taskID uuid.UUID, completed bool) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a feedback repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

type listInputsParams struct {
	ProjectID uuid.UUID
	Limit     int
	Cursor    *pagination.Cursor
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) CreateInput(ctx context.Context, input *models.FeedbackInput) error {
	return r.db.WithContext(ctx).Create(input).Error
}

func (r *repositoryImpl) CreateTasks(ctx context.Context, tasks []models.GeneratedTask) error {
	if len(tasks) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&tasks).Error
}

func (r *repositoryImpl) ListInputs(ctx context.Context, params listInputsParams) ([]models.FeedbackInput, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.FeedbackInput{}).Where("project_id = ?", params.ProjectID)
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var inputs []models.FeedbackInput
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&inputs).Error; err != nil {
		return nil, nil, err
	}

	if len(inputs) > normalized {
		next := inputs[normalized]
		inputs = inputs[:normalized]
		return inputs, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return inputs, nil, nil
}

func (r *repositoryImpl) FindInputForProject(ctx context.Context, inputID, projectID uuid.UUID) (*models.FeedbackInput, error) {
	var input models.FeedbackInput
	err := r.db.WithContext(ctx).
		First(&input, "id = ? AND project_id = ?", inputID, projectID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &input, nil
}

func (r *repositoryImpl) FindTasksForInputs(ctx context.Context, inputIDs []uuid.UUID) ([]models.GeneratedTask, error) {
	if len(inputIDs) == 0 {
		return nil, nil
	}
	var tasks []models.GeneratedTask
	err := r.db.WithContext(ctx).
		Where("feedback_input_id IN ?", inputIDs).
		Order("created_at ASC, id ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindTaskForUser resolves a task only when the chain of ownership leads back
// to the given account.
func (r *repositoryImpl) FindTaskForUser(ctx context.Context, taskID, userID uuid.UUID) (*models.GeneratedTask, error) {
	var task models.GeneratedTask
	err := r.db.WithContext(ctx).
		Joins("JOIN feedback_inputs ON feedback_inputs.id = generated_tasks.feedback_input_id").
		Joins("JOIN projects ON projects.id = feedback_inputs.project_id").
		Where("generated_tasks.id = ? AND projects.user_id = ?", taskID, userID).
		First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *repositoryImpl) UpdateTaskCompleted(ctx context.Context, taskID uuid.UUID, completed bool) error {
	return r.db.WithContext(ctx).
		Model(&models.GeneratedTask{}).
		Where("id = ?", taskID).
		UpdateColumn("completed", completed).Error
}

package feedback

import (
	"context"
	"strings"

	"github.com/feedbackfix/feedbackfix-backend/internal/translation"
	"github.com/feedbackfix/feedbackfix-backend/pkg/db/models"
	pkgerrors "github.com/feedbackfix/feedbackfix-backend/pkg/errors"
	"github.com/feedbackfix/feedbackfix-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type entitlementGate interface {
	Require(ctx context.Context, userID uuid.UUID) error
}

type projectAccessor interface {
	Get(ctx context.Context, userID, projectID uuid.UUID) (*models.Project, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines the feedback translation surface.
type Service interface {
	Translate(ctx context.Context, userID, projectID uuid.UUID, feedbackText string) (*TranslateResult, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Get(ctx context.Context, userID, projectID, feedbackID uuid.UUID) (*FeedbackEntry, error)
	SetTaskCompleted(ctx context.Context, userID, taskID uuid.UUID, completed bool) (*models.GeneratedTask, error)
}

// TranslateResult is the persisted outcome of one translate call.
type TranslateResult struct {
	FeedbackInputID uuid.UUID              `json:"feedback_input_id"`
	OriginalText    string                 `json:"original_text"`
	Tasks           []models.GeneratedTask `json:"tasks"`
}

// ListParams configures pagination for feedback history.
type ListParams struct {
	UserID    uuid.UUID
	ProjectID uuid.UUID
	Limit     int
	Cursor    string
}

// FeedbackEntry pairs one submitted input with its generated tasks.
type FeedbackEntry struct {
	Input models.FeedbackInput   `json:"input"`
	Tasks []models.GeneratedTask `json:"tasks"`
}

// ListResult wraps feedback entries and the cursor for the next page.
type ListResult struct {
	Items  []FeedbackEntry `json:"items"`
	Cursor string          `json:"cursor"`
}

// ServiceParams groups dependencies for the feedback service.
type ServiceParams struct {
	Repo              Repository
	Projects          projectAccessor
	Gate              entitlementGate
	Translator        translation.Service
	TransactionRunner txRunner
}

type service struct {
	repo       Repository
	projects   projectAccessor
	gate       entitlementGate
	translator translation.Service
	txRunner   txRunner
}

// NewService validates dependencies and returns the feedback service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "feedback repository required")
	}
	if params.Projects == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "projects accessor required")
	}
	if params.Gate == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "entitlement gate required")
	}
	if params.Translator == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "translator required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	return &service{
		repo:       params.Repo,
		projects:   params.Projects,
		gate:       params.Gate,
		translator: params.Translator,
		txRunner:   params.TransactionRunner,
	}, nil
}

// Translate gates the caller, runs the translation pipeline, and persists the
// input with its full task batch in one transaction. Tasks are only written
// after the complete list is finalized.
func (s *service) Translate(ctx context.Context, userID, projectID uuid.UUID, feedbackText string) (*TranslateResult, error) {
	feedbackText = strings.TrimSpace(feedbackText)
	if feedbackText == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "feedback text required")
	}

	// Entitlement is checked before any model call so unentitled accounts
	// never incur provider cost.
	if err := s.gate.Require(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.projects.Get(ctx, userID, projectID); err != nil {
		return nil, err
	}

	tasks, err := s.translator.Translate(ctx, feedbackText)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "translation produced no tasks")
	}

	input := &models.FeedbackInput{
		ProjectID:    projectID,
		OriginalText: feedbackText,
	}
	rows := make([]models.GeneratedTask, 0, len(tasks))

	err = s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateInput(ctx, input); err != nil {
			return err
		}
		for _, task := range tasks {
			rows = append(rows, models.GeneratedTask{
				FeedbackInputID:  input.ID,
				Description:      task.Description,
				EstimatedMinutes: task.EstimatedMinutes,
				Difficulty:       task.Difficulty,
			})
		}
		return repo.CreateTasks(ctx, rows)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist translation result")
	}

	return &TranslateResult{
		FeedbackInputID: input.ID,
		OriginalText:    input.OriginalText,
		Tasks:           rows,
	}, nil
}

// List returns the project's feedback history with generated tasks attached.
func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if _, err := s.projects.Get(ctx, params.UserID, params.ProjectID); err != nil {
		return nil, err
	}

	query := listInputsParams{
		ProjectID: params.ProjectID,
		Limit:     params.Limit,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	inputs, next, err := s.repo.ListInputs(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list feedback inputs")
	}

	inputIDs := make([]uuid.UUID, 0, len(inputs))
	for _, input := range inputs {
		inputIDs = append(inputIDs, input.ID)
	}
	tasks, err := s.repo.FindTasksForInputs(ctx, inputIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load generated tasks")
	}

	tasksByInput := make(map[uuid.UUID][]models.GeneratedTask, len(inputs))
	for _, task := range tasks {
		tasksByInput[task.FeedbackInputID] = append(tasksByInput[task.FeedbackInputID], task)
	}

	entries := make([]FeedbackEntry, 0, len(inputs))
	for _, input := range inputs {
		entries = append(entries, FeedbackEntry{
			Input: input,
			Tasks: tasksByInput[input.ID],
		})
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: entries, Cursor: cursor}, nil
}

// Get returns one feedback input with its tasks. Inputs outside the caller's
// projects surface as not found.
func (s *service) Get(ctx context.Context, userID, projectID, feedbackID uuid.UUID) (*FeedbackEntry, error) {
	if feedbackID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "feedback id required")
	}
	if _, err := s.projects.Get(ctx, userID, projectID); err != nil {
		return nil, err
	}

	input, err := s.repo.FindInputForProject(ctx, feedbackID, projectID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load feedback input")
	}
	if input == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "feedback input not found")
	}

	tasks, err := s.repo.FindTasksForInputs(ctx, []uuid.UUID{input.ID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load generated tasks")
	}
	return &FeedbackEntry{Input: *input, Tasks: tasks}, nil
}

// SetTaskCompleted toggles the completion flag on a task the caller owns.
func (s *service) SetTaskCompleted(ctx context.Context, userID, taskID uuid.UUID, completed bool) (*models.GeneratedTask, error) {
	if userID == uuid.Nil || taskID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and task id required")
	}

	task, err := s.repo.FindTaskForUser(ctx, taskID, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load generated task")
	}
	if task == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "task not found")
	}

	if task.Completed != completed {
		if err := s.repo.UpdateTaskCompleted(ctx, taskID, completed); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update task completion")
		}
		task.Completed = completed
	}
	return task, nil
}

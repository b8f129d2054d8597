package projects

import (
	"context"
	"strings"

	"github.com/feedbackfix/feedbackfix-backend/pkg/db/models"
	pkgerrors "github.com/feedbackfix/feedbackfix-backend/pkg/errors"
	"github.com/feedbackfix/feedbackfix-backend/pkg/pagination"
	"github.com/google/uuid"
)

// Service defines project CRUD scoped to the owning account.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateProjectInput) (*models.Project, error)
	Get(ctx context.Context, userID, projectID uuid.UUID) (*models.Project, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Update(ctx context.Context, userID, projectID uuid.UUID, input UpdateProjectInput) (*models.Project, error)
	Delete(ctx context.Context, userID, projectID uuid.UUID) error
}

// CreateProjectInput captures the data needed to create a project.
type CreateProjectInput struct {
	Name        string
	Description *string
}

// UpdateProjectInput carries optional field updates.
type UpdateProjectInput struct {
	Name        *string
	Description *string
}

// ListParams configures pagination for project listings.
type ListParams struct {
	UserID uuid.UUID
	Limit  int
	Cursor string
}

// ListResult wraps returned projects and the cursor for the next page.
type ListResult struct {
	Items  []models.Project `json:"items"`
	Cursor string           `json:"cursor"`
}

type service struct {
	repo Repository
}

// NewService wires project dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "projects repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateProjectInput) (*models.Project, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project name required")
	}

	project := &models.Project{
		UserID:      userID,
		Name:        name,
		Description: input.Description,
	}
	if err := s.repo.Create(ctx, project); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create project")
	}
	return project, nil
}

// Get loads a project and enforces ownership. A project owned by another
// account is reported as not found, never as forbidden.
func (s *service) Get(ctx context.Context, userID, projectID uuid.UUID) (*models.Project, error) {
	if userID == uuid.Nil || projectID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and project id required")
	}

	project, err := s.repo.FindByID(ctx, projectID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
	}
	if project == nil || project.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
	}
	return project, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	query := listProjectsParams{
		UserID: params.UserID,
		Limit:  params.Limit,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list projects")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

func (s *service) Update(ctx context.Context, userID, projectID uuid.UUID, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.Get(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "project name required")
		}
		project.Name = name
	}
	if input.Description != nil {
		project.Description = input.Description
	}

	if err := s.repo.Update(ctx, project); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update project")
	}
	return project, nil
}

func (s *service) Delete(ctx context.Context, userID, projectID uuid.UUID) error {
	if _, err := s.Get(ctx, userID, projectID); err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, projectID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete project")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
	}
	return nil
}

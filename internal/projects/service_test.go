package projects

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/feedbackfix/feedbackfix-backend/pkg/db/models"
	pkgerrors "github.com/feedbackfix/feedbackfix-backend/pkg/errors"
	"github.com/feedbackfix/feedbackfix-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type memProjectRepo struct {
	projects map[uuid.UUID]*models.Project
	deleted  []uuid.UUID
}

func newMemProjectRepo() *memProjectRepo {
	return &memProjectRepo{projects: map[uuid.UUID]*models.Project{}}
}

func (m *memProjectRepo) WithTx(tx *gorm.DB) Repository { return m }

func (m *memProjectRepo) Create(ctx context.Context, project *models.Project) error {
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	project.CreatedAt = time.Now().UTC()
	m.projects[project.ID] = project
	return nil
}

func (m *memProjectRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	return m.projects[id], nil
}

func (m *memProjectRepo) List(ctx context.Context, params listProjectsParams) ([]models.Project, *pagination.Cursor, error) {
	var out []models.Project
	for _, project := range m.projects {
		if project.UserID == params.UserID {
			out = append(out, *project)
		}
	}
	return out, nil, nil
}

func (m *memProjectRepo) Update(ctx context.Context, project *models.Project) error {
	m.projects[project.ID] = project
	return nil
}

func (m *memProjectRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, ok := m.projects[id]; !ok {
		return false, nil
	}
	delete(m.projects, id)
	m.deleted = append(m.deleted, id)
	return true, nil
}

func TestCreateProjectValidatesName(t *testing.T) {
	svc, err := NewService(newMemProjectRepo())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if _, err := svc.Create(context.Background(), uuid.New(), CreateProjectInput{Name: "   "}); err == nil {
		t.Fatal("expected validation error for blank name")
	}

	project, err := svc.Create(context.Background(), uuid.New(), CreateProjectInput{Name: "  Landing redesign  "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if project.Name != "Landing redesign" {
		t.Fatalf("expected trimmed name, got %q", project.Name)
	}
}

func TestGetEnforcesOwnership(t *testing.T) {
	repo := newMemProjectRepo()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	owner := uuid.New()
	project, err := svc.Create(context.Background(), owner, CreateProjectInput{Name: "Brand refresh"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Get(context.Background(), owner, project.ID); err != nil {
		t.Fatalf("owner get: %v", err)
	}

	_, err = svc.Get(context.Background(), uuid.New(), project.ID)
	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for foreign owner, got %v", err)
	}
}

func TestUpdateProject(t *testing.T) {
	repo := newMemProjectRepo()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	owner := uuid.New()
	project, err := svc.Create(context.Background(), owner, CreateProjectInput{Name: "Old name"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "New name"
	desc := "Updated scope"
	updated, err := svc.Update(context.Background(), owner, project.ID, UpdateProjectInput{Name: &name, Description: &desc})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "New name" || updated.Description == nil || *updated.Description != "Updated scope" {
		t.Fatalf("unexpected updated project %+v", updated)
	}

	blank := " "
	if _, err := svc.Update(context.Background(), owner, project.ID, UpdateProjectInput{Name: &blank}); err == nil {
		t.Fatal("expected validation error for blank name update")
	}
}

func TestDeleteProject(t *testing.T) {
	repo := newMemProjectRepo()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	owner := uuid.New()
	project, err := svc.Create(context.Background(), owner, CreateProjectInput{Name: "Disposable"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(context.Background(), owner, project.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(repo.deleted) != 1 {
		t.Fatal("expected project deleted")
	}

	if err := svc.Delete(context.Background(), owner, project.ID); err == nil {
		t.Fatal("expected not found on second delete")
	}
}

func TestListRejectsBadCursor(t *testing.T) {
	svc, err := NewService(newMemProjectRepo())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if _, err := svc.List(context.Background(), ListParams{UserID: uuid.New(), Cursor: "not-a-cursor"}); err == nil {
		t.Fatal("expected validation error for malformed cursor")
	}
}

package studio

import (
	"context"
	"strings"

	"github.com/david/studio-desk/internal/models"
	"github.com/google/uuid"
)

type NewProject struct {
	Title         string
	StartDate     *models.Date
	PrintDeadline *models.Date
}

func (s *Service) ListProjects(ctx context.Context) ([]models.Project, error) {
	return s.store.ListProjects(ctx)
}

func (s *Service) CreateProject(ctx context.Context, in NewProject) (*models.Project, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, &InputError{Field: "title", Reason: "is required"}
	}
	if in.StartDate != nil && in.PrintDeadline != nil && in.PrintDeadline.Before(in.StartDate.Time) {
		return nil, &InputError{Field: "print_deadline", Reason: "must not be before start_date"}
	}

	p := &models.Project{
		Title:         title,
		Status:        models.ProjectPlanning,
		StartDate:     in.StartDate,
		PrintDeadline: in.PrintDeadline,
	}
	if err := s.store.CreateProject(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	p, err := s.store.GetProject(ctx, id)
	return p, mapStoreErr("Project", err)
}

func (s *Service) UpdateProjectStatus(ctx context.Context, id uuid.UUID, status models.ProjectStatus) (*models.Project, error) {
	p, err := s.store.UpdateProjectStatus(ctx, id, status)
	return p, mapStoreErr("Project", err)
}

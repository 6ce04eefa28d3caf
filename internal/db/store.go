package db

import (
	"context"
	"errors"

	"github.com/david/studio-desk/internal/models"
	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicate       = errors.New("record already exists")
	ErrVersionConflict = errors.New("record changed since it was read")
)

// Store is the persistence used by the studio service. PostgresStore is the
// production implementation; MemoryStore backs tests and local demos.
type Store interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
	GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error)
	CreateProject(ctx context.Context, p *models.Project) error
	UpdateProjectStatus(ctx context.Context, id uuid.UUID, status models.ProjectStatus) (*models.Project, error)
	ClearAll(ctx context.Context) error

	ListSections(ctx context.Context, projectID uuid.UUID) ([]models.Section, error)
	GetSection(ctx context.Context, id uuid.UUID) (*models.Section, error)
	CreateSection(ctx context.Context, s *models.Section) error
	// UpdateSection writes content, version and status, but only while the
	// stored row still has prevVersion and prevStatus.
	UpdateSection(ctx context.Context, s *models.Section, prevVersion int, prevStatus models.SectionStatus) error

	ListAssets(ctx context.Context, projectID uuid.UUID) ([]models.Asset, error)
	GetAsset(ctx context.Context, id uuid.UUID) (*models.Asset, error)
	// CreateAssets inserts assets whose file path is new for the project and
	// returns only the inserted ones.
	CreateAssets(ctx context.Context, assets []models.Asset) ([]models.Asset, error)
	UpdateAssetRights(ctx context.Context, id uuid.UUID, rights models.RightsStatus, creditLine *string) (*models.Asset, error)

	ListOpportunities(ctx context.Context) ([]models.Opportunity, error)
	GetOpportunity(ctx context.Context, id uuid.UUID) (*models.Opportunity, error)
	CreateOpportunity(ctx context.Context, o *models.Opportunity) error
	UpdateOpportunityStatus(ctx context.Context, id uuid.UUID, status models.FundingStatus) (*models.Opportunity, error)
	OpportunityExists(ctx context.Context, funderName, programmeName string, deadline models.Date) (bool, error)

	CreateApplication(ctx context.Context, a *models.ApplicationPackage) error
	GetApplication(ctx context.Context, id uuid.UUID) (*models.ApplicationPackage, error)
	GetApplicationByOpportunity(ctx context.Context, opportunityID uuid.UUID) (*models.ApplicationPackage, error)
	UpdateApplication(ctx context.Context, a *models.ApplicationPackage) error

	Counts(ctx context.Context) (models.DashboardCounts, error)
	RecentProjects(ctx context.Context, limit int) ([]models.Project, error)
	UpcomingDeadlines(ctx context.Context, from models.Date, limit int) ([]models.Opportunity, error)
	RecentAssets(ctx context.Context, limit int) ([]models.Asset, error)
}

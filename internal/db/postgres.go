package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/david/studio-desk/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

var _ Store = (*PostgresStore)(nil)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// --- projects ---

const projectCols = `id, title, status, start_date, print_deadline, created_at, updated_at`

func scanProject(scan func(dest ...any) error) (models.Project, error) {
	var p models.Project
	var start, deadline *time.Time
	if err := scan(&p.ID, &p.Title, &p.Status, &start, &deadline, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return p, err
	}
	p.StartDate = datePtr(start)
	p.PrintDeadline = datePtr(deadline)
	return p, nil
}

func datePtr(t *time.Time) *models.Date {
	if t == nil {
		return nil
	}
	d := models.DateOf(*t)
	return &d
}

func timePtr(d *models.Date) *time.Time {
	if d == nil {
		return nil
	}
	return &d.Time
}

func (s *PostgresStore) queryProjects(ctx context.Context, query string, args ...any) ([]models.Project, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *PostgresStore) ListProjects(ctx context.Context) ([]models.Project, error) {
	projects, err := s.queryProjects(ctx, `SELECT `+projectCols+` FROM projects ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

func (s *PostgresStore) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+projectCols+` FROM projects WHERE id = $1`, id)
	p, err := scanProject(row.Scan)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *PostgresStore) CreateProject(ctx context.Context, p *models.Project) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO projects (id, title, status, start_date, print_deadline)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		p.ID, p.Title, p.Status, timePtr(p.StartDate), timePtr(p.PrintDeadline))
	if err := row.Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateProjectStatus(ctx context.Context, id uuid.UUID, status models.ProjectStatus) (*models.Project, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE projects SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+projectCols, id, status)
	p, err := scanProject(row.Scan)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *PostgresStore) ClearAll(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `TRUNCATE application_packages, funding_opportunities, assets, sections, projects`); err != nil {
		return fmt.Errorf("failed to clear data: %w", err)
	}
	return nil
}

// --- sections ---

const sectionCols = `id, project_id, title, version, status, content_text, order_index`

func scanSection(scan func(dest ...any) error) (models.Section, error) {
	var sec models.Section
	err := scan(&sec.ID, &sec.ProjectID, &sec.Title, &sec.Version, &sec.Status, &sec.ContentText, &sec.OrderIndex)
	return sec, err
}

func (s *PostgresStore) ListSections(ctx context.Context, projectID uuid.UUID) ([]models.Section, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+sectionCols+` FROM sections
		WHERE project_id = $1
		ORDER BY order_index, created_at`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}
	defer rows.Close()

	sections := []models.Section{}
	for rows.Next() {
		sec, err := scanSection(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		sections = append(sections, sec)
	}
	return sections, rows.Err()
}

func (s *PostgresStore) GetSection(ctx context.Context, id uuid.UUID) (*models.Section, error) {
	sec, err := scanSection(s.pool.QueryRow(ctx, `SELECT `+sectionCols+` FROM sections WHERE id = $1`, id).Scan)
	if err != nil {
		return nil, notFound(err)
	}
	return &sec, nil
}

func (s *PostgresStore) CreateSection(ctx context.Context, sec *models.Section) error {
	if sec.ID == uuid.Nil {
		sec.ID = uuid.New()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sections (id, project_id, title, version, status, content_text, order_index)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		sec.ID, sec.ProjectID, sec.Title, sec.Version, sec.Status, sec.ContentText, sec.OrderIndex)
	if err != nil {
		return fmt.Errorf("failed to create section: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateSection(ctx context.Context, sec *models.Section, prevVersion int, prevStatus models.SectionStatus) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE sections SET content_text = $2, version = $3, status = $4
		WHERE id = $1 AND version = $5 AND status = $6`,
		sec.ID, sec.ContentText, sec.Version, sec.Status, prevVersion, prevStatus)
	if err != nil {
		return fmt.Errorf("failed to update section: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	return nil
}

// --- assets ---

const assetCols = `id, project_id, type, file_path, rights_status, credit_line, usage_scope, created_at`

func scanAsset(scan func(dest ...any) error) (models.Asset, error) {
	var a models.Asset
	err := scan(&a.ID, &a.ProjectID, &a.Type, &a.FilePath, &a.RightsStatus, &a.CreditLine, &a.UsageScope, &a.CreatedAt)
	return a, err
}

func (s *PostgresStore) queryAssets(ctx context.Context, query string, args ...any) ([]models.Asset, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	assets := []models.Asset{}
	for rows.Next() {
		a, err := scanAsset(rows.Scan)
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

func (s *PostgresStore) ListAssets(ctx context.Context, projectID uuid.UUID) ([]models.Asset, error) {
	assets, err := s.queryAssets(ctx, `SELECT `+assetCols+` FROM assets WHERE project_id = $1 ORDER BY file_path`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	return assets, nil
}

func (s *PostgresStore) GetAsset(ctx context.Context, id uuid.UUID) (*models.Asset, error) {
	a, err := scanAsset(s.pool.QueryRow(ctx, `SELECT `+assetCols+` FROM assets WHERE id = $1`, id).Scan)
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (s *PostgresStore) CreateAssets(ctx context.Context, assets []models.Asset) ([]models.Asset, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin asset insert: %w", err)
	}
	defer tx.Rollback(ctx)

	created := []models.Asset{}
	for _, a := range assets {
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		err := tx.QueryRow(ctx, `
			INSERT INTO assets (id, project_id, type, file_path, rights_status, credit_line, usage_scope)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (project_id, file_path) DO NOTHING
			RETURNING created_at`,
			a.ID, a.ProjectID, a.Type, a.FilePath, a.RightsStatus, a.CreditLine, a.UsageScope).Scan(&a.CreatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to insert asset %s: %w", a.FilePath, err)
		}
		created = append(created, a)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit assets: %w", err)
	}
	return created, nil
}

func (s *PostgresStore) UpdateAssetRights(ctx context.Context, id uuid.UUID, rights models.RightsStatus, creditLine *string) (*models.Asset, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE assets SET rights_status = $2, credit_line = $3
		WHERE id = $1
		RETURNING `+assetCols, id, rights, creditLine)
	a, err := scanAsset(row.Scan)
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// --- opportunities ---

const opportunityCols = `id, funder_name, programme_name, deadline, status, eligibility_criteria, budget_rules`

func scanOpportunity(scan func(dest ...any) error) (models.Opportunity, error) {
	var o models.Opportunity
	var deadline time.Time
	if err := scan(&o.ID, &o.FunderName, &o.ProgrammeName, &deadline, &o.Status, &o.EligibilityCriteria, &o.BudgetRules); err != nil {
		return o, err
	}
	o.Deadline = models.DateOf(deadline)
	if o.EligibilityCriteria == nil {
		o.EligibilityCriteria = map[string]any{}
	}
	if o.BudgetRules == nil {
		o.BudgetRules = map[string]any{}
	}
	return o, nil
}

func (s *PostgresStore) queryOpportunities(ctx context.Context, query string, args ...any) ([]models.Opportunity, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	opps := []models.Opportunity{}
	for rows.Next() {
		o, err := scanOpportunity(rows.Scan)
		if err != nil {
			return nil, err
		}
		opps = append(opps, o)
	}
	return opps, rows.Err()
}

func (s *PostgresStore) ListOpportunities(ctx context.Context) ([]models.Opportunity, error) {
	opps, err := s.queryOpportunities(ctx, `SELECT `+opportunityCols+` FROM funding_opportunities ORDER BY deadline, created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list opportunities: %w", err)
	}
	return opps, nil
}

func (s *PostgresStore) GetOpportunity(ctx context.Context, id uuid.UUID) (*models.Opportunity, error) {
	o, err := scanOpportunity(s.pool.QueryRow(ctx, `SELECT `+opportunityCols+` FROM funding_opportunities WHERE id = $1`, id).Scan)
	if err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (s *PostgresStore) CreateOpportunity(ctx context.Context, o *models.Opportunity) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.EligibilityCriteria == nil {
		o.EligibilityCriteria = map[string]any{}
	}
	if o.BudgetRules == nil {
		o.BudgetRules = map[string]any{}
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO funding_opportunities (id, funder_name, programme_name, deadline, status, eligibility_criteria, budget_rules)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		o.ID, o.FunderName, o.ProgrammeName, o.Deadline.Time, o.Status, o.EligibilityCriteria, o.BudgetRules)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to create opportunity: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateOpportunityStatus(ctx context.Context, id uuid.UUID, status models.FundingStatus) (*models.Opportunity, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE funding_opportunities SET status = $2
		WHERE id = $1
		RETURNING `+opportunityCols, id, status)
	o, err := scanOpportunity(row.Scan)
	if err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (s *PostgresStore) OpportunityExists(ctx context.Context, funderName, programmeName string, deadline models.Date) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM funding_opportunities
			WHERE LOWER(funder_name) = LOWER($1) AND LOWER(programme_name) = LOWER($2) AND deadline = $3
		)`, funderName, programmeName, deadline.Time).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check opportunity: %w", err)
	}
	return exists, nil
}

// --- applications ---

const applicationCols = `id, opportunity_id, narrative_draft, budget_json, submission_status, final_approval`

func scanApplication(scan func(dest ...any) error) (models.ApplicationPackage, error) {
	var a models.ApplicationPackage
	if err := scan(&a.ID, &a.OpportunityID, &a.NarrativeDraft, &a.BudgetJSON, &a.SubmissionStatus, &a.FinalApproval); err != nil {
		return a, err
	}
	if a.BudgetJSON == nil {
		a.BudgetJSON = models.Budget{}
	}
	return a, nil
}

func (s *PostgresStore) CreateApplication(ctx context.Context, a *models.ApplicationPackage) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.BudgetJSON == nil {
		a.BudgetJSON = models.Budget{}
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO application_packages (id, opportunity_id, narrative_draft, budget_json, submission_status, final_approval)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.OpportunityID, a.NarrativeDraft, map[string]any(a.BudgetJSON), a.SubmissionStatus, a.FinalApproval)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetApplication(ctx context.Context, id uuid.UUID) (*models.ApplicationPackage, error) {
	a, err := scanApplication(s.pool.QueryRow(ctx, `SELECT `+applicationCols+` FROM application_packages WHERE id = $1`, id).Scan)
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (s *PostgresStore) GetApplicationByOpportunity(ctx context.Context, opportunityID uuid.UUID) (*models.ApplicationPackage, error) {
	a, err := scanApplication(s.pool.QueryRow(ctx, `SELECT `+applicationCols+` FROM application_packages WHERE opportunity_id = $1`, opportunityID).Scan)
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (s *PostgresStore) UpdateApplication(ctx context.Context, a *models.ApplicationPackage) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE application_packages
		SET narrative_draft = $2, budget_json = $3, submission_status = $4, final_approval = $5, updated_at = NOW()
		WHERE id = $1`,
		a.ID, a.NarrativeDraft, map[string]any(a.BudgetJSON), a.SubmissionStatus, a.FinalApproval)
	if err != nil {
		return fmt.Errorf("failed to update application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- dashboard ---

func (s *PostgresStore) Counts(ctx context.Context) (models.DashboardCounts, error) {
	var c models.DashboardCounts
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM projects),
			(SELECT COUNT(*) FROM funding_opportunities),
			(SELECT COUNT(*) FROM assets)`).Scan(&c.Projects, &c.Opportunities, &c.Assets)
	if err != nil {
		return c, fmt.Errorf("failed to count records: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) RecentProjects(ctx context.Context, limit int) ([]models.Project, error) {
	projects, err := s.queryProjects(ctx, `SELECT `+projectCols+` FROM projects ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent projects: %w", err)
	}
	return projects, nil
}

func (s *PostgresStore) UpcomingDeadlines(ctx context.Context, from models.Date, limit int) ([]models.Opportunity, error) {
	opps, err := s.queryOpportunities(ctx, `
		SELECT `+opportunityCols+` FROM funding_opportunities
		WHERE deadline >= $1
		ORDER BY deadline
		LIMIT $2`, from.Time, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load upcoming deadlines: %w", err)
	}
	return opps, nil
}

func (s *PostgresStore) RecentAssets(ctx context.Context, limit int) ([]models.Asset, error) {
	assets, err := s.queryAssets(ctx, `SELECT `+assetCols+` FROM assets ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent assets: %w", err)
	}
	return assets, nil
}

package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/david/studio-desk/internal/editorial"
	"github.com/david/studio-desk/internal/models"
	"github.com/google/uuid"
)

type CreateProject struct {
	Title         string       `json:"title"`
	StartDate     *models.Date `json:"start_date,omitempty"`
	PrintDeadline *models.Date `json:"print_deadline,omitempty"`
}

type CreateOpportunity struct {
	FunderName          string         `json:"funder_name"`
	ProgrammeName       string         `json:"programme_name"`
	Deadline            string         `json:"deadline"`
	EligibilityCriteria map[string]any `json:"eligibility_criteria,omitempty"`
	BudgetRules         map[string]any `json:"budget_rules,omitempty"`
}

// ApplicationUpdate sends only the non-nil fields.
type ApplicationUpdate struct {
	NarrativeDraft   *string                  `json:"narrative_draft,omitempty"`
	BudgetJSON       *models.Budget           `json:"budget_json,omitempty"`
	SubmissionStatus *models.SubmissionStatus `json:"submission_status,omitempty"`
}

func (c *Client) Health(ctx context.Context) error {
	return c.doJSON(ctx, "health check", http.MethodGet, "/health", nil, nil, nil)
}

func (c *Client) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	var out models.DashboardStats
	if err := c.doJSON(ctx, "load dashboard", http.MethodGet, "/dashboard/stats", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Projects

func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	var out []models.Project
	err := c.doJSON(ctx, "list projects", http.MethodGet, "/projects", nil, nil, &out)
	return out, err
}

func (c *Client) CreateProject(ctx context.Context, in CreateProject) (*models.Project, error) {
	var out models.Project
	if err := c.doJSON(ctx, "create project", http.MethodPost, "/projects", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var out models.Project
	if err := c.doJSON(ctx, "load project", http.MethodGet, "/projects/"+id.String(), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProjectStatus(ctx context.Context, id uuid.UUID, status models.ProjectStatus) (*models.Project, error) {
	var out models.Project
	body := map[string]any{"status": status}
	if err := c.doJSON(ctx, "update project", http.MethodPut, "/projects/"+id.String(), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ClearAll(ctx context.Context) error {
	return c.doJSON(ctx, "clear data", http.MethodDelete, "/projects/clear", nil, nil, nil)
}

// Sections

func (c *Client) ListSections(ctx context.Context, projectID uuid.UUID) ([]models.Section, error) {
	var out []models.Section
	err := c.doJSON(ctx, "list sections", http.MethodGet, "/projects/"+projectID.String()+"/sections", nil, nil, &out)
	return out, err
}

func (c *Client) CreateSection(ctx context.Context, projectID uuid.UUID, title string, orderIndex *int) (*models.Section, error) {
	var out models.Section
	body := map[string]any{"title": title}
	if orderIndex != nil {
		body["order_index"] = *orderIndex
	}
	if err := c.doJSON(ctx, "create section", http.MethodPost, "/projects/"+projectID.String()+"/sections", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetSection(ctx context.Context, id uuid.UUID) (*models.Section, error) {
	var out models.Section
	if err := c.doJSON(ctx, "load section", http.MethodGet, "/sections/"+id.String(), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SaveSection(ctx context.Context, id uuid.UUID, content string) (*models.Section, error) {
	var out models.Section
	body := map[string]any{"content_text": content}
	if err := c.doJSON(ctx, "save section", http.MethodPut, "/sections/"+id.String(), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TransitionSection posts submit, approve, reject or lock.
func (c *Client) TransitionSection(ctx context.Context, id uuid.UUID, action editorial.Action) (*models.Section, error) {
	switch action {
	case editorial.ActionSubmit, editorial.ActionApprove, editorial.ActionReject, editorial.ActionLock:
	default:
		return nil, fmt.Errorf("unsupported section action %q", action)
	}

	var out models.Section
	op := string(action) + " section"
	if err := c.doJSON(ctx, op, http.MethodPost, "/sections/"+id.String()+"/"+string(action), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ReviewSection(ctx context.Context, id uuid.UUID) (string, error) {
	var feedback string
	err := c.doJSON(ctx, "review section", http.MethodPost, "/sections/"+id.String()+"/review", nil, nil, &feedback)
	return feedback, err
}

// Assets

func (c *Client) ScanDirectory(ctx context.Context, projectID uuid.UUID, dir string) ([]models.Asset, error) {
	var out []models.Asset
	body := map[string]any{"directory_path": dir}
	err := c.doJSON(ctx, "scan directory", http.MethodPost, "/projects/"+projectID.String()+"/scan", nil, body, &out)
	return out, err
}

func (c *Client) ListAssets(ctx context.Context, projectID uuid.UUID) ([]models.Asset, error) {
	var out []models.Asset
	err := c.doJSON(ctx, "list assets", http.MethodGet, "/projects/"+projectID.String()+"/assets", nil, nil, &out)
	return out, err
}

func (c *Client) UpdateAsset(ctx context.Context, id uuid.UUID, rights models.RightsStatus, creditLine *string) (*models.Asset, error) {
	var out models.Asset
	body := map[string]any{"rights_status": rights}
	if creditLine != nil {
		body["credit_line"] = *creditLine
	}
	if err := c.doJSON(ctx, "update asset", http.MethodPut, "/assets/"+id.String(), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Opportunities

func (c *Client) ListOpportunities(ctx context.Context) ([]models.Opportunity, error) {
	var out []models.Opportunity
	err := c.doJSON(ctx, "list opportunities", http.MethodGet, "/opportunities", nil, nil, &out)
	return out, err
}

func (c *Client) GetOpportunity(ctx context.Context, id uuid.UUID) (*models.Opportunity, error) {
	var out models.Opportunity
	if err := c.doJSON(ctx, "load opportunity", http.MethodGet, "/opportunities/"+id.String(), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateOpportunity(ctx context.Context, in CreateOpportunity) (*models.Opportunity, error) {
	var out models.Opportunity
	if err := c.doJSON(ctx, "create opportunity", http.MethodPost, "/opportunities", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateOpportunityStatus(ctx context.Context, id uuid.UUID, status models.FundingStatus) (*models.Opportunity, error) {
	var out models.Opportunity
	body := map[string]any{"status": status}
	if err := c.doJSON(ctx, "update opportunity", http.MethodPut, "/opportunities/"+id.String(), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ImportText(ctx context.Context, text string) ([]models.Opportunity, error) {
	var out []models.Opportunity
	err := c.doJSON(ctx, "import opportunities", http.MethodPost, "/opportunities/import", nil, map[string]any{"text": text}, &out)
	return out, err
}

// ImportFile uploads r as the multipart field "file".
func (c *Client) ImportFile(ctx context.Context, filename string, r io.Reader) ([]models.Opportunity, error) {
	const op = "import file"

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := io.Copy(fw, r); err != nil {
		return nil, fmt.Errorf("%s: failed to read %s: %w", op, filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/opportunities/import/file", nil, &buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out []models.Opportunity
	err = c.send(op, req, &out)
	return out, err
}

// ImportURL asks the server to fetch a page and import what it lists.
func (c *Client) ImportURL(ctx context.Context, pageURL string) ([]models.Opportunity, error) {
	var out []models.Opportunity
	err := c.doJSON(ctx, "research opportunities", http.MethodPost, "/opportunities/research", nil, map[string]any{"url": pageURL}, &out)
	return out, err
}

// Applications

func (c *Client) CreateApplication(ctx context.Context, opportunityID uuid.UUID) (*models.ApplicationPackage, error) {
	var out models.ApplicationPackage
	q := url.Values{"opportunity_id": {opportunityID.String()}}
	if err := c.doJSON(ctx, "create application", http.MethodPost, "/applications", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetApplication(ctx context.Context, id uuid.UUID) (*models.ApplicationPackage, error) {
	var out models.ApplicationPackage
	if err := c.doJSON(ctx, "load application", http.MethodGet, "/applications/"+id.String(), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetApplicationForOpportunity(ctx context.Context, opportunityID uuid.UUID) (*models.ApplicationPackage, error) {
	var out models.ApplicationPackage
	if err := c.doJSON(ctx, "load application", http.MethodGet, "/opportunities/"+opportunityID.String()+"/application", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateApplication(ctx context.Context, id uuid.UUID, in ApplicationUpdate) (*models.ApplicationPackage, error) {
	var out models.ApplicationPackage
	if err := c.doJSON(ctx, "update application", http.MethodPut, "/applications/"+id.String(), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Package workflow is the operator-side core: it drives sections, imports
// and application packages through the API and keeps id-keyed caches of
// what the server returned.
package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/david/studio-desk/internal/client"
	"github.com/david/studio-desk/internal/editorial"
	"github.com/david/studio-desk/internal/models"
	"github.com/google/uuid"
)

// Desk ties the drivers to one API client and shares their caches.
type Desk struct {
	api     *client.Client
	Pending *Pending
	// Reviews gates AI reviews apart from mutations.
	Reviews *Pending

	Projects      *Cache[models.Project]
	Sections      *Cache[models.Section]
	Assets        *Cache[models.Asset]
	Opportunities *Cache[models.Opportunity]
}

func NewDesk(api *client.Client) *Desk {
	return &Desk{
		api:           api,
		Pending:       &Pending{},
		Reviews:       &Pending{},
		Projects:      NewCache(func(p models.Project) uuid.UUID { return p.ID }),
		Sections:      NewCache(func(s models.Section) uuid.UUID { return s.ID }),
		Assets:        NewCache(func(a models.Asset) uuid.UUID { return a.ID }),
		Opportunities: NewCache(opportunityKey),
	}
}

func (d *Desk) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	return d.api.DashboardStats(ctx)
}

// Projects

func (d *Desk) LoadProjects(ctx context.Context) ([]models.Project, error) {
	projects, err := d.api.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	d.Projects.Replace(projects)
	return d.Projects.Items(), nil
}

func (d *Desk) CreateProject(ctx context.Context, in client.CreateProject) (*models.Project, error) {
	p, err := d.api.CreateProject(ctx, in)
	if err != nil {
		return nil, err
	}
	d.Projects.Upsert(*p)
	return p, nil
}

// Project returns the project, or false when the server does not know it.
func (d *Desk) Project(ctx context.Context, id uuid.UUID) (*models.Project, bool, error) {
	p, err := d.api.GetProject(ctx, id)
	if errors.Is(err, client.ErrNotFound) {
		d.Projects.Remove(id)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	d.Projects.Upsert(*p)
	return p, true, nil
}

func (d *Desk) SetProjectStatus(ctx context.Context, id uuid.UUID, status models.ProjectStatus) (*models.Project, error) {
	done, err := d.Pending.Begin(id)
	if err != nil {
		return nil, err
	}
	defer done()

	p, err := d.api.UpdateProjectStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	d.Projects.Upsert(*p)
	return p, nil
}

// ClearAll wipes the server and every local cache.
func (d *Desk) ClearAll(ctx context.Context) error {
	if err := d.api.ClearAll(ctx); err != nil {
		return err
	}
	d.Projects.Clear()
	d.Sections.Clear()
	d.Assets.Clear()
	d.Opportunities.Clear()
	return nil
}

// Sections

// LoadSections refreshes the sections of one project, keeping other
// projects' cached sections.
func (d *Desk) LoadSections(ctx context.Context, projectID uuid.UUID) ([]models.Section, error) {
	sections, err := d.api.ListSections(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for _, s := range d.Sections.Filter(func(s models.Section) bool { return s.ProjectID == projectID }) {
		d.Sections.Remove(s.ID)
	}
	d.Sections.Upsert(sections...)
	return sections, nil
}

func (d *Desk) CreateSection(ctx context.Context, projectID uuid.UUID, title string, orderIndex *int) (*SectionEditor, error) {
	sec, err := d.api.CreateSection(ctx, projectID, title, orderIndex)
	if err != nil {
		return nil, err
	}
	d.Sections.Upsert(*sec)
	return d.sectionEditor(*sec), nil
}

// OpenSection fetches a section and returns its editor, or false when the
// section does not exist.
func (d *Desk) OpenSection(ctx context.Context, id uuid.UUID) (*SectionEditor, bool, error) {
	sec, err := d.api.GetSection(ctx, id)
	if errors.Is(err, client.ErrNotFound) {
		d.Sections.Remove(id)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	d.Sections.Upsert(*sec)
	return d.sectionEditor(*sec), true, nil
}

func (d *Desk) sectionEditor(sec models.Section) *SectionEditor {
	ed := NewSectionEditor(d.api, d.Pending, sec, func(s models.Section) { d.Sections.Upsert(s) })
	ed.reviews = d.Reviews
	return ed
}

// ApplySection runs one named action on a section: save, submit, approve,
// reject or lock.
func (d *Desk) ApplySection(ctx context.Context, id uuid.UUID, action editorial.Action, content string) (models.Section, error) {
	ed, ok, err := d.OpenSection(ctx, id)
	if err != nil {
		return models.Section{}, err
	}
	if !ok {
		return models.Section{}, fmt.Errorf("section %s: %w", id, client.ErrNotFound)
	}

	switch action {
	case editorial.ActionSave:
		return ed.Save(ctx, content)
	case editorial.ActionSubmit:
		return ed.Submit(ctx)
	case editorial.ActionApprove:
		return ed.Approve(ctx)
	case editorial.ActionReject:
		return ed.Reject(ctx)
	case editorial.ActionLock:
		return ed.Lock(ctx)
	default:
		return ed.Snapshot(), fmt.Errorf("unknown section action %q", action)
	}
}

// Imports and applications

func (d *Desk) LoadOpportunities(ctx context.Context) ([]models.Opportunity, error) {
	opps, err := d.api.ListOpportunities(ctx)
	if err != nil {
		return nil, err
	}
	d.Opportunities.Replace(opps)
	return d.Opportunities.Items(), nil
}

func (d *Desk) Importer() *Importer {
	return NewImporter(d.api, d.Opportunities)
}

func (d *Desk) CreateOpportunity(ctx context.Context, in client.CreateOpportunity) (*models.Opportunity, error) {
	opp, err := d.api.CreateOpportunity(ctx, in)
	if err != nil {
		return nil, err
	}
	d.Opportunities.Upsert(*opp)
	return opp, nil
}

func (d *Desk) SetOpportunityStatus(ctx context.Context, id uuid.UUID, status models.FundingStatus) (*models.Opportunity, error) {
	done, err := d.Pending.Begin(id)
	if err != nil {
		return nil, err
	}
	defer done()

	opp, err := d.api.UpdateOpportunityStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	d.Opportunities.Upsert(*opp)
	return opp, nil
}

func (d *Desk) CreateApplication(ctx context.Context, opportunityID uuid.UUID) (*ApplicationEditor, error) {
	return CreateApplication(ctx, d.api, d.Pending, opportunityID)
}

func (d *Desk) OpenApplication(ctx context.Context, id uuid.UUID) (*ApplicationEditor, error) {
	return LoadApplication(ctx, d.api, d.Pending, id)
}

func (d *Desk) ApplicationFor(ctx context.Context, opportunityID uuid.UUID) (*ApplicationEditor, bool, error) {
	return ApplicationForOpportunity(ctx, d.api, d.Pending, opportunityID)
}

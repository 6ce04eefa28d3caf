package db

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/david/studio-desk/internal/models"
	"github.com/google/uuid"
)

// MemoryStore keeps everything in process memory. Entities are copied on the
// way in and out so callers never share state with the store.
type MemoryStore struct {
	mu            sync.RWMutex
	now           func() time.Time
	seq           int64
	projects      map[uuid.UUID]models.Project
	sections      map[uuid.UUID]models.Section
	assets        map[uuid.UUID]models.Asset
	opportunities map[uuid.UUID]models.Opportunity
	applications  map[uuid.UUID]models.ApplicationPackage
	order         map[uuid.UUID]int64
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{now: time.Now}
	s.reset()
	return s
}

func (s *MemoryStore) reset() {
	s.projects = map[uuid.UUID]models.Project{}
	s.sections = map[uuid.UUID]models.Section{}
	s.assets = map[uuid.UUID]models.Asset{}
	s.opportunities = map[uuid.UUID]models.Opportunity{}
	s.applications = map[uuid.UUID]models.ApplicationPackage{}
	s.order = map[uuid.UUID]int64{}
}

// track records insertion order for stable "newest first" listings.
func (s *MemoryStore) track(id uuid.UUID) {
	s.seq++
	s.order[id] = s.seq
}

func (s *MemoryStore) newer(a, b uuid.UUID) bool {
	return s.order[a] > s.order[b]
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneOpportunity(o models.Opportunity) models.Opportunity {
	o.EligibilityCriteria = cloneMap(o.EligibilityCriteria)
	o.BudgetRules = cloneMap(o.BudgetRules)
	return o
}

func cloneApplication(a models.ApplicationPackage) models.ApplicationPackage {
	a.BudgetJSON = models.Budget(cloneMap(a.BudgetJSON))
	if a.NarrativeDraft != nil {
		n := *a.NarrativeDraft
		a.NarrativeDraft = &n
	}
	return a
}

func cloneAsset(a models.Asset) models.Asset {
	if a.CreditLine != nil {
		c := *a.CreditLine
		a.CreditLine = &c
	}
	return a
}

// --- projects ---

func (s *MemoryStore) sortedProjects() []models.Project {
	out := make([]models.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return s.newer(out[i].ID, out[j].ID) })
	return out
}

func (s *MemoryStore) ListProjects(_ context.Context) ([]models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedProjects(), nil
}

func (s *MemoryStore) GetProject(_ context.Context, id uuid.UUID) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) CreateProject(_ context.Context, p *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := s.now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	s.projects[p.ID] = *p
	s.track(p.ID)
	return nil
}

func (s *MemoryStore) UpdateProjectStatus(_ context.Context, id uuid.UUID, status models.ProjectStatus) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	p.Status = status
	p.UpdatedAt = s.now().UTC()
	s.projects[id] = p
	return &p, nil
}

func (s *MemoryStore) ClearAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	return nil
}

// --- sections ---

func (s *MemoryStore) ListSections(_ context.Context, projectID uuid.UUID) ([]models.Section, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Section{}
	for _, sec := range s.sections {
		if sec.ProjectID == projectID {
			out = append(out, sec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderIndex != out[j].OrderIndex {
			return out[i].OrderIndex < out[j].OrderIndex
		}
		return s.order[out[i].ID] < s.order[out[j].ID]
	})
	return out, nil
}

func (s *MemoryStore) GetSection(_ context.Context, id uuid.UUID) (*models.Section, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sec, ok := s.sections[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &sec, nil
}

func (s *MemoryStore) CreateSection(_ context.Context, sec *models.Section) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[sec.ProjectID]; !ok {
		return ErrNotFound
	}
	if sec.ID == uuid.Nil {
		sec.ID = uuid.New()
	}
	s.sections[sec.ID] = *sec
	s.track(sec.ID)
	return nil
}

func (s *MemoryStore) UpdateSection(_ context.Context, sec *models.Section, prevVersion int, prevStatus models.SectionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.sections[sec.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != prevVersion || cur.Status != prevStatus {
		return ErrVersionConflict
	}
	cur.ContentText = sec.ContentText
	cur.Version = sec.Version
	cur.Status = sec.Status
	s.sections[sec.ID] = cur
	return nil
}

// --- assets ---

func (s *MemoryStore) ListAssets(_ context.Context, projectID uuid.UUID) ([]models.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Asset{}
	for _, a := range s.assets {
		if a.ProjectID == projectID {
			out = append(out, cloneAsset(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FilePath < out[j].FilePath })
	return out, nil
}

func (s *MemoryStore) GetAsset(_ context.Context, id uuid.UUID) (*models.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assets[id]
	if !ok {
		return nil, ErrNotFound
	}
	a = cloneAsset(a)
	return &a, nil
}

func (s *MemoryStore) CreateAssets(_ context.Context, assets []models.Asset) ([]models.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	type key struct {
		project uuid.UUID
		path    string
	}
	existing := make(map[key]bool, len(s.assets))
	for _, a := range s.assets {
		existing[key{a.ProjectID, a.FilePath}] = true
	}

	created := []models.Asset{}
	for _, a := range assets {
		if _, ok := s.projects[a.ProjectID]; !ok {
			return nil, ErrNotFound
		}
		k := key{a.ProjectID, a.FilePath}
		if existing[k] {
			continue
		}
		existing[k] = true
		if a.ID == uuid.Nil {
			a.ID = uuid.New()
		}
		a.CreatedAt = s.now().UTC()
		a = cloneAsset(a)
		s.assets[a.ID] = a
		s.track(a.ID)
		created = append(created, cloneAsset(a))
	}
	return created, nil
}

func (s *MemoryStore) UpdateAssetRights(_ context.Context, id uuid.UUID, rights models.RightsStatus, creditLine *string) (*models.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assets[id]
	if !ok {
		return nil, ErrNotFound
	}
	a.RightsStatus = rights
	a.CreditLine = creditLine
	a = cloneAsset(a)
	s.assets[id] = a
	a = cloneAsset(a)
	return &a, nil
}

// --- opportunities ---

func (s *MemoryStore) sortedOpportunities() []models.Opportunity {
	out := make([]models.Opportunity, 0, len(s.opportunities))
	for _, o := range s.opportunities {
		out = append(out, cloneOpportunity(o))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Deadline.Equal(out[j].Deadline.Time) {
			return out[i].Deadline.Before(out[j].Deadline.Time)
		}
		return s.order[out[i].ID] < s.order[out[j].ID]
	})
	return out
}

func (s *MemoryStore) ListOpportunities(_ context.Context) ([]models.Opportunity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedOpportunities(), nil
}

func (s *MemoryStore) GetOpportunity(_ context.Context, id uuid.UUID) (*models.Opportunity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.opportunities[id]
	if !ok {
		return nil, ErrNotFound
	}
	o = cloneOpportunity(o)
	return &o, nil
}

func (s *MemoryStore) opportunityExists(funder, programme string, deadline models.Date) bool {
	for _, o := range s.opportunities {
		if strings.EqualFold(o.FunderName, funder) &&
			strings.EqualFold(o.ProgrammeName, programme) &&
			o.Deadline.Equal(deadline.Time) {
			return true
		}
	}
	return false
}

func (s *MemoryStore) CreateOpportunity(_ context.Context, o *models.Opportunity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opportunityExists(o.FunderName, o.ProgrammeName, o.Deadline) {
		return ErrDuplicate
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.EligibilityCriteria == nil {
		o.EligibilityCriteria = map[string]any{}
	}
	if o.BudgetRules == nil {
		o.BudgetRules = map[string]any{}
	}
	s.opportunities[o.ID] = cloneOpportunity(*o)
	s.track(o.ID)
	return nil
}

func (s *MemoryStore) UpdateOpportunityStatus(_ context.Context, id uuid.UUID, status models.FundingStatus) (*models.Opportunity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.opportunities[id]
	if !ok {
		return nil, ErrNotFound
	}
	o.Status = status
	s.opportunities[id] = o
	o = cloneOpportunity(o)
	return &o, nil
}

func (s *MemoryStore) OpportunityExists(_ context.Context, funderName, programmeName string, deadline models.Date) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opportunityExists(funderName, programmeName, deadline), nil
}

// --- applications ---

func (s *MemoryStore) CreateApplication(_ context.Context, a *models.ApplicationPackage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.opportunities[a.OpportunityID]; !ok {
		return ErrNotFound
	}
	for _, existing := range s.applications {
		if existing.OpportunityID == a.OpportunityID {
			return ErrDuplicate
		}
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.BudgetJSON == nil {
		a.BudgetJSON = models.Budget{}
	}
	s.applications[a.ID] = cloneApplication(*a)
	s.track(a.ID)
	return nil
}

func (s *MemoryStore) GetApplication(_ context.Context, id uuid.UUID) (*models.ApplicationPackage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.applications[id]
	if !ok {
		return nil, ErrNotFound
	}
	a = cloneApplication(a)
	return &a, nil
}

func (s *MemoryStore) GetApplicationByOpportunity(_ context.Context, opportunityID uuid.UUID) (*models.ApplicationPackage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.applications {
		if a.OpportunityID == opportunityID {
			a = cloneApplication(a)
			return &a, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UpdateApplication(_ context.Context, a *models.ApplicationPackage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.applications[a.ID]; !ok {
		return ErrNotFound
	}
	s.applications[a.ID] = cloneApplication(*a)
	return nil
}

// --- dashboard ---

func (s *MemoryStore) Counts(_ context.Context) (models.DashboardCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.DashboardCounts{
		Projects:      len(s.projects),
		Opportunities: len(s.opportunities),
		Assets:        len(s.assets),
	}, nil
}

func (s *MemoryStore) RecentProjects(_ context.Context, limit int) ([]models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.sortedProjects()
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) UpcomingDeadlines(_ context.Context, from models.Date, limit int) ([]models.Opportunity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Opportunity{}
	for _, o := range s.sortedOpportunities() {
		if o.Deadline.Before(from.Time) {
			continue
		}
		out = append(out, o)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) RecentAssets(_ context.Context, limit int) ([]models.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Asset, 0, len(s.assets))
	for _, a := range s.assets {
		out = append(out, cloneAsset(a))
	}
	sort.Slice(out, func(i, j int) bool { return s.newer(out[i].ID, out[j].ID) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"sync"

	"github.com/david/studio-desk/internal/client"
	"github.com/david/studio-desk/internal/editorial"
	"github.com/david/studio-desk/internal/models"
	"github.com/google/uuid"
)

type ApplicationAPI interface {
	CreateApplication(ctx context.Context, opportunityID uuid.UUID) (*models.ApplicationPackage, error)
	GetApplication(ctx context.Context, id uuid.UUID) (*models.ApplicationPackage, error)
	GetApplicationForOpportunity(ctx context.Context, opportunityID uuid.UUID) (*models.ApplicationPackage, error)
	UpdateApplication(ctx context.Context, id uuid.UUID, in client.ApplicationUpdate) (*models.ApplicationPackage, error)
}

// ApplicationEditor edits the narrative and budget of one application
// package while it is a Draft and requests approval.
type ApplicationEditor struct {
	api     ApplicationAPI
	pending *Pending

	mu   sync.RWMutex
	snap models.ApplicationPackage
}

func newApplicationEditor(api ApplicationAPI, pending *Pending, snap *models.ApplicationPackage) *ApplicationEditor {
	if pending == nil {
		pending = &Pending{}
	}
	return &ApplicationEditor{api: api, pending: pending, snap: *snap}
}

// CreateApplication starts the package for an opportunity. A second package
// for the same opportunity fails with client.ErrAlreadyExists.
func CreateApplication(ctx context.Context, api ApplicationAPI, pending *Pending, opportunityID uuid.UUID) (*ApplicationEditor, error) {
	app, err := api.CreateApplication(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	return newApplicationEditor(api, pending, app), nil
}

func LoadApplication(ctx context.Context, api ApplicationAPI, pending *Pending, id uuid.UUID) (*ApplicationEditor, error) {
	app, err := api.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	return newApplicationEditor(api, pending, app), nil
}

// ApplicationForOpportunity opens the existing package of an opportunity.
// It reports false when none has been created yet.
func ApplicationForOpportunity(ctx context.Context, api ApplicationAPI, pending *Pending, opportunityID uuid.UUID) (*ApplicationEditor, bool, error) {
	app, err := api.GetApplicationForOpportunity(ctx, opportunityID)
	if errors.Is(err, client.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return newApplicationEditor(api, pending, app), true, nil
}

func (e *ApplicationEditor) Snapshot() models.ApplicationPackage {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap
}

// Editable reports whether narrative and budget may still change.
func (e *ApplicationEditor) Editable() bool {
	return editorial.Editable(e.Snapshot().SubmissionStatus)
}

func (e *ApplicationEditor) Busy() bool {
	return e.pending.Busy(e.Snapshot().ID)
}

// BudgetTotal sums the numeric budget values. Anything else counts as zero.
func (e *ApplicationEditor) BudgetTotal() float64 {
	return e.Snapshot().BudgetJSON.Total()
}

// BudgetTotalOf totals budget text while it is being edited. Text that is not
// yet a JSON object totals zero, as do non-numeric amounts.
func BudgetTotalOf(text string) float64 {
	var raw map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &raw); err != nil {
		return 0
	}
	return models.Budget(raw).Total()
}

// SaveDraft writes the narrative and a budget given as JSON text. Nothing is
// sent when the package is no longer a Draft or the budget is invalid.
func (e *ApplicationEditor) SaveDraft(ctx context.Context, narrative, budgetText string) (models.ApplicationPackage, error) {
	if !e.Editable() {
		return e.Snapshot(), ErrApplicationLocked
	}
	budget, err := ParseBudget(budgetText)
	if err != nil {
		return e.Snapshot(), err
	}
	return e.update(ctx, client.ApplicationUpdate{
		NarrativeDraft: &narrative,
		BudgetJSON:     &budget,
	})
}

// SubmitForApproval moves a Draft package to Approved.
func (e *ApplicationEditor) SubmitForApproval(ctx context.Context) (models.ApplicationPackage, error) {
	status := models.SubmissionApproved
	return e.update(ctx, client.ApplicationUpdate{SubmissionStatus: &status})
}

func (e *ApplicationEditor) Refresh(ctx context.Context) (models.ApplicationPackage, error) {
	id := e.Snapshot().ID
	done, err := e.pending.Begin(id)
	if err != nil {
		return e.Snapshot(), err
	}
	defer done()

	app, err := e.api.GetApplication(ctx, id)
	if err != nil {
		return e.Snapshot(), err
	}
	return e.replace(app), nil
}

func (e *ApplicationEditor) update(ctx context.Context, in client.ApplicationUpdate) (models.ApplicationPackage, error) {
	id := e.Snapshot().ID
	done, err := e.pending.Begin(id)
	if err != nil {
		return e.Snapshot(), err
	}
	defer done()

	app, err := e.api.UpdateApplication(ctx, id, in)
	if err != nil {
		return e.Snapshot(), err
	}
	return e.replace(app), nil
}

func (e *ApplicationEditor) replace(app *models.ApplicationPackage) models.ApplicationPackage {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.snap = *app
	return e.snap
}

// ParseBudget reads a JSON object of category to amount. Every amount must
// be a non-negative number. Blank text is an empty budget.
func ParseBudget(text string) (models.Budget, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Budget{}, nil
	}
	if !strings.HasPrefix(text, "{") {
		return nil, &ValidationError{Field: "budget", Reason: "must be a JSON object of category to amount"}
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, &ValidationError{Field: "budget", Reason: "is not valid JSON"}
	}

	budget := make(models.Budget, len(raw))
	for category, v := range raw {
		n, ok := v.(float64)
		if !ok {
			return nil, &ValidationError{Field: "budget." + category, Reason: "must be a number"}
		}
		if n < 0 || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, &ValidationError{Field: "budget." + category, Reason: "must not be negative"}
		}
		budget[category] = n
	}
	return budget, nil
}

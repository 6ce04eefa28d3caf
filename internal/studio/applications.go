package studio

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/david/studio-desk/internal/db"
	"github.com/david/studio-desk/internal/editorial"
	"github.com/david/studio-desk/internal/models"
	"github.com/google/uuid"
)

// ApplicationUpdate carries the fields present in an update request. Nil
// means "leave unchanged".
type ApplicationUpdate struct {
	NarrativeDraft   *string
	BudgetJSON       map[string]any
	SubmissionStatus *models.SubmissionStatus
}

func (s *Service) CreateApplication(ctx context.Context, opportunityID uuid.UUID) (*models.ApplicationPackage, error) {
	if _, err := s.GetOpportunity(ctx, opportunityID); err != nil {
		return nil, err
	}

	empty := ""
	a := &models.ApplicationPackage{
		OpportunityID:    opportunityID,
		NarrativeDraft:   &empty,
		BudgetJSON:       models.Budget{},
		SubmissionStatus: models.SubmissionDraft,
	}
	if err := s.store.CreateApplication(ctx, a); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, &RuleError{Message: "Application already exists for this opportunity", Kind: ErrAlreadyExists}
		}
		return nil, mapStoreErr("Opportunity", err)
	}
	return a, nil
}

func (s *Service) GetApplication(ctx context.Context, id uuid.UUID) (*models.ApplicationPackage, error) {
	a, err := s.store.GetApplication(ctx, id)
	return a, mapStoreErr("Application", err)
}

func (s *Service) GetApplicationForOpportunity(ctx context.Context, opportunityID uuid.UUID) (*models.ApplicationPackage, error) {
	a, err := s.store.GetApplicationByOpportunity(ctx, opportunityID)
	return a, mapStoreErr("Application", err)
}

// UpdateApplication edits narrative and budget while the package is a Draft
// and moves the submission status forward.
func (s *Service) UpdateApplication(ctx context.Context, id uuid.UUID, in ApplicationUpdate) (*models.ApplicationPackage, error) {
	a, err := s.GetApplication(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.NarrativeDraft != nil || in.BudgetJSON != nil {
		if !editorial.Editable(a.SubmissionStatus) {
			return nil, &RuleError{
				Message: fmt.Sprintf("Application is %s; narrative and budget can no longer change.", a.SubmissionStatus),
				Kind:    ErrLocked,
			}
		}
	}
	if in.BudgetJSON != nil {
		if err := ValidateBudget(in.BudgetJSON); err != nil {
			return nil, err
		}
		a.BudgetJSON = models.Budget(in.BudgetJSON)
	}
	if in.NarrativeDraft != nil {
		a.NarrativeDraft = in.NarrativeDraft
	}
	if in.SubmissionStatus != nil {
		if err := editorial.AdvanceSubmission(a.SubmissionStatus, *in.SubmissionStatus); err != nil {
			if errors.Is(err, ErrIllegalTransition) {
				return nil, &RuleError{
					Message: fmt.Sprintf("Cannot move application from %s back to %s.", a.SubmissionStatus, *in.SubmissionStatus),
					Kind:    ErrIllegalTransition,
				}
			}
			return nil, &InputError{Field: "submission_status", Reason: err.Error()}
		}
		a.SubmissionStatus = *in.SubmissionStatus
	}

	if err := s.store.UpdateApplication(ctx, a); err != nil {
		return nil, mapStoreErr("Application", err)
	}
	return a, nil
}

// ValidateBudget requires every category to map to a finite, non-negative number.
func ValidateBudget(budget map[string]any) error {
	for category, v := range budget {
		n, ok := v.(float64)
		if !ok {
			return &InputError{Field: "budget_json." + category, Reason: "must be a number"}
		}
		if math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
			return &InputError{Field: "budget_json." + category, Reason: "must be a non-negative number"}
		}
	}
	return nil
}

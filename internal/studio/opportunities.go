package studio

import (
	"context"
	"errors"
	"strings"

	"github.com/david/studio-desk/internal/db"
	"github.com/david/studio-desk/internal/models"
	"github.com/google/uuid"
)

type NewOpportunity struct {
	FunderName          string
	ProgrammeName       string
	Deadline            models.Date
	EligibilityCriteria map[string]any
	BudgetRules         map[string]any
}

func (s *Service) ListOpportunities(ctx context.Context) ([]models.Opportunity, error) {
	return s.store.ListOpportunities(ctx)
}

func (s *Service) GetOpportunity(ctx context.Context, id uuid.UUID) (*models.Opportunity, error) {
	o, err := s.store.GetOpportunity(ctx, id)
	return o, mapStoreErr("Opportunity", err)
}

func (s *Service) CreateOpportunity(ctx context.Context, in NewOpportunity) (*models.Opportunity, error) {
	funder := strings.TrimSpace(in.FunderName)
	programme := strings.TrimSpace(in.ProgrammeName)
	if funder == "" {
		return nil, &InputError{Field: "funder_name", Reason: "is required"}
	}
	if programme == "" {
		return nil, &InputError{Field: "programme_name", Reason: "is required"}
	}
	if in.Deadline.IsZero() {
		return nil, &InputError{Field: "deadline", Reason: "is required"}
	}

	o := &models.Opportunity{
		FunderName:          funder,
		ProgrammeName:       programme,
		Deadline:            in.Deadline,
		Status:              models.FundingToReview,
		EligibilityCriteria: in.EligibilityCriteria,
		BudgetRules:         in.BudgetRules,
	}
	if err := s.store.CreateOpportunity(ctx, o); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, &RuleError{Message: "Opportunity already exists for this funder, programme and deadline", Kind: ErrAlreadyExists}
		}
		return nil, err
	}
	return o, nil
}

func (s *Service) UpdateOpportunityStatus(ctx context.Context, id uuid.UUID, status models.FundingStatus) (*models.Opportunity, error) {
	o, err := s.store.UpdateOpportunityStatus(ctx, id, status)
	return o, mapStoreErr("Opportunity", err)
}

// ImportText runs pasted text through the import pipeline and returns the
// opportunities it created.
func (s *Service) ImportText(ctx context.Context, text string) ([]models.Opportunity, error) {
	return s.pipeline.ImportText(ctx, text)
}

func (s *Service) ImportDocument(ctx context.Context, filename string, content []byte) ([]models.Opportunity, error) {
	return s.pipeline.ImportDocument(ctx, filename, content)
}

func (s *Service) ImportURL(ctx context.Context, pageURL string) ([]models.Opportunity, error) {
	return s.pipeline.ImportURL(ctx, pageURL)
}

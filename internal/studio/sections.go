package studio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/david/studio-desk/internal/editorial"
	"github.com/david/studio-desk/internal/models"
	"github.com/google/uuid"
)

const noContentFeedback = "No content to review."

func (s *Service) ListSections(ctx context.Context, projectID uuid.UUID) ([]models.Section, error) {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.store.ListSections(ctx, projectID)
}

// CreateSection adds a Draft section at version 1. Without an explicit
// order index the section is appended after the existing ones.
func (s *Service) CreateSection(ctx context.Context, projectID uuid.UUID, title string, orderIndex *int) (*models.Section, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, &InputError{Field: "title", Reason: "is required"}
	}

	existing, err := s.ListSections(ctx, projectID)
	if err != nil {
		return nil, err
	}

	sec := &models.Section{
		ProjectID:  projectID,
		Title:      title,
		Version:    1,
		Status:     models.SectionDraft,
		OrderIndex: len(existing),
	}
	if orderIndex != nil {
		sec.OrderIndex = *orderIndex
	}
	if err := s.store.CreateSection(ctx, sec); err != nil {
		return nil, mapStoreErr("Project", err)
	}
	return sec, nil
}

func (s *Service) GetSection(ctx context.Context, id uuid.UUID) (*models.Section, error) {
	sec, err := s.store.GetSection(ctx, id)
	return sec, mapStoreErr("Section", err)
}

// SaveSection replaces the content of a Draft section and bumps its version.
func (s *Service) SaveSection(ctx context.Context, id uuid.UUID, content string) (*models.Section, error) {
	sec, err := s.GetSection(ctx, id)
	if err != nil {
		return nil, err
	}
	prevVersion, prevStatus := sec.Version, sec.Status

	if err := editorial.Save(sec, content); err != nil {
		return nil, ruleFromTransition(err)
	}
	if err := s.store.UpdateSection(ctx, sec, prevVersion, prevStatus); err != nil {
		return nil, mapStoreErr("Section", err)
	}
	return sec, nil
}

// TransitionSection applies submit, approve, reject or lock.
func (s *Service) TransitionSection(ctx context.Context, id uuid.UUID, action editorial.Action) (*models.Section, error) {
	sec, err := s.GetSection(ctx, id)
	if err != nil {
		return nil, err
	}
	prevVersion, prevStatus := sec.Version, sec.Status

	if action == editorial.ActionLock && editorial.Allowed(sec.Status, action) {
		if problems := editorial.LockChecks(*sec); len(problems) > 0 {
			return nil, &LockCheckError{Problems: problems}
		}
	}

	if err := editorial.Apply(sec, action); err != nil {
		return nil, ruleFromTransition(err)
	}
	if err := s.store.UpdateSection(ctx, sec, prevVersion, prevStatus); err != nil {
		return nil, mapStoreErr("Section", err)
	}

	slog.Info("section transitioned", "section_id", sec.ID, "action", action, "from", prevStatus, "to", sec.Status)
	return sec, nil
}

// ReviewSection asks the critic for feedback. It never changes the section.
func (s *Service) ReviewSection(ctx context.Context, id uuid.UUID) (string, error) {
	sec, err := s.GetSection(ctx, id)
	if err != nil {
		return "", err
	}
	if _, err := editorial.Next(sec.Status, editorial.ActionReview); err != nil {
		return "", ruleFromTransition(err)
	}
	if strings.TrimSpace(sec.ContentText) == "" {
		return noContentFeedback, nil
	}
	if s.critic == nil {
		return "", fmt.Errorf("%w: no critic configured", ErrAIUnavailable)
	}

	feedback, err := s.critic.CritiqueSection(ctx, sec.Title, sec.ContentText)
	if err != nil {
		slog.Error("section review failed", "section_id", sec.ID, "err", err)
		return "", fmt.Errorf("%w: %v", ErrAIUnavailable, err)
	}
	return feedback, nil
}

func ruleFromTransition(err error) error {
	var te *editorial.TransitionError
	if errors.As(err, &te) {
		return &RuleError{Message: capitalize(te.Error()) + ".", Kind: ErrIllegalTransition}
	}
	return err
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

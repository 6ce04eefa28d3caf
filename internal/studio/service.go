// Package studio holds the business rules behind the HTTP API: section
// lifecycle, asset indexing, opportunity imports and application editing.
package studio

import (
	"context"
	"errors"
	"time"

	"github.com/david/studio-desk/internal/db"
	"github.com/david/studio-desk/internal/ingest"
)

// Critic produces editorial feedback for a section.
type Critic interface {
	CritiqueSection(ctx context.Context, title, content string) (string, error)
}

type Service struct {
	store    db.Store
	pipeline *ingest.Pipeline
	critic   Critic
	now      func() time.Time
}

func NewService(store db.Store, pipeline *ingest.Pipeline, critic Critic) *Service {
	return &Service{
		store:    store,
		pipeline: pipeline,
		critic:   critic,
		now:      time.Now,
	}
}

// mapStoreErr converts persistence sentinels into service errors.
func mapStoreErr(entity string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, db.ErrNotFound):
		return &NotFoundError{Entity: entity}
	case errors.Is(err, db.ErrVersionConflict):
		return &RuleError{Message: entity + " was changed by another request; reload and retry.", Kind: ErrConflict}
	default:
		return err
	}
}

func (s *Service) ClearAll(ctx context.Context) error {
	return s.store.ClearAll(ctx)
}

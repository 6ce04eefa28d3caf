package workflow

import (
	"context"
	"sync"

	"github.com/david/studio-desk/internal/editorial"
	"github.com/david/studio-desk/internal/models"
	"github.com/google/uuid"
)

type SectionAPI interface {
	GetSection(ctx context.Context, id uuid.UUID) (*models.Section, error)
	SaveSection(ctx context.Context, id uuid.UUID, content string) (*models.Section, error)
	TransitionSection(ctx context.Context, id uuid.UUID, action editorial.Action) (*models.Section, error)
	ReviewSection(ctx context.Context, id uuid.UUID) (string, error)
}

// SectionEditor drives one section through Draft, Review and Locked. The
// server decides every transition: a successful call replaces the snapshot
// with the section it returns, a failed call leaves the snapshot as it was.
type SectionEditor struct {
	api      SectionAPI
	pending  *Pending
	reviews  *Pending
	onChange func(models.Section)

	mu   sync.RWMutex
	snap models.Section
}

// NewSectionEditor wraps a section already fetched from the server.
// onChange, when set, receives every section the server returns.
func NewSectionEditor(api SectionAPI, pending *Pending, snap models.Section, onChange func(models.Section)) *SectionEditor {
	if pending == nil {
		pending = &Pending{}
	}
	return &SectionEditor{api: api, pending: pending, reviews: &Pending{}, snap: snap, onChange: onChange}
}

func (e *SectionEditor) Snapshot() models.Section {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap
}

func (e *SectionEditor) ID() uuid.UUID {
	return e.Snapshot().ID
}

// Actions lists what the current status allows, for enabling controls.
func (e *SectionEditor) Actions() []editorial.Action {
	return editorial.Actions(e.Snapshot().Status)
}

// Busy reports whether a save or transition for this section is in flight.
func (e *SectionEditor) Busy() bool {
	return e.pending.Busy(e.ID())
}

// Reviewing reports whether a review of this section is in flight.
func (e *SectionEditor) Reviewing() bool {
	return e.reviews.Busy(e.ID())
}

func (e *SectionEditor) Refresh(ctx context.Context) (models.Section, error) {
	return e.apply(ctx, e.api.GetSection)
}

// Save replaces the content. Only a Draft accepts it; the server bumps the
// version by one.
func (e *SectionEditor) Save(ctx context.Context, content string) (models.Section, error) {
	return e.apply(ctx, func(ctx context.Context, id uuid.UUID) (*models.Section, error) {
		return e.api.SaveSection(ctx, id, content)
	})
}

func (e *SectionEditor) Submit(ctx context.Context) (models.Section, error) {
	return e.transition(ctx, editorial.ActionSubmit)
}

func (e *SectionEditor) Approve(ctx context.Context) (models.Section, error) {
	return e.transition(ctx, editorial.ActionApprove)
}

func (e *SectionEditor) Reject(ctx context.Context) (models.Section, error) {
	return e.transition(ctx, editorial.ActionReject)
}

func (e *SectionEditor) Lock(ctx context.Context) (models.Section, error) {
	return e.transition(ctx, editorial.ActionLock)
}

func (e *SectionEditor) transition(ctx context.Context, action editorial.Action) (models.Section, error) {
	return e.apply(ctx, func(ctx context.Context, id uuid.UUID) (*models.Section, error) {
		return e.api.TransitionSection(ctx, id, action)
	})
}

// Review asks for editorial feedback on the saved content. The section
// itself does not change, so a review only holds its own gate and never
// blocks saves or transitions.
func (e *SectionEditor) Review(ctx context.Context) (string, error) {
	snap := e.Snapshot()
	if snap.Status == models.SectionLocked {
		return "", ErrSectionLocked
	}

	done, err := e.reviews.Begin(snap.ID)
	if err != nil {
		return "", err
	}
	defer done()

	return e.api.ReviewSection(ctx, snap.ID)
}

func (e *SectionEditor) apply(ctx context.Context, call func(context.Context, uuid.UUID) (*models.Section, error)) (models.Section, error) {
	id := e.ID()
	done, err := e.pending.Begin(id)
	if err != nil {
		return e.Snapshot(), err
	}
	defer done()

	sec, err := call(ctx, id)
	if err != nil {
		return e.Snapshot(), err
	}

	e.mu.Lock()
	e.snap = *sec
	e.mu.Unlock()

	if e.onChange != nil {
		e.onChange(*sec)
	}
	return *sec, nil
}

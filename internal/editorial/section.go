// Package editorial holds the legal lifecycle moves for sections and
// application packages. It decides legality only; callers persist the result.
package editorial

import (
	"errors"
	"fmt"

	"github.com/david/studio-desk/internal/models"
)

type Action string

const (
	ActionSave    Action = "save"
	ActionSubmit  Action = "submit"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionLock    Action = "lock"
	ActionReview  Action = "review"
)

var ErrIllegalTransition = errors.New("illegal transition")

// TransitionError reports an action attempted from a state that does not allow it.
type TransitionError struct {
	From   models.SectionStatus
	Action Action
}

func (e *TransitionError) Error() string {
	switch e.Action {
	case ActionSave:
		return fmt.Sprintf("cannot save a %s section", e.From)
	case ActionReview:
		return fmt.Sprintf("cannot review a %s section", e.From)
	default:
		return fmt.Sprintf("cannot %s a %s section", e.Action, e.From)
	}
}

func (e *TransitionError) Unwrap() error {
	return ErrIllegalTransition
}

// sectionMoves maps state -> action -> next state. Save and review keep the state.
var sectionMoves = map[models.SectionStatus]map[Action]models.SectionStatus{
	models.SectionDraft: {
		ActionSave:   models.SectionDraft,
		ActionSubmit: models.SectionReview,
		ActionLock:   models.SectionLocked,
		ActionReview: models.SectionDraft,
	},
	models.SectionReview: {
		ActionApprove: models.SectionLocked,
		ActionReject:  models.SectionDraft,
		ActionLock:    models.SectionLocked,
		ActionReview:  models.SectionReview,
	},
	models.SectionLocked: {},
}

// Next returns the state a section moves to when action is applied from.
func Next(from models.SectionStatus, action Action) (models.SectionStatus, error) {
	moves, ok := sectionMoves[from]
	if !ok {
		return from, fmt.Errorf("unknown section status %q", from)
	}
	to, ok := moves[action]
	if !ok {
		return from, &TransitionError{From: from, Action: action}
	}
	return to, nil
}

// Allowed reports whether action is legal from the given state.
func Allowed(from models.SectionStatus, action Action) bool {
	_, err := Next(from, action)
	return err == nil
}

// Actions lists the legal actions from a state in a stable order.
func Actions(from models.SectionStatus) []Action {
	var out []Action
	for _, a := range []Action{ActionSave, ActionSubmit, ActionApprove, ActionReject, ActionLock, ActionReview} {
		if Allowed(from, a) {
			out = append(out, a)
		}
	}
	return out
}

// Save applies a content save to s in place: content replaced, version bumped.
func Save(s *models.Section, content string) error {
	if _, err := Next(s.Status, ActionSave); err != nil {
		return err
	}
	s.ContentText = content
	s.Version++
	return nil
}

// Apply moves s through a status transition in place.
func Apply(s *models.Section, action Action) error {
	if action == ActionSave {
		return errors.New("use Save for content changes")
	}
	to, err := Next(s.Status, action)
	if err != nil {
		return err
	}
	s.Status = to
	return nil
}

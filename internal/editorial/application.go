package editorial

import (
	"errors"
	"fmt"

	"github.com/david/studio-desk/internal/models"
)

var ErrApplicationLocked = errors.New("application is no longer a draft")

var submissionRank = map[models.SubmissionStatus]int{
	models.SubmissionDraft:     0,
	models.SubmissionApproved:  1,
	models.SubmissionSubmitted: 2,
}

// Editable reports whether narrative and budget may still change.
func Editable(status models.SubmissionStatus) bool {
	return status == models.SubmissionDraft
}

// AdvanceSubmission validates a submission status change. Status only moves
// forward; setting the current status again is accepted.
func AdvanceSubmission(from, to models.SubmissionStatus) error {
	fromRank, ok := submissionRank[from]
	if !ok {
		return fmt.Errorf("unknown submission status %q", from)
	}
	toRank, ok := submissionRank[to]
	if !ok {
		return fmt.Errorf("unknown submission status %q", to)
	}
	if toRank < fromRank {
		return fmt.Errorf("%w: cannot move application from %s back to %s", ErrIllegalTransition, from, to)
	}
	return nil
}

package models

import (
	"encoding/json"
	"math"

	"github.com/google/uuid"
)

type SubmissionStatus string

const (
	SubmissionDraft     SubmissionStatus = "Draft"
	SubmissionApproved  SubmissionStatus = "Approved"
	SubmissionSubmitted SubmissionStatus = "Submitted"
)

type ApplicationPackage struct {
	ID               uuid.UUID        `json:"id"`
	OpportunityID    uuid.UUID        `json:"opportunity_id"`
	NarrativeDraft   *string          `json:"narrative_draft"`
	BudgetJSON       Budget           `json:"budget_json"`
	SubmissionStatus SubmissionStatus `json:"submission_status"`
	FinalApproval    bool             `json:"final_approval"`
}

// Budget maps a category to an amount. Values arrive from the API untyped.
type Budget map[string]any

// Total sums the numeric categories; anything else counts as zero.
func (b Budget) Total() float64 {
	var total float64
	for _, v := range b {
		if n, ok := budgetNumber(v); ok {
			total += n
		}
	}
	return total
}

func budgetNumber(v any) (float64, bool) {
	var n float64
	switch x := v.(type) {
	case float64:
		n = x
	case float32:
		n = float64(x)
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

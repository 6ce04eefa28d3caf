package models

import "github.com/google/uuid"

type FundingStatus string

const (
	FundingToReview  FundingStatus = "To Review"
	FundingPursuing  FundingStatus = "Pursuing"
	FundingSubmitted FundingStatus = "Submitted"
	FundingRejected  FundingStatus = "Rejected"
	FundingAwarded   FundingStatus = "Awarded"
)

type Opportunity struct {
	ID                  uuid.UUID      `json:"id"`
	FunderName          string         `json:"funder_name"`
	ProgrammeName       string         `json:"programme_name"`
	Deadline            Date           `json:"deadline"`
	Status              FundingStatus  `json:"status"`
	EligibilityCriteria map[string]any `json:"eligibility_criteria"`
	BudgetRules         map[string]any `json:"budget_rules"`
}

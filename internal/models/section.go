package models

import "github.com/google/uuid"

type SectionStatus string

const (
	SectionDraft  SectionStatus = "Draft"
	SectionReview SectionStatus = "Review"
	SectionLocked SectionStatus = "Locked"
)

type Section struct {
	ID          uuid.UUID     `json:"id"`
	ProjectID   uuid.UUID     `json:"project_id"`
	Title       string        `json:"title"`
	Version     int           `json:"version"`
	Status      SectionStatus `json:"status"`
	ContentText string        `json:"content_text"`
	OrderIndex  int           `json:"order_index"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

type ProjectStatus string

const (
	ProjectPlanning   ProjectStatus = "Planning"
	ProjectInProgress ProjectStatus = "In Progress"
	ProjectReview     ProjectStatus = "Review"
	ProjectCompleted  ProjectStatus = "Completed"
)

type Project struct {
	ID            uuid.UUID     `json:"id"`
	Title         string        `json:"title"`
	Status        ProjectStatus `json:"status"`
	StartDate     *Date         `json:"start_date"`
	PrintDeadline *Date         `json:"print_deadline"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

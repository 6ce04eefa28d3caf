package models

import (
	"time"

	"github.com/google/uuid"
)

type AssetType string

const (
	AssetPhoto           AssetType = "Photo"
	AssetPoster          AssetType = "Poster"
	AssetMenu            AssetType = "Menu"
	AssetAudio           AssetType = "Audio"
	AssetVerificationDoc AssetType = "VerificationDoc"
)

type RightsStatus string

const (
	RightsUnknown    RightsStatus = "Unknown"
	RightsRequested  RightsStatus = "Requested"
	RightsCleared    RightsStatus = "Cleared"
	RightsRestricted RightsStatus = "Restricted"
)

type UsageScope string

const (
	UsagePrint   UsageScope = "Print"
	UsageDigital UsageScope = "Digital"
	UsageBoth    UsageScope = "Both"
)

type Asset struct {
	ID           uuid.UUID    `json:"id"`
	ProjectID    uuid.UUID    `json:"project_id"`
	Type         AssetType    `json:"type"`
	FilePath     string       `json:"file_path"`
	RightsStatus RightsStatus `json:"rights_status"`
	CreditLine   *string      `json:"credit_line"`
	UsageScope   UsageScope   `json:"usage_scope"`
	CreatedAt    time.Time    `json:"created_at"`
}

package models

type DashboardCounts struct {
	Projects      int `json:"projects"`
	Opportunities int `json:"opportunities"`
	Assets        int `json:"assets"`
}

type DashboardStats struct {
	Counts            DashboardCounts `json:"counts"`
	RecentProjects    []Project       `json:"recent_projects"`
	UpcomingDeadlines []Opportunity   `json:"upcoming_deadlines"`
	RecentAssets      []Asset         `json:"recent_assets"`
}

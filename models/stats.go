package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// ReportStats summarizes the merged report collections for the dashboard.
type ReportStats struct {
	TotalReports  int                `json:"totalReports"`
	ActiveReports int                `json:"activeReports"`
	ResolvedCases int                `json:"resolvedCases"`
	LastUpdate    primitive.DateTime `json:"lastUpdate"`
}

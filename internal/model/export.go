package model

import "time"

// ReportExport is the top-level JSON structure for report export.
type ReportExport struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Track       Track           `json:"track,omitempty"`
	Results     []StudentResult `json:"results"`
}

// StudentResult holds one student's latest report plus attempt statistics.
type StudentResult struct {
	UserID       int64             `json:"user_id"`
	Name         string            `json:"name"`
	Email        string            `json:"email"`
	Track        Track             `json:"track"`
	Attempts     int               `json:"attempts"`
	AverageScore int               `json:"average_score"`
	Latest       *AssessmentReport `json:"latest,omitempty"`
}

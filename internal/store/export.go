package store

import (
	"context"
	"fmt"

	"github.com/pavelanni/radiance/internal/assessment"
	"github.com/pavelanni/radiance/internal/model"
)

// StudentResults builds export-ready rows for every student on a track. An
// empty track includes all students.
func (s *Store) StudentResults(ctx context.Context, track model.Track) ([]model.StudentResult, error) {
	students, err := s.ListUsers(ctx, model.UserRoleStudent, track)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	results := make([]model.StudentResult, 0, len(students))
	for _, u := range students {
		history, err := s.ReportHistory(ctx, u.ID)
		if err != nil {
			return nil, fmt.Errorf("report history for user %d: %w", u.ID, err)
		}
		latest, err := s.LatestReport(ctx, u.ID)
		if err != nil {
			return nil, fmt.Errorf("latest report for user %d: %w", u.ID, err)
		}

		total := 0
		for _, r := range history {
			total += r.ScorePercent
		}
		avg := 0
		if len(history) > 0 {
			avg = assessment.ScorePercent(total, 100*len(history))
		}

		results = append(results, model.StudentResult{
			UserID:       u.ID,
			Name:         u.Name,
			Email:        u.Email,
			Track:        u.Track,
			Attempts:     len(history),
			AverageScore: avg,
			Latest:       latest,
		})
	}
	return results, nil
}

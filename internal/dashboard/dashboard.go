// Package dashboard builds the student and teacher overview pages from
// stored assessment reports.
package dashboard

import (
	"time"

	"github.com/pavelanni/radiance/internal/assessment"
	"github.com/pavelanni/radiance/internal/model"
)

// Student activity status.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// SubjectAccuracy aggregates one subject of a report.
type SubjectAccuracy struct {
	Subject string `json:"subject"`
	Correct int    `json:"correct"`
	Total   int    `json:"total"`
	Percent int    `json:"percent"`
}

// Attempt is one past quiz in the student's history.
type Attempt struct {
	Score       int       `json:"score"`
	Correct     int       `json:"correct"`
	Total       int       `json:"total"`
	CompletedAt time.Time `json:"completed_at"`
}

// StudentSummary is the student dashboard.
type StudentSummary struct {
	Profile           model.UserProfile `json:"profile"`
	QuizPending       bool              `json:"quiz_pending"`
	Attempts          int               `json:"attempts"`
	LastScore         *int              `json:"last_score,omitempty"`
	AverageScore      int               `json:"average_score"`
	WeakTopics        []string          `json:"weak_topics"`
	StrongTopics      []string          `json:"strong_topics"`
	Subjects          []SubjectAccuracy `json:"subjects"`
	RecentAttempts    []Attempt         `json:"recent_attempts"`
	RecommendedVideos []Video           `json:"recommended_videos"`
}

// maxRecent is how many attempts the student dashboard lists.
const maxRecent = 5

// Student builds the dashboard for one student from their report history,
// oldest first.
func Student(profile model.UserProfile, history []model.AssessmentReport) StudentSummary {
	s := StudentSummary{
		Profile:           profile,
		QuizPending:       len(history) == 0,
		Attempts:          len(history),
		AverageScore:      averageScore(history),
		WeakTopics:        []string{},
		StrongTopics:      []string{},
		Subjects:          []SubjectAccuracy{},
		RecentAttempts:    []Attempt{},
		RecommendedVideos: []Video{},
	}
	if len(history) == 0 {
		return s
	}

	latest := history[len(history)-1]
	score := latest.ScorePercent
	s.LastScore = &score
	s.WeakTopics = append(s.WeakTopics, latest.WeakTopics...)
	s.StrongTopics = append(s.StrongTopics, latest.StrongTopics...)
	s.Subjects = SubjectBreakdown(latest.PerQuestionResults)
	s.RecommendedVideos = Recommend(latest.WeakTopics)

	for i := len(history) - 1; i >= 0 && len(s.RecentAttempts) < maxRecent; i-- {
		r := history[i]
		s.RecentAttempts = append(s.RecentAttempts, Attempt{
			Score:       r.ScorePercent,
			Correct:     r.CorrectAnswers,
			Total:       r.TotalQuestions,
			CompletedAt: r.CompletedAt,
		})
	}
	return s
}

// SubjectBreakdown groups question results by subject in first-appearance
// order.
func SubjectBreakdown(results []model.QuestionResult) []SubjectAccuracy {
	out := []SubjectAccuracy{}
	index := make(map[string]int)
	for _, r := range results {
		i, ok := index[r.Subject]
		if !ok {
			i = len(out)
			index[r.Subject] = i
			out = append(out, SubjectAccuracy{Subject: r.Subject})
		}
		out[i].Total++
		if r.IsCorrect {
			out[i].Correct++
		}
	}
	for i := range out {
		out[i].Percent = assessment.ScorePercent(out[i].Correct, out[i].Total)
	}
	return out
}

func averageScore(history []model.AssessmentReport) int {
	if len(history) == 0 {
		return 0
	}
	total := 0
	for _, r := range history {
		total += r.ScorePercent
	}
	return assessment.ScorePercent(total, 100*len(history))
}

// StudentRow is one student on the teacher dashboard.
type StudentRow struct {
	UserID         int64       `json:"user_id"`
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	Track          model.Track `json:"track"`
	Status         string      `json:"status"`
	Attempts       int         `json:"attempts"`
	AverageScore   int         `json:"average_score"`
	LastScore      *int        `json:"last_score,omitempty"`
	LastActive     *time.Time  `json:"last_active,omitempty"`
	WeakTopics     []string    `json:"weak_topics"`
	StrongTopics   []string    `json:"strong_topics"`
	NeedsAttention bool        `json:"needs_attention"`
}

// ClassStats summarizes a teacher's track.
type ClassStats struct {
	TotalStudents     int `json:"total_students"`
	ActiveStudents    int `json:"active_students"`
	AverageClassScore int `json:"average_class_score"`
	TotalQuizzes      int `json:"total_quizzes"`
}

// TeacherSummary is the teacher dashboard.
type TeacherSummary struct {
	Track          model.Track  `json:"track"`
	Stats          ClassStats   `json:"stats"`
	Students       []StudentRow `json:"students"`
	NeedsAttention []StudentRow `json:"needs_attention"`
}

// Teacher builds the dashboard for a track. Students without any report
// are inactive and do not count toward the class average.
func Teacher(track model.Track, results []model.StudentResult) TeacherSummary {
	sum := TeacherSummary{
		Track:          track,
		Students:       []StudentRow{},
		NeedsAttention: []StudentRow{},
	}
	scoreTotal := 0
	for _, r := range results {
		if track != "" && r.Track != track {
			continue
		}
		row := StudentRow{
			UserID:       r.UserID,
			Name:         r.Name,
			Email:        r.Email,
			Track:        r.Track,
			Status:       StatusInactive,
			Attempts:     r.Attempts,
			AverageScore: r.AverageScore,
			WeakTopics:   []string{},
			StrongTopics: []string{},
		}
		if r.Latest != nil {
			score := r.Latest.ScorePercent
			completed := r.Latest.CompletedAt
			row.Status = StatusActive
			row.LastScore = &score
			row.LastActive = &completed
			row.WeakTopics = append(row.WeakTopics, r.Latest.WeakTopics...)
			row.StrongTopics = append(row.StrongTopics, r.Latest.StrongTopics...)
			row.NeedsAttention = len(r.Latest.WeakTopics) > 0

			sum.Stats.ActiveStudents++
			scoreTotal += r.AverageScore
		}
		sum.Stats.TotalStudents++
		sum.Stats.TotalQuizzes += r.Attempts
		sum.Students = append(sum.Students, row)
		if row.NeedsAttention {
			sum.NeedsAttention = append(sum.NeedsAttention, row)
		}
	}
	if sum.Stats.ActiveStudents > 0 {
		sum.Stats.AverageClassScore = assessment.ScorePercent(scoreTotal, 100*sum.Stats.ActiveStudents)
	}
	return sum
}

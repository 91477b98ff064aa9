package assessment

import (
	"math"
	"time"

	"github.com/pavelanni/radiance/internal/model"
)

// Mastery thresholds. Topics with accuracy in [WeakThreshold, StrongThreshold)
// are neither weak nor strong.
const (
	WeakThreshold   = 0.70
	StrongThreshold = 0.80
)

// ReportInput carries everything ComputeReport needs.
type ReportInput struct {
	StudentName      string
	Track            model.Track
	Answers          []string // index-aligned with the bank, "" = unanswered
	TimeSpentSeconds int
	CompletedAt      time.Time
}

// ComputeReport grades an answer record against the track's bank. It has no
// side effects: identical input always yields an identical report.
func ComputeReport(in ReportInput) (model.AssessmentReport, error) {
	bank, err := SelectQuestionBank(in.Track)
	if err != nil {
		return model.AssessmentReport{}, err
	}
	return gradeBank(bank, in), nil
}

func gradeBank(bank []model.Question, in ReportInput) model.AssessmentReport {
	results := make([]model.QuestionResult, len(bank))
	correct := 0
	for i, q := range bank {
		selected := answerAt(in.Answers, i)
		ok := selected != "" && selected == q.CorrectOption
		if ok {
			correct++
		}
		results[i] = model.QuestionResult{
			Prompt:         q.Prompt,
			SelectedOption: selected,
			CorrectOption:  q.CorrectOption,
			IsCorrect:      ok,
			Subject:        q.Subject,
			Topic:          q.Topic,
		}
	}

	weak, strong := ClassifyTopics(TopicStats(results))

	return model.AssessmentReport{
		StudentName:        in.StudentName,
		Track:              in.Track,
		TotalQuestions:     len(bank),
		CorrectAnswers:     correct,
		ScorePercent:       ScorePercent(correct, len(bank)),
		WeakTopics:         weak,
		StrongTopics:       strong,
		CompletedAt:        in.CompletedAt,
		TimeSpentSeconds:   in.TimeSpentSeconds,
		PerQuestionResults: results,
	}
}

// ScorePercent returns round(100*correct/total), rounding halves up.
func ScorePercent(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Floor(100*float64(correct)/float64(total) + 0.5))
}

// TopicStats folds question results into per-topic aggregates, ordered by
// first appearance.
func TopicStats(results []model.QuestionResult) []model.TopicStat {
	var stats []model.TopicStat
	index := make(map[string]int)
	for _, r := range results {
		i, seen := index[r.Topic]
		if !seen {
			i = len(stats)
			index[r.Topic] = i
			stats = append(stats, model.TopicStat{Topic: r.Topic})
		}
		stats[i].TotalCount++
		if r.IsCorrect {
			stats[i].CorrectCount++
		}
	}
	return stats
}

// ClassifyTopics splits topics into weak (< 70%) and strong (>= 80%) lists.
// Both lists are non-nil so they encode as [] rather than null.
func ClassifyTopics(stats []model.TopicStat) (weak, strong []string) {
	weak, strong = []string{}, []string{}
	for _, s := range stats {
		if s.TotalCount == 0 {
			continue
		}
		acc := s.Accuracy()
		switch {
		case acc < WeakThreshold:
			weak = append(weak, s.Topic)
		case acc >= StrongThreshold:
			strong = append(strong, s.Topic)
		}
	}
	return weak, strong
}

func answerAt(answers []string, i int) string {
	if i < len(answers) {
		return answers[i]
	}
	return ""
}

// Package tutor implements the scripted study tutor: keyword rules pick a
// topic, the topic picks a canned reply templated by the student's track.
package tutor

import (
	"strings"

	"github.com/pavelanni/radiance/internal/model"
)

// Topic identifies which canned reply a message gets.
type Topic string

const (
	TopicPhysics    Topic = "physics"
	TopicChemistry  Topic = "chemistry"
	TopicMath       Topic = "math"
	TopicBiology    Topic = "biology"
	TopicStudyPlan  Topic = "study_plan"
	TopicMotivation Topic = "motivation"
	TopicDefault    Topic = "default"
)

type rule struct {
	topic    Topic
	keywords []string
	// track restricts the rule to one track; empty matches any.
	track model.Track
}

// Order matters: the first matching rule wins.
var rules = []rule{
	{topic: TopicPhysics, keywords: []string{"physics", "force", "velocity"}},
	{topic: TopicChemistry, keywords: []string{"chemistry", "organic", "inorganic"}},
	{topic: TopicMath, keywords: []string{"math", "calculus", "algebra"}},
	{topic: TopicBiology, keywords: []string{"biology"}, track: model.TrackNEET},
	{topic: TopicStudyPlan, keywords: []string{"study plan", "schedule"}},
	{topic: TopicMotivation, keywords: []string{"motivation", "stressed", "difficult"}},
}

func (r rule) matches(lower string, track model.Track) bool {
	if r.track != "" && r.track != track {
		return false
	}
	for _, kw := range r.keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Classify picks the topic for a student message. Matching is a
// case-insensitive substring test, so "mathematics" hits the math rule.
func Classify(text string, profile model.UserProfile) Topic {
	lower := strings.ToLower(text)
	for _, r := range rules {
		if r.matches(lower, profile.Track) {
			return r.topic
		}
	}
	return TopicDefault
}

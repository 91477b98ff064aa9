package tutor

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/pavelanni/radiance/internal/i18n"
	"github.com/pavelanni/radiance/internal/model"
)

var messageIDs = map[Topic]string{
	TopicPhysics:    "TutorPhysics",
	TopicChemistry:  "TutorChemistry",
	TopicMath:       "TutorMath",
	TopicBiology:    "TutorBiology",
	TopicStudyPlan:  "TutorStudyPlan",
	TopicMotivation: "TutorMotivation",
	TopicDefault:    "TutorDefault",
}

// Respond renders the canned reply for topic in the context's language.
func Respond(ctx context.Context, topic Topic, profile model.UserProfile) string {
	id, ok := messageIDs[topic]
	if !ok {
		id = messageIDs[TopicDefault]
	}
	physicsTrack := model.TrackNEET
	if profile.Track == model.TrackJEE {
		physicsTrack = model.TrackJEE
	}
	return i18n.Td(ctx, id, map[string]any{
		"Track":        string(profile.Track),
		"PhysicsTrack": string(physicsTrack),
	})
}

// Default reply latency, mimicking a remote model.
const (
	DefaultMinDelay = 1000 * time.Millisecond
	DefaultMaxDelay = 3000 * time.Millisecond
)

// Responder answers student messages after a random delay drawn uniformly
// from [MinDelay, MaxDelay]. A zero MaxDelay answers immediately.
type Responder struct {
	MinDelay time.Duration
	MaxDelay time.Duration
}

func NewResponder(minDelay, maxDelay time.Duration) *Responder {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &Responder{MinDelay: minDelay, MaxDelay: maxDelay}
}

// Reply classifies text and renders the answer. It only fails when ctx is
// done before the delay elapses.
func (r *Responder) Reply(ctx context.Context, text string, profile model.UserProfile) (string, error) {
	if d := r.delay(); d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-t.C:
		}
	}
	return Respond(ctx, Classify(text, profile), profile), nil
}

func (r *Responder) delay() time.Duration {
	if r.MaxDelay <= 0 {
		return 0
	}
	if r.MaxDelay == r.MinDelay {
		return r.MinDelay
	}
	return r.MinDelay + rand.N(r.MaxDelay-r.MinDelay)
}

package assessment

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pavelanni/radiance/internal/model"
)

// CompletionFunc receives the report of a finished quiz for a user.
type CompletionFunc func(userID int64, report model.AssessmentReport)

// Runner keeps at most one quiz session per user. Sessions live only in
// memory; an in-progress attempt is lost on restart.
type Runner struct {
	ctx        context.Context
	opts       Options
	onComplete CompletionFunc

	mu       sync.Mutex
	sessions map[int64]*Session
}

// NewRunner creates a runner whose countdowns are bound to ctx rather than
// to any single request.
func NewRunner(ctx context.Context, opts Options, onComplete CompletionFunc) *Runner {
	return &Runner{
		ctx:        ctx,
		opts:       opts,
		onComplete: onComplete,
		sessions:   make(map[int64]*Session),
	}
}

// Start begins a fresh attempt for the user, abandoning any previous one.
func (r *Runner) Start(userID int64, studentName string, track model.Track) (*Session, error) {
	opts := r.opts
	opts.OnComplete = func(report model.AssessmentReport) {
		if r.onComplete != nil {
			r.onComplete(userID, report)
		}
	}
	sess, err := NewSession(studentName, track, opts)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	prev := r.sessions[userID]
	r.sessions[userID] = sess
	r.mu.Unlock()

	if prev != nil {
		prev.Abort()
		slog.Debug("abandoned previous quiz attempt", "user_id", userID)
	}
	if err := sess.Start(r.ctx); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get returns the user's current or most recently completed session.
func (r *Runner) Get(userID int64) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[userID]
	return s, ok
}

// Drop abandons the user's session, if any.
func (r *Runner) Drop(userID int64) {
	r.mu.Lock()
	s := r.sessions[userID]
	delete(r.sessions, userID)
	r.mu.Unlock()
	if s != nil {
		s.Abort()
	}
}

// Close stops every countdown.
func (r *Runner) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		s.Abort()
		delete(r.sessions, id)
	}
}

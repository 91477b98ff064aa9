package assessment

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/pavelanni/radiance/internal/model"
)

// Default quiz timing.
const (
	DefaultDuration     = 600 * time.Second
	DefaultTickInterval = time.Second
)

// State is the lifecycle phase of a quiz session.
type State int

const (
	StateNotStarted State = iota
	StateInProgress
	StateCompleted
	// StateAbandoned marks an attempt replaced or dropped before it
	// finished. It never produces a report.
	StateAbandoned
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateInProgress:
		return "in_progress"
	case StateCompleted:
		return "completed"
	case StateAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name for JSON responses.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name produced by MarshalText.
func (s *State) UnmarshalText(b []byte) error {
	for _, st := range []State{StateNotStarted, StateInProgress, StateCompleted, StateAbandoned} {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown quiz state %q", b)
}

// Options configures a quiz session.
type Options struct {
	Duration     time.Duration
	TickInterval time.Duration
	Now          func() time.Time
	// OnComplete is called exactly once, outside the session lock, with the
	// final report.
	OnComplete func(model.AssessmentReport)
}

func (o Options) withDefaults() Options {
	if o.Duration <= 0 {
		o.Duration = DefaultDuration
	}
	if o.TickInterval <= 0 {
		o.TickInterval = DefaultTickInterval
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Outcome is the result of advancing past a question.
type Outcome struct {
	NextIndex int                     `json:"next_index"`
	Completed bool                    `json:"completed"`
	Report    *model.AssessmentReport `json:"report,omitempty"`
}

// Snapshot is a read-only view of a session for display.
type Snapshot struct {
	State         State         `json:"state"`
	Track         model.Track   `json:"track"`
	QuestionIndex int           `json:"question_index"`
	Answers       []string      `json:"answers"`
	Remaining     time.Duration `json:"-"`
	RemainingSecs int           `json:"remaining_seconds"`
}

// Session is one attempt at the diagnostic quiz:
// NotStarted -> InProgress -> Completed, or Abandoned from either of the
// first two. Completed and Abandoned are terminal.
type Session struct {
	mu sync.Mutex

	studentName string
	track       model.Track
	bank        []model.Question
	opts        Options

	state     State
	index     int
	answers   []string
	remaining time.Duration
	report    *model.AssessmentReport

	stop context.CancelFunc
	done chan struct{}
}

// NewSession prepares a quiz for the given track. The countdown does not run
// until Start is called.
func NewSession(studentName string, track model.Track, opts Options) (*Session, error) {
	bank, err := SelectQuestionBank(track)
	if err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	return &Session{
		studentName: studentName,
		track:       track,
		bank:        bank,
		opts:        opts,
		answers:     make([]string, len(bank)),
		remaining:   opts.Duration,
		done:        make(chan struct{}),
	}, nil
}

// Questions returns the bank the session is graded against.
func (s *Session) Questions() []model.Question {
	return s.bank
}

// Start moves the session to InProgress and launches the countdown. The
// countdown stops when ctx is cancelled or the session completes.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateInProgress:
		return nil
	case StateCompleted:
		return ErrSessionCompleted
	case StateAbandoned:
		return ErrSessionAbandoned
	}
	tctx, cancel := context.WithCancel(ctx)
	s.stop = cancel
	s.state = StateInProgress
	go s.countdown(tctx)
	slog.Debug("quiz started", "student", s.studentName, "track", s.track, "duration", s.opts.Duration)
	return nil
}

func (s *Session) countdown(ctx context.Context) {
	ticker := time.NewTicker(s.opts.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.Tick() {
				return
			}
		}
	}
}

// Tick advances the countdown by one interval and reports whether the
// session has ended. Expiry grades whatever has been answered.
func (s *Session) Tick() bool {
	s.mu.Lock()
	if s.state != StateInProgress {
		ended := s.state == StateCompleted || s.state == StateAbandoned
		s.mu.Unlock()
		return ended
	}
	s.remaining -= s.opts.TickInterval
	if s.remaining > 0 {
		s.mu.Unlock()
		return false
	}
	s.remaining = 0
	report := s.completeLocked()
	s.mu.Unlock()

	slog.Info("quiz time expired", "student", s.studentName, "track", s.track, "score", report.ScorePercent)
	s.notify(report)
	return true
}

// RecordAnswer stores the chosen option verbatim at index, replacing any
// earlier choice. It returns a copy of the updated answer record.
func (s *Session) RecordAnswer(index int, option string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkInProgressLocked(); err != nil {
		return nil, err
	}
	if index < 0 || index >= len(s.bank) {
		return nil, NewValidationError("question_index", "question index out of range")
	}
	s.answers[index] = option
	return slices.Clone(s.answers), nil
}

// Advance moves to the next question, or completes the quiz when the
// current question is the last one. The current question must be answered.
func (s *Session) Advance() (Outcome, error) {
	s.mu.Lock()
	if err := s.checkInProgressLocked(); err != nil {
		s.mu.Unlock()
		return Outcome{}, err
	}
	if s.answers[s.index] == "" {
		s.mu.Unlock()
		return Outcome{}, NewValidationError("answer", "select an answer before proceeding")
	}
	if s.index < len(s.bank)-1 {
		s.index++
		next := s.index
		s.mu.Unlock()
		return Outcome{NextIndex: next}, nil
	}
	last := s.index
	report := s.completeLocked()
	s.mu.Unlock()

	s.notify(report)
	return Outcome{NextIndex: last, Completed: true, Report: &report}, nil
}

// Back returns to the previous question so its answer can be changed. It
// stays on the first question when already there and returns the new index.
func (s *Session) Back() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkInProgressLocked(); err != nil {
		return 0, err
	}
	if s.index > 0 {
		s.index--
	}
	return s.index, nil
}

// Abort abandons an unfinished attempt: the countdown stops and no later
// Tick or Advance can grade it. Completed sessions are left as they are.
func (s *Session) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateCompleted || s.state == StateAbandoned {
		return
	}
	if s.stop != nil {
		s.stop()
	}
	s.state = StateAbandoned
	close(s.done)
}

// Snapshot returns the current state for display.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		State:         s.state,
		Track:         s.track,
		QuestionIndex: s.index,
		Answers:       slices.Clone(s.answers),
		Remaining:     s.remaining,
		RemainingSecs: int(s.remaining / time.Second),
	}
}

// Report returns the final report once the session is completed.
func (s *Session) Report() (model.AssessmentReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.report == nil {
		return model.AssessmentReport{}, false
	}
	return *s.report, true
}

// Done is closed when the session completes or is abandoned.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) checkInProgressLocked() error {
	switch s.state {
	case StateNotStarted:
		return ErrSessionNotStarted
	case StateCompleted:
		return ErrSessionCompleted
	case StateAbandoned:
		return ErrSessionAbandoned
	}
	return nil
}

// completeLocked grades the session and stops the countdown. Callers hold
// s.mu and must check the state is InProgress first.
func (s *Session) completeLocked() model.AssessmentReport {
	if s.stop != nil {
		s.stop()
	}
	report := gradeBank(s.bank, ReportInput{
		StudentName:      s.studentName,
		Track:            s.track,
		Answers:          s.answers,
		TimeSpentSeconds: int((s.opts.Duration - s.remaining) / time.Second),
		CompletedAt:      s.opts.Now(),
	})
	s.report = &report
	s.state = StateCompleted
	close(s.done)
	return report
}

func (s *Session) notify(report model.AssessmentReport) {
	if s.opts.OnComplete != nil {
		s.opts.OnComplete(report)
	}
}

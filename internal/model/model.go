package model

import (
	"context"
	"time"
)

// Track is the exam category a student prepares for.
type Track string

const (
	// TrackJEE is the engineering entrance track.
	TrackJEE Track = "JEE"
	// TrackNEET is the medical entrance track.
	TrackNEET Track = "NEET"
)

// Tracks lists the supported tracks in display order.
var Tracks = []Track{TrackJEE, TrackNEET}

// Valid reports whether t is one of the supported tracks.
func (t Track) Valid() bool {
	return t == TrackJEE || t == TrackNEET
}

// UserRole represents a user's access level (distinct from Role which is chat message roles).
type UserRole string

const (
	// UserRoleStudent is a student user role.
	UserRoleStudent UserRole = "student"
	// UserRoleTeacher is a teacher user role.
	UserRoleTeacher UserRole = "teacher"
)

// User is an account row. The password hash never leaves the store layer
// except for comparison at login.
type User struct {
	ID             int64
	Name           string
	Email          string
	PasswordHash   string
	Role           UserRole
	Track          Track
	IsFirstAttempt bool
	LastQuizScore  *int
	CreatedAt      time.Time
}

// Profile returns the session-facing view of the user.
func (u User) Profile() UserProfile {
	return UserProfile{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		Role:           u.Role,
		Track:          u.Track,
		IsFirstAttempt: u.IsFirstAttempt,
		LastQuizScore:  u.LastQuizScore,
	}
}

// UserProfile is the logged-in user as held in the session store.
type UserProfile struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Role           UserRole `json:"role"`
	Track          Track    `json:"track"`
	IsFirstAttempt bool     `json:"is_first_attempt"`
	LastQuizScore  *int     `json:"last_quiz_score,omitempty"`
}

// AuthSession represents an authentication session.
type AuthSession struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

type profileCtxKey struct{}

// ContextWithProfile stores the authenticated profile in the request context.
func ContextWithProfile(ctx context.Context, p *UserProfile) context.Context {
	return context.WithValue(ctx, profileCtxKey{}, p)
}

// ProfileFromContext retrieves the authenticated profile from context, or nil.
func ProfileFromContext(ctx context.Context) *UserProfile {
	p, _ := ctx.Value(profileCtxKey{}).(*UserProfile)
	return p
}

type sessionTokenCtxKey struct{}

// ContextWithSessionToken stores the auth session token in context.
func ContextWithSessionToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, sessionTokenCtxKey{}, token)
}

// SessionTokenFromContext retrieves the auth session token from context.
func SessionTokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(sessionTokenCtxKey{}).(string)
	return t
}

// Role represents a chat message role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one entry of a tutor conversation.
type ChatMessage struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`
}

// Question is a multiple-choice question from a static bank.
type Question struct {
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectOption string   `json:"correct_option"`
	Subject       string   `json:"subject"`
	Topic         string   `json:"topic"`
}

// TopicStat is the per-topic aggregate used for mastery classification.
type TopicStat struct {
	Topic        string `json:"topic"`
	CorrectCount int    `json:"correct_count"`
	TotalCount   int    `json:"total_count"`
}

// Accuracy returns the fraction of correct answers for the topic.
func (s TopicStat) Accuracy() float64 {
	if s.TotalCount == 0 {
		return 0
	}
	return float64(s.CorrectCount) / float64(s.TotalCount)
}

// QuestionResult pairs a question with the student's answer.
type QuestionResult struct {
	Prompt         string `json:"prompt"`
	SelectedOption string `json:"selected_option,omitempty"`
	CorrectOption  string `json:"correct_option"`
	IsCorrect      bool   `json:"is_correct"`
	Subject        string `json:"subject"`
	Topic          string `json:"topic"`
}

// AssessmentReport is the outcome of one completed quiz attempt.
type AssessmentReport struct {
	StudentName        string           `json:"student_name"`
	Track              Track            `json:"track"`
	TotalQuestions     int              `json:"total_questions"`
	CorrectAnswers     int              `json:"correct_answers"`
	ScorePercent       int              `json:"score_percent"`
	WeakTopics         []string         `json:"weak_topics"`
	StrongTopics       []string         `json:"strong_topics"`
	CompletedAt        time.Time        `json:"completed_at"`
	TimeSpentSeconds   int              `json:"time_spent_seconds"`
	PerQuestionResults []QuestionResult `json:"per_question_results"`
}

// AppConfig holds runtime parameters set via CLI flags.
type AppConfig struct {
	QuizDuration   time.Duration // total time allowed for the diagnostic quiz
	TickInterval   time.Duration // countdown granularity
	SecureCookies  bool          // Set Secure flag on cookies (disable for local dev)
	MaxChatHistory int           // 0 means unbounded
	MinReplyDelay  time.Duration
	MaxReplyDelay  time.Duration
	AllowedOrigins []string
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/pavelanni/radiance/internal/model"
)

// ErrEmailTaken is returned when signing up with an email already in use.
var ErrEmailTaken = errors.New("email already registered")

const userColumns = `id, name, email, password_hash, role, track, is_first_attempt, last_quiz_score, created_at`

// CreateUser inserts a new user. Emails are stored lower-cased.
func (s *Store) CreateUser(ctx context.Context, u model.User) (int64, error) {
	email := normalizeEmail(u.Email)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, role, track, is_first_attempt, last_quiz_score, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Name, email, u.PasswordHash, u.Role, u.Track, u.IsFirstAttempt, nullableScore(u.LastQuizScore), time.Now(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return 0, ErrEmailTaken
		}
		slog.Error("failed to create user", "email", email, "error", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	slog.Info("created user", "id", id, "email", email, "role", u.Role)
	return id, nil
}

// GetUserByEmail returns a user by email, or nil if none exists.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, normalizeEmail(email))
	return scanUser(row)
}

// GetUserByID returns a user by ID, or nil if none exists.
func (s *Store) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// ListUsers returns users with the given role. An empty track matches all
// tracks.
func (s *Store) ListUsers(ctx context.Context, role model.UserRole, track model.Track) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = ?`
	args := []any{role}
	if track != "" {
		query += ` AND track = ?`
		args = append(args, track)
	}
	query += ` ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// SetUserTrack records the track a user prepares for or teaches.
func (s *Store) SetUserTrack(ctx context.Context, id int64, track model.Track) error {
	_, err := s.db.ExecContext(ctx, `UPDATE users SET track = ? WHERE id = ?`, track, id)
	return err
}

// RecordQuizScore marks the diagnostic quiz as taken and stores the score.
func (s *Store) RecordQuizScore(ctx context.Context, id int64, score int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET is_first_attempt = 0, last_quiz_score = ? WHERE id = ?`, score, id)
	return err
}

// UserCount returns the total number of users.
func (s *Store) UserCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	var score sql.NullInt64
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Track, &u.IsFirstAttempt, &score, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if score.Valid {
		v := int(score.Int64)
		u.LastQuizScore = &v
	}
	return &u, nil
}

func nullableScore(score *int) any {
	if score == nil {
		return nil
	}
	return *score
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

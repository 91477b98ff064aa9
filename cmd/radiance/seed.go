package main

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/pavelanni/radiance/internal/model"
	"github.com/pavelanni/radiance/internal/store"
)

// demoPassword is shared by all demo accounts.
const demoPassword = "password"

var demoUsers = []model.User{
	{Name: "John Doe", Email: "student@example.com", Role: model.UserRoleStudent, Track: model.TrackJEE, IsFirstAttempt: true},
	{Name: "Dr. Smith", Email: "teacher@example.com", Role: model.UserRoleTeacher, Track: model.TrackJEE, IsFirstAttempt: false},
	{Name: "Jane Smith", Email: "neet.student@example.com", Role: model.UserRoleStudent, Track: model.TrackNEET, IsFirstAttempt: false},
}

// seedDemoUsers creates the demo accounts if no users exist.
func seedDemoUsers(ctx context.Context, db *store.Store) error {
	count, err := db.UserCount(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}
	for _, u := range demoUsers {
		u.PasswordHash = string(hash)
		if _, err := db.CreateUser(ctx, u); err != nil {
			return fmt.Errorf("create demo user %s: %w", u.Email, err)
		}
	}
	slog.Info("seeded demo users", "count", len(demoUsers))
	return nil
}

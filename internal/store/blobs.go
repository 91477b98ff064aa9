package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pavelanni/radiance/internal/model"
)

// maxReportHistory bounds the per-user attempt history kept for dashboards.
const maxReportHistory = 50

func (s *Store) getJSON(ctx context.Context, key string, dest any) (bool, error) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.kv.Set(ctx, key, string(data))
}

// SaveSessionProfile stores the logged-in profile under the session key.
func (s *Store) SaveSessionProfile(ctx context.Context, token string, p model.UserProfile) error {
	return s.setJSON(ctx, profileKey(token), p)
}

// SessionProfile loads the profile for a session, or nil if absent.
func (s *Store) SessionProfile(ctx context.Context, token string) (*model.UserProfile, error) {
	var p model.UserProfile
	ok, err := s.getJSON(ctx, profileKey(token), &p)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

// RemoveSessionProfile drops the session's profile blob.
func (s *Store) RemoveSessionProfile(ctx context.Context, token string) error {
	return s.kv.Remove(ctx, profileKey(token))
}

// SaveReport replaces the user's latest report and appends it to the
// attempt history, keeping the most recent maxReportHistory entries.
// Concurrent saves in one process never lose an entry; processes sharing a
// Redis KV are last-write-wins on the history blob.
func (s *Store) SaveReport(ctx context.Context, userID int64, r model.AssessmentReport) error {
	s.reportMu.Lock()
	defer s.reportMu.Unlock()

	if err := s.setJSON(ctx, reportKey(userID), r); err != nil {
		return err
	}
	history, err := s.ReportHistory(ctx, userID)
	if err != nil {
		return err
	}
	history = append(history, r)
	if len(history) > maxReportHistory {
		history = history[len(history)-maxReportHistory:]
	}
	return s.setJSON(ctx, historyKey(userID), history)
}

// LatestReport returns the user's most recent report, or nil.
func (s *Store) LatestReport(ctx context.Context, userID int64) (*model.AssessmentReport, error) {
	var r model.AssessmentReport
	ok, err := s.getJSON(ctx, reportKey(userID), &r)
	if err != nil || !ok {
		return nil, err
	}
	return &r, nil
}

// ReportHistory returns all stored reports for a user, oldest first.
func (s *Store) ReportHistory(ctx context.Context, userID int64) ([]model.AssessmentReport, error) {
	var history []model.AssessmentReport
	if _, err := s.getJSON(ctx, historyKey(userID), &history); err != nil {
		return nil, err
	}
	return history, nil
}

// ChatHistory loads a user's tutor conversation. A missing blob is an empty
// history, not an error.
func (s *Store) ChatHistory(ctx context.Context, userID int64) ([]model.ChatMessage, error) {
	msgs := []model.ChatMessage{}
	if _, err := s.getJSON(ctx, chatKey(userID), &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// SaveChatHistory replaces a user's tutor conversation.
func (s *Store) SaveChatHistory(ctx context.Context, userID int64, msgs []model.ChatMessage) error {
	return s.setJSON(ctx, chatKey(userID), msgs)
}

// ClearChatHistory removes the persisted conversation entirely.
func (s *Store) ClearChatHistory(ctx context.Context, userID int64) error {
	return s.kv.Remove(ctx, chatKey(userID))
}

package tutor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/radiance/internal/model"
)

// ErrEmptyMessage is returned by Send for blank input.
var ErrEmptyMessage = errors.New("message is empty")

// DefaultMaxHistory is the number of messages kept per student.
const DefaultMaxHistory = 200

// HistoryStore persists one conversation per user.
type HistoryStore interface {
	ChatHistory(ctx context.Context, userID int64) ([]model.ChatMessage, error)
	SaveChatHistory(ctx context.Context, userID int64, msgs []model.ChatMessage) error
	ClearChatHistory(ctx context.Context, userID int64) error
}

// Conversation manages students' tutor chats on top of a HistoryStore.
type Conversation struct {
	store      HistoryStore
	responder  *Responder
	maxHistory int
	now        func() time.Time

	mu sync.Mutex // serializes read-modify-write of histories
}

// NewConversation wires a chat service. maxHistory of 0 keeps everything.
func NewConversation(store HistoryStore, responder *Responder, maxHistory int) *Conversation {
	switch {
	case maxHistory < 0:
		maxHistory = 0
	case maxHistory == 1:
		// Keep at least one full exchange.
		maxHistory = 2
	}
	return &Conversation{
		store:      store,
		responder:  responder,
		maxHistory: maxHistory,
		now:        time.Now,
	}
}

// Load returns the student's conversation, oldest first.
func (c *Conversation) Load(ctx context.Context, userID int64) ([]model.ChatMessage, error) {
	msgs, err := c.store.ChatHistory(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load chat history: %w", err)
	}
	return msgs, nil
}

// Send records the student's message and the tutor's reply, and returns
// both. Nothing is persisted when the reply fails.
func (c *Conversation) Send(ctx context.Context, profile model.UserProfile, text string) (model.ChatMessage, model.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.ChatMessage{}, model.ChatMessage{}, ErrEmptyMessage
	}

	userMsg := model.ChatMessage{
		ID:        uuid.NewString(),
		Content:   text,
		Role:      model.RoleUser,
		Timestamp: c.now(),
	}

	reply, err := c.responder.Reply(ctx, text, profile)
	if err != nil {
		return model.ChatMessage{}, model.ChatMessage{}, fmt.Errorf("tutor reply: %w", err)
	}
	assistantMsg := model.ChatMessage{
		ID:        uuid.NewString(),
		Content:   reply,
		Role:      model.RoleAssistant,
		Timestamp: c.now(),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	history, err := c.store.ChatHistory(ctx, profile.ID)
	if err != nil {
		return model.ChatMessage{}, model.ChatMessage{}, fmt.Errorf("load chat history: %w", err)
	}
	history = c.trim(append(history, userMsg, assistantMsg))
	if err := c.store.SaveChatHistory(ctx, profile.ID, history); err != nil {
		return model.ChatMessage{}, model.ChatMessage{}, fmt.Errorf("save chat history: %w", err)
	}
	slog.Debug("tutor reply", "user_id", profile.ID, "topic", Classify(text, profile), "history", len(history))
	return userMsg, assistantMsg, nil
}

// Clear deletes the student's conversation.
func (c *Conversation) Clear(ctx context.Context, userID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.store.ClearChatHistory(ctx, userID); err != nil {
		return fmt.Errorf("clear chat history: %w", err)
	}
	return nil
}

// trim drops the oldest messages beyond maxHistory, whole exchanges at a
// time so the history never starts with an orphaned reply.
func (c *Conversation) trim(msgs []model.ChatMessage) []model.ChatMessage {
	if c.maxHistory == 0 || len(msgs) <= c.maxHistory {
		return msgs
	}
	drop := len(msgs) - c.maxHistory
	if drop%2 == 1 {
		drop++
	}
	if drop > len(msgs) {
		drop = len(msgs)
	}
	return msgs[drop:]
}

// Package chat tracks conversations and drives the message lifecycle
// around a streamed answer: a pending assistant message is appended to
// while sending, then finalized to sent or error.
package chat

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xhad/recall/internal/models"
	"github.com/xhad/recall/pkg/answer"
)

const (
	defaultTitle  = "New Chat"
	titleMaxRunes = 40
)

// Answerer is the orchestration surface the session needs; satisfied by
// *answer.Orchestrator.
type Answerer interface {
	Answer(ctx context.Context, query string, sink func(fragment string) error) (answer.State, error)
}

// Session owns the conversation list. At most one conversation is active
// at a time. All mutations go through the session so UpdatedAt stays
// accurate and the single-writer rule for streaming content holds.
type Session struct {
	answerer Answerer

	// OnFragment, when set, observes each answer fragment as it is
	// appended. Used by terminal and socket frontends to stream output.
	OnFragment func(fragment string)

	mu            sync.RWMutex
	conversations []*models.Conversation
	activeID      string
}

func NewSession(answerer Answerer) *Session {
	return &Session{answerer: answerer}
}

// CreateConversation starts a fresh conversation and makes it active.
func (s *Session) CreateConversation() *models.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	conv := &models.Conversation{
		ID:        uuid.NewString(),
		Title:     defaultTitle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	// Newest first, matching sidebar ordering.
	s.conversations = append([]*models.Conversation{conv}, s.conversations...)
	s.activeID = conv.ID
	return conv
}

// Conversations returns the conversation list, newest first.
func (s *Session) Conversations() []*models.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Conversation, len(s.conversations))
	copy(out, s.conversations)
	return out
}

// Active returns the active conversation, or nil when there is none.
func (s *Session) Active() *models.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findLocked(s.activeID)
}

// SetActive switches the active conversation.
func (s *Session) SetActive(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findLocked(id) == nil {
		return fmt.Errorf("conversation %s not found", id)
	}
	s.activeID = id
	return nil
}

// DeleteConversation removes a conversation. If it was active, the most
// recent remaining conversation becomes active.
func (s *Session) DeleteConversation(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, conv := range s.conversations {
		if conv.ID == id {
			s.conversations = append(s.conversations[:i], s.conversations[i+1:]...)
			break
		}
	}
	if s.activeID == id {
		s.activeID = ""
		if len(s.conversations) > 0 {
			s.activeID = s.conversations[0].ID
		}
	}
}

// Send appends the user message, creates a pending assistant message and
// streams the answer into it. The user message stays intact on failure;
// only the assistant message is marked failed, and the caller may retry.
// Cancellation finalizes the partial content as sent.
func (s *Session) Send(ctx context.Context, content string, attachments []models.Attachment) (*models.Message, error) {
	s.mu.Lock()
	conv := s.findLocked(s.activeID)
	if conv == nil {
		s.mu.Unlock()
		conv = s.CreateConversation()
		s.mu.Lock()
	}

	if conv.Title == defaultTitle && len(conv.Messages) == 0 {
		conv.Title = truncateTitle(content)
	}

	now := time.Now()
	user := &models.Message{
		ID:          uuid.NewString(),
		Role:        models.RoleUser,
		Content:     content,
		Status:      models.StatusSent,
		Attachments: attachments,
		CreatedAt:   now,
	}
	assistant := &models.Message{
		ID:        uuid.NewString(),
		Role:      models.RoleAssistant,
		Status:    models.StatusSending,
		CreatedAt: now,
	}
	conv.Messages = append(conv.Messages, user, assistant)
	conv.UpdatedAt = now
	s.mu.Unlock()

	state, err := s.answerer.Answer(ctx, content, func(fragment string) error {
		s.appendContent(conv, assistant, fragment)
		if s.OnFragment != nil {
			s.OnFragment(fragment)
		}
		return nil
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case state == answer.StateFailed:
		assistant.Status = models.StatusError
		assistant.Content = err.Error()
	default:
		// Completed, or cancelled with whatever arrived so far.
		assistant.Status = models.StatusSent
	}
	conv.UpdatedAt = time.Now()

	if state == answer.StateFailed {
		return assistant, err
	}
	return assistant, nil
}

// appendContent is the single writer for a sending message's content.
func (s *Session) appendContent(conv *models.Conversation, msg *models.Message, fragment string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg.Content += fragment
	conv.UpdatedAt = time.Now()
}

func (s *Session) findLocked(id string) *models.Conversation {
	if id == "" {
		return nil
	}
	for _, conv := range s.conversations {
		if conv.ID == id {
			return conv
		}
	}
	return nil
}

func truncateTitle(content string) string {
	runes := []rune(content)
	if len(runes) <= titleMaxRunes {
		return content
	}
	return string(runes[:titleMaxRunes]) + "…"
}

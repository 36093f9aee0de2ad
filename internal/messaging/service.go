// internal/messaging/service.go

package messaging

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/zawajhub/zawaj-backend/internal/common/utils"
	"github.com/zawajhub/zawaj-backend/internal/matching"
	"github.com/zawajhub/zawaj-backend/internal/notification"
)

type Service interface {
	SendMessage(ctx context.Context, matchID, senderID int64, content string) (*Message, error)
	ListMessages(ctx context.Context, matchID, userID int64, limit, offset int) ([]*Message, error)
}

type service struct {
	repo     Repository
	matches  matching.Service
	notifier matching.Notifier
	hub      *Hub
	logger   *zap.Logger
}

func NewService(repo Repository, matches matching.Service, notifier matching.Notifier, hub *Hub) Service {
	return &service{
		repo:     repo,
		matches:  matches,
		notifier: notifier,
		hub:      hub,
		logger:   utils.GetLogger(),
	}
}

// SendMessage stores a message after the gate check. The gate re-derives
// the match's effective state on every call; only active matches may
// exchange messages.
func (s *service) SendMessage(ctx context.Context, matchID, senderID int64, content string) (*Message, error) {
	m, err := s.matches.CanSendMessage(ctx, matchID, senderID)
	if err != nil {
		return nil, err
	}

	msg := &Message{
		MatchID:  matchID,
		SenderID: senderID,
		Content:  content,
	}
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	recipient, _ := m.Counterpart(senderID)

	if s.hub != nil {
		s.hub.SendToUser(recipient, WSEvent{Type: "new_message", Payload: msg})
	}

	err = s.notifier.Notify(ctx, recipient, notification.TypeNewMessage,
		"New message",
		"You have a new message from your match.",
		map[string]interface{}{"match_id": matchID, "message_id": msg.ID})
	if err != nil {
		s.logger.Error("failed to emit new message notification",
			zap.Int64("match_id", matchID),
			zap.Int64("recipient", recipient),
			zap.Error(err))
	}

	return msg, nil
}

// ListMessages returns the match's history, newest first. Both
// participants may read history even after the match closes.
func (s *service) ListMessages(ctx context.Context, matchID, userID int64, limit, offset int) ([]*Message, error) {
	if _, err := s.matches.GetMatch(ctx, matchID, userID, false); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	return s.repo.ListMessages(ctx, matchID, limit, offset)
}

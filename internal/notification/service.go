// internal/notification/service.go

package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/zawajhub/zawaj-backend/internal/common/utils"
)

// ContactLookup resolves delivery addresses for a user. Implemented by
// the auth service.
type ContactLookup interface {
	Contact(ctx context.Context, userID int64) (email, phone string, err error)
}

// Config toggles the optional delivery channels. The in-app record is
// always written.
type Config struct {
	EnableEmail bool
	EnableSMS   bool
}

type Service interface {
	Notify(ctx context.Context, userID int64, ntype, title, message string, data map[string]interface{}) error
	List(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]*Notification, error)
	MarkRead(ctx context.Context, id, userID int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	CountUnread(ctx context.Context, userID int64) (int, error)
}

type service struct {
	repo     Repository
	email    EmailSender
	sms      SMSSender
	contacts ContactLookup
	config   Config
	logger   *zap.Logger
}

func NewService(repo Repository, email EmailSender, sms SMSSender, contacts ContactLookup, cfg Config) Service {
	return &service{
		repo:     repo,
		email:    email,
		sms:      sms,
		contacts: contacts,
		config:   cfg,
		logger:   utils.GetLogger(),
	}
}

// Notify writes the in-app notification and fans out to the optional
// channels. Channel failures are logged, never propagated; the in-app
// record is the source of truth.
func (s *service) Notify(ctx context.Context, userID int64, ntype, title, message string, data map[string]interface{}) error {
	n := &Notification{
		UserID:  userID,
		Type:    ntype,
		Title:   title,
		Message: message,
		Data:    NotificationData(data),
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	if !s.config.EnableEmail && !s.config.EnableSMS {
		return nil
	}

	email, phone, err := s.contacts.Contact(ctx, userID)
	if err != nil {
		s.logger.Warn("could not resolve contact for notification delivery",
			zap.Int64("user_id", userID),
			zap.Error(err))
		return nil
	}

	if s.config.EnableEmail && s.email != nil && email != "" {
		if err := s.email.SendEmail(ctx, email, title, message); err != nil {
			s.logger.Warn("email notification delivery failed",
				zap.Int64("user_id", userID),
				zap.String("type", ntype),
				zap.Error(err))
		}
	}

	if s.config.EnableSMS && s.sms != nil && phone != "" {
		if err := s.sms.SendSMS(ctx, phone, title+": "+message); err != nil {
			s.logger.Warn("SMS notification delivery failed",
				zap.Int64("user_id", userID),
				zap.String("type", ntype),
				zap.Error(err))
		}
	}

	return nil
}

func (s *service) List(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]*Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListForUser(ctx, userID, unreadOnly, limit, offset)
}

func (s *service) MarkRead(ctx context.Context, id, userID int64) error {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *service) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *service) CountUnread(ctx context.Context, userID int64) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

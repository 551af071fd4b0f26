package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"PartnerWebserver/internal/domain"
	"PartnerWebserver/internal/notifications"
)

type NotificationsStore interface {
	CreateNotification(ctx context.Context, username string, typ domain.NotificationType, message string, payload domain.NotificationPayload) (domain.Notification, error)
	ListNotifications(ctx context.Context, username string, limit int) ([]domain.Notification, error)
	MarkAllRead(ctx context.Context, username string) error
	CountUnread(ctx context.Context, username string) (int, error)
}

type NotificationTokensStore interface {
	UpsertToken(ctx context.Context, username, token, platform string, when time.Time) (domain.NotificationToken, error)
	DeleteToken(ctx context.Context, username, token string) error
	ListTokens(ctx context.Context, username string) ([]domain.NotificationToken, error)
}

type PushSender interface {
	Send(ctx context.Context, token string, msg notifications.Message) error
}

// Notifier is the producer-side interface the other services depend on.
type Notifier interface {
	Notify(ctx context.Context, target, actor string, typ domain.NotificationType, message string, payload domain.NotificationPayload) error
}

type NotificationService struct {
	Store  NotificationsStore
	Tokens NotificationTokensStore
	Sender PushSender
	Logger *slog.Logger
	Now    func() time.Time
}

// Notify records one notification for target about something actor did.
// A user never hears about their own actions. Push delivery is best
// effort and never fails the producing operation.
func (s *NotificationService) Notify(ctx context.Context, target, actor string, typ domain.NotificationType, message string, payload domain.NotificationPayload) error {
	if target == actor {
		return nil
	}

	n, err := s.Store.CreateNotification(ctx, target, typ, message, payload)
	if err != nil {
		return err
	}

	s.push(ctx, n)
	return nil
}

// List returns the recipient's notifications newest first and flips all
// of them to read: viewing the list is the read acknowledgement.
func (s *NotificationService) List(ctx context.Context, username string, limit int) ([]domain.Notification, error) {
	out, err := s.Store.ListNotifications(ctx, username, limit)
	if err != nil {
		return nil, err
	}
	if err := s.Store.MarkAllRead(ctx, username); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, username string) (int, error) {
	return s.Store.CountUnread(ctx, username)
}

func (s *NotificationService) RegisterToken(ctx context.Context, username, token, platform string) (domain.NotificationToken, error) {
	if s.Tokens == nil {
		return domain.NotificationToken{}, errors.New("notifications unavailable")
	}
	token = strings.TrimSpace(token)
	platform = strings.TrimSpace(strings.ToLower(platform))
	if token == "" || platform == "" {
		return domain.NotificationToken{}, domain.NewValidationError(map[string]string{"token": "required", "platform": "required"})
	}
	switch platform {
	case "android", "ios", "web":
	default:
		return domain.NotificationToken{}, domain.NewValidationError(map[string]string{"platform": "must be ios, android or web"})
	}
	if s.Now == nil {
		s.Now = time.Now
	}
	when := s.Now().UTC().Truncate(time.Millisecond)
	return s.Tokens.UpsertToken(ctx, username, token, platform, when)
}

func (s *NotificationService) DeleteToken(ctx context.Context, username, token string) error {
	if s.Tokens == nil {
		return errors.New("notifications unavailable")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.NewValidationError(map[string]string{"token": "required"})
	}
	return s.Tokens.DeleteToken(ctx, username, token)
}

func (s *NotificationService) push(ctx context.Context, n domain.Notification) {
	if s.Tokens == nil || s.Sender == nil {
		return
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tokens, err := s.Tokens.ListTokens(ctx, n.Username)
	if err != nil {
		logger.Error("notifications: list tokens failed", "err", err, "username", n.Username)
		return
	}
	if len(tokens) == 0 {
		return
	}

	data := map[string]string{
		"type":    string(n.Type),
		"message": n.Message,
	}
	if n.Payload != nil {
		if raw, err := json.Marshal(n.Payload); err == nil {
			data["data"] = string(raw)
		}
	}

	dataOnlyMsg := notifications.Message{Data: data}
	alertMsg := notifications.Message{
		Data: data,
		Notification: &notifications.Notification{
			Title: pushTitle(n.Type),
			Body:  n.Message,
		},
	}

	for _, token := range tokens {
		msg := dataOnlyMsg
		if strings.TrimSpace(strings.ToLower(token.Platform)) == "ios" {
			msg = alertMsg
		}
		if err := s.Sender.Send(ctx, token.Token, msg); err != nil {
			if errors.Is(err, notifications.ErrInvalidToken) {
				if delErr := s.Tokens.DeleteToken(ctx, n.Username, token.Token); delErr != nil {
					logger.Error("notifications: delete invalid token failed", "err", delErr, "username", n.Username)
				}
				continue
			}
			logger.Error("notifications: push send failed", "err", err, "username", n.Username)
		}
	}
}

func pushTitle(typ domain.NotificationType) string {
	switch typ {
	case domain.NotificationTripJoin:
		return "New travel partner"
	case domain.NotificationTripInvite:
		return "Trip invitation"
	case domain.NotificationTripInviteResponse:
		return "Invitation answered"
	case domain.NotificationLike:
		return "New like"
	case domain.NotificationComment:
		return "New comment"
	case domain.NotificationFollow:
		return "New follower"
	default:
		return "Notification"
	}
}

package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"PartnerWebserver/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationsStore struct {
	pool *pgxpool.Pool
}

func NewNotificationsStore(pool *pgxpool.Pool) *NotificationsStore {
	return &NotificationsStore{pool: pool}
}

func (s *NotificationsStore) CreateNotification(ctx context.Context, username string, typ domain.NotificationType, message string, payload domain.NotificationPayload) (domain.Notification, error) {
	var data []byte
	if payload != nil {
		var err error
		data, err = json.Marshal(payload)
		if err != nil {
			return domain.Notification{}, fmt.Errorf("encode notification payload: %w", err)
		}
	}

	const q = `
		INSERT INTO notifications (username, type, message, data)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	var (
		n      domain.Notification
		idUUID pgtype.UUID
	)
	err := s.pool.QueryRow(ctx, q, username, typ, message, data).Scan(&idUUID, &n.CreatedAt)
	if err != nil {
		return domain.Notification{}, fmt.Errorf("create notification: %w", err)
	}

	n.ID = uuidOrEmpty(idUUID)
	n.Username = username
	n.Type = typ
	n.Message = message
	n.Payload = payload
	return n, nil
}

func (s *NotificationsStore) ListNotifications(ctx context.Context, username string, limit int) ([]domain.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	const q = `
		SELECT id, username, type, message, read, created_at, data
		FROM notifications
		WHERE username = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, q, username, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var (
			n      domain.Notification
			idUUID pgtype.UUID
			data   []byte
		)
		if err := rows.Scan(&idUUID, &n.Username, &n.Type, &n.Message, &n.Read, &n.CreatedAt, &data); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.ID = uuidOrEmpty(idUUID)
		n.Payload, err = domain.DecodeNotificationPayload(n.Type, data)
		if err != nil {
			return nil, fmt.Errorf("list notifications: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

func (s *NotificationsStore) MarkAllRead(ctx context.Context, username string) error {
	const q = `
		UPDATE notifications
		SET read = TRUE
		WHERE username = $1 AND read = FALSE
	`
	if _, err := s.pool.Exec(ctx, q, username); err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}
	return nil
}

func (s *NotificationsStore) CountUnread(ctx context.Context, username string) (int, error) {
	const q = `SELECT count(*) FROM notifications WHERE username = $1 AND read = FALSE`

	var n int
	if err := s.pool.QueryRow(ctx, q, username).Scan(&n); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return n, nil
}

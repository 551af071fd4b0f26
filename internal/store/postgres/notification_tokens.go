package postgres

import (
	"context"
	"fmt"
	"time"

	"PartnerWebserver/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationTokensStore struct {
	pool *pgxpool.Pool
}

func NewNotificationTokensStore(pool *pgxpool.Pool) *NotificationTokensStore {
	return &NotificationTokensStore{pool: pool}
}

func (s *NotificationTokensStore) UpsertToken(ctx context.Context, username, token, platform string, when time.Time) (domain.NotificationToken, error) {
	const q = `
		INSERT INTO notification_tokens (username, token, platform, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (token)
		DO UPDATE SET
			username = EXCLUDED.username,
			platform = EXCLUDED.platform,
			updated_at = EXCLUDED.updated_at
		RETURNING id, username, token, platform, created_at, updated_at
	`

	var (
		t      domain.NotificationToken
		idUUID pgtype.UUID
	)
	err := s.pool.QueryRow(ctx, q, username, token, platform, when).Scan(
		&idUUID,
		&t.Username,
		&t.Token,
		&t.Platform,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return domain.NotificationToken{}, fmt.Errorf("upsert notification token: %w", err)
	}

	t.ID = uuidOrEmpty(idUUID)
	return t, nil
}

func (s *NotificationTokensStore) DeleteToken(ctx context.Context, username, token string) error {
	const q = `
		DELETE FROM notification_tokens
		WHERE username = $1 AND token = $2
	`
	if _, err := s.pool.Exec(ctx, q, username, token); err != nil {
		return fmt.Errorf("delete notification token: %w", err)
	}
	return nil
}

func (s *NotificationTokensStore) ListTokens(ctx context.Context, username string) ([]domain.NotificationToken, error) {
	const q = `
		SELECT id, username, token, platform, created_at, updated_at
		FROM notification_tokens
		WHERE username = $1
		ORDER BY updated_at DESC
	`

	rows, err := s.pool.Query(ctx, q, username)
	if err != nil {
		return nil, fmt.Errorf("list notification tokens: %w", err)
	}
	defer rows.Close()

	var out []domain.NotificationToken
	for rows.Next() {
		var (
			t      domain.NotificationToken
			idUUID pgtype.UUID
		)
		if err := rows.Scan(&idUUID, &t.Username, &t.Token, &t.Platform, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan notification token: %w", err)
		}
		t.ID = uuidOrEmpty(idUUID)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notification tokens: %w", err)
	}
	return out, nil
}

package postgres

import (
	"context"
	"fmt"

	"PartnerWebserver/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MessagesStore struct {
	pool *pgxpool.Pool
}

func NewMessagesStore(pool *pgxpool.Pool) *MessagesStore {
	return &MessagesStore{pool: pool}
}

func (s *MessagesStore) AppendMessage(ctx context.Context, sender, receiver, content, attachment string) (domain.Message, error) {
	const q = `
		INSERT INTO messages (sender, receiver, content, attachment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, sender, receiver, content, attachment, read, created_at
	`

	row := s.pool.QueryRow(ctx, q, sender, receiver, content, nullIfEmpty(attachment))
	m, err := scanMessage(row)
	if err != nil {
		return domain.Message{}, fmt.Errorf("append message: %w", err)
	}
	return m, nil
}

// ListBetween returns the full two-way thread between a and b, oldest first.
func (s *MessagesStore) ListBetween(ctx context.Context, a, b string) ([]domain.Message, error) {
	const q = `
		SELECT id, sender, receiver, content, attachment, read, created_at
		FROM messages
		WHERE (sender = $1 AND receiver = $2) OR (sender = $2 AND receiver = $1)
		ORDER BY created_at ASC
	`

	rows, err := s.pool.Query(ctx, q, a, b)
	if err != nil {
		return nil, fmt.Errorf("list thread: %w", err)
	}
	defer rows.Close()

	return collectMessages(rows, "list thread")
}

// ListForUser returns every message username sent or received, oldest
// first. Conversation summaries are derived from this set.
func (s *MessagesStore) ListForUser(ctx context.Context, username string) ([]domain.Message, error) {
	const q = `
		SELECT id, sender, receiver, content, attachment, read, created_at
		FROM messages
		WHERE sender = $1 OR receiver = $1
		ORDER BY created_at ASC
	`

	rows, err := s.pool.Query(ctx, q, username)
	if err != nil {
		return nil, fmt.Errorf("list messages for user: %w", err)
	}
	defer rows.Close()

	return collectMessages(rows, "list messages for user")
}

// MarkThreadRead flags everything sender wrote to receiver as read.
func (s *MessagesStore) MarkThreadRead(ctx context.Context, receiver, sender string) error {
	const q = `
		UPDATE messages
		SET read = TRUE
		WHERE receiver = $1 AND sender = $2 AND read = FALSE
	`
	if _, err := s.pool.Exec(ctx, q, receiver, sender); err != nil {
		return fmt.Errorf("mark thread read: %w", err)
	}
	return nil
}

func scanMessage(row pgx.Row) (domain.Message, error) {
	var (
		m          domain.Message
		idUUID     pgtype.UUID
		attachText pgtype.Text
	)
	err := row.Scan(
		&idUUID,
		&m.Sender,
		&m.Receiver,
		&m.Content,
		&attachText,
		&m.Read,
		&m.CreatedAt,
	)
	if err != nil {
		return domain.Message{}, err
	}

	m.ID = uuidOrEmpty(idUUID)
	m.Attachment = textOrEmpty(attachText)
	return m, nil
}

func collectMessages(rows pgx.Rows, op string) ([]domain.Message, error) {
	var out []domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

package postgres

import (
	"context"
	"fmt"
	"strings"

	"PartnerWebserver/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type UserSearchStore struct {
	pool *pgxpool.Pool
}

func NewUserSearchStore(pool *pgxpool.Pool) *UserSearchStore {
	return &UserSearchStore{pool: pool}
}

// SearchUsers matches q against username, interests, and bio. The
// requesting user is excluded from their own results.
func (s *UserSearchStore) SearchUsers(ctx context.Context, q string, limit int, excludeUsername string) ([]domain.UserSummary, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	q = strings.TrimSpace(q)
	if q == "" {
		return []domain.UserSummary{}, nil
	}

	like := "%" + q + "%"
	const query = `
		SELECT id, username, avatar_path, avatar_updated_at, last_seen_at
		FROM users
		WHERE status = 'active'
		  AND username <> $3
		  AND (username ILIKE $1 OR interests ILIKE $1 OR bio ILIKE $1)
		ORDER BY username ASC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, like, limit, excludeUsername)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer rows.Close()

	var out []domain.UserSummary
	for rows.Next() {
		u, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}

	return out, nil
}

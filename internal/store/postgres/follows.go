package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type FollowsStore struct {
	pool *pgxpool.Pool
}

func NewFollowsStore(pool *pgxpool.Pool) *FollowsStore {
	return &FollowsStore{pool: pool}
}

// Follow records follower -> followee. Returns false if the edge already
// existed.
func (s *FollowsStore) Follow(ctx context.Context, follower, followee string) (bool, error) {
	const q = `
		INSERT INTO follows (follower, followee)
		VALUES ($1, $2)
		ON CONFLICT (follower, followee) DO NOTHING
	`
	ct, err := s.pool.Exec(ctx, q, follower, followee)
	if err != nil {
		return false, fmt.Errorf("follow: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

func (s *FollowsStore) Unfollow(ctx context.Context, follower, followee string) error {
	const q = `
		DELETE FROM follows
		WHERE follower = $1 AND followee = $2
	`
	if _, err := s.pool.Exec(ctx, q, follower, followee); err != nil {
		return fmt.Errorf("unfollow: %w", err)
	}
	return nil
}

func (s *FollowsStore) IsFollowing(ctx context.Context, follower, followee string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM follows WHERE follower = $1 AND followee = $2
		)
	`

	var ok bool
	if err := s.pool.QueryRow(ctx, q, follower, followee).Scan(&ok); err != nil {
		return false, fmt.Errorf("is following: %w", err)
	}
	return ok, nil
}

func (s *FollowsStore) ListFollowers(ctx context.Context, username string) ([]string, error) {
	const q = `
		SELECT follower
		FROM follows
		WHERE followee = $1
		ORDER BY follower ASC
	`
	return s.listUsernames(ctx, q, username, "list followers")
}

func (s *FollowsStore) ListFollowing(ctx context.Context, username string) ([]string, error) {
	const q = `
		SELECT followee
		FROM follows
		WHERE follower = $1
		ORDER BY followee ASC
	`
	return s.listUsernames(ctx, q, username, "list following")
}

func (s *FollowsStore) listUsernames(ctx context.Context, q, username, op string) ([]string, error) {
	rows, err := s.pool.Query(ctx, q, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan username: %w", err)
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

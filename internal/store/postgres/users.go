package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"PartnerWebserver/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersStore struct {
	pool *pgxpool.Pool
}

func NewUsersStore(pool *pgxpool.Pool) *UsersStore {
	return &UsersStore{pool: pool}
}

const userColumns = `id, email, username, bio, interests, avatar_path, avatar_updated_at, last_seen_at, status, created_at, updated_at`

func (s *UsersStore) CreateUser(ctx context.Context, email, username, passwordHash, bio, interests string) (domain.User, error) {
	const q = `
		INSERT INTO users (email, username, password_hash, bio, interests)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	row := s.pool.QueryRow(ctx, q, nullIfEmpty(email), username, passwordHash, nullIfEmpty(bio), nullIfEmpty(interests))
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapUserWriteError(err)
	}
	return u, nil
}

func (s *UsersStore) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	const q = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`

	u, err := scanUser(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

func (s *UsersStore) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	const q = `
		SELECT ` + userColumns + `
		FROM users
		WHERE username = $1
	`

	u, err := scanUser(s.pool.QueryRow(ctx, q, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

func (s *UsersStore) GetUserByLogin(ctx context.Context, login string) (domain.UserWithPassword, error) {
	const q = `
		SELECT ` + userColumns + `, password_hash
		FROM users
		WHERE username = $1 OR (email IS NOT NULL AND email = $1)
		ORDER BY (username = $1) DESC
		LIMIT 1
	`

	var (
		u          domain.UserWithPassword
		idUUID     pgtype.UUID
		emailText  pgtype.Text
		bioText    pgtype.Text
		interests  pgtype.Text
		avatarText pgtype.Text
		avatarTS   pgtype.Timestamptz
		lastSeenTS pgtype.Timestamptz
	)
	err := s.pool.QueryRow(ctx, q, login).Scan(
		&idUUID,
		&emailText,
		&u.Username,
		&bioText,
		&interests,
		&avatarText,
		&avatarTS,
		&lastSeenTS,
		&u.Status,
		&u.CreatedAt,
		&u.UpdatedAt,
		&u.PasswordHash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UserWithPassword{}, domain.ErrNotFound
		}
		return domain.UserWithPassword{}, fmt.Errorf("get user by login: %w", err)
	}

	u.ID = uuidOrEmpty(idUUID)
	u.Email = textOrEmpty(emailText)
	u.Bio = textOrEmpty(bioText)
	u.Interests = textOrEmpty(interests)
	u.AvatarPath = textOrEmpty(avatarText)
	u.AvatarUpdatedAt = timestamptzPtr(avatarTS)
	u.LastSeenAt = timestamptzPtr(lastSeenTS)
	return u, nil
}

func (s *UsersStore) SetLastSeen(ctx context.Context, username string, when time.Time) error {
	const q = `
		UPDATE users
		SET last_seen_at = $2
		WHERE username = $1
	`
	if _, err := s.pool.Exec(ctx, q, username, when); err != nil {
		return fmt.Errorf("set last seen: %w", err)
	}
	return nil
}

func (s *UsersStore) UpdateProfile(ctx context.Context, username, bio, interests string) (domain.User, error) {
	const q = `
		UPDATE users
		SET bio = $2, interests = $3, updated_at = now()
		WHERE username = $1
		RETURNING ` + userColumns

	u, err := scanUser(s.pool.QueryRow(ctx, q, username, nullIfEmpty(bio), nullIfEmpty(interests)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}

func (s *UsersStore) SetAvatar(ctx context.Context, username, avatarPath string, when time.Time) error {
	const q = `
		UPDATE users
		SET avatar_path = $2, avatar_updated_at = $3, updated_at = now()
		WHERE username = $1
	`
	ct, err := s.pool.Exec(ctx, q, username, avatarPath, when)
	if err != nil {
		return fmt.Errorf("set avatar: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetSummaries resolves several usernames at once, keyed by username.
// Unknown names are simply absent from the result.
func (s *UsersStore) GetSummaries(ctx context.Context, usernames []string) (map[string]domain.UserSummary, error) {
	if len(usernames) == 0 {
		return map[string]domain.UserSummary{}, nil
	}

	const q = `
		SELECT id, username, avatar_path, avatar_updated_at, last_seen_at
		FROM users
		WHERE username = ANY($1)
	`

	rows, err := s.pool.Query(ctx, q, usernames)
	if err != nil {
		return nil, fmt.Errorf("get user summaries: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.UserSummary, len(usernames))
	for rows.Next() {
		u, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user summary: %w", err)
		}
		out[u.Username] = u
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get user summaries: %w", err)
	}
	return out, nil
}

func scanUser(row pgx.Row) (domain.User, error) {
	var (
		u          domain.User
		idUUID     pgtype.UUID
		emailText  pgtype.Text
		bioText    pgtype.Text
		interests  pgtype.Text
		avatarText pgtype.Text
		avatarTS   pgtype.Timestamptz
		lastSeenTS pgtype.Timestamptz
	)
	err := row.Scan(
		&idUUID,
		&emailText,
		&u.Username,
		&bioText,
		&interests,
		&avatarText,
		&avatarTS,
		&lastSeenTS,
		&u.Status,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}

	u.ID = uuidOrEmpty(idUUID)
	u.Email = textOrEmpty(emailText)
	u.Bio = textOrEmpty(bioText)
	u.Interests = textOrEmpty(interests)
	u.AvatarPath = textOrEmpty(avatarText)
	u.AvatarUpdatedAt = timestamptzPtr(avatarTS)
	u.LastSeenAt = timestamptzPtr(lastSeenTS)
	return u, nil
}

func scanSummary(row pgx.Row) (domain.UserSummary, error) {
	var (
		u          domain.UserSummary
		idUUID     pgtype.UUID
		avatarText pgtype.Text
		avatarTS   pgtype.Timestamptz
		lastSeenTS pgtype.Timestamptz
	)
	if err := row.Scan(&idUUID, &u.Username, &avatarText, &avatarTS, &lastSeenTS); err != nil {
		return domain.UserSummary{}, err
	}
	u.ID = uuidOrEmpty(idUUID)
	u.AvatarPath = textOrEmpty(avatarText)
	u.AvatarUpdatedAt = timestamptzPtr(avatarTS)
	u.LastSeenAt = timestamptzPtr(lastSeenTS)
	return u, nil
}

func mapUserWriteError(err error) error {
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) && pgerr.Code == "23505" {
		switch pgerr.ConstraintName {
		case "users_username_uq":
			return domain.ErrUsernameTaken
		case "users_email_uq":
			return domain.ErrEmailTaken
		default:
			return fmt.Errorf("unique violation (%s): %w", pgerr.ConstraintName, err)
		}
	}
	return fmt.Errorf("create user: %w", err)
}

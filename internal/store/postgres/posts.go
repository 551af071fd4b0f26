package postgres

import (
	"context"
	"errors"
	"fmt"

	"PartnerWebserver/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostsStore struct {
	pool *pgxpool.Pool
}

func NewPostsStore(pool *pgxpool.Pool) *PostsStore {
	return &PostsStore{pool: pool}
}

// postColumns includes the viewer-dependent like fields, so every query
// using it takes the viewer as its first argument.
const postColumns = `
	p.id, p.username, p.image, p.caption, p.created_at,
	(SELECT count(*) FROM post_likes l WHERE l.post_id = p.id) AS like_count,
	EXISTS (SELECT 1 FROM post_likes l WHERE l.post_id = p.id AND l.username = $1) AS liked_by_viewer`

func (s *PostsStore) CreatePost(ctx context.Context, username, image, caption string) (domain.Post, error) {
	const q = `
		INSERT INTO posts (username, image, caption)
		VALUES ($1, $2, $3)
		RETURNING id, username, image, caption, created_at
	`

	var (
		p           domain.Post
		idUUID      pgtype.UUID
		captionText pgtype.Text
	)
	err := s.pool.QueryRow(ctx, q, username, image, nullIfEmpty(caption)).Scan(
		&idUUID,
		&p.Username,
		&p.Image,
		&captionText,
		&p.CreatedAt,
	)
	if err != nil {
		return domain.Post{}, fmt.Errorf("create post: %w", err)
	}

	p.ID = uuidOrEmpty(idUUID)
	p.Caption = textOrEmpty(captionText)
	return p, nil
}

func (s *PostsStore) GetPost(ctx context.Context, viewer, id string) (domain.Post, error) {
	const q = `
		SELECT ` + postColumns + `
		FROM posts p
		WHERE p.id = $2
	`

	p, err := scanPost(s.pool.QueryRow(ctx, q, viewer, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Post{}, domain.ErrNotFound
		}
		return domain.Post{}, fmt.Errorf("get post: %w", err)
	}

	comments, err := s.listComments(ctx, []string{p.ID})
	if err != nil {
		return domain.Post{}, err
	}
	p.Comments = comments[p.ID]
	return p, nil
}

// ListFeed returns posts by the viewer and everyone they follow, newest
// first, with comments attached.
func (s *PostsStore) ListFeed(ctx context.Context, viewer string) ([]domain.Post, error) {
	const q = `
		SELECT ` + postColumns + `
		FROM posts p
		WHERE p.username = $1
		   OR p.username IN (SELECT followee FROM follows WHERE follower = $1)
		ORDER BY p.created_at DESC
	`
	return s.queryPosts(ctx, "list feed", q, viewer)
}

func (s *PostsStore) ListPostsByUser(ctx context.Context, viewer, username string) ([]domain.Post, error) {
	const q = `
		SELECT ` + postColumns + `
		FROM posts p
		WHERE p.username = $2
		ORDER BY p.created_at DESC
	`
	return s.queryPosts(ctx, "list posts by user", q, viewer, username)
}

func (s *PostsStore) ListExplore(ctx context.Context, viewer string, limit int) ([]domain.Post, error) {
	if limit <= 0 {
		limit = 30
	}
	const q = `
		SELECT ` + postColumns + `
		FROM posts p
		ORDER BY p.created_at DESC
		LIMIT $2
	`
	return s.queryPosts(ctx, "list explore", q, viewer, limit)
}

func (s *PostsStore) ListByHashtag(ctx context.Context, viewer, tag string) ([]domain.Post, error) {
	const q = `
		SELECT ` + postColumns + `
		FROM posts p
		WHERE p.caption ILIKE '%#' || $2 || '%'
		ORDER BY p.created_at DESC
	`
	return s.queryPosts(ctx, "list by hashtag", q, viewer, tag)
}

// InsertLike returns false if viewer already liked the post.
func (s *PostsStore) UpdateCaption(ctx context.Context, id, caption string) error {
	const q = `UPDATE posts SET caption = $2 WHERE id = $1`

	tag, err := s.pool.Exec(ctx, q, id, nullIfEmpty(caption))
	if err != nil {
		return fmt.Errorf("update post caption: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *PostsStore) DeletePost(ctx context.Context, id string) error {
	const q = `DELETE FROM posts WHERE id = $1`

	tag, err := s.pool.Exec(ctx, q, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *PostsStore) InsertLike(ctx context.Context, postID, username string) (bool, error) {
	const q = `
		INSERT INTO post_likes (post_id, username)
		VALUES ($1, $2)
		ON CONFLICT (post_id, username) DO NOTHING
	`
	ct, err := s.pool.Exec(ctx, q, postID, username)
	if err != nil {
		return false, fmt.Errorf("insert like: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

func (s *PostsStore) DeleteLike(ctx context.Context, postID, username string) error {
	const q = `
		DELETE FROM post_likes
		WHERE post_id = $1 AND username = $2
	`
	if _, err := s.pool.Exec(ctx, q, postID, username); err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	return nil
}

func (s *PostsStore) AddComment(ctx context.Context, postID, username, body string) (domain.Comment, error) {
	const q = `
		INSERT INTO post_comments (post_id, username, body)
		VALUES ($1, $2, $3)
		RETURNING id, post_id, username, body, created_at
	`

	var (
		c        domain.Comment
		idUUID   pgtype.UUID
		postUUID pgtype.UUID
	)
	err := s.pool.QueryRow(ctx, q, postID, username, body).Scan(
		&idUUID,
		&postUUID,
		&c.Username,
		&c.Body,
		&c.CreatedAt,
	)
	if err != nil {
		return domain.Comment{}, fmt.Errorf("add comment: %w", err)
	}

	c.ID = uuidOrEmpty(idUUID)
	c.PostID = uuidOrEmpty(postUUID)
	return c, nil
}

func (s *PostsStore) queryPosts(ctx context.Context, op, q string, args ...any) ([]domain.Post, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var (
		out []domain.Post
		ids []string
	)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		out = append(out, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	comments, err := s.listComments(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Comments = comments[out[i].ID]
	}
	return out, nil
}

func (s *PostsStore) listComments(ctx context.Context, postIDs []string) (map[string][]domain.Comment, error) {
	if len(postIDs) == 0 {
		return map[string][]domain.Comment{}, nil
	}

	const q = `
		SELECT id, post_id, username, body, created_at
		FROM post_comments
		WHERE post_id = ANY($1)
		ORDER BY created_at ASC
	`

	rows, err := s.pool.Query(ctx, q, postIDs)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.Comment)
	for rows.Next() {
		var (
			c        domain.Comment
			idUUID   pgtype.UUID
			postUUID pgtype.UUID
		)
		if err := rows.Scan(&idUUID, &postUUID, &c.Username, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		c.ID = uuidOrEmpty(idUUID)
		c.PostID = uuidOrEmpty(postUUID)
		out[c.PostID] = append(out[c.PostID], c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return out, nil
}

func scanPost(row pgx.Row) (domain.Post, error) {
	var (
		p           domain.Post
		idUUID      pgtype.UUID
		captionText pgtype.Text
	)
	err := row.Scan(
		&idUUID,
		&p.Username,
		&p.Image,
		&captionText,
		&p.CreatedAt,
		&p.LikeCount,
		&p.LikedByViewer,
	)
	if err != nil {
		return domain.Post{}, err
	}

	p.ID = uuidOrEmpty(idUUID)
	p.Caption = textOrEmpty(captionText)
	return p, nil
}

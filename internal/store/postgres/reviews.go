package postgres

import (
	"context"
	"fmt"

	"PartnerWebserver/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReviewsStore struct {
	pool *pgxpool.Pool
}

func NewReviewsStore(pool *pgxpool.Pool) *ReviewsStore {
	return &ReviewsStore{pool: pool}
}

func (s *ReviewsStore) CreateReview(ctx context.Context, r domain.Review) (domain.Review, error) {
	const q = `
		INSERT INTO reviews (reviewer, reviewee, trip_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	var idUUID pgtype.UUID
	err := s.pool.QueryRow(ctx, q, r.Reviewer, r.Reviewee, r.TripID, r.Rating, nullIfEmpty(r.Comment)).
		Scan(&idUUID, &r.CreatedAt)
	if err != nil {
		return domain.Review{}, fmt.Errorf("create review: %w", err)
	}

	r.ID = uuidOrEmpty(idUUID)
	return r, nil
}

func (s *ReviewsStore) ListReviewsFor(ctx context.Context, reviewee string) ([]domain.Review, error) {
	const q = `
		SELECT id, reviewer, reviewee, trip_id, rating, comment, created_at
		FROM reviews
		WHERE reviewee = $1
		ORDER BY created_at DESC
	`

	rows, err := s.pool.Query(ctx, q, reviewee)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		var (
			r           domain.Review
			idUUID      pgtype.UUID
			tripUUID    pgtype.UUID
			commentText pgtype.Text
		)
		if err := rows.Scan(&idUUID, &r.Reviewer, &r.Reviewee, &tripUUID, &r.Rating, &commentText, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		r.ID = uuidOrEmpty(idUUID)
		r.TripID = uuidOrEmpty(tripUUID)
		r.Comment = textOrEmpty(commentText)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return out, nil
}

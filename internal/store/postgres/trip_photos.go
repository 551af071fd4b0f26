package postgres

import (
	"context"
	"fmt"

	"PartnerWebserver/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TripPhotosStore struct {
	pool *pgxpool.Pool
}

func NewTripPhotosStore(pool *pgxpool.Pool) *TripPhotosStore {
	return &TripPhotosStore{pool: pool}
}

func (s *TripPhotosStore) AddPhoto(ctx context.Context, tripID, username, filename string) (domain.TripPhoto, error) {
	const q = `
		INSERT INTO trip_photos (trip_id, username, filename)
		VALUES ($1, $2, $3)
		RETURNING id, trip_id, username, filename, created_at
	`

	var (
		p        domain.TripPhoto
		idUUID   pgtype.UUID
		tripUUID pgtype.UUID
	)
	err := s.pool.QueryRow(ctx, q, tripID, username, filename).Scan(
		&idUUID,
		&tripUUID,
		&p.Username,
		&p.Filename,
		&p.CreatedAt,
	)
	if err != nil {
		return domain.TripPhoto{}, fmt.Errorf("add trip photo: %w", err)
	}

	p.ID = uuidOrEmpty(idUUID)
	p.TripID = uuidOrEmpty(tripUUID)
	return p, nil
}

func (s *TripPhotosStore) ListPhotos(ctx context.Context, tripID string) ([]domain.TripPhoto, error) {
	const q = `
		SELECT id, trip_id, username, filename, created_at
		FROM trip_photos
		WHERE trip_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.pool.Query(ctx, q, tripID)
	if err != nil {
		return nil, fmt.Errorf("list trip photos: %w", err)
	}
	defer rows.Close()

	var out []domain.TripPhoto
	for rows.Next() {
		var (
			p        domain.TripPhoto
			idUUID   pgtype.UUID
			tripUUID pgtype.UUID
		)
		if err := rows.Scan(&idUUID, &tripUUID, &p.Username, &p.Filename, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan trip photo: %w", err)
		}
		p.ID = uuidOrEmpty(idUUID)
		p.TripID = uuidOrEmpty(tripUUID)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list trip photos: %w", err)
	}
	return out, nil
}

func (s *TripPhotosStore) CountPhotosByUser(ctx context.Context, username string) (int, error) {
	const q = `SELECT count(*) FROM trip_photos WHERE username = $1`

	var n int
	if err := s.pool.QueryRow(ctx, q, username).Scan(&n); err != nil {
		return 0, fmt.Errorf("count trip photos by user: %w", err)
	}
	return n, nil
}

package postgres

import (
	"context"
	"fmt"

	"PartnerWebserver/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReportsStore struct {
	pool *pgxpool.Pool
}

func NewReportsStore(pool *pgxpool.Pool) *ReportsStore {
	return &ReportsStore{pool: pool}
}

func (s *ReportsStore) CreateReport(ctx context.Context, r domain.Report) (domain.Report, error) {
	const q = `
		INSERT INTO reports (reporter, reported, reason, details)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	var idUUID pgtype.UUID
	err := s.pool.QueryRow(ctx, q, r.Reporter, r.Reported, r.Reason, nullIfEmpty(r.Details)).
		Scan(&idUUID, &r.CreatedAt)
	if err != nil {
		return domain.Report{}, fmt.Errorf("create report: %w", err)
	}

	r.ID = uuidOrEmpty(idUUID)
	return r, nil
}

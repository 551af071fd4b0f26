package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"PartnerWebserver/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type InvitationsStore struct {
	pool *pgxpool.Pool
}

func NewInvitationsStore(pool *pgxpool.Pool) *InvitationsStore {
	return &InvitationsStore{pool: pool}
}

const invitationColumns = `id, trip_id, inviter, invitee, status, created_at, responded_at`

func (s *InvitationsStore) CreateInvitation(ctx context.Context, tripID, inviter, invitee string) (domain.Invitation, error) {
	const q = `
		INSERT INTO trip_invitations (trip_id, inviter, invitee, status)
		VALUES ($1, $2, $3, 'pending')
		RETURNING ` + invitationColumns

	inv, err := scanInvitation(s.pool.QueryRow(ctx, q, tripID, inviter, invitee))
	if err != nil {
		return domain.Invitation{}, fmt.Errorf("create invitation: %w", err)
	}
	return inv, nil
}

func (s *InvitationsStore) GetInvitation(ctx context.Context, id string) (domain.Invitation, error) {
	const q = `
		SELECT ` + invitationColumns + `
		FROM trip_invitations
		WHERE id = $1
	`

	inv, err := scanInvitation(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Invitation{}, domain.ErrNotFound
		}
		return domain.Invitation{}, fmt.Errorf("get invitation: %w", err)
	}
	return inv, nil
}

// LatestForTriple returns the newest invitation for (trip, inviter,
// invitee) in any status. The cooldown clock runs from its CreatedAt.
func (s *InvitationsStore) LatestForTriple(ctx context.Context, tripID, inviter, invitee string) (domain.Invitation, error) {
	const q = `
		SELECT ` + invitationColumns + `
		FROM trip_invitations
		WHERE trip_id = $1 AND inviter = $2 AND invitee = $3
		ORDER BY created_at DESC
		LIMIT 1
	`

	inv, err := scanInvitation(s.pool.QueryRow(ctx, q, tripID, inviter, invitee))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Invitation{}, domain.ErrNotFound
		}
		return domain.Invitation{}, fmt.Errorf("latest invitation: %w", err)
	}
	return inv, nil
}

// Resolve moves a pending invitation to accepted or rejected. It refuses
// to touch anything already resolved.
func (s *InvitationsStore) Resolve(ctx context.Context, id string, status domain.InvitationStatus, when time.Time) error {
	const q = `
		UPDATE trip_invitations
		SET status = $2, responded_at = $3
		WHERE id = $1 AND status = 'pending'
	`
	ct, err := s.pool.Exec(ctx, q, id, status, when)
	if err != nil {
		return fmt.Errorf("resolve invitation: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrInvitationResolved
	}
	return nil
}

func (s *InvitationsStore) ListPendingForInvitee(ctx context.Context, invitee string) ([]domain.Invitation, error) {
	const q = `
		SELECT ` + invitationColumns + `
		FROM trip_invitations
		WHERE invitee = $1 AND status = 'pending'
		ORDER BY created_at DESC
	`

	rows, err := s.pool.Query(ctx, q, invitee)
	if err != nil {
		return nil, fmt.Errorf("list pending invitations: %w", err)
	}
	defer rows.Close()

	return collectInvitations(rows, "list pending invitations")
}

// LatestByInviterForTrip returns, per invitee, the newest invitation the
// inviter sent for this trip. Feeds the invite candidate view.
func (s *InvitationsStore) LatestByInviterForTrip(ctx context.Context, tripID, inviter string) ([]domain.Invitation, error) {
	const q = `
		SELECT DISTINCT ON (invitee) ` + invitationColumns + `
		FROM trip_invitations
		WHERE trip_id = $1 AND inviter = $2
		ORDER BY invitee, created_at DESC
	`

	rows, err := s.pool.Query(ctx, q, tripID, inviter)
	if err != nil {
		return nil, fmt.Errorf("latest invitations for trip: %w", err)
	}
	defer rows.Close()

	return collectInvitations(rows, "latest invitations for trip")
}

func scanInvitation(row pgx.Row) (domain.Invitation, error) {
	var (
		inv         domain.Invitation
		idUUID      pgtype.UUID
		tripUUID    pgtype.UUID
		respondedTS pgtype.Timestamptz
	)
	err := row.Scan(
		&idUUID,
		&tripUUID,
		&inv.Inviter,
		&inv.Invitee,
		&inv.Status,
		&inv.CreatedAt,
		&respondedTS,
	)
	if err != nil {
		return domain.Invitation{}, err
	}

	inv.ID = uuidOrEmpty(idUUID)
	inv.TripID = uuidOrEmpty(tripUUID)
	inv.RespondedAt = timestamptzPtr(respondedTS)
	return inv, nil
}

func collectInvitations(rows pgx.Rows, op string) ([]domain.Invitation, error) {
	var out []domain.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invitation: %w", err)
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

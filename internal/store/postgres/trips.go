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

type TripsStore struct {
	pool *pgxpool.Pool
}

func NewTripsStore(pool *pgxpool.Pool) *TripsStore {
	return &TripsStore{pool: pool}
}

const tripColumns = `id, creator, destination, start_date, end_date, description, preferences, participants, created_at, updated_at`

func (s *TripsStore) CreateTrip(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (creator, destination, start_date, end_date, description, preferences, participants)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + tripColumns

	row := s.pool.QueryRow(ctx, q,
		t.Creator,
		t.Destination,
		t.StartDate,
		t.EndDate,
		nullIfEmpty(t.Description),
		nullIfEmpty(t.Preferences),
		t.Participants,
	)
	out, err := scanTrip(row)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("create trip: %w", err)
	}
	return out, nil
}

func (s *TripsStore) GetTrip(ctx context.Context, id string) (domain.Trip, error) {
	const q = `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE id = $1
	`

	out, err := scanTrip(s.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, fmt.Errorf("get trip: %w", err)
	}
	return out, nil
}

func (s *TripsStore) UpdateTrip(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET destination = $2, start_date = $3, end_date = $4,
		    description = $5, preferences = $6, updated_at = now()
		WHERE id = $1
		RETURNING ` + tripColumns

	row := s.pool.QueryRow(ctx, q,
		t.ID,
		t.Destination,
		t.StartDate,
		t.EndDate,
		nullIfEmpty(t.Description),
		nullIfEmpty(t.Preferences),
	)
	out, err := scanTrip(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, fmt.Errorf("update trip: %w", err)
	}
	return out, nil
}

func (s *TripsStore) DeleteTrip(ctx context.Context, id string) error {
	const q = `DELETE FROM trips WHERE id = $1`
	ct, err := s.pool.Exec(ctx, q, id)
	if err != nil {
		return fmt.Errorf("delete trip: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AddParticipant appends username to the trip's participant list unless
// already present. Returns true if the list changed.
func (s *TripsStore) AddParticipant(ctx context.Context, tripID, username string) (bool, error) {
	const q = `
		UPDATE trips
		SET participants = array_append(participants, $2), updated_at = now()
		WHERE id = $1 AND NOT ($2 = ANY(participants))
	`
	ct, err := s.pool.Exec(ctx, q, tripID, username)
	if err != nil {
		return false, fmt.Errorf("add trip participant: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

func (s *TripsStore) ListTrips(ctx context.Context, f domain.TripFilter) ([]domain.Trip, error) {
	const q = `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE ($1 = '' OR destination ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR start_date >= $2)
		  AND ($3 = '' OR end_date <= $3)
		  AND ($4 = '' OR preferences ILIKE '%' || $4 || '%')
		ORDER BY created_at DESC
	`

	rows, err := s.pool.Query(ctx, q, f.Destination, f.StartAfter, f.EndBefore, f.Preferences)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	defer rows.Close()

	return collectTrips(rows, "list trips")
}

// ListTripsForUser returns the trips username travels on, newest first.
func (s *TripsStore) ListTripsForUser(ctx context.Context, username string) ([]domain.Trip, error) {
	const q = `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE $1 = ANY(participants)
		ORDER BY created_at DESC
	`

	rows, err := s.pool.Query(ctx, q, username)
	if err != nil {
		return nil, fmt.Errorf("list trips for user: %w", err)
	}
	defer rows.Close()

	return collectTrips(rows, "list trips for user")
}

func (s *TripsStore) CountTripsForUser(ctx context.Context, username string) (int, error) {
	const q = `SELECT count(*) FROM trips WHERE $1 = ANY(participants)`

	var n int
	if err := s.pool.QueryRow(ctx, q, username).Scan(&n); err != nil {
		return 0, fmt.Errorf("count trips for user: %w", err)
	}
	return n, nil
}

func scanTrip(row pgx.Row) (domain.Trip, error) {
	var (
		t            domain.Trip
		idUUID       pgtype.UUID
		descText     pgtype.Text
		prefText     pgtype.Text
		participants pgtype.FlatArray[string]
	)
	err := row.Scan(
		&idUUID,
		&t.Creator,
		&t.Destination,
		&t.StartDate,
		&t.EndDate,
		&descText,
		&prefText,
		&participants,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return domain.Trip{}, err
	}

	t.ID = uuidOrEmpty(idUUID)
	t.Description = textOrEmpty(descText)
	t.Preferences = textOrEmpty(prefText)
	t.Participants = textArrayOrEmpty(participants)
	return t, nil
}

func collectTrips(rows pgx.Rows, op string) ([]domain.Trip, error) {
	var out []domain.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

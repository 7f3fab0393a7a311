package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"spontimeet/internal/domain"
)

// activityRepository persists the Activity aggregate. The participant list
// is stored embedded in the row as a jsonb document, so the aggregate is
// the transactional boundary and participations are never addressed as
// standalone rows.
type activityRepository struct {
	DB *sql.DB
}

func NewActivityRepository(db *sql.DB) domain.ActivityRepository {
	return &activityRepository{
		DB: db,
	}
}

const activityColumns = `id, host_id, title, description, category, location_lng, location_lat, address_name, time, capacity, status, participants, created_at, updated_at`

func scanActivity(row interface{ Scan(...any) error }) (*domain.Activity, error) {
	a := &domain.Activity{}
	var lng, lat float64
	var addrNull sql.NullString
	var participantsRaw []byte
	err := row.Scan(
		&a.ID, &a.HostID, &a.Title, &a.Description, &a.Category,
		&lng, &lat, &addrNull, &a.Time, &a.Capacity, &a.Status,
		&participantsRaw, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Location = domain.Location{Type: "Point", Coordinates: []float64{lng, lat}}
	if addrNull.Valid {
		a.Location.AddressName = addrNull.String
	}
	a.Participants = []domain.Participation{}
	if len(participantsRaw) > 0 {
		if err := json.Unmarshal(participantsRaw, &a.Participants); err != nil {
			return nil, fmt.Errorf("decode participants: %w", err)
		}
	}
	return a, nil
}

func (r *activityRepository) Create(ctx context.Context, a *domain.Activity) error {
	participantsRaw, err := json.Marshal(a.Participants)
	if err != nil {
		return fmt.Errorf("encode participants: %w", err)
	}
	query := `
		INSERT INTO activities (host_id, title, description, category, location_lng, location_lat, address_name, time, capacity, status, participants, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`
	var addr sql.NullString
	if a.Location.AddressName != "" {
		addr = sql.NullString{String: a.Location.AddressName, Valid: true}
	}
	return r.DB.QueryRowContext(ctx, query,
		a.HostID, a.Title, a.Description, a.Category,
		a.Location.Lng(), a.Location.Lat(), addr,
		a.Time, a.Capacity, a.Status, participantsRaw, a.CreatedAt, a.UpdatedAt,
	).Scan(&a.ID)
}

func (r *activityRepository) GetByID(ctx context.Context, id string) (*domain.Activity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE id = $1
	`
	a, err := scanActivity(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *activityRepository) listQuery(ctx context.Context, query string, args ...any) ([]*domain.Activity, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := make([]*domain.Activity, 0)
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return activities, nil
}

func (r *activityRepository) ListActive(ctx context.Context) ([]*domain.Activity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE status = 'active'
		ORDER BY time ASC
	`
	return r.listQuery(ctx, query)
}

func (r *activityRepository) ListNewestFirst(ctx context.Context, p domain.PaginationParams) ([]*domain.Activity, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM activities`).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `
		SELECT ` + activityColumns + `
		FROM activities
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	activities, err := r.listQuery(ctx, query, p.PageSize, p.Offset())
	if err != nil {
		return nil, 0, err
	}
	return activities, total, nil
}

func (r *activityRepository) ListForUser(ctx context.Context, userID string) ([]*domain.Activity, error) {
	// Hosted activities, plus activities where the user's embedded
	// participation is accepted. The jsonb containment match relies on the
	// partial-object semantics of @> over arrays.
	query := `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE host_id = $1
		   OR participants @> jsonb_build_array(jsonb_build_object('userId', $1::text, 'status', 'accepted'))
		ORDER BY updated_at DESC
	`
	return r.listQuery(ctx, query, userID)
}

func (r *activityRepository) ListByHostWithPending(ctx context.Context, hostID string) ([]*domain.Activity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE host_id = $1
		  AND participants @> '[{"status": "pending"}]'::jsonb
		ORDER BY updated_at DESC
	`
	return r.listQuery(ctx, query, hostID)
}

// Mutate applies fn to the aggregate under a row lock so concurrent
// admission decisions on the same activity are linearizable: the capacity
// guard inside fn always sees the latest committed participant list.
func (r *activityRepository) Mutate(ctx context.Context, id string, fn func(*domain.Activity) error) (*domain.Activity, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE id = $1
		FOR UPDATE
	`
	a, err := scanActivity(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if err := fn(a); err != nil {
		return nil, err
	}

	participantsRaw, err := json.Marshal(a.Participants)
	if err != nil {
		return nil, fmt.Errorf("encode participants: %w", err)
	}
	update := `
		UPDATE activities
		SET participants = $1, status = $2, updated_at = $3
		WHERE id = $4
	`
	if _, err := tx.ExecContext(ctx, update, participantsRaw, a.Status, a.UpdatedAt, a.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return a, nil
}

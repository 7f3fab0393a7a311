package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"spontimeet/internal/domain"
)

// userRepository reads user projections. Users are owned by the external
// identity system; nothing here writes.
type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{
		DB: db,
	}
}

func (r *userRepository) GetSummary(ctx context.Context, id string) (*domain.UserSummary, error) {
	query := `
		SELECT id, name, avatar
		FROM users
		WHERE id = $1
	`
	u := &domain.UserSummary{}
	var avatarNull sql.NullString
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Name, &avatarNull)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	u.Avatar = avatarNull.String
	return u, nil
}

func (r *userRepository) ListSummaries(ctx context.Context, ids []string) (map[string]*domain.UserSummary, error) {
	summaries := make(map[string]*domain.UserSummary)
	if len(ids) == 0 {
		return summaries, nil
	}
	query := `
		SELECT id, name, avatar
		FROM users
		WHERE id = ANY($1)
	`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		u := &domain.UserSummary{}
		var avatarNull sql.NullString
		if err := rows.Scan(&u.ID, &u.Name, &avatarNull); err != nil {
			return nil, err
		}
		u.Avatar = avatarNull.String
		summaries[u.ID] = u
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (r *userRepository) GetContact(ctx context.Context, id string) (*domain.UserContact, error) {
	query := `
		SELECT id, name, email
		FROM users
		WHERE id = $1
	`
	u := &domain.UserContact{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Name, &u.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

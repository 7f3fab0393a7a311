package postgres

import (
	"context"
	"database/sql"

	"spontimeet/internal/domain"
)

// messageRepository is the durable message log. The seq column is a
// bigserial assigned on insert; it defines the total order for a room and
// breaks created_at ties in history reads.
type messageRepository struct {
	DB *sql.DB
}

func NewMessageRepository(db *sql.DB) domain.MessageRepository {
	return &messageRepository{
		DB: db,
	}
}

func (r *messageRepository) Create(ctx context.Context, m *domain.Message) error {
	query := `
		INSERT INTO messages (activity_id, sender_id, content, type, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, seq
	`
	return r.DB.QueryRowContext(ctx, query, m.ActivityID, m.SenderID, m.Content, m.Type, m.CreatedAt).
		Scan(&m.ID, &m.Seq)
}

func (r *messageRepository) ListByActivityID(ctx context.Context, activityID string) ([]*domain.Message, error) {
	query := `
		SELECT id, activity_id, sender_id, content, type, created_at, seq
		FROM messages
		WHERE activity_id = $1
		ORDER BY created_at ASC, seq ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]*domain.Message, 0)
	for rows.Next() {
		m := &domain.Message{}
		if err := rows.Scan(&m.ID, &m.ActivityID, &m.SenderID, &m.Content, &m.Type, &m.CreatedAt, &m.Seq); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}

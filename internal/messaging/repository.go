// internal/messaging/repository.go

package messaging

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	CreateMessage(ctx context.Context, m *Message) error
	ListMessages(ctx context.Context, matchID int64, limit, offset int) ([]*Message, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateMessage(ctx context.Context, m *Message) error {
	query := `
		INSERT INTO messages (match_id, sender_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.QueryRowxContext(ctx, query, m.MatchID, m.SenderID, m.Content).
		Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	return nil
}

func (r *postgresRepository) ListMessages(ctx context.Context, matchID int64, limit, offset int) ([]*Message, error) {
	query := `
		SELECT id, match_id, sender_id, content, created_at
		FROM messages
		WHERE match_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	var messages []*Message
	if err := r.db.SelectContext(ctx, &messages, query, matchID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list messages for match %d: %w", matchID, err)
	}

	return messages, nil
}

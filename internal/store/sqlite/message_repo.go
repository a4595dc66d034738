package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"lostfound/internal/domain"
)

type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

var _ domain.MessageRepository = (*MessageRepo)(nil)

func (r *MessageRepo) Create(ctx context.Context, m *domain.Message) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO messages (thread_id, sender_id, text, attachment_url)
		VALUES (?, ?, ?, ?)
	`, m.ThreadID, m.SenderID, m.Text, m.AttachmentURL)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	m.ID = id
	return nil
}

// ListForThread returns the full message log in creation order.
func (r *MessageRepo) ListForThread(ctx context.Context, threadID int64) ([]*domain.Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, thread_id, sender_id, text, attachment_url, created_at
		FROM messages
		WHERE thread_id = ?
		ORDER BY created_at ASC, id ASC
	`, threadID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var res []*domain.Message
	for rows.Next() {
		m := &domain.Message{}
		var url sql.NullString
		if err := rows.Scan(&m.ID, &m.ThreadID, &m.SenderID, &m.Text, &url, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if url.Valid {
			m.AttachmentURL = &url.String
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

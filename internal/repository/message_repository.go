package repository

import (
	"context"
	"database/sql"

	"github.com/n20-backend/Muhammadaziz-Ekubov/internal/model"
)

// MessageRepo provides CRUD operations for messages. Deletion is a soft
// delete: tombstoned rows are excluded from every read.
type MessageRepo struct {
	db *sql.DB
}

// NewMessageRepo returns a new MessageRepo bound to the given database.
func NewMessageRepo(db *sql.DB) *MessageRepo { return &MessageRepo{db: db} }

const messageColumns = "id,chat_id,sender_id,content,type,status,deleted_at,created_at,updated_at"

// Create inserts a message in 'sent' status and returns its ID.
func (r *MessageRepo) Create(ctx context.Context, chatID, senderID uint64, content, msgType string) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO messages (chat_id, sender_id, content, type, status) VALUES (?,?,?,?,?)",
		chatID, senderID, content, msgType, model.MessageSent)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID returns a live message. ErrNotFound covers both absent and
// soft-deleted rows.
func (r *MessageRepo) GetByID(ctx context.Context, id uint64) (model.Message, error) {
	var m model.Message
	var deletedAt sql.NullTime
	err := r.db.QueryRowContext(ctx,
		"SELECT "+messageColumns+" FROM messages WHERE id=? AND deleted_at IS NULL LIMIT 1",
		id).Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Content, &m.Type, &m.Status,
		&deletedAt, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Message{}, ErrNotFound
		}
		return model.Message{}, err
	}
	return m, nil
}

// ListByChat returns a page of live messages for a chat, newest first.
func (r *MessageRepo) ListByChat(ctx context.Context, chatID uint64, limit, offset int) ([]model.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+messageColumns+" FROM messages WHERE chat_id=? AND deleted_at IS NULL ORDER BY created_at DESC LIMIT ? OFFSET ?",
		chatID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	msgs := make([]model.Message, 0)
	for rows.Next() {
		var m model.Message
		var deletedAt sql.NullTime
		if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Content, &m.Type, &m.Status,
			&deletedAt, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return msgs, nil
}

// UpdateContent edits the body of a message.
func (r *MessageRepo) UpdateContent(ctx context.Context, id uint64, content string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE messages SET content=?, updated_at=NOW() WHERE id=? AND deleted_at IS NULL",
		content, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// UpdateStatus moves a message to delivered or read.
func (r *MessageRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE messages SET status=?, updated_at=NOW() WHERE id=? AND deleted_at IS NULL",
		status, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// SoftDelete tombstones a message.
func (r *MessageRepo) SoftDelete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE messages SET deleted_at=NOW() WHERE id=? AND deleted_at IS NULL", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// requireRow converts a zero-row update into ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

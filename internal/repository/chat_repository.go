package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/n20-backend/Muhammadaziz-Ekubov/internal/model"
)

// ChatRepo provides CRUD operations for chats and their participant sets.
// Chat creation inserts the chat row and all participant rows inside one
// transaction so a chat is never visible half-populated.  Private-chat
// uniqueness rides on the unique index over chats.pair_key: the duplicate
// key error from a concurrent insert is translated into the existing chat,
// not a second row.
type ChatRepo struct {
    db *sql.DB
}

// NewChatRepo returns a new ChatRepo bound to the given database.
func NewChatRepo(db *sql.DB) *ChatRepo { return &ChatRepo{db: db} }

// DB exposes the underlying handle so handlers can scope transactions that
// span multiple repositories.
func (r *ChatRepo) DB() *sql.DB { return r.db }

// Create inserts a chat plus its participants atomically and returns the
// new chat ID.  For private chats the canonical pair key is stored; when a
// private chat for the same pair already exists (including one created by a
// racing request), the existing chat ID is returned with existed=true and
// nothing is written.
func (r *ChatRepo) Create(ctx context.Context, chatType string, name *string, ownerID *uint64, participants []uint64) (uint64, bool, error) {
    var pairKey *string
    if chatType == model.ChatPrivate {
        k := model.PairKey(participants[0], participants[1])
        pairKey = &k
    }

    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return 0, false, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    res, err := tx.ExecContext(ctx,
        "INSERT INTO chats (type, name, owner_id, pair_key) VALUES (?,?,?,?)",
        chatType, name, ownerID, pairKey)
    if err != nil {
        if pairKey != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
            // Lost the race (or the pair chat predates this request); hand
            // back the surviving row.
            _ = tx.Rollback()
            var existingID uint64
            qerr := r.db.QueryRowContext(ctx,
                "SELECT id FROM chats WHERE pair_key=? LIMIT 1", *pairKey).Scan(&existingID)
            if qerr != nil {
                return 0, false, qerr
            }
            committed = true // nothing left to roll back
            return existingID, true, nil
        }
        return 0, false, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, false, err
    }
    chatID := uint64(id)

    if err := insertParticipantsTx(ctx, tx, chatID, participants); err != nil {
        return 0, false, err
    }
    if err := tx.Commit(); err != nil {
        return 0, false, err
    }
    committed = true
    return chatID, false, nil
}

// insertParticipantsTx bulk-inserts chat_participants rows within the
// transaction.  IGNORE keeps a repeated user id in the input from aborting
// the whole chat creation.
func insertParticipantsTx(ctx context.Context, tx *sql.Tx, chatID uint64, participants []uint64) error {
    if len(participants) == 0 {
        return nil
    }
    query := "INSERT IGNORE INTO chat_participants (chat_id, user_id) VALUES "
    args := make([]interface{}, 0, len(participants)*2)
    for i, uid := range participants {
        if i > 0 {
            query += ","
        }
        query += "(?,?)"
        args = append(args, chatID, uid)
    }
    _, err := tx.ExecContext(ctx, query, args...)
    return err
}

// GetByID returns a chat with its participant set populated.  ErrNotFound
// is returned when no such chat exists.
func (r *ChatRepo) GetByID(ctx context.Context, chatID uint64) (model.Chat, error) {
    var c model.Chat
    var name, pairKey sql.NullString
    var ownerID sql.NullInt64
    err := r.db.QueryRowContext(ctx,
        "SELECT id,type,name,owner_id,pair_key,created_at,updated_at FROM chats WHERE id=? LIMIT 1",
        chatID).Scan(&c.ID, &c.Type, &name, &ownerID, &pairKey, &c.CreatedAt, &c.UpdatedAt)
    if err != nil {
        if err == sql.ErrNoRows {
            return model.Chat{}, ErrNotFound
        }
        return model.Chat{}, err
    }
    if name.Valid {
        n := name.String
        c.Name = &n
    }
    if ownerID.Valid {
        o := uint64(ownerID.Int64)
        c.OwnerID = &o
    }
    if pairKey.Valid {
        k := pairKey.String
        c.PairKey = &k
    }
    rows, err := r.db.QueryContext(ctx,
        "SELECT user_id FROM chat_participants WHERE chat_id=? ORDER BY user_id", chatID)
    if err != nil {
        return model.Chat{}, err
    }
    defer rows.Close()
    for rows.Next() {
        var uid uint64
        if err := rows.Scan(&uid); err != nil {
            return model.Chat{}, err
        }
        c.Participants = append(c.Participants, uid)
    }
    if err := rows.Err(); err != nil {
        return model.Chat{}, err
    }
    return c, nil
}

// ListByUser returns every chat the user participates in, most recently
// updated first, with participant sets populated in a second query.
func (r *ChatRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Chat, error) {
    const q = `SELECT c.id, c.type, c.name, c.owner_id, c.pair_key, c.created_at, c.updated_at
               FROM chats c
               JOIN chat_participants cp ON cp.chat_id = c.id
               WHERE cp.user_id = ?
               ORDER BY c.updated_at DESC`
    rows, err := r.db.QueryContext(ctx, q, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    chats := make([]model.Chat, 0)
    index := make(map[uint64]int)
    for rows.Next() {
        var c model.Chat
        var name, pairKey sql.NullString
        var ownerID sql.NullInt64
        if err := rows.Scan(&c.ID, &c.Type, &name, &ownerID, &pairKey, &c.CreatedAt, &c.UpdatedAt); err != nil {
            return nil, err
        }
        if name.Valid {
            n := name.String
            c.Name = &n
        }
        if ownerID.Valid {
            o := uint64(ownerID.Int64)
            c.OwnerID = &o
        }
        if pairKey.Valid {
            k := pairKey.String
            c.PairKey = &k
        }
        index[c.ID] = len(chats)
        chats = append(chats, c)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    if len(chats) == 0 {
        return chats, nil
    }
    // Populate participants for all chats in one query.
    ids := make([]interface{}, 0, len(chats))
    placeholders := make([]string, 0, len(chats))
    for _, c := range chats {
        ids = append(ids, c.ID)
        placeholders = append(placeholders, "?")
    }
    pq := `SELECT chat_id, user_id FROM chat_participants
           WHERE chat_id IN (` + strings.Join(placeholders, ",") + `)
           ORDER BY chat_id, user_id`
    prows, err := r.db.QueryContext(ctx, pq, ids...)
    if err != nil {
        return nil, err
    }
    defer prows.Close()
    for prows.Next() {
        var chatID, uid uint64
        if err := prows.Scan(&chatID, &uid); err != nil {
            return nil, err
        }
        if idx, ok := index[chatID]; ok {
            chats[idx].Participants = append(chats[idx].Participants, uid)
        }
    }
    if err := prows.Err(); err != nil {
        return nil, err
    }
    return chats, nil
}

// UpdateName renames a group chat.
func (r *ChatRepo) UpdateName(ctx context.Context, chatID uint64, name string) error {
    _, err := r.db.ExecContext(ctx,
        "UPDATE chats SET name=?, updated_at=NOW() WHERE id=?", name, chatID)
    return err
}

// ReplaceParticipants swaps the participant set atomically.  The handler
// has already validated the new set against chat-type invariants.
func (r *ChatRepo) ReplaceParticipants(ctx context.Context, chatID uint64, participants []uint64) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    if _, err := tx.ExecContext(ctx, "DELETE FROM chat_participants WHERE chat_id=?", chatID); err != nil {
        return err
    }
    if err := insertParticipantsTx(ctx, tx, chatID, participants); err != nil {
        return err
    }
    if _, err := tx.ExecContext(ctx, "UPDATE chats SET updated_at=NOW() WHERE id=?", chatID); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// Touch bumps the chat's updated_at so listings surface recent activity.
func (r *ChatRepo) Touch(ctx context.Context, chatID uint64) error {
    _, err := r.db.ExecContext(ctx, "UPDATE chats SET updated_at=NOW() WHERE id=?", chatID)
    return err
}

// Delete removes a chat; participants, messages and calls cascade via
// foreign keys.
func (r *ChatRepo) Delete(ctx context.Context, chatID uint64) error {
    res, err := r.db.ExecContext(ctx, "DELETE FROM chats WHERE id=?", chatID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrNotFound
    }
    return nil
}

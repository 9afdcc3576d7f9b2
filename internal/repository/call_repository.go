package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/n20-backend/Muhammadaziz-Ekubov/internal/model"
)

// CallRepo provides operations on the 'calls' table. Call creation is the
// one place with a true cross-row race: two concurrent starts must not
// both succeed for the same user or the same chat, so the availability
// check and the insert run inside a single transaction with the conflicting
// rows locked.
type CallRepo struct {
	db *sql.DB
}

// NewCallRepo returns a new CallRepo bound to the given database.
func NewCallRepo(db *sql.DB) *CallRepo { return &CallRepo{db: db} }

const callColumns = "id,chat_id,caller_id,receiver_id,status,start_time,end_time"

// Start creates an ongoing call after verifying, under lock, that neither
// party is already on a call and that the chat has no ongoing call. The
// check and the insert commit as one unit; a concurrent Start for the same
// caller serializes on the row lock and fails with ErrCallInProgress.
func (r *CallRepo) Start(ctx context.Context, chatID, callerID, receiverID uint64) (uint64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var busy uint64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM calls
		 WHERE status=?
		   AND (chat_id=? OR caller_id IN (?,?) OR receiver_id IN (?,?))
		 LIMIT 1 FOR UPDATE`,
		model.CallOngoing, chatID, callerID, receiverID, callerID, receiverID).Scan(&busy)
	if err == nil {
		return 0, ErrCallInProgress
	}
	if err != sql.ErrNoRows {
		return 0, err
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO calls (chat_id, caller_id, receiver_id, status, start_time) VALUES (?,?,?,?,NOW())",
		chatID, callerID, receiverID, model.CallOngoing)
	if err != nil {
		// Two starts hitting an empty range at the same instant both take
		// gap locks; InnoDB resolves it by killing one insert with a
		// deadlock (1213). That loser is simply the later call, so it gets
		// the same busy answer as a found row.
		if strings.Contains(err.Error(), "1213") {
			return 0, ErrCallInProgress
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return uint64(id), nil
}

// GetByID returns a call by id.
func (r *CallRepo) GetByID(ctx context.Context, id uint64) (model.Call, error) {
	var c model.Call
	var endTime sql.NullTime
	err := r.db.QueryRowContext(ctx,
		"SELECT "+callColumns+" FROM calls WHERE id=? LIMIT 1",
		id).Scan(&c.ID, &c.ChatID, &c.CallerID, &c.ReceiverID, &c.Status, &c.StartTime, &endTime)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Call{}, ErrNotFound
		}
		return model.Call{}, err
	}
	if endTime.Valid {
		t := endTime.Time
		c.EndTime = &t
	}
	return c, nil
}

// ListByUser returns every call the user took part in, newest first.
func (r *CallRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Call, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+callColumns+" FROM calls WHERE caller_id=? OR receiver_id=? ORDER BY start_time DESC",
		userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	calls := make([]model.Call, 0)
	for rows.Next() {
		var c model.Call
		var endTime sql.NullTime
		if err := rows.Scan(&c.ID, &c.ChatID, &c.CallerID, &c.ReceiverID, &c.Status, &c.StartTime, &endTime); err != nil {
			return nil, err
		}
		if endTime.Valid {
			t := endTime.Time
			c.EndTime = &t
		}
		calls = append(calls, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return calls, nil
}

// Finish moves an ongoing call to a terminal status. The WHERE clause on
// the current status makes the transition conditional: if another request
// already finished the call, zero rows match and ErrCallFinished is
// returned instead of overwriting the terminal state.
func (r *CallRepo) Finish(ctx context.Context, id uint64, status string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE calls SET status=?, end_time=NOW() WHERE id=? AND status=?",
		status, id, model.CallOngoing)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCallFinished
	}
	return nil
}

// Delete removes a call record.
func (r *CallRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM calls WHERE id=?", id)
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

package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/n20-backend/Muhammadaziz-Ekubov/internal/model"
)

// OTPRepo persists one-time passcodes. Multiple codes may be outstanding
// for a user; verification matches any non-expired one. Expired rows are
// rejected at read time, so correctness never depends on a sweeper.
// Verification also owns the pending-to-active flip on the users table so
// consuming a code and activating the account is a single atomic unit.
type OTPRepo struct{ DB *sql.DB }

func NewOTPRepo(db *sql.DB) *OTPRepo { return &OTPRepo{DB: db} }

// Create stores a freshly issued code with its expiry.
func (r *OTPRepo) Create(ctx context.Context, userID uint64, code string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO otps (user_id, code, expires_at) VALUES (?,?,?)",
		userID, code, expiresAt)
	return err
}

// ConsumeAndActivate deletes a matching non-expired code and flips the
// account to active inside one transaction. The affected-rows count of the
// DELETE is the verification result, which makes each code single-use
// without a separate read: a second call with the same code deletes
// nothing and fails with ErrInvalidOTP, as does an expired match. Because
// both statements commit together, a failure on either side leaves the
// code unconsumed and the account untouched.
func (r *OTPRepo) ConsumeAndActivate(ctx context.Context, userID uint64, code string, now time.Time) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		"DELETE FROM otps WHERE user_id=? AND code=? AND expires_at>?",
		userID, code, now)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInvalidOTP
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE users SET status=?, updated_at=NOW() WHERE id=? AND deleted_at IS NULL",
		model.StatusActive, userID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// DeleteExpired removes dead codes. Optional housekeeping; Consume already
// refuses expired rows.
func (r *OTPRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM otps WHERE expires_at<=?", now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

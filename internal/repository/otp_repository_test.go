package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	consumeOTPQuery  = "DELETE FROM otps WHERE user_id=? AND code=? AND expires_at>?"
	activateQuery    = "UPDATE users SET status=?, updated_at=NOW() WHERE id=? AND deleted_at IS NULL"
	sweepOTPQuery    = "DELETE FROM otps WHERE expires_at<=?"
)

func TestOTPRepo_ConsumeAndActivate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(consumeOTPQuery)).
		WithArgs(uint64(7), "123456", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(activateQuery)).
		WithArgs("active", uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewOTPRepo(db)
	require.NoError(t, repo.ConsumeAndActivate(context.Background(), 7, "123456", now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOTPRepo_ConsumeAndActivate_replayFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	// The code was already deleted by the first verification, so the
	// conditional DELETE matches nothing and the whole unit rolls back.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(consumeOTPQuery)).
		WithArgs(uint64(7), "123456", now).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	repo := NewOTPRepo(db)
	err = repo.ConsumeAndActivate(context.Background(), 7, "123456", now)
	assert.ErrorIs(t, err, ErrInvalidOTP)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOTPRepo_ConsumeAndActivate_activationFailureRollsBackConsume(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	// If the activation statement dies, the consumed code must come back:
	// the DELETE rolls back with it, so the user can retry the same code.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(consumeOTPQuery)).
		WithArgs(uint64(7), "123456", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(activateQuery)).
		WithArgs("active", uint64(7)).
		WillReturnError(errors.New("server has gone away"))
	mock.ExpectRollback()

	repo := NewOTPRepo(db)
	err = repo.ConsumeAndActivate(context.Background(), 7, "123456", now)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidOTP)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOTPRepo_DeleteExpired(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta(sweepOTPQuery)).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	repo := NewOTPRepo(db)
	n, err := repo.DeleteExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

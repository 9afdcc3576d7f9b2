package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n20-backend/Muhammadaziz-Ekubov/internal/model"
)

const (
	busyCheckQuery  = "SELECT id FROM calls WHERE status=? AND (chat_id=? OR caller_id IN (?,?) OR receiver_id IN (?,?)) LIMIT 1 FOR UPDATE"
	insertCallQuery = "INSERT INTO calls (chat_id, caller_id, receiver_id, status, start_time) VALUES (?,?,?,?,NOW())"
	finishCallQuery = "UPDATE calls SET status=?, end_time=NOW() WHERE id=? AND status=?"
)

func TestCallRepo_Start(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(busyCheckQuery)).
		WithArgs(model.CallOngoing, uint64(1), uint64(5), uint64(6), uint64(5), uint64(6)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(regexp.QuoteMeta(insertCallQuery)).
		WithArgs(uint64(1), uint64(5), uint64(6), model.CallOngoing).
		WillReturnResult(sqlmock.NewResult(13, 1))
	mock.ExpectCommit()

	repo := NewCallRepo(db)
	id, err := repo.Start(context.Background(), 1, 5, 6)
	require.NoError(t, err)
	assert.Equal(t, uint64(13), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCallRepo_Start_busyPartyIsRejected(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Any ongoing call touching the chat, the caller or the receiver makes
	// the locked availability check find a row; the insert never runs.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(busyCheckQuery)).
		WithArgs(model.CallOngoing, uint64(1), uint64(5), uint64(6), uint64(5), uint64(6)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))
	mock.ExpectRollback()

	repo := NewCallRepo(db)
	_, err = repo.Start(context.Background(), 1, 5, 6)
	assert.ErrorIs(t, err, ErrCallInProgress)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCallRepo_Start_insertDeadlockMeansBusy(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Two simultaneous starts can both pass the check on an empty range
	// and deadlock on insert; the loser is just the later call and must
	// see the same busy answer as a found row, not a 500.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(busyCheckQuery)).
		WithArgs(model.CallOngoing, uint64(1), uint64(5), uint64(6), uint64(5), uint64(6)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(regexp.QuoteMeta(insertCallQuery)).
		WithArgs(uint64(1), uint64(5), uint64(6), model.CallOngoing).
		WillReturnError(errors.New("Error 1213 (40001): Deadlock found when trying to get lock; try restarting transaction"))
	mock.ExpectRollback()

	repo := NewCallRepo(db)
	_, err = repo.Start(context.Background(), 1, 5, 6)
	assert.ErrorIs(t, err, ErrCallInProgress)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCallRepo_Finish(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(finishCallQuery)).
		WithArgs(model.CallEnded, uint64(9), model.CallOngoing).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewCallRepo(db)
	require.NoError(t, repo.Finish(context.Background(), 9, model.CallEnded))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCallRepo_Finish_terminalStatusIsFinal(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// The conditional WHERE keeps terminal transitions one-shot: a call
	// already out of 'ongoing' matches zero rows, so a late reject cannot
	// overwrite an earlier end.
	mock.ExpectExec(regexp.QuoteMeta(finishCallQuery)).
		WithArgs(model.CallRejected, uint64(9), model.CallOngoing).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewCallRepo(db)
	err = repo.Finish(context.Background(), 9, model.CallRejected)
	assert.ErrorIs(t, err, ErrCallFinished)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n20-backend/Muhammadaziz-Ekubov/internal/model"
	"github.com/n20-backend/Muhammadaziz-Ekubov/internal/repository"
)

const (
	chatSelectQuery    = "SELECT id,type,name,owner_id,pair_key,created_at,updated_at FROM chats WHERE id=? LIMIT 1"
	membersSelectQuery = "SELECT user_id FROM chat_participants WHERE chat_id=? ORDER BY user_id"
	userSelectQuery    = "SELECT id,email,username,password_hash,role,status,deleted_at,created_at,updated_at FROM users WHERE id=? AND deleted_at IS NULL LIMIT 1"
	membersDeleteQuery = "DELETE FROM chat_participants WHERE chat_id=?"
	membersInsertQuery = "INSERT IGNORE INTO chat_participants (chat_id, user_id) VALUES (?,?),(?,?),(?,?)"
	chatTouchQuery     = "UPDATE chats SET updated_at=NOW() WHERE id=?"
)

func groupChatRow(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "type", "name", "owner_id", "pair_key", "created_at", "updated_at"}).
		AddRow(1, model.ChatGroup, "team", 2, nil, now, now)
}

func memberRows(ids ...uint64) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"user_id"})
	for _, id := range ids {
		rows.AddRow(id)
	}
	return rows
}

func userRow(id uint64, now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "username", "password_hash", "role", "status", "deleted_at", "created_at", "updated_at"}).
		AddRow(id, "u@example.com", "u", "hash", model.RoleUser, model.StatusActive, nil, now, now)
}

// A plain member replacing the group's participant set must not be able to
// push the owner out of it; the replacement always retains the owner even
// when the submitted set omits them.
func TestChatUpdate_ownerStaysMember(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()

	// Load of the chat under update: group id 1, owned by 2, members {2,3,4}.
	mock.ExpectQuery(regexp.QuoteMeta(chatSelectQuery)).
		WithArgs(uint64(1)).WillReturnRows(groupChatRow(now))
	mock.ExpectQuery(regexp.QuoteMeta(membersSelectQuery)).
		WithArgs(uint64(1)).WillReturnRows(memberRows(2, 3, 4))

	// Existence checks for the effective set: the submitted {3,4} plus the
	// re-included owner 2.
	for _, id := range []uint64{3, 4, 2} {
		mock.ExpectQuery(regexp.QuoteMeta(userSelectQuery)).
			WithArgs(id).WillReturnRows(userRow(id, now))
	}

	// The replacement writes all three pairs, owner included.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(membersDeleteQuery)).
		WithArgs(uint64(1)).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(membersInsertQuery)).
		WithArgs(uint64(1), uint64(3), uint64(1), uint64(4), uint64(1), uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(chatTouchQuery)).
		WithArgs(uint64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Reload for the response.
	mock.ExpectQuery(regexp.QuoteMeta(chatSelectQuery)).
		WithArgs(uint64(1)).WillReturnRows(groupChatRow(now))
	mock.ExpectQuery(regexp.QuoteMeta(membersSelectQuery)).
		WithArgs(uint64(1)).WillReturnRows(memberRows(2, 3, 4))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/v1/chats/1", strings.NewReader(`{"participants":[3,4]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/chats/:id")
	c.SetParamNames("id")
	c.SetParamValues("1")
	c.Set("user_id", uint64(3))
	c.Set("role", model.RoleUser)

	h := NewChatHandler(repository.NewChatRepo(db), repository.NewUserRepo(db))
	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		OwnerID      *uint64  `json:"ownerId"`
		Participants []uint64 `json:"participants"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.OwnerID)
	assert.Contains(t, resp.Participants, *resp.OwnerID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

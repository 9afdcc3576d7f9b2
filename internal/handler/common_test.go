package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n20-backend/Muhammadaziz-Ekubov/internal/authz"
	"github.com/n20-backend/Muhammadaziz-Ekubov/internal/repository"
	"github.com/n20-backend/Muhammadaziz-Ekubov/internal/utils"
)

func failStatus(t *testing.T, err error) int {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, fail(c, err))
	return rec.Code
}

func TestFail_statusMapping(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, failStatus(t, repository.ErrInvalidOTP))
	assert.Equal(t, http.StatusBadRequest, failStatus(t, repository.ErrCallFinished))
	assert.Equal(t, http.StatusBadRequest, failStatus(t, authz.ErrOwnMessageStatus))
	assert.Equal(t, http.StatusBadRequest, failStatus(t, authz.ErrPrivateChatName))

	assert.Equal(t, http.StatusUnauthorized, failStatus(t, utils.ErrInvalidToken))

	assert.Equal(t, http.StatusForbidden, failStatus(t, repository.ErrForbidden))

	assert.Equal(t, http.StatusNotFound, failStatus(t, repository.ErrNotFound))
	assert.Equal(t, http.StatusNotFound, failStatus(t, sql.ErrNoRows))

	assert.Equal(t, http.StatusConflict, failStatus(t, repository.ErrConflict))
	assert.Equal(t, http.StatusConflict, failStatus(t, repository.ErrUserExists))
	assert.Equal(t, http.StatusConflict, failStatus(t, repository.ErrCallInProgress))

	assert.Equal(t, http.StatusInternalServerError, failStatus(t, errors.New("driver blew up")))
}

func TestFail_unwrapsWrappedSentinels(t *testing.T) {
	wrapped := fmt.Errorf("%w: you are not a participant in this chat", repository.ErrForbidden)
	assert.Equal(t, http.StatusForbidden, failStatus(t, wrapped))
}

func TestGetUserID(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	c.Set("user_id", uint64(12))
	id, err := getUserID(c)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), id)

	c.Set("user_id", "not-a-number")
	_, err = getUserID(c)
	assert.Error(t, err)
}

func TestDedupeWith(t *testing.T) {
	assert.Equal(t, []uint64{3, 1, 2}, dedupeWith([]uint64{1, 2, 1, 3, 0}, 3))
	assert.Equal(t, []uint64{5}, dedupeWith(nil, 5))
	assert.Equal(t, []uint64{5, 6}, dedupeWith([]uint64{5, 6, 5}, 5))
}

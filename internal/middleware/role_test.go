package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n20-backend/Muhammadaziz-Ekubov/internal/model"
)

func runRole(t *testing.T, role interface{}, allowed ...string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/v1/profiles/1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != nil {
		c.Set("role", role)
	}
	handler := RequireRole(allowed...)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec
}

func TestRequireRole(t *testing.T) {
	assert.Equal(t, http.StatusOK, runRole(t, model.RoleAdmin, model.RoleAdmin).Code)
	assert.Equal(t, http.StatusForbidden, runRole(t, model.RoleUser, model.RoleAdmin).Code)
	assert.Equal(t, http.StatusForbidden, runRole(t, model.RoleModerator, model.RoleAdmin).Code)

	// Multiple allowed roles.
	assert.Equal(t, http.StatusOK, runRole(t, model.RoleModerator, model.RoleAdmin, model.RoleModerator).Code)

	// Missing or non-string role is rejected outright.
	assert.Equal(t, http.StatusForbidden, runRole(t, nil, model.RoleAdmin).Code)
	assert.Equal(t, http.StatusForbidden, runRole(t, 42, model.RoleAdmin).Code)
}

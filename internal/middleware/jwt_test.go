package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n20-backend/Muhammadaziz-Ekubov/internal/model"
	"github.com/n20-backend/Muhammadaziz-Ekubov/internal/utils"
)

const testSecret = "unit-test-secret"

func runJWT(t *testing.T, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/chats", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := JWTAuth(testSecret)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))
	return rec, c
}

func TestJWTAuth_validToken(t *testing.T) {
	user := model.User{ID: 7, Username: "dil", Email: "dil@example.com", Role: model.RoleModerator}
	tok, err := utils.NewAccessToken(testSecret, user, 5)
	require.NoError(t, err)

	rec, c := runJWT(t, "Bearer "+tok.Token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(7), c.Get("user_id"))
	assert.Equal(t, "dil", c.Get("username"))
	assert.Equal(t, "dil@example.com", c.Get("email"))
	assert.Equal(t, model.RoleModerator, c.Get("role"))
}

func TestJWTAuth_missingHeader(t *testing.T) {
	rec, _ := runJWT(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_malformedHeader(t *testing.T) {
	rec, _ := runJWT(t, "Token abcdef")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_garbageToken(t *testing.T) {
	rec, _ := runJWT(t, "Bearer not.a.jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_wrongSecret(t *testing.T) {
	user := model.User{ID: 7, Role: model.RoleUser}
	tok, err := utils.NewAccessToken("some-other-secret", user, 5)
	require.NoError(t, err)

	rec, _ := runJWT(t, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuth_expiredToken(t *testing.T) {
	user := model.User{ID: 7, Role: model.RoleUser}
	tok, err := utils.NewAccessToken(testSecret, user, -1)
	require.NoError(t, err)

	rec, _ := runJWT(t, "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

package handler

import (
    "net/http" // HTTP status codes

    "github.com/labstack/echo/v4" // web framework

    "github.com/n20-backend/Muhammadaziz-Ekubov/internal/model"
    "github.com/n20-backend/Muhammadaziz-Ekubov/internal/repository"
)

// UserHandler covers account-level operations that are not session flows.
type UserHandler struct {
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
}

func NewUserHandler(users *repository.UserRepo, tokens *repository.TokenRepo) *UserHandler {
	return &UserHandler{Users: users, Tokens: tokens}
}

// Delete tombstones an account. Users may delete themselves; admins may
// delete anyone. The row is kept so message and call history stays
// referable, but every lookup treats the account as absent, and all of its
// refresh tokens are revoked so existing sessions die with it.
func (h *UserHandler) Delete(c echo.Context) error {
	act, err := actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	if id != act.ID && act.Role != model.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you may only delete your own account"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.SoftDelete(ctx, id); err != nil {
		return fail(c, err)
	}
	if err := h.Tokens.RevokeAllForUser(ctx, id); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

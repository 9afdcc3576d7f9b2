package handler

import (
    "context"
    "database/sql"
    "errors"
    "log"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/n20-backend/Muhammadaziz-Ekubov/internal/authz"
    "github.com/n20-backend/Muhammadaziz-Ekubov/internal/model"
    "github.com/n20-backend/Muhammadaziz-Ekubov/internal/repository"
    "github.com/n20-backend/Muhammadaziz-Ekubov/internal/utils"
)

// getUserID extracts the authenticated user ID placed in the context by
// the JWT middleware.
func getUserID(c echo.Context) (uint64, error) {
    v := c.Get("user_id")
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// actor rebuilds the acting user from context values set by the JWT and
// activation middlewares.
func actor(c echo.Context) (model.User, error) {
    uid, err := getUserID(c)
    if err != nil {
        return model.User{}, err
    }
    role, _ := c.Get("role").(string)
    return model.User{ID: uid, Role: role}, nil
}

// reqCtx bounds database work for a single request.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
    return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// parseID reads a numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || id == 0 {
        return 0, false
    }
    return id, true
}

// fail is the single boundary translator from domain errors to HTTP
// responses.  Sentinel errors carry their own safe message; anything
// unrecognized is logged server-side and reported as a generic 500 so raw
// storage errors never reach clients.
func fail(c echo.Context, err error) error {
    switch {
    case errors.Is(err, authz.ErrOwnMessageStatus),
        errors.Is(err, authz.ErrPrivateChatName),
        errors.Is(err, repository.ErrInvalidOTP),
        errors.Is(err, repository.ErrCallFinished):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    case errors.Is(err, utils.ErrInvalidToken):
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
    case errors.Is(err, repository.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": err.Error()})
    case errors.Is(err, repository.ErrNotFound), errors.Is(err, sql.ErrNoRows):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    case errors.Is(err, repository.ErrConflict),
        errors.Is(err, repository.ErrUserExists),
        errors.Is(err, repository.ErrCallInProgress):
        return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
    case errors.Is(err, context.DeadlineExceeded):
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "temporarily unavailable"})
    default:
        log.Printf("internal error: %v", err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
}

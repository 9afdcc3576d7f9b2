package middleware

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/n20-backend/Muhammadaziz-Ekubov/internal/repository"
)

// RequireActive gates resource endpoints on account activation.  Login
// hands out tokens to accounts that have not yet verified their OTP, but a
// pending account may only touch the auth endpoints; everything under the
// resource surface answers 403 until verification flips the account to
// active.  The status is read from the database rather than the token, so
// activation takes effect without re-login and a tombstoned account loses
// access immediately.
func RequireActive(users *repository.UserRepo) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            uid, ok := c.Get("user_id").(uint64)
            if !ok || uid == 0 {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
            }
            ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
            defer cancel()
            u, err := users.GetByID(ctx, uid)
            if err != nil {
                // Absent or soft-deleted account: the credential references
                // nobody, so it no longer authenticates.
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
            }
            if !u.IsActive() {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "account not activated"})
            }
            // Refresh the role from the database; role changes should not
            // wait for token expiry.
            c.Set("role", u.Role)
            return next(c)
        }
    }
}

package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/n20-backend/Muhammadaziz-Ekubov/internal/utils"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the verified claims into the request context.  The provided
// secret must be the access-token secret; refresh tokens presented here
// fail the signature check because the secrets are independent.  Handlers
// read the authenticated identity via `c.Get("user_id")`, `c.Get("role")`,
// `c.Get("username")` and `c.Get("email")`.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // A valid header is "Bearer <jwt>".  Anything else means the
            // request carries no usable credential.
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            // Verification enforces the HMAC method allow-list, signature
            // and expiry in one place; every failure is the same 401.
            claims, err := utils.VerifyAccessToken(secret, raw)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }

            c.Set("user_id", claims.UserID)
            c.Set("username", claims.Username)
            c.Set("email", claims.Email)
            c.Set("role", claims.Role)
            return next(c)
        }
    }
}

package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4" // import the Echo web framework to handle routing
    "github.com/redis/go-redis/v9"

    "github.com/n20-backend/Muhammadaziz-Ekubov/internal/config"     // rate-limit configuration
    "github.com/n20-backend/Muhammadaziz-Ekubov/internal/handler"    // import the handlers that implement business logic
    "github.com/n20-backend/Muhammadaziz-Ekubov/internal/middleware" // import middleware for JWT authentication and role enforcement
    "github.com/n20-backend/Muhammadaziz-Ekubov/internal/model"
    "github.com/n20-backend/Muhammadaziz-Ekubov/internal/repository"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth;
// the whole group sits behind the Redis token bucket because login and OTP
// verification are the endpoints worth brute-forcing.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, accessSecret string, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group("/v1/auth")
	g.Use(middleware.NewTokenBucket(rlCfg, rdb))

	// Registration creates a pending account and mails its activation code.
	g.POST("/register", a.Register)
	// Login verifies credentials and returns an access/refresh token pair.
	g.POST("/login", a.Login)
	// Logout invalidates the refresh token presented in the JSON body.  No
	// access token is required; possession of the refresh token is the
	// credential being revoked.
	g.POST("/logout", a.Logout)
	// Refresh exchanges a valid refresh token (sent as the Bearer
	// credential) for a new access token.  The refresh token is not rotated.
	g.POST("/refresh-token", a.Refresh)
	// OTP issue and verification for account activation.
	g.POST("/send-otp", a.SendOTP)
	g.POST("/verify-otp", a.VerifyOTP)

	// /v1/auth/me needs a valid access token but works for pending accounts,
	// so it carries only the JWT middleware, not the activation gate.
	g.GET("/me", a.Me, middleware.JWTAuth(accessSecret))
}

// RegisterResources registers the chat, message, call and profile routes.
// Everything here requires a valid access token AND an activated account;
// the activation check reads the user row so a deleted or still-pending
// account is cut off even while holding a live token.
func RegisterResources(e *echo.Echo,
	ch *handler.ChatHandler,
	ms *handler.MessageHandler,
	cl *handler.CallHandler,
	pr *handler.ProfileHandler,
	us *handler.UserHandler,
	accessSecret string,
	users *repository.UserRepo,
) {
	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(accessSecret))
	v1.Use(middleware.RequireActive(users))

	// Account deletion: self-service or admin; ownership is checked in the
	// handler.
	v1.DELETE("/users/:id", us.Delete)

	// Chats.
	v1.POST("/chats", ch.Create)
	v1.GET("/chats", ch.List)
	v1.GET("/chats/:id", ch.Get)
	v1.PUT("/chats/:id", ch.Update)
	v1.DELETE("/chats/:id", ch.Delete)

	// Messages.  Listing filters by the required chat_id query parameter.
	v1.POST("/messages", ms.Send)
	v1.GET("/messages", ms.List)
	v1.GET("/messages/:id", ms.Get)
	v1.PUT("/messages/:id", ms.Update)
	v1.PUT("/messages/:id/status", ms.UpdateStatus)
	v1.DELETE("/messages/:id", ms.Delete)

	// Calls.
	v1.POST("/calls", cl.Start)
	v1.GET("/calls", cl.List)
	v1.GET("/calls/:id", cl.Get)
	v1.PUT("/calls/:id/end", cl.End)
	v1.PUT("/calls/:id/reject", cl.Reject)
	v1.DELETE("/calls/:id", cl.Delete)

	// Profiles.  Deletion is the one admin-only operation; everything else
	// enforces ownership inside the handler.
	v1.POST("/profiles", pr.Create)
	v1.GET("/profiles", pr.List)
	v1.GET("/profiles/:userId", pr.Get)
	v1.PUT("/profiles/:userId", pr.Update)
	v1.DELETE("/profiles/:userId", pr.Delete, middleware.RequireRole(model.RoleAdmin))
}

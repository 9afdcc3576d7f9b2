package handler

import (
    "fmt"                  // formatting the OTP email body
    "net/http"             // HTTP status codes and primitives
    "regexp"               // email shape validation
    "strings"              // string manipulation utilities
    "time"                 // token expiries and OTP TTLs

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/n20-backend/Muhammadaziz-Ekubov/internal/config"     // app configuration
    "github.com/n20-backend/Muhammadaziz-Ekubov/internal/queue"      // email event payloads
    "github.com/n20-backend/Muhammadaziz-Ekubov/internal/repository" // DB repositories
    queue_publisher "github.com/n20-backend/Muhammadaziz-Ekubov/internal/service"
    "github.com/n20-backend/Muhammadaziz-Ekubov/internal/utils" // helper functions (hashing, token issuing)
)

// emailPattern is deliberately loose; it rejects obvious garbage and
// leaves the rest to the delivery path.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// AuthHandler bundles dependencies for auth endpoints.  It is the session
// orchestrator: registration, login, logout, OTP challenge and token
// refresh all flow through here and nowhere else.
type AuthHandler struct {
	Cfg      config.Config
	Users    *repository.UserRepo
	Tokens   *repository.TokenRepo
	OTPs     *repository.OTPRepo
	Profiles *repository.ProfileRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo, o *repository.OTPRepo, p *repository.ProfileRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, OTPs: o, Profiles: p}
}

// ----- DTOs -----

type registerReq struct {
	Email           string `json:"email"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}
type sendOTPReq struct {
	Email string `json:"email"`
}
type verifyOTPReq struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type loginResp struct {
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken"`
	AccessExpiresIn  int64  `json:"accessExpiresIn"`
	RefreshExpiresIn int64  `json:"refreshExpiresIn"`
}

// Register creates a pending account and issues its activation OTP.  No
// tokens are returned: a session only exists after the email is verified
// or an explicit login.  The conflict message never says whether the email
// or the username collided.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" || req.Username == "" || req.Password == "" || req.ConfirmPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "all fields are required"})
	}
	if !emailPattern.MatchString(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email"})
	}
	if req.Password != req.ConfirmPassword {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password and confirm password do not match"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Email, req.Username, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return fail(c, err)
	}
	if err := h.issueOTP(c, uid, req.Email); err != nil {
		return fail(c, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"id": uid, "otpSent": true})
}

// Login verifies credentials and returns a fresh token pair.  Unknown
// email and wrong password produce byte-identical responses so the
// endpoint cannot be used to probe which accounts exist.  Activation state
// is not checked here; pending accounts can log in but are stopped at the
// resource surface until verified.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}
	if !emailPattern.MatchString(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		// Same answer as a bad password; do not reveal that the email is
		// unknown.
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	access, err := utils.NewAccessToken(h.Cfg.AccessSecret, u, h.Cfg.AccessTTLMin)
	if err != nil {
		return fail(c, err)
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshSecret, u, h.Cfg.RefreshTTLDays)
	if err != nil {
		return fail(c, err)
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Token), refresh.Exp); err != nil {
		return fail(c, err)
	}

	now := time.Now().UTC()
	return c.JSON(http.StatusOK, loginResp{
		AccessToken:      access.Token,
		RefreshToken:     refresh.Token,
		AccessExpiresIn:  int64(access.Exp.Sub(now).Seconds()),
		RefreshExpiresIn: int64(refresh.Exp.Sub(now).Seconds()),
	})
}

// Logout revokes the presented refresh token.  Revoking a token that was
// already revoked, or one that has expired, still succeeds: the request is
// idempotent as long as the signature is authentic and the owner exists.
// Only a forged or mangled token is a 400, and only a token whose owner no
// longer exists is a 404.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refreshToken required"})
	}
	raw := strings.TrimSpace(req.RefreshToken)

	// Expiry is deliberately not checked here; see ParseRefreshClaims.
	claims, err := utils.ParseRefreshClaims(h.Cfg.RefreshSecret, raw)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid token"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, claims.UserID); err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if err := h.Tokens.RevokeByHash(ctx, utils.HashRefreshRaw(raw)); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "logged out"})
}

// Refresh exchanges a valid, unrevoked refresh token (presented as the
// Bearer credential) for a new access token.  The refresh token itself is
// not rotated on this path.
func (h *AuthHandler) Refresh(c echo.Context) error {
	auth := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
	}
	raw := strings.TrimPrefix(auth, "Bearer ")

	claims, err := utils.VerifyRefreshToken(h.Cfg.RefreshSecret, raw)
	if err != nil {
		return fail(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	// Signature and expiry alone are not enough: a logged-out token is
	// dead even though it still verifies.
	if _, err := h.Tokens.ValidateRefresh(ctx, utils.HashRefreshRaw(raw)); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
	}

	u, err := h.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	access, err := utils.NewAccessToken(h.Cfg.AccessSecret, u, h.Cfg.AccessTTLMin)
	if err != nil {
		return fail(c, err)
	}
	now := time.Now().UTC()
	return c.JSON(http.StatusOK, echo.Map{
		"accessToken":     access.Token,
		"accessExpiresIn": int64(access.Exp.Sub(now).Seconds()),
	})
}

// SendOTP issues a new passcode for the account behind the given email.
// The response is the same whether or not the account exists, so the
// endpoint cannot confirm email addresses.
func (h *AuthHandler) SendOTP(c echo.Context) error {
	var req sendOTPReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if !emailPattern.MatchString(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if u, err := h.Users.GetByEmail(ctx, req.Email); err == nil {
		if err := h.issueOTP(c, u.ID, u.Email); err != nil {
			return fail(c, err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"otpSent": true})
}

// VerifyOTP consumes a matching non-expired code and activates the
// account.  Consumption and the activation flip commit as one transaction
// in the repository; a second verification of the same code finds nothing
// to consume and fails identically to a wrong code.
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req verifyOTPReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.OTP = strings.TrimSpace(req.OTP)
	if req.Email == "" || req.OTP == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and otp are required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		// Same message as a wrong code; do not reveal account existence.
		return c.JSON(http.StatusBadRequest, echo.Map{"error": repository.ErrInvalidOTP.Error()})
	}
	if err := h.OTPs.ConsumeAndActivate(ctx, u.ID, req.OTP, time.Now().UTC()); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"verified": true})
}

// Me returns the authenticated identity. Unlike the resource endpoints
// this works for pending accounts too, so a client can show onboarding
// state before OTP verification completes.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	out := echo.Map{
		"id":        u.ID,
		"email":     u.Email,
		"username":  u.Username,
		"role":      u.Role,
		"status":    u.Status,
		"createdAt": u.CreatedAt,
		"updatedAt": u.UpdatedAt,
	}
	// A missing profile is normal; the field is simply absent.
	if p, perr := h.Profiles.GetByUserID(ctx, uid); perr == nil {
		out["profile"] = echo.Map{
			"firstName":     p.FirstName,
			"lastName":      p.LastName,
			"phoneNumber":   p.PhoneNumber,
			"address":       p.Address,
			"avatarUrl":     p.AvatarURL,
			"statusMessage": p.StatusMessage,
		}
	}
	return c.JSON(http.StatusOK, out)
}

// issueOTP generates, stores and queues delivery of a passcode.  A broker
// outage must not fail registration, so the publish error is logged by the
// publisher and otherwise ignored; the client can always request a resend.
func (h *AuthHandler) issueOTP(c echo.Context, userID uint64, email string) error {
	code, err := utils.GenerateOTPCode()
	if err != nil {
		return err
	}
	expiresAt := time.Now().UTC().Add(time.Duration(h.Cfg.OTPTTLMin) * time.Minute)

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.OTPs.Create(ctx, userID, code, expiresAt); err != nil {
		return err
	}

	_ = queue_publisher.PublishEmail(ctx, queue.EmailEvent{
		To:       email,
		Subject:  "Your OTP code for authentication",
		Body:     fmt.Sprintf("Your one-time password: %s. It is valid for %d minutes.", code, h.Cfg.OTPTTLMin),
		QueuedAt: time.Now().UTC().Format(time.RFC3339),
	})
	return nil
}

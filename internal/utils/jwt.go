package utils // package utils provides helper functions for token creation and hashing

import (
    "crypto/sha256" // SHA‑256 hashing for refresh token revocation storage
    "encoding/hex"  // hex encoding of digests
    "errors"        // sentinel error construction
    "time"          // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens

    "github.com/n20-backend/Muhammadaziz-Ekubov/internal/model"
)

// ErrInvalidToken is returned for every verification failure: bad signature,
// unexpected signing method, malformed claims or expired token.  Callers get
// a single opaque reason so responses cannot leak which check failed.
var ErrInvalidToken = errors.New("invalid or expired token")

// SignedToken represents a signed JWT along with its expiry.  The Token
// field contains the serialized JWT string; Exp stores the UTC expiration
// time so handlers can report expires-in values without re-parsing.
type SignedToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// TokenClaims is the verified payload of an access or refresh token.
type TokenClaims struct {
    UserID   uint64
    Username string
    Email    string
    Role     string
    IssuedAt time.Time
}

// NewAccessToken builds and signs an HS256 JWT for a user using the access
// secret.  The JWT carries sub (user ID), username, email, role, expiration
// (exp) and issued at (iat).  Access tokens are short-lived and sent in the
// Authorization header on every resource request.
func NewAccessToken(secret string, u model.User, ttlMin int) (SignedToken, error) {
    return signToken(secret, u, time.Duration(ttlMin)*time.Minute)
}

// NewRefreshToken signs a long-lived JWT with the independent refresh
// secret.  Refresh tokens are used only to mint new access tokens; a
// SHA-256 hash of the signed string is persisted so the token can be
// revoked server-side on logout.
func NewRefreshToken(secret string, u model.User, ttlDays int) (SignedToken, error) {
    return signToken(secret, u, time.Duration(ttlDays)*24*time.Hour)
}

func signToken(secret string, u model.User, ttl time.Duration) (SignedToken, error) {
    exp := time.Now().UTC().Add(ttl)
    claims := jwt.MapClaims{
        "sub":      u.ID,
        "username": u.Username,
        "email":    u.Email,
        "role":     u.Role,
        "exp":      exp.Unix(),
        "iat":      time.Now().UTC().Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return SignedToken{}, err
    }
    return SignedToken{Token: signed, Exp: exp}, nil
}

// VerifyAccessToken validates a token against the access secret.
func VerifyAccessToken(secret, raw string) (TokenClaims, error) {
    return verifyToken(secret, raw)
}

// VerifyRefreshToken validates a token against the refresh secret.  An
// access token presented here fails the signature check because the two
// secrets are independent.
func VerifyRefreshToken(secret, raw string) (TokenClaims, error) {
    return verifyToken(secret, raw)
}

// ParseRefreshClaims checks the signature and signing method of a refresh
// token but tolerates an expired exp claim.  Logout uses it: revoking an
// expired session is still a legitimate request from whoever owns the
// token, and rejecting it would make logout non-idempotent near expiry.
func ParseRefreshClaims(secret, raw string) (TokenClaims, error) {
    parser := jwt.NewParser(jwt.WithoutClaimsValidation())
    tok, err := parser.Parse(raw, hmacKeyFunc(secret))
    if err != nil || !tok.Valid {
        return TokenClaims{}, ErrInvalidToken
    }
    return claimsFrom(tok)
}

// hmacKeyFunc returns a key function with an HMAC-only method allow-list.
// Tokens signed with any non-HMAC algorithm are rejected before signature
// verification, closing the algorithm-confusion class of forgeries.
func hmacKeyFunc(secret string) jwt.Keyfunc {
    return func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    }
}

// verifyToken parses the token, enforcing method, signature and expiry.
func verifyToken(secret, raw string) (TokenClaims, error) {
    tok, err := jwt.Parse(raw, hmacKeyFunc(secret))
    if err != nil || !tok.Valid {
        return TokenClaims{}, ErrInvalidToken
    }
    return claimsFrom(tok)
}

// claimsFrom maps the parsed MapClaims onto typed TokenClaims.
func claimsFrom(tok *jwt.Token) (TokenClaims, error) {
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return TokenClaims{}, ErrInvalidToken
    }
    out := TokenClaims{}
    switch sub := claims["sub"].(type) {
    case float64:
        out.UserID = uint64(sub)
    default:
        return TokenClaims{}, ErrInvalidToken
    }
    if v, ok := claims["username"].(string); ok {
        out.Username = v
    }
    if v, ok := claims["email"].(string); ok {
        out.Email = v
    }
    if v, ok := claims["role"].(string); ok {
        out.Role = v
    }
    if iat, ok := claims["iat"].(float64); ok {
        out.IssuedAt = time.Unix(int64(iat), 0).UTC()
    }
    return out, nil
}

// HashRefreshRaw returns the SHA-256 hash of a signed refresh token as a
// hex string.  Only the hash is stored in the database, so stolen rows
// cannot be replayed as live refresh tokens.
func HashRefreshRaw(raw string) string {
    sum := sha256.Sum256([]byte(raw))
    return hex.EncodeToString(sum[:])
}

package model

import "time"

// OTP models an entry in the `otps` table.  Several codes may be
// outstanding for the same user; verification accepts any non-expired one
// and deletes it, which makes each code single-use.  Expired rows are
// rejected lazily at verification time rather than swept proactively.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the code.
//  Code      – 6-digit numeric string.
//  ExpiresAt – instant after which the code is dead.
//  CreatedAt – timestamp of issuance.
type OTP struct {
    ID        uint64    // otps.id
    UserID    uint64    // otps.user_id
    Code      string    // otps.code
    ExpiresAt time.Time // otps.expires_at
    CreatedAt time.Time // otps.created_at
}

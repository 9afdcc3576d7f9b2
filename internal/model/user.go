package model

import "time"

// Role names stored in the users.role column.  The set is closed: every
// authorization decision switches over these three values and nothing else.
const (
    RoleUser      = "user"
    RoleModerator = "moderator"
    RoleAdmin     = "admin"
)

// Account activation states stored in users.status.  A user is created as
// StatusPending on registration and becomes StatusActive only after a
// successful one-time passcode verification.
const (
    StatusPending = "pending"
    StatusActive  = "active"
)

// ValidRole reports whether the given string is one of the closed role set.
func ValidRole(r string) bool {
    return r == RoleUser || r == RoleModerator || r == RoleAdmin
}

// User represents an application user record as stored in the `users`
// table.  Each field corresponds to a column in the database.  Handlers
// define separate response types with appropriate JSON tags; this struct
// is used internally by the repository layer.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  Username     – unique display handle.
//  PasswordHash – bcrypt hashed password.
//  Role         – one of the Role* constants.
//  Status       – activation state (pending/active).
//  DeletedAt    – soft-delete tombstone (nil while the account lives).
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64     // users.id
    Email        string     // users.email
    Username     string     // users.username
    PasswordHash string     // users.password_hash
    Role         string     // users.role
    Status       string     // users.status
    DeletedAt    *time.Time // users.deleted_at (nullable)
    CreatedAt    time.Time  // users.created_at
    UpdatedAt    time.Time  // users.updated_at
}

// IsActive reports whether the account finished OTP verification and has
// not been tombstoned.
func (u User) IsActive() bool {
    return u.Status == StatusActive && u.DeletedAt == nil
}

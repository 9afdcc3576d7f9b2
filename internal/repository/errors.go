// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios and map
// them onto HTTP status codes without inspecting raw database errors.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they are not permitted to touch (non-participant, non-owner,
// insufficient role). Handlers translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a uniqueness invariant blocks a write, such
// as registering an email or username that is already taken. Handlers
// translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrNotFound is returned when a referenced entity does not exist (or is
// soft-deleted). Handlers translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrUserExists is returned on registration when the email or the username
// collides with an existing account. The message deliberately does not say
// which field collided, to avoid account enumeration.
var ErrUserExists = errors.New("user already exists")

// ErrInvalidOTP is returned when no stored, non-expired passcode matches
// the submitted value. A consumed code fails the same way, which is what
// makes verification single-use.
var ErrInvalidOTP = errors.New("invalid or expired code")

// ErrCallInProgress is returned when starting a call would give the
// caller, the receiver or the chat a second ongoing call.
var ErrCallInProgress = errors.New("call already in progress")

// ErrCallFinished is returned when ending or rejecting a call that is
// already in a terminal status.
var ErrCallFinished = errors.New("call already finished")

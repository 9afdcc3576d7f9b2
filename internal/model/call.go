package model

import "time"

// Call statuses stored in calls.status.  CallOngoing is the only
// non-terminal status; every transition out of it is final.
const (
    CallOngoing  = "ongoing"
    CallEnded    = "ended"
    CallMissed   = "missed"
    CallRejected = "rejected"
)

// TerminalCallStatus reports whether s is a final call status.
func TerminalCallStatus(s string) bool {
    return s == CallEnded || s == CallMissed || s == CallRejected
}

// Call models a row in the `calls` table.  A user may be caller or
// receiver of at most one ongoing call at a time, and a chat may host at
// most one ongoing call; both invariants are enforced transactionally in
// the repository.
//
// Fields:
//  ID         – primary key identifier.
//  ChatID     – chat the call takes place in.
//  CallerID   – user who started the call.
//  ReceiverID – user being called.
//  Status     – one of the Call* constants.
//  StartTime  – when the call was started.
//  EndTime    – when the call reached a terminal status (nil while ongoing).
type Call struct {
    ID         uint64     // calls.id
    ChatID     uint64     // calls.chat_id
    CallerID   uint64     // calls.caller_id
    ReceiverID uint64     // calls.receiver_id
    Status     string     // calls.status
    StartTime  time.Time  // calls.start_time
    EndTime    *time.Time // calls.end_time (nullable)
}

// HasParty reports whether the user is the caller or the receiver.
func (c Call) HasParty(userID uint64) bool {
    return c.CallerID == userID || c.ReceiverID == userID
}

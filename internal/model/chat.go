package model

import (
    "fmt"
    "time"
)

// Chat types stored in the chats.type column.
const (
    ChatPrivate = "private"
    ChatGroup   = "group"
)

// Chat models a row in the `chats` table plus its participant set from
// chat_participants.  Private chats have exactly two participants, no name
// and no owner; group chats have a name and an owner who is always a member.
//
// Fields:
//  ID           – primary key identifier.
//  Type         – ChatPrivate or ChatGroup.
//  Name         – group name (nil for private chats).
//  OwnerID      – owning user for group chats (nil for private chats).
//  PairKey      – canonical participant pair for private chats (nil for groups).
//  Participants – user IDs that belong to the chat.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update (bumped when a message arrives).
type Chat struct {
    ID           uint64     // chats.id
    Type         string     // chats.type
    Name         *string    // chats.name (nullable)
    OwnerID      *uint64    // chats.owner_id (nullable)
    PairKey      *string    // chats.pair_key (nullable, unique)
    Participants []uint64   // chat_participants.user_id
    CreatedAt    time.Time  // chats.created_at
    UpdatedAt    time.Time  // chats.updated_at
}

// HasParticipant reports whether the given user belongs to the chat.
func (c Chat) HasParticipant(userID uint64) bool {
    for _, id := range c.Participants {
        if id == userID {
            return true
        }
    }
    return false
}

// PairKey builds the canonical "min:max" key for a private chat between two
// users.  The key is order-insensitive, so the unique index on chats.pair_key
// turns "at most one private chat per pair" into an atomic check-and-insert.
func PairKey(a, b uint64) string {
    if a > b {
        a, b = b, a
    }
    return fmt.Sprintf("%d:%d", a, b)
}

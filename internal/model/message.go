package model

import "time"

// Message content types stored in messages.type.
const (
    MessageText  = "text"
    MessageImage = "image"
    MessageVideo = "video"
    MessageFile  = "file"
)

// Delivery states stored in messages.status.  Only non-senders may move a
// message to delivered/read.
const (
    MessageSent      = "sent"
    MessageDelivered = "delivered"
    MessageRead      = "read"
)

// ValidMessageType reports whether t is one of the supported content types.
func ValidMessageType(t string) bool {
    return t == MessageText || t == MessageImage || t == MessageVideo || t == MessageFile
}

// ValidMessageStatus reports whether s is a status a participant may set.
func ValidMessageStatus(s string) bool {
    return s == MessageDelivered || s == MessageRead
}

// Message models a row in the `messages` table.  Messages are owned by
// their chat and visible only to chat participants.  Deletion is a soft
// delete: the row keeps its ID but content is hidden from listings.
//
// Fields:
//  ID        – primary key identifier.
//  ChatID    – owning chat.
//  SenderID  – authoring user.
//  Content   – message body (or storage reference for media types).
//  Type      – one of the Message* content type constants.
//  Status    – delivery state (sent/delivered/read).
//  DeletedAt – soft-delete tombstone (nil while visible).
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of last edit.
type Message struct {
    ID        uint64     // messages.id
    ChatID    uint64     // messages.chat_id
    SenderID  uint64     // messages.sender_id
    Content   string     // messages.content
    Type      string     // messages.type
    Status    string     // messages.status
    DeletedAt *time.Time // messages.deleted_at (nullable)
    CreatedAt time.Time  // messages.created_at
    UpdatedAt time.Time  // messages.updated_at
}

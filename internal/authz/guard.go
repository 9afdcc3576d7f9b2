// Package authz implements the authorization decision table consulted
// before every mutation on chats, messages and calls.  CanAct is a pure
// function over the actor, the attempted action and the target resource;
// it touches no storage, so handlers load the resource first and pass it
// in.  Denials reuse the repository sentinels so one boundary translator
// maps every outcome onto an HTTP status.
package authz

import (
    "errors"
    "fmt"

    "github.com/n20-backend/Muhammadaziz-Ekubov/internal/model"
    "github.com/n20-backend/Muhammadaziz-Ekubov/internal/repository"
)

// Action identifies what the actor is attempting against the resource.
type Action string

const (
    ChatRead          Action = "chat.read"
    ChatRename        Action = "chat.rename"
    ChatUpdateMembers Action = "chat.update_members"
    ChatDelete        Action = "chat.delete"

    MessageEdit       Action = "message.edit"
    MessageDelete     Action = "message.delete"
    MessageMarkStatus Action = "message.mark_status"

    CallFinish Action = "call.finish"
    CallDelete Action = "call.delete"
)

// ErrOwnMessageStatus is the one denial that is a 400 rather than a 403: a
// sender marking their own message read/delivered is an illegal state
// change, not a permissions problem.
var ErrOwnMessageStatus = errors.New("cannot update status of your own message")

// ErrPrivateChatName rejects renaming a private chat; private chats have
// no mutable name regardless of who asks.
var ErrPrivateChatName = errors.New("cannot change name of a private chat")

// Resource carries the already-loaded target of the action.  Message
// actions require the owning Chat as well, since visibility follows chat
// membership.
type Resource struct {
    Chat    *model.Chat
    Message *model.Message
    Call    *model.Call
}

// CanAct returns nil when the actor may perform the action, or a sentinel
// error describing why not.  The table mirrors one rule per action:
//
//	chat read/update      participant
//	chat rename/delete    participant, plus owner-or-admin for groups;
//	                      private chats are never renamed
//	message edit/delete   sender or admin
//	message mark status   chat participant other than the sender
//	call finish           caller or receiver
//	call delete           caller, receiver or admin
func CanAct(actor model.User, action Action, res Resource) error {
    switch action {
    case ChatRead, ChatUpdateMembers:
        return requireParticipant(actor, res.Chat)

    case ChatRename:
        if err := requireParticipant(actor, res.Chat); err != nil {
            return err
        }
        if res.Chat.Type == model.ChatPrivate {
            return ErrPrivateChatName
        }
        return requireOwnerOrAdmin(actor, res.Chat)

    case ChatDelete:
        if err := requireParticipant(actor, res.Chat); err != nil {
            return err
        }
        if res.Chat.Type == model.ChatGroup {
            return requireOwnerOrAdmin(actor, res.Chat)
        }
        return nil

    case MessageEdit, MessageDelete:
        if res.Message.SenderID == actor.ID || actor.Role == model.RoleAdmin {
            return nil
        }
        return fmt.Errorf("%w: only the sender may modify a message", repository.ErrForbidden)

    case MessageMarkStatus:
        if err := requireParticipant(actor, res.Chat); err != nil {
            return err
        }
        if res.Message.SenderID == actor.ID {
            return ErrOwnMessageStatus
        }
        return nil

    case CallFinish:
        if res.Call.HasParty(actor.ID) {
            return nil
        }
        return fmt.Errorf("%w: you are not a participant in this call", repository.ErrForbidden)

    case CallDelete:
        if res.Call.HasParty(actor.ID) || actor.Role == model.RoleAdmin {
            return nil
        }
        return fmt.Errorf("%w: you are not allowed to delete this call", repository.ErrForbidden)
    }
    return fmt.Errorf("%w: unknown action %q", repository.ErrForbidden, action)
}

func requireParticipant(actor model.User, chat *model.Chat) error {
    if chat.HasParticipant(actor.ID) {
        return nil
    }
    return fmt.Errorf("%w: you are not a participant in this chat", repository.ErrForbidden)
}

func requireOwnerOrAdmin(actor model.User, chat *model.Chat) error {
    if actor.Role == model.RoleAdmin {
        return nil
    }
    if chat.OwnerID != nil && *chat.OwnerID == actor.ID {
        return nil
    }
    return fmt.Errorf("%w: only the owner or an admin may do this", repository.ErrForbidden)
}

package authz

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n20-backend/Muhammadaziz-Ekubov/internal/model"
	"github.com/n20-backend/Muhammadaziz-Ekubov/internal/repository"
)

func u(id uint64, role string) model.User { return model.User{ID: id, Role: role} }

func groupChat(owner uint64, members ...uint64) *model.Chat {
	return &model.Chat{ID: 1, Type: model.ChatGroup, OwnerID: &owner, Participants: members}
}

func privateChat(a, b uint64) *model.Chat {
	return &model.Chat{ID: 2, Type: model.ChatPrivate, Participants: []uint64{a, b}}
}

func TestCanAct_chatRead(t *testing.T) {
	chat := groupChat(1, 1, 2, 3)

	assert.NoError(t, CanAct(u(2, model.RoleUser), ChatRead, Resource{Chat: chat}))

	err := CanAct(u(9, model.RoleUser), ChatRead, Resource{Chat: chat})
	require.Error(t, err)
	assert.True(t, errors.Is(err, repository.ErrForbidden))

	// Admin role does not bypass membership for reads.
	err = CanAct(u(9, model.RoleAdmin), ChatRead, Resource{Chat: chat})
	assert.True(t, errors.Is(err, repository.ErrForbidden))
}

func TestCanAct_chatRename(t *testing.T) {
	chat := groupChat(1, 1, 2, 3)

	assert.NoError(t, CanAct(u(1, model.RoleUser), ChatRename, Resource{Chat: chat}))

	// A plain member may not rename the group.
	err := CanAct(u(2, model.RoleUser), ChatRename, Resource{Chat: chat})
	assert.True(t, errors.Is(err, repository.ErrForbidden))

	// An admin who is also a member may.
	assert.NoError(t, CanAct(u(3, model.RoleAdmin), ChatRename, Resource{Chat: chat}))

	// Private chats are never renamed, not even by their members.
	err = CanAct(u(5, model.RoleUser), ChatRename, Resource{Chat: privateChat(5, 6)})
	assert.ErrorIs(t, err, ErrPrivateChatName)
}

func TestCanAct_chatDelete(t *testing.T) {
	group := groupChat(1, 1, 2)

	assert.NoError(t, CanAct(u(1, model.RoleUser), ChatDelete, Resource{Chat: group}))
	err := CanAct(u(2, model.RoleUser), ChatDelete, Resource{Chat: group})
	assert.True(t, errors.Is(err, repository.ErrForbidden))
	assert.NoError(t, CanAct(u(2, model.RoleAdmin), ChatDelete, Resource{Chat: group}))

	// Either member may delete a private chat.
	pc := privateChat(5, 6)
	assert.NoError(t, CanAct(u(5, model.RoleUser), ChatDelete, Resource{Chat: pc}))
	assert.NoError(t, CanAct(u(6, model.RoleUser), ChatDelete, Resource{Chat: pc}))
	err = CanAct(u(7, model.RoleUser), ChatDelete, Resource{Chat: pc})
	assert.True(t, errors.Is(err, repository.ErrForbidden))
}

func TestCanAct_messageEditDelete(t *testing.T) {
	chat := groupChat(1, 1, 2, 3)
	msg := &model.Message{ID: 10, ChatID: chat.ID, SenderID: 2}

	for _, action := range []Action{MessageEdit, MessageDelete} {
		assert.NoError(t, CanAct(u(2, model.RoleUser), action, Resource{Chat: chat, Message: msg}))
		assert.NoError(t, CanAct(u(9, model.RoleAdmin), action, Resource{Chat: chat, Message: msg}))

		err := CanAct(u(3, model.RoleUser), action, Resource{Chat: chat, Message: msg})
		assert.True(t, errors.Is(err, repository.ErrForbidden), "action %s", action)
	}
}

func TestCanAct_messageMarkStatus(t *testing.T) {
	chat := groupChat(1, 1, 2, 3)
	msg := &model.Message{ID: 10, ChatID: chat.ID, SenderID: 2}

	// Another participant may acknowledge the message.
	assert.NoError(t, CanAct(u(3, model.RoleUser), MessageMarkStatus, Resource{Chat: chat, Message: msg}))

	// The sender may not acknowledge their own message; this is an input
	// error, not a permissions denial.
	err := CanAct(u(2, model.RoleUser), MessageMarkStatus, Resource{Chat: chat, Message: msg})
	assert.ErrorIs(t, err, ErrOwnMessageStatus)
	assert.False(t, errors.Is(err, repository.ErrForbidden))

	// Outsiders are rejected on membership before the sender rule applies.
	err = CanAct(u(9, model.RoleUser), MessageMarkStatus, Resource{Chat: chat, Message: msg})
	assert.True(t, errors.Is(err, repository.ErrForbidden))
}

func TestCanAct_calls(t *testing.T) {
	call := &model.Call{ID: 1, ChatID: 2, CallerID: 5, ReceiverID: 6, Status: model.CallOngoing}

	assert.NoError(t, CanAct(u(5, model.RoleUser), CallFinish, Resource{Call: call}))
	assert.NoError(t, CanAct(u(6, model.RoleUser), CallFinish, Resource{Call: call}))

	// Admins cannot hang up calls they are not part of.
	err := CanAct(u(9, model.RoleAdmin), CallFinish, Resource{Call: call})
	assert.True(t, errors.Is(err, repository.ErrForbidden))

	// But they may delete call records.
	assert.NoError(t, CanAct(u(9, model.RoleAdmin), CallDelete, Resource{Call: call}))
	assert.NoError(t, CanAct(u(5, model.RoleUser), CallDelete, Resource{Call: call}))
	err = CanAct(u(9, model.RoleUser), CallDelete, Resource{Call: call})
	assert.True(t, errors.Is(err, repository.ErrForbidden))
}

func TestCanAct_unknownAction(t *testing.T) {
	err := CanAct(u(1, model.RoleAdmin), Action("bogus"), Resource{})
	assert.True(t, errors.Is(err, repository.ErrForbidden))
}

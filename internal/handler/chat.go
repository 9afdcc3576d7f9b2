package handler

import (
    "net/http" // HTTP status codes
    "strings"  // trimming chat names

    "github.com/labstack/echo/v4" // web framework

    "github.com/n20-backend/Muhammadaziz-Ekubov/internal/authz"
    "github.com/n20-backend/Muhammadaziz-Ekubov/internal/model"
    "github.com/n20-backend/Muhammadaziz-Ekubov/internal/repository"
)

// ChatHandler bundles dependencies for the chat endpoints.
type ChatHandler struct {
	Chats *repository.ChatRepo
	Users *repository.UserRepo
}

func NewChatHandler(chats *repository.ChatRepo, users *repository.UserRepo) *ChatHandler {
	return &ChatHandler{Chats: chats, Users: users}
}

type createChatReq struct {
	Type         string   `json:"type"`
	Name         string   `json:"name"`
	Participants []uint64 `json:"participants"`
}

type updateChatReq struct {
	Name         *string  `json:"name"`
	Participants []uint64 `json:"participants"`
}

type chatView struct {
	ID           uint64   `json:"id"`
	Type         string   `json:"type"`
	Name         *string  `json:"name,omitempty"`
	OwnerID      *uint64  `json:"ownerId,omitempty"`
	Participants []uint64 `json:"participants"`
	CreatedAt    string   `json:"createdAt"`
	UpdatedAt    string   `json:"updatedAt"`
}

func toChatView(c model.Chat) chatView {
	return chatView{
		ID:           c.ID,
		Type:         c.Type,
		Name:         c.Name,
		OwnerID:      c.OwnerID,
		Participants: c.Participants,
		CreatedAt:    c.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:    c.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// Create opens a new chat. The requester is always a participant even if
// the client omitted themselves. A private chat needs exactly two distinct
// members and carries no name; a group needs a name and records the
// requester as owner. Creating a private chat for a pair that already has
// one returns the existing chat instead of a duplicate.
func (h *ChatHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createChatReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Type != model.ChatPrivate && req.Type != model.ChatGroup {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "type must be private or group"})
	}

	participants := dedupeWith(req.Participants, uid)

	var name *string
	var ownerID *uint64
	switch req.Type {
	case model.ChatPrivate:
		if len(participants) != 2 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "a private chat needs exactly two distinct participants"})
		}
	case model.ChatGroup:
		n := strings.TrimSpace(req.Name)
		if n == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "a group chat requires a name"})
		}
		name = &n
		ownerID = &uid
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	// Every participant must be a live account.
	for _, pid := range participants {
		if _, err := h.Users.GetByID(ctx, pid); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown participant"})
		}
	}

	id, existed, err := h.Chats.Create(ctx, req.Type, name, ownerID, participants)
	if err != nil {
		return fail(c, err)
	}
	chat, err := h.Chats.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	status := http.StatusCreated
	if existed {
		status = http.StatusOK
	}
	return c.JSON(status, toChatView(chat))
}

// List returns the requester's chats, most recently active first.
func (h *ChatHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	chats, err := h.Chats.ListByUser(ctx, uid)
	if err != nil {
		return fail(c, err)
	}
	views := make([]chatView, 0, len(chats))
	for _, ch := range chats {
		views = append(views, toChatView(ch))
	}
	return c.JSON(http.StatusOK, echo.Map{"chats": views})
}

// Get returns one chat; only its participants may see it.
func (h *ChatHandler) Get(c echo.Context) error {
	act, err := actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid chat id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	chat, err := h.Chats.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	if err := authz.CanAct(act, authz.ChatRead, authz.Resource{Chat: &chat}); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, toChatView(chat))
}

// Update renames a group chat and/or replaces its participant set. Rename
// is owner-or-admin; membership changes are open to any participant. The
// requester can never remove themselves via this endpoint.
func (h *ChatHandler) Update(c echo.Context) error {
	act, err := actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid chat id"})
	}
	var req updateChatReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == nil && req.Participants == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	chat, err := h.Chats.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}

	if req.Name != nil {
		n := strings.TrimSpace(*req.Name)
		if n == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name must not be empty"})
		}
		if err := authz.CanAct(act, authz.ChatRename, authz.Resource{Chat: &chat}); err != nil {
			return fail(c, err)
		}
		if err := h.Chats.UpdateName(ctx, id, n); err != nil {
			return fail(c, err)
		}
	}

	if req.Participants != nil {
		if err := authz.CanAct(act, authz.ChatUpdateMembers, authz.Resource{Chat: &chat}); err != nil {
			return fail(c, err)
		}
		if chat.Type == model.ChatPrivate {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot change participants of a private chat"})
		}
		members := dedupeWith(req.Participants, act.ID)
		// The owner stays a member no matter what set the client sent; a
		// group whose owner is outside the participant set fails every
		// ownership check from then on.
		if chat.OwnerID != nil && !containsID(members, *chat.OwnerID) {
			members = append(members, *chat.OwnerID)
		}
		if len(members) < 2 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "a group chat needs at least two participants"})
		}
		for _, pid := range members {
			if _, err := h.Users.GetByID(ctx, pid); err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown participant"})
			}
		}
		if err := h.Chats.ReplaceParticipants(ctx, id, members); err != nil {
			return fail(c, err)
		}
	}

	updated, err := h.Chats.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, toChatView(updated))
}

// Delete removes a chat and everything hanging off it. Either member may
// delete a private chat; groups require the owner or an admin.
func (h *ChatHandler) Delete(c echo.Context) error {
	act, err := actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid chat id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	chat, err := h.Chats.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	if err := authz.CanAct(act, authz.ChatDelete, authz.Resource{Chat: &chat}); err != nil {
		return fail(c, err)
	}
	if err := h.Chats.Delete(ctx, id); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// containsID reports whether id is present in ids.
func containsID(ids []uint64, id uint64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// dedupeWith returns ids with duplicates and zeros removed, with must
// always included, preserving first-seen order.
func dedupeWith(ids []uint64, must uint64) []uint64 {
	out := make([]uint64, 0, len(ids)+1)
	seen := make(map[uint64]struct{}, len(ids)+1)
	add := func(id uint64) {
		if id == 0 {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	add(must)
	for _, id := range ids {
		add(id)
	}
	return out
}

package handler

import (
    "net/http" // HTTP status codes
    "strconv"  // pagination query parsing
    "strings"  // content trimming

    "github.com/labstack/echo/v4" // web framework

    "github.com/n20-backend/Muhammadaziz-Ekubov/internal/authz"
    "github.com/n20-backend/Muhammadaziz-Ekubov/internal/model"
    "github.com/n20-backend/Muhammadaziz-Ekubov/internal/repository"
)

// MessageHandler bundles dependencies for the message endpoints. It loads
// the owning chat before every operation because message visibility and
// status rules follow chat membership.
type MessageHandler struct {
	Messages *repository.MessageRepo
	Chats    *repository.ChatRepo
}

func NewMessageHandler(messages *repository.MessageRepo, chats *repository.ChatRepo) *MessageHandler {
	return &MessageHandler{Messages: messages, Chats: chats}
}

type sendMessageReq struct {
	ChatID  uint64 `json:"chatId"`
	Content string `json:"content"`
	Type    string `json:"type"`
}

type updateMessageReq struct {
	Content string `json:"content"`
}

type updateStatusReq struct {
	Status string `json:"status"`
}

type messageView struct {
	ID        uint64 `json:"id"`
	ChatID    uint64 `json:"chatId"`
	SenderID  uint64 `json:"senderId"`
	Content   string `json:"content"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func toMessageView(m model.Message) messageView {
	return messageView{
		ID:        m.ID,
		ChatID:    m.ChatID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		Type:      m.Type,
		Status:    m.Status,
		CreatedAt: m.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: m.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// Send posts a message into a chat the requester belongs to. The message
// starts in 'sent' status and bumps the chat's activity timestamp so the
// chat rises in listings.
func (h *MessageHandler) Send(c echo.Context) error {
	act, err := actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req sendMessageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.ChatID == 0 || req.Content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "chatId and content are required"})
	}
	if req.Type == "" {
		req.Type = model.MessageText
	}
	if !model.ValidMessageType(req.Type) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid message type"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	chat, err := h.Chats.GetByID(ctx, req.ChatID)
	if err != nil {
		return fail(c, err)
	}
	if err := authz.CanAct(act, authz.ChatRead, authz.Resource{Chat: &chat}); err != nil {
		return fail(c, err)
	}

	id, err := h.Messages.Create(ctx, req.ChatID, act.ID, req.Content, req.Type)
	if err != nil {
		return fail(c, err)
	}
	_ = h.Chats.Touch(ctx, req.ChatID) // best effort; the message itself is committed

	msg, err := h.Messages.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, toMessageView(msg))
}

// List returns a page of messages from a chat, newest first. chat_id is
// required; limit defaults to 50 and is capped at 200.
func (h *MessageHandler) List(c echo.Context) error {
	act, err := actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	chatID, err := strconv.ParseUint(c.QueryParam("chat_id"), 10, 64)
	if err != nil || chatID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "chat_id query parameter is required"})
	}
	limit := 50
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 200 {
		limit = 200
	}
	offset := 0
	if v := c.QueryParam("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	chat, err := h.Chats.GetByID(ctx, chatID)
	if err != nil {
		return fail(c, err)
	}
	if err := authz.CanAct(act, authz.ChatRead, authz.Resource{Chat: &chat}); err != nil {
		return fail(c, err)
	}

	msgs, err := h.Messages.ListByChat(ctx, chatID, limit, offset)
	if err != nil {
		return fail(c, err)
	}
	views := make([]messageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, toMessageView(m))
	}
	return c.JSON(http.StatusOK, echo.Map{"messages": views, "limit": limit, "offset": offset})
}

// Get returns one message; visibility follows chat membership.
func (h *MessageHandler) Get(c echo.Context) error {
	act, err := actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid message id"})
	}
	msg, chat, err := h.load(c, id)
	if err != nil {
		return fail(c, err)
	}
	if err := authz.CanAct(act, authz.ChatRead, authz.Resource{Chat: &chat}); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, toMessageView(msg))
}

// Update edits a message body. Only the sender or an admin may edit.
func (h *MessageHandler) Update(c echo.Context) error {
	act, err := actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid message id"})
	}
	var req updateMessageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "content is required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	msg, chat, err := h.load(c, id)
	if err != nil {
		return fail(c, err)
	}
	if err := authz.CanAct(act, authz.MessageEdit, authz.Resource{Chat: &chat, Message: &msg}); err != nil {
		return fail(c, err)
	}
	if err := h.Messages.UpdateContent(ctx, id, req.Content); err != nil {
		return fail(c, err)
	}
	updated, err := h.Messages.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, toMessageView(updated))
}

// UpdateStatus marks a message delivered or read. Any participant except
// the sender may do this; a sender acknowledging their own message is a
// client bug, not a permission issue.
func (h *MessageHandler) UpdateStatus(c echo.Context) error {
	act, err := actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid message id"})
	}
	var req updateStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !model.ValidMessageStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be delivered or read"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	msg, chat, err := h.load(c, id)
	if err != nil {
		return fail(c, err)
	}
	if err := authz.CanAct(act, authz.MessageMarkStatus, authz.Resource{Chat: &chat, Message: &msg}); err != nil {
		return fail(c, err)
	}
	if err := h.Messages.UpdateStatus(ctx, id, req.Status); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "status": req.Status})
}

// Delete tombstones a message. Only the sender or an admin may delete;
// the row stays in storage but disappears from every read.
func (h *MessageHandler) Delete(c echo.Context) error {
	act, err := actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid message id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	msg, chat, err := h.load(c, id)
	if err != nil {
		return fail(c, err)
	}
	if err := authz.CanAct(act, authz.MessageDelete, authz.Resource{Chat: &chat, Message: &msg}); err != nil {
		return fail(c, err)
	}
	if err := h.Messages.SoftDelete(ctx, id); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// load fetches a message together with its owning chat.
func (h *MessageHandler) load(c echo.Context, id uint64) (model.Message, model.Chat, error) {
	ctx, cancel := reqCtx(c)
	defer cancel()
	msg, err := h.Messages.GetByID(ctx, id)
	if err != nil {
		return model.Message{}, model.Chat{}, err
	}
	chat, err := h.Chats.GetByID(ctx, msg.ChatID)
	if err != nil {
		return model.Message{}, model.Chat{}, err
	}
	return msg, chat, nil
}

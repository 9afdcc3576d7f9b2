package handler

import (
    "net/http" // HTTP status codes

    "github.com/labstack/echo/v4" // web framework

    "github.com/n20-backend/Muhammadaziz-Ekubov/internal/authz"
    "github.com/n20-backend/Muhammadaziz-Ekubov/internal/model"
    "github.com/n20-backend/Muhammadaziz-Ekubov/internal/repository"
)

// CallHandler bundles dependencies for the call endpoints.
type CallHandler struct {
	Calls *repository.CallRepo
	Chats *repository.ChatRepo
}

func NewCallHandler(calls *repository.CallRepo, chats *repository.ChatRepo) *CallHandler {
	return &CallHandler{Calls: calls, Chats: chats}
}

type startCallReq struct {
	ChatID     uint64 `json:"chatId"`
	ReceiverID uint64 `json:"receiverId"`
}

type callView struct {
	ID         uint64  `json:"id"`
	ChatID     uint64  `json:"chatId"`
	CallerID   uint64  `json:"callerId"`
	ReceiverID uint64  `json:"receiverId"`
	Status     string  `json:"status"`
	StartTime  string  `json:"startTime"`
	EndTime    *string `json:"endTime,omitempty"`
}

func toCallView(cl model.Call) callView {
	v := callView{
		ID:         cl.ID,
		ChatID:     cl.ChatID,
		CallerID:   cl.CallerID,
		ReceiverID: cl.ReceiverID,
		Status:     cl.Status,
		StartTime:  cl.StartTime.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if cl.EndTime != nil {
		t := cl.EndTime.UTC().Format("2006-01-02T15:04:05Z07:00")
		v.EndTime = &t
	}
	return v
}

// Start rings another participant of the chat. The busy check and the
// insert are one transaction in the repository, so two simultaneous starts
// involving the same user or chat cannot both succeed; the loser gets a
// 409.
func (h *CallHandler) Start(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req startCallReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.ChatID == 0 || req.ReceiverID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "chatId and receiverId are required"})
	}
	if req.ReceiverID == uid {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot call yourself"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	chat, err := h.Chats.GetByID(ctx, req.ChatID)
	if err != nil {
		return fail(c, err)
	}
	if !chat.HasParticipant(uid) || !chat.HasParticipant(req.ReceiverID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "both parties must belong to the chat"})
	}

	id, err := h.Calls.Start(ctx, req.ChatID, uid, req.ReceiverID)
	if err != nil {
		return fail(c, err)
	}
	call, err := h.Calls.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, toCallView(call))
}

// List returns the requester's call history, newest first.
func (h *CallHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	calls, err := h.Calls.ListByUser(ctx, uid)
	if err != nil {
		return fail(c, err)
	}
	views := make([]callView, 0, len(calls))
	for _, cl := range calls {
		views = append(views, toCallView(cl))
	}
	return c.JSON(http.StatusOK, echo.Map{"calls": views})
}

// Get returns one call record; visible to its parties and admins.
func (h *CallHandler) Get(c echo.Context) error {
	act, err := actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid call id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	call, err := h.Calls.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	if !call.HasParty(act.ID) && act.Role != model.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you are not a participant in this call"})
	}
	return c.JSON(http.StatusOK, toCallView(call))
}

// End hangs up an ongoing call. Either party may end it; a call that has
// already reached a terminal status stays as it is and the request fails
// with a 400.
func (h *CallHandler) End(c echo.Context) error {
	return h.finish(c, model.CallEnded)
}

// Reject declines an incoming call. Only the receiver makes sense here,
// but either party may terminate, so the shared guard applies.
func (h *CallHandler) Reject(c echo.Context) error {
	return h.finish(c, model.CallRejected)
}

func (h *CallHandler) finish(c echo.Context, status string) error {
	act, err := actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid call id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	call, err := h.Calls.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	if err := authz.CanAct(act, authz.CallFinish, authz.Resource{Call: &call}); err != nil {
		return fail(c, err)
	}
	if err := h.Calls.Finish(ctx, id, status); err != nil {
		return fail(c, err)
	}
	updated, err := h.Calls.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, toCallView(updated))
}

// Delete removes a call record from history. Parties and admins only.
func (h *CallHandler) Delete(c echo.Context) error {
	act, err := actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid call id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	call, err := h.Calls.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	if err := authz.CanAct(act, authz.CallDelete, authz.Resource{Call: &call}); err != nil {
		return fail(c, err)
	}
	if err := h.Calls.Delete(ctx, id); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

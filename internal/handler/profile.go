package handler

import (
    "net/http" // HTTP status codes

    "github.com/labstack/echo/v4" // web framework

    "github.com/n20-backend/Muhammadaziz-Ekubov/internal/model"
    "github.com/n20-backend/Muhammadaziz-Ekubov/internal/repository"
)

// ProfileHandler bundles dependencies for the profile endpoints. Profiles
// are directory data; any signed-in user can browse them, but only the
// owner (or an admin) can change one.
type ProfileHandler struct {
	Profiles *repository.ProfileRepo
}

func NewProfileHandler(profiles *repository.ProfileRepo) *ProfileHandler {
	return &ProfileHandler{Profiles: profiles}
}

type profileReq struct {
	FirstName     *string `json:"firstName"`
	LastName      *string `json:"lastName"`
	PhoneNumber   *string `json:"phoneNumber"`
	Address       *string `json:"address"`
	AvatarURL     *string `json:"avatarUrl"`
	StatusMessage *string `json:"statusMessage"`
}

type profileView struct {
	ID            uint64  `json:"id"`
	UserID        uint64  `json:"userId"`
	FirstName     *string `json:"firstName,omitempty"`
	LastName      *string `json:"lastName,omitempty"`
	PhoneNumber   *string `json:"phoneNumber,omitempty"`
	Address       *string `json:"address,omitempty"`
	AvatarURL     *string `json:"avatarUrl,omitempty"`
	StatusMessage *string `json:"statusMessage,omitempty"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

func toProfileView(p model.Profile) profileView {
	return profileView{
		ID:            p.ID,
		UserID:        p.UserID,
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		PhoneNumber:   p.PhoneNumber,
		Address:       p.Address,
		AvatarURL:     p.AvatarURL,
		StatusMessage: p.StatusMessage,
		CreatedAt:     p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:     p.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// Create adds the requester's profile. A user carries at most one; a
// second create is a 409.
func (h *ProfileHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	_, err = h.Profiles.Create(ctx, model.Profile{
		UserID:        uid,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		PhoneNumber:   req.PhoneNumber,
		Address:       req.Address,
		AvatarURL:     req.AvatarURL,
		StatusMessage: req.StatusMessage,
	})
	if err != nil {
		return fail(c, err)
	}
	p, err := h.Profiles.GetByUserID(ctx, uid)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, toProfileView(p))
}

// List returns every profile in the directory.
func (h *ProfileHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	profiles, err := h.Profiles.List(ctx)
	if err != nil {
		return fail(c, err)
	}
	views := make([]profileView, 0, len(profiles))
	for _, p := range profiles {
		views = append(views, toProfileView(p))
	}
	return c.JSON(http.StatusOK, echo.Map{"profiles": views})
}

// Get returns the profile owned by the user in the path.
func (h *ProfileHandler) Get(c echo.Context) error {
	userID, ok := parseID(c, "userId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Profiles.GetByUserID(ctx, userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, toProfileView(p))
}

// Update overwrites the profile fields. Owner or admin only; fields
// omitted from the body are cleared, matching PUT semantics.
func (h *ProfileHandler) Update(c echo.Context) error {
	act, err := actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	userID, ok := parseID(c, "userId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	if userID != act.ID && act.Role != model.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you may only edit your own profile"})
	}
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Profiles.Update(ctx, model.Profile{
		UserID:        userID,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		PhoneNumber:   req.PhoneNumber,
		Address:       req.Address,
		AvatarURL:     req.AvatarURL,
		StatusMessage: req.StatusMessage,
	}); err != nil {
		return fail(c, err)
	}
	p, err := h.Profiles.GetByUserID(ctx, userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, toProfileView(p))
}

// Delete removes a profile. The route is admin-gated; the handler only
// needs to perform the delete.
func (h *ProfileHandler) Delete(c echo.Context) error {
	userID, ok := parseID(c, "userId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Profiles.Delete(ctx, userID); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

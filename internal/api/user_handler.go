package api

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type AccessStatusRequest struct {
	AccessStatus domain.AccessStatus `json:"accessStatus"`
}

type AdjustCreditsRequest struct {
	// Delta is added to the balance; negative values remove credits.
	Delta int `json:"delta"`
}

// --- Member self-service ---

// GetMe godoc
// @Summary Get the caller's profile
// @Tags Me
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} gin.H "Unauthorized"
// @Failure 404 {object} gin.H "User no longer exists"
// @Router /me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	user, err := h.userService.GetUser(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, err, "load profile")
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// UpdateProfile godoc
// @Summary Update the caller's onboarding profile
// @Tags Me
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body service.ProfileInput true "Profile"
// @Success 200 {object} UserResponse
// @Failure 400 {object} gin.H "Validation error"
// @Router /me/profile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req service.ProfileInput
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userService.UpdateProfile(c.Request.Context(), actor.ID, req)
	if err != nil {
		respondError(c, err, "update profile")
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// --- Admin ---

// ListUsers godoc
// @Summary List users
// @Tags Admin Users
// @Produce json
// @Security BearerAuth
// @Param role query string false "Role filter"
// @Param accessStatus query string false "green or red"
// @Param q query string false "Name or email contains"
// @Param limit query int false "Page size (max 100)"
// @Param cursor query string false "Cursor from the previous page"
// @Success 200 {object} PageResponse[AdminUserResponse]
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	var query service.ListUsersInput
	if err := c.ShouldBindQuery(&query); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid query parameters: "+err.Error())
		return
	}
	page, ok := pageRequest(c)
	if !ok {
		return
	}
	users, err := h.userService.ListUsers(c.Request.Context(), query, page)
	if err != nil {
		respondError(c, err, "list users")
		return
	}
	c.JSON(http.StatusOK, mapPage(users, MapUserToAdminResponse))
}

// CreateUser godoc
// @Summary Create a user with any role
// @Tags Admin Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user body service.CreateUserInput true "User"
// @Success 201 {object} AdminUserResponse
// @Failure 409 {object} gin.H "Email already exists"
// @Router /admin/users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req service.CreateUserInput
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userService.CreateUser(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "create user")
		return
	}
	c.JSON(http.StatusCreated, MapUserToAdminResponse(user))
}

// GetUser godoc
// @Summary Get a user
// @Tags Admin Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} AdminUserResponse
// @Failure 404 {object} gin.H "Not found"
// @Router /admin/users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	user, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "load user")
		return
	}
	c.JSON(http.StatusOK, MapUserToAdminResponse(user))
}

// UpdateUser godoc
// @Summary Update a user
// @Tags Admin Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param user body service.UpdateUserInput true "User"
// @Success 200 {object} AdminUserResponse
// @Router /admin/users/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateUserInput
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userService.UpdateUser(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "update user")
		return
	}
	c.JSON(http.StatusOK, MapUserToAdminResponse(user))
}

// DeleteUser godoc
// @Summary Delete a user
// @Tags Admin Users
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 204 "Deleted"
// @Failure 409 {object} gin.H "Cannot delete yourself"
// @Router /admin/users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.userService.DeleteUser(c.Request.Context(), actor, id); err != nil {
		respondError(c, err, "delete user")
		return
	}
	c.Status(http.StatusNoContent)
}

// SetAccessStatus godoc
// @Summary Set a member's gym access
// @Tags Admin Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param status body AccessStatusRequest true "green or red"
// @Success 200 {object} AdminUserResponse
// @Router /admin/users/{id}/access [put]
func (h *UserHandler) SetAccessStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req AccessStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userService.SetAccessStatus(c.Request.Context(), id, req.AccessStatus)
	if err != nil {
		respondError(c, err, "update access status")
		return
	}
	c.JSON(http.StatusOK, MapUserToAdminResponse(user))
}

// ToggleAccessStatus godoc
// @Summary Flip a member's gym access between green and red
// @Tags Admin Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} AdminUserResponse
// @Router /admin/users/{id}/access/toggle [post]
func (h *UserHandler) ToggleAccessStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	user, err := h.userService.ToggleAccessStatus(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "toggle access status")
		return
	}
	c.JSON(http.StatusOK, MapUserToAdminResponse(user))
}

// AdjustCredits godoc
// @Summary Add or remove credits
// @Tags Admin Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param credits body AdjustCreditsRequest true "Delta"
// @Success 200 {object} AdminUserResponse
// @Failure 409 {object} gin.H "Balance would drop below zero"
// @Router /admin/users/{id}/credits [post]
func (h *UserHandler) AdjustCredits(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req AdjustCreditsRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userService.AdjustCredits(c.Request.Context(), id, req.Delta)
	if err != nil {
		respondError(c, err, "adjust credits")
		return
	}
	c.JSON(http.StatusOK, MapUserToAdminResponse(user))
}

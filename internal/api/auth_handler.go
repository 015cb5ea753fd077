package api

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// --- Request/Response Structs ---

// UserResponse excludes sensitive info like password hash and admin notes.
type UserResponse struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Email        string              `json:"email"`
	Role         domain.Role         `json:"role"`
	Credits      int                 `json:"credits"`
	AccessStatus domain.AccessStatus `json:"accessStatus"`
	Height       float64             `json:"height,omitempty"`
	Weight       float64             `json:"weight,omitempty"`
	Birthday     *time.Time          `json:"birthday,omitempty"`
	Sex          domain.Sex          `json:"sex,omitempty"`
	MemberSince  time.Time           `json:"memberSince"`
	LastActive   *time.Time          `json:"lastActive,omitempty"`
	CreatedAt    time.Time           `json:"createdAt"`
}

// AdminUserResponse adds the fields only the admin portal sees.
type AdminUserResponse struct {
	UserResponse
	Observations string    `json:"observations,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// --- Handler Methods ---

// Register godoc
// @Summary Register a new member
// @Description Creates a member account. Staff accounts are created from the admin portal.
// @Tags Auth
// @Accept json
// @Produce json
// @Param user body service.RegisterInput true "Registration details"
// @Success 201 {object} UserResponse "User created successfully"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 409 {object} gin.H "Conflict (email already exists)"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterInput
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "register")
		return
	}
	c.JSON(http.StatusCreated, MapUserToResponse(user))
}

// Login godoc
// @Summary Log in a user
// @Description Authenticates a user and returns a JWT token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body service.LoginInput true "Login credentials"
// @Success 200 {object} LoginResponse "Login successful"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 401 {object} gin.H "Unauthorized (invalid credentials)"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginInput
	if !bindJSON(c, &req) {
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "log in")
		return
	}
	c.JSON(http.StatusOK, LoginResponse{
		Token: token,
		User:  MapUserToResponse(user),
	})
}

// Logout godoc
// @Summary Log out
// @Description Revokes the bearer token used for this request.
// @Tags Auth
// @Security BearerAuth
// @Success 204 "Logged out"
// @Failure 401 {object} gin.H "Unauthorized"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claimsRaw, _ := c.Get(ContextClaimsKey)
	claims, _ := claimsRaw.(*service.Claims)
	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		respondError(c, err, "log out")
		return
	}
	c.Status(http.StatusNoContent)
}

// MapUserToResponse converts a domain User to a UserResponse DTO.
func MapUserToResponse(user *domain.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}
	return UserResponse{
		ID:           user.ID.Hex(),
		Name:         user.Name,
		Email:        user.Email,
		Role:         user.Role,
		Credits:      user.Credits,
		AccessStatus: user.AccessStatus,
		Height:       user.Height,
		Weight:       user.Weight,
		Birthday:     user.Birthday,
		Sex:          user.Sex,
		MemberSince:  user.MemberSince,
		LastActive:   user.LastActive,
		CreatedAt:    user.CreatedAt,
	}
}

func MapUserToAdminResponse(user *domain.User) AdminUserResponse {
	if user == nil {
		return AdminUserResponse{}
	}
	return AdminUserResponse{
		UserResponse: MapUserToResponse(user),
		Observations: user.Observations,
		UpdatedAt:    user.UpdatedAt,
	}
}

// MapUsersToAdminResponse converts a slice of domain.User to AdminUserResponse DTOs.
func MapUsersToAdminResponse(users []domain.User) []AdminUserResponse {
	out := make([]AdminUserResponse, len(users))
	for i := range users {
		out[i] = MapUserToAdminResponse(&users[i])
	}
	return out
}

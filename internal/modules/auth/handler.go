package auth

import (
	"errors"
	"net/http"

	"docvault/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Handler manages all HTTP interactions for authentication
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	protected.GET("/users/me", h.GetMe)
}

// Register godoc
// @Summary Register a new user
// @Description Creates a user account with a bcrypt-hashed password and an optional department.
// @Tags Auth
// @Param request body RegisterRequest true "username, password, role, department_id"
// @Success 201 {object} map[string]interface{}
// @Failure 400,409,500 {object} map[string]interface{}
// @Router /auth/register [POST]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrUsernameTaken):
			response.Error(c, http.StatusConflict, "USERNAME_TAKEN", "This username is already registered")
		case errors.Is(err, ErrUnknownDepartment):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Department does not exist")
		default:
			response.Error(c, http.StatusInternalServerError, "REGISTRATION_FAILED", "Failed to register user")
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"user": UserResponse{
			ID:           user.ID,
			Username:     user.Username,
			Role:         user.Role,
			DepartmentID: user.DepartmentID,
		},
	})
}

// Login godoc
// @Summary Log in and obtain a bearer token
// @Tags Auth
// @Param request body LoginRequest true "username, password"
// @Success 200 {object} map[string]interface{}
// @Failure 400,401,500 {object} map[string]interface{}
// @Router /auth/login [POST]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	user, token, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Username or password is incorrect")
			return
		}
		response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "Failed to login")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user": UserResponse{
			ID:           user.ID,
			Username:     user.Username,
			Role:         user.Role,
			DepartmentID: user.DepartmentID,
		},
		"token": token,
	})
}

func (h *Handler) GetMe(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	user, err := h.service.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user": UserResponse{
			ID:           user.ID,
			Username:     user.Username,
			Role:         user.Role,
			DepartmentID: user.DepartmentID,
		},
	})
}

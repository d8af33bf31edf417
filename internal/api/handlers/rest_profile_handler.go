package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ylvish/torque/internal/services"
)

// RestProfileHandler handles REST requests for staff accounts and sessions.
type RestProfileHandler struct {
	profileService services.IProfileService
}

// NewRestProfileHandler creates a new RestProfileHandler.
func NewRestProfileHandler(profileService services.IProfileService) *RestProfileHandler {
	return &RestProfileHandler{profileService: profileService}
}

// signInRequest is the staff login body.
type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignIn handles POST /v1/auth/signin.
func (h *RestProfileHandler) SignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	token, profile, err := h.profileService.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"profile": profile,
	})
}

// GetMe handles GET /v1/staff/me. The profile's password hash never
// serializes; the json tag on the model strips it.
func (h *RestProfileHandler) GetMe(c *gin.Context) {
	userID, ok := staffIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	profile, err := h.profileService.FindByID(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// ListEmployees handles GET /v1/staff/employees (CEO only).
func (h *RestProfileHandler) ListEmployees(c *gin.Context) {
	employees, err := h.profileService.ListEmployees(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": employees})
}

package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ylvish/torque/internal/config"
	"github.com/ylvish/torque/internal/services"
)

// AdminHandler serves the ops endpoints that seed and repair staff accounts.
// They are gated by a shared secret, not by JWT, so they work on an empty
// database.
type AdminHandler struct {
	cfg            *config.Config
	profileService services.IProfileService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(cfg *config.Config, profileService services.IProfileService) *AdminHandler {
	return &AdminHandler{
		cfg:            cfg,
		profileService: profileService,
	}
}

// RequireAdminSecret gates a route group on "Authorization: Bearer <secret>".
// When no secret is configured the endpoints are disabled outright.
func (h *AdminHandler) RequireAdminSecret() gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.cfg.AdminSecret == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Admin endpoints are not configured"})
			return
		}

		authHeader := c.GetHeader("Authorization")
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(h.cfg.AdminSecret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid admin secret"})
			return
		}

		c.Next()
	}
}

// SeedStaff handles POST /v1/admin/seed-staff. It reads the staff roster file
// from disk and creates each account, reporting per-account results instead
// of failing the whole batch.
func (h *AdminHandler) SeedStaff(c *gin.Context) {
	data, err := os.ReadFile(h.cfg.StaffAccountsPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read staff accounts file"})
		return
	}

	var accounts []services.StaffAccount
	if err := json.Unmarshal(data, &accounts); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse staff accounts file"})
		return
	}
	if len(accounts) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Staff accounts file is empty"})
		return
	}

	results := make([]services.SeedResult, 0, len(accounts))
	for _, account := range accounts {
		result := services.SeedResult{Email: account.Email, Status: "created"}
		if _, err := h.profileService.CreateStaffAccount(c.Request.Context(), account); err != nil {
			if errors.Is(err, services.ErrConflict) {
				result.Status = "exists"
			} else {
				result.Status = "failed"
				result.Error = err.Error()
			}
		}
		results = append(results, result)
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// fixUserRequest identifies the roster entry to repair.
type fixUserRequest struct {
	Email string `json:"email"`
}

// FixUser handles POST /v1/admin/fix-user. It re-applies the roster entry for
// one account, creating it if missing or resetting it if drifted.
func (h *AdminHandler) FixUser(c *gin.Context) {
	var req fixUserRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
		return
	}

	data, err := os.ReadFile(h.cfg.StaffAccountsPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read staff accounts file"})
		return
	}

	var accounts []services.StaffAccount
	if err := json.Unmarshal(data, &accounts); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse staff accounts file"})
		return
	}

	for _, account := range accounts {
		if strings.EqualFold(account.Email, req.Email) {
			profile, err := h.profileService.RepairStaffAccount(c.Request.Context(), account)
			if err != nil {
				respondServiceError(c, err)
				return
			}
			c.JSON(http.StatusOK, profile)
			return
		}
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "Email not present in staff accounts file"})
}

package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ylvish/torque/internal/api/handlers"
	"github.com/ylvish/torque/internal/config"
	"github.com/ylvish/torque/internal/models"
	"github.com/ylvish/torque/internal/services"
)

func writeRosterFile(t *testing.T, accounts []services.StaffAccount) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "staff-accounts.json")
	data, err := json.Marshal(accounts)
	assert.NoError(t, err)
	assert.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func setupAdminRouter(cfg *config.Config, mockSvc *MockProfileService) *gin.Engine {
	handler := handlers.NewAdminHandler(cfg, mockSvc)
	r := gin.New()
	admin := r.Group("/v1/admin")
	admin.Use(handler.RequireAdminSecret())
	admin.POST("/seed-staff", handler.SeedStaff)
	admin.POST("/fix-user", handler.FixUser)
	return r
}

func TestAdminHandler_RejectsMissingSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := new(MockProfileService)
	r := setupAdminRouter(&config.Config{AdminSecret: "s3cret"}, mockSvc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/admin/seed-staff", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockSvc.AssertNotCalled(t, "CreateStaffAccount")
}

func TestAdminHandler_RejectsWrongSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := new(MockProfileService)
	r := setupAdminRouter(&config.Config{AdminSecret: "s3cret"}, mockSvc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/admin/seed-staff", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockSvc.AssertNotCalled(t, "CreateStaffAccount")
}

func TestAdminHandler_DisabledWithoutConfiguredSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := new(MockProfileService)
	r := setupAdminRouter(&config.Config{AdminSecret: ""}, mockSvc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/admin/seed-staff", nil)
	req.Header.Set("Authorization", "Bearer anything")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockSvc.AssertNotCalled(t, "CreateStaffAccount")
}

func TestAdminHandler_SeedStaff_ReportsPerAccount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := new(MockProfileService)

	roster := []services.StaffAccount{
		{Name: "Sara", Email: "sara@torque.example.com", Password: "pw-one", Role: models.RoleCEO},
		{Name: "Omar", Email: "omar@torque.example.com", Password: "pw-two", Role: models.RoleEmployee},
		{Name: "Nida", Email: "nida@torque.example.com", Password: "pw-three", Role: models.RoleEmployee},
	}
	cfg := &config.Config{
		AdminSecret:       "s3cret",
		StaffAccountsPath: writeRosterFile(t, roster),
	}
	r := setupAdminRouter(cfg, mockSvc)

	created := &models.Profile{Email: "sara@torque.example.com", Role: models.RoleCEO}
	created.GenID()
	mockSvc.On("CreateStaffAccount", mock.Anything, roster[0]).Return(created, nil)
	mockSvc.On("CreateStaffAccount", mock.Anything, roster[1]).Return(nil, services.ErrConflict)
	mockSvc.On("CreateStaffAccount", mock.Anything, roster[2]).Return(nil, errors.New("insert failed"))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/admin/seed-staff", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var respBody struct {
		Results []services.SeedResult `json:"results"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Len(t, respBody.Results, 3)
	assert.Equal(t, "created", respBody.Results[0].Status)
	assert.Equal(t, "exists", respBody.Results[1].Status)
	assert.Empty(t, respBody.Results[1].Error)
	assert.Equal(t, "failed", respBody.Results[2].Status)
	assert.Contains(t, respBody.Results[2].Error, "insert failed")
	mockSvc.AssertExpectations(t)
}

func TestAdminHandler_FixUser_NotInRoster(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := new(MockProfileService)

	roster := []services.StaffAccount{
		{Name: "Sara", Email: "sara@torque.example.com", Password: "pw-one", Role: models.RoleCEO},
	}
	cfg := &config.Config{
		AdminSecret:       "s3cret",
		StaffAccountsPath: writeRosterFile(t, roster),
	}
	r := setupAdminRouter(cfg, mockSvc)

	body, _ := json.Marshal(map[string]string{"email": "ghost@torque.example.com"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/admin/fix-user", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer s3cret")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockSvc.AssertNotCalled(t, "RepairStaffAccount")
}

func TestAdminHandler_FixUser_RepairsRosterEntry(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := new(MockProfileService)

	roster := []services.StaffAccount{
		{Name: "Sara", Email: "sara@torque.example.com", Password: "pw-one", Role: models.RoleCEO},
	}
	cfg := &config.Config{
		AdminSecret:       "s3cret",
		StaffAccountsPath: writeRosterFile(t, roster),
	}
	r := setupAdminRouter(cfg, mockSvc)

	repaired := &models.Profile{Email: "sara@torque.example.com", Role: models.RoleCEO}
	repaired.GenID()
	mockSvc.On("RepairStaffAccount", mock.Anything, roster[0]).Return(repaired, nil)

	body, _ := json.Marshal(map[string]string{"email": "SARA@torque.example.com"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/admin/fix-user", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer s3cret")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

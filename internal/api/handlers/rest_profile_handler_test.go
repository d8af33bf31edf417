package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ylvish/torque/internal/api/handlers"
	"github.com/ylvish/torque/internal/api/middleware"
	"github.com/ylvish/torque/internal/models"
	"github.com/ylvish/torque/internal/services"
	"github.com/ylvish/torque/internal/utils"
)

func TestRestProfileHandler_SignIn_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := new(MockProfileService)
	handler := handlers.NewRestProfileHandler(mockSvc)

	r := gin.New()
	r.POST("/v1/auth/signin", handler.SignIn)

	profile := &models.Profile{
		Email: "sara@torque.example.com",
		Name:  "Sara",
		Role:  models.RoleEmployee,
	}
	profile.GenID()
	mockSvc.On("SignIn", mock.Anything, "sara@torque.example.com", "correct-horse").
		Return("signed.jwt.token", profile, nil)

	body, _ := json.Marshal(map[string]string{
		"email":    "sara@torque.example.com",
		"password": "correct-horse",
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/auth/signin", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var respBody map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Equal(t, "signed.jwt.token", respBody["token"])
	// The hash must never serialize, even through the success path.
	assert.NotContains(t, w.Body.String(), "password")
	mockSvc.AssertExpectations(t)
}

func TestRestProfileHandler_SignIn_BadCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := new(MockProfileService)
	handler := handlers.NewRestProfileHandler(mockSvc)

	r := gin.New()
	r.POST("/v1/auth/signin", handler.SignIn)

	mockSvc.On("SignIn", mock.Anything, "sara@torque.example.com", "wrong").
		Return("", nil, services.ErrForbidden)

	body, _ := json.Marshal(map[string]string{
		"email":    "sara@torque.example.com",
		"password": "wrong",
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/auth/signin", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestRestProfileHandler_SignIn_MissingFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := new(MockProfileService)
	handler := handlers.NewRestProfileHandler(mockSvc)

	r := gin.New()
	r.POST("/v1/auth/signin", handler.SignIn)

	body, _ := json.Marshal(map[string]string{"email": "sara@torque.example.com"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/auth/signin", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "SignIn")
}

func TestRestProfileHandler_ListEmployees_BlockedForEmployeeRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := new(MockProfileService)
	handler := handlers.NewRestProfileHandler(mockSvc)

	staffID := utils.NewSixID()
	r := gin.New()
	r.GET("/v1/staff/employees",
		withStaffContext(staffID, models.RoleEmployee),
		middleware.CEOMiddleware(),
		handler.ListEmployees)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/staff/employees", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	mockSvc.AssertNotCalled(t, "ListEmployees")
}

func TestRestProfileHandler_ListEmployees_CEO(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := new(MockProfileService)
	handler := handlers.NewRestProfileHandler(mockSvc)

	staffID := utils.NewSixID()
	r := gin.New()
	r.GET("/v1/staff/employees",
		withStaffContext(staffID, models.RoleCEO),
		middleware.CEOMiddleware(),
		handler.ListEmployees)

	employee := models.Profile{
		Email: "omar@torque.example.com",
		Name:  "Omar",
		Role:  models.RoleEmployee,
	}
	employee.GenID()
	employee.PasswordHash = "$2a$10$notarealbcrypthashvalue"
	mockSvc.On("ListEmployees", mock.Anything).Return([]models.Profile{employee}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/staff/employees", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	// The roster response never carries password material.
	assert.False(t, strings.Contains(w.Body.String(), "$2a$10$"))
	mockSvc.AssertExpectations(t)
}

func TestRestProfileHandler_GetMe_MissingContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := new(MockProfileService)
	handler := handlers.NewRestProfileHandler(mockSvc)

	r := gin.New()
	r.GET("/v1/staff/me", handler.GetMe)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/staff/me", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockSvc.AssertNotCalled(t, "FindByID")
}

package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ylvish/torque/internal/api/handlers"
	"github.com/ylvish/torque/internal/config"
	"github.com/ylvish/torque/internal/models"
	"github.com/ylvish/torque/internal/services"
	"github.com/ylvish/torque/internal/utils"
)

func testConfig() *config.Config {
	return &config.Config{
		PublicListLimit: 50,
		ListingYearMin:  1980,
	}
}

func TestRestListingHandler_GetListingByID_PublicView(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := new(MockListingService)
	handler := handlers.NewRestListingHandler(mockSvc, testConfig())

	r := gin.New()
	r.GET("/v1/listings/:id", handler.GetListingByID)

	listingID := utils.NewSixID()
	expected := &models.Listing{
		Status: models.ListingActive,
		Make:   "Toyota",
		Model:  "Corolla",
		Year:   2021,
		Price:  4850000,
	}
	expected.SetID(listingID)
	mockSvc.On("FindListingByID", mock.Anything, listingID, true).Return(expected, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/listings/"+listingID.String(), nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var respBody models.Listing
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Equal(t, "Toyota", respBody.Make)
	mockSvc.AssertExpectations(t)
}

func TestRestListingHandler_GetListingByID_DraftHiddenFromPublic(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := new(MockListingService)
	handler := handlers.NewRestListingHandler(mockSvc, testConfig())

	r := gin.New()
	r.GET("/v1/listings/:id", handler.GetListingByID)

	listingID := utils.NewSixID()
	mockSvc.On("FindListingByID", mock.Anything, listingID, true).Return(nil, services.ErrNotFound)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/listings/"+listingID.String(), nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestRestListingHandler_SearchListings_ParsesFilters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := new(MockListingService)
	handler := handlers.NewRestListingHandler(mockSvc, testConfig())

	r := gin.New()
	r.GET("/v1/listings/search", handler.SearchListings)

	expectedFilters := models.ListingFilters{
		Make:     "Honda",
		City:     "Karachi",
		FuelType: models.FuelPetrol,
		YearMin:  2018,
		PriceMax: 5000000,
	}
	mockSvc.On("SearchListings", mock.Anything, expectedFilters, models.SortPriceLow, 50).
		Return([]models.Listing{}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/listings/search?make=Honda&city=Karachi&fuel_type=PETROL&year_min=2018&price_max=5000000&sort=price_low", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestRestListingHandler_SearchListings_InvalidFuelType(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := new(MockListingService)
	handler := handlers.NewRestListingHandler(mockSvc, testConfig())

	r := gin.New()
	r.GET("/v1/listings/search", handler.SearchListings)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/listings/search?fuel_type=NUCLEAR", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "SearchListings")
}

func TestRestListingHandler_PublishListing_NonDraft(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := new(MockListingService)
	handler := handlers.NewRestListingHandler(mockSvc, testConfig())

	staffID := utils.NewSixID()
	r := gin.New()
	r.POST("/v1/staff/listings/:id/publish", withStaffContext(staffID, models.RoleEmployee), handler.PublishListing)

	listingID := utils.NewSixID()
	mockSvc.On("PublishListing", mock.Anything, listingID, staffID).Return(services.ErrConflict)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/staff/listings/"+listingID.String()+"/publish", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestRestListingHandler_UpdateListing_EmptyBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := new(MockListingService)
	handler := handlers.NewRestListingHandler(mockSvc, testConfig())

	r := gin.New()
	r.PATCH("/v1/staff/listings/:id", handler.UpdateListing)

	listingID := utils.NewSixID()
	body, _ := json.Marshal(map[string]interface{}{})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PATCH", "/v1/staff/listings/"+listingID.String(), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "UpdateListing")
}

func TestRestListingHandler_DeleteListing_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := new(MockListingService)
	handler := handlers.NewRestListingHandler(mockSvc, testConfig())

	r := gin.New()
	r.DELETE("/v1/staff/listings/:id", handler.DeleteListing)

	listingID := utils.NewSixID()
	mockSvc.On("DeleteListing", mock.Anything, listingID).Return(nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/v1/staff/listings/"+listingID.String(), nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	mockSvc.AssertExpectations(t)
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ylvish/torque/internal/config"
	"github.com/ylvish/torque/internal/models"
	"github.com/ylvish/torque/internal/services"
	"github.com/ylvish/torque/internal/utils"
)

// RestListingHandler handles REST requests for listings.
type RestListingHandler struct {
	listingService services.IListingService
	cfg            *config.Config
}

// NewRestListingHandler creates a new RestListingHandler.
func NewRestListingHandler(listingService services.IListingService, cfg *config.Config) *RestListingHandler {
	return &RestListingHandler{
		listingService: listingService,
		cfg:            cfg,
	}
}

func (h *RestListingHandler) parseLimit(c *gin.Context) int {
	limitStr := c.DefaultQuery("limit", strconv.Itoa(h.cfg.PublicListLimit))
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 || limit > 200 {
		limit = h.cfg.PublicListLimit
	}
	return limit
}

// BrowseListings handles GET /v1/listings (public). Only ACTIVE inventory is
// visible here.
func (h *RestListingHandler) BrowseListings(c *gin.Context) {
	listings, err := h.listingService.ListListings(c.Request.Context(), nil, h.parseLimit(c), true)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": listings})
}

// SearchListings handles GET /v1/listings/search (public).
func (h *RestListingHandler) SearchListings(c *gin.Context) {
	filters := models.ListingFilters{
		Make:  c.Query("make"),
		Model: c.Query("model"),
		City:  c.Query("city"),
	}

	if fuel := c.Query("fuel_type"); fuel != "" {
		ft := models.FuelType(fuel)
		if !models.ValidFuelType(ft) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid fuel_type filter"})
			return
		}
		filters.FuelType = ft
	}
	if tr := c.Query("transmission"); tr != "" {
		t := models.Transmission(tr)
		if !models.ValidTransmission(t) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid transmission filter"})
			return
		}
		filters.Transmission = t
	}

	parseInt := func(key string) int {
		v, err := strconv.Atoi(c.Query(key))
		if err != nil || v < 0 {
			return 0
		}
		return v
	}
	parseInt64 := func(key string) int64 {
		v, err := strconv.ParseInt(c.Query(key), 10, 64)
		if err != nil || v < 0 {
			return 0
		}
		return v
	}
	filters.YearMin = parseInt("year_min")
	filters.YearMax = parseInt("year_max")
	filters.MileageMax = parseInt("mileage_max")
	filters.PriceMin = parseInt64("price_min")
	filters.PriceMax = parseInt64("price_max")

	listings, err := h.listingService.SearchListings(c.Request.Context(), filters, c.Query("sort"), h.parseLimit(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": listings})
}

// GetListingByID handles GET /v1/listings/:id (public). Each successful view
// bumps the listing's view counter.
func (h *RestListingHandler) GetListingByID(c *gin.Context) {
	id, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID format"})
		return
	}

	listing, err := h.listingService.FindListingByID(c.Request.Context(), id, true)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// --- Staff endpoints ---

// listingRequest is the staff listing-creation body.
type listingRequest struct {
	Status models.ListingStatus `json:"status"`

	Make             string              `json:"make"`
	Model            string              `json:"model"`
	Year             int                 `json:"year"`
	Variant          string              `json:"variant"`
	FuelType         models.FuelType     `json:"fuel_type"`
	Transmission     models.Transmission `json:"transmission"`
	Mileage          int                 `json:"mileage"`
	RegistrationCity string              `json:"registration_city"`
	Owners           int                 `json:"owners"`

	Price             int64  `json:"price"`
	Description       string `json:"description"`
	WhyWeLikeIt       string `json:"why_we_like_it"`
	InspectionSummary string `json:"inspection_summary"`

	GalleryImages []string `json:"gallery_images"`
}

// StaffListListings handles GET /v1/staff/listings with an optional
// ?status= filter. Staff see every status, not just ACTIVE.
func (h *RestListingHandler) StaffListListings(c *gin.Context) {
	var status *models.ListingStatus
	if statusStr := c.Query("status"); statusStr != "" {
		s := models.ListingStatus(statusStr)
		if !models.ValidListingStatus(s) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
			return
		}
		status = &s
	}

	listings, err := h.listingService.ListListings(c.Request.Context(), status, h.parseLimit(c), false)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": listings})
}

// StaffGetListingByID handles GET /v1/staff/listings/:id (any status, no
// view-count bump).
func (h *RestListingHandler) StaffGetListingByID(c *gin.Context) {
	id, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID format"})
		return
	}

	listing, err := h.listingService.FindListingByID(c.Request.Context(), id, false)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// CreateListing handles POST /v1/staff/listings.
func (h *RestListingHandler) CreateListing(c *gin.Context) {
	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	listing, err := h.listingService.CreateListing(c.Request.Context(), services.ListingInput{
		Status:            req.Status,
		Make:              req.Make,
		Model:             req.Model,
		Year:              req.Year,
		Variant:           req.Variant,
		FuelType:          req.FuelType,
		Transmission:      req.Transmission,
		Mileage:           req.Mileage,
		RegistrationCity:  req.RegistrationCity,
		Owners:            req.Owners,
		Price:             req.Price,
		Description:       req.Description,
		WhyWeLikeIt:       req.WhyWeLikeIt,
		InspectionSummary: req.InspectionSummary,
		GalleryImages:     req.GalleryImages,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, listing)
}

// UpdateListing handles PATCH /v1/staff/listings/:id with a partial update
// body. Unknown fields are rejected.
func (h *RestListingHandler) UpdateListing(c *gin.Context) {
	id, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID format"})
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Empty update body"})
		return
	}

	listing, err := h.listingService.UpdateListing(c.Request.Context(), id, updates)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// PublishListing handles POST /v1/staff/listings/:id/publish. Only DRAFT
// listings can go live.
func (h *RestListingHandler) PublishListing(c *gin.Context) {
	id, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID format"})
		return
	}

	staffID, ok := staffIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	if err := h.listingService.PublishListing(c.Request.Context(), id, staffID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": models.ListingActive})
}

// DeleteListing handles DELETE /v1/staff/listings/:id.
func (h *RestListingHandler) DeleteListing(c *gin.Context) {
	id, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID format"})
		return
	}

	if err := h.listingService.DeleteListing(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

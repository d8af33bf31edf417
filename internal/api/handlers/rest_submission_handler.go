package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"github.com/ylvish/torque/internal/models"
	"github.com/ylvish/torque/internal/services"
	"github.com/ylvish/torque/internal/tasks"
	"github.com/ylvish/torque/internal/utils"
)

// RestSubmissionHandler handles REST requests for seller submissions.
type RestSubmissionHandler struct {
	submissionService services.ISubmissionService
	taskClient        *asynq.Client
}

// NewRestSubmissionHandler creates a new RestSubmissionHandler.
func NewRestSubmissionHandler(submissionService services.ISubmissionService, taskClient *asynq.Client) *RestSubmissionHandler {
	return &RestSubmissionHandler{
		submissionService: submissionService,
		taskClient:        taskClient,
	}
}

// submissionRequest is the public intake form body.
type submissionRequest struct {
	SellerName           string `json:"seller_name"`
	SellerPhone          string `json:"seller_phone"`
	SellerEmail          string `json:"seller_email"`
	SellerCity           string `json:"seller_city"`
	PreferredContactTime string `json:"preferred_contact_time"`
	WhatsappConsent      *bool  `json:"whatsapp_consent"`

	Make             string              `json:"make"`
	Model            string              `json:"model"`
	Year             int                 `json:"year"`
	Variant          string              `json:"variant"`
	FuelType         models.FuelType     `json:"fuel_type"`
	Transmission     models.Transmission `json:"transmission"`
	Mileage          int                 `json:"mileage"`
	RegistrationCity string              `json:"registration_city"`

	Owners          int    `json:"owners"`
	AccidentHistory bool   `json:"accident_history"`
	ServiceHistory  string `json:"service_history"`
	InsuranceStatus string `json:"insurance_status"`
	SellingReason   string `json:"selling_reason"`

	Photos    []string `json:"photos"`
	Documents []string `json:"documents"`
}

// CreateSubmission handles POST /v1/submissions (public, captcha-protected).
func (h *RestSubmissionHandler) CreateSubmission(c *gin.Context) {
	var req submissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	input := services.SubmissionInput{
		SellerName:           req.SellerName,
		SellerPhone:          req.SellerPhone,
		SellerEmail:          req.SellerEmail,
		SellerCity:           req.SellerCity,
		PreferredContactTime: req.PreferredContactTime,
		WhatsappConsent:      req.WhatsappConsent,
		Make:                 req.Make,
		Model:                req.Model,
		Year:                 req.Year,
		Variant:              req.Variant,
		FuelType:             req.FuelType,
		Transmission:         req.Transmission,
		Mileage:              req.Mileage,
		RegistrationCity:     req.RegistrationCity,
		Owners:               req.Owners,
		AccidentHistory:      req.AccidentHistory,
		ServiceHistory:       req.ServiceHistory,
		InsuranceStatus:      req.InsuranceStatus,
		SellingReason:        req.SellingReason,
		Photos:               req.Photos,
		Documents:            req.Documents,
	}

	// Attach the seller's account when the form was submitted logged in.
	if userID, ok := staffIDFromContext(c); ok {
		input.UserID = &userID
	}

	submission, err := h.submissionService.CreateSubmission(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if h.taskClient != nil {
		err := tasks.EnqueueSubmissionNotify(h.taskClient, tasks.SubmissionNotifyPayload{
			SubmissionID: submission.ID.String(),
			ReferenceID:  submission.ReferenceID,
			SellerName:   submission.SellerName,
			CarMake:      submission.Make,
			CarModel:     submission.Model,
			CarYear:      submission.Year,
		})
		if err != nil {
			// The submission is stored; a lost notification is not fatal.
			log.Printf("Failed to enqueue submission notification for %s: %v", submission.ReferenceID, err)
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"reference_id": submission.ReferenceID,
		"status":       submission.Status,
	})
}

// ListSubmissions handles GET /v1/staff/submissions with an optional
// ?status= filter.
func (h *RestSubmissionHandler) ListSubmissions(c *gin.Context) {
	var status *models.SubmissionStatus
	if statusStr := c.Query("status"); statusStr != "" {
		s := models.SubmissionStatus(statusStr)
		if !models.ValidSubmissionStatus(s) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
			return
		}
		status = &s
	}

	submissions, err := h.submissionService.ListSubmissions(c.Request.Context(), status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": submissions})
}

// GetSubmissionByID handles GET /v1/staff/submissions/:id.
func (h *RestSubmissionHandler) GetSubmissionByID(c *gin.Context) {
	id, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID format"})
		return
	}

	submission, err := h.submissionService.FindSubmissionByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, submission)
}

// statusUpdateRequest carries a review-state transition.
type statusUpdateRequest struct {
	Status models.SubmissionStatus `json:"status"`
	Note   string                  `json:"note"`
	Force  bool                    `json:"force"`
}

// UpdateStatus handles PATCH /v1/staff/submissions/:id/status.
func (h *RestSubmissionHandler) UpdateStatus(c *gin.Context) {
	id, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID format"})
		return
	}

	staffID, ok := staffIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	submission, err := h.submissionService.UpdateStatus(c.Request.Context(), id, staffID, req.Status, req.Note, req.Force)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, submission)
}

// assignRequest carries an assignment change. A null assignee unassigns.
type assignRequest struct {
	AssignedTo *string `json:"assigned_to"`
}

// AssignSubmission handles PATCH /v1/staff/submissions/:id/assign.
func (h *RestSubmissionHandler) AssignSubmission(c *gin.Context) {
	id, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID format"})
		return
	}

	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var staffID *utils.SixID
	if req.AssignedTo != nil && *req.AssignedTo != "" {
		parsed, err := utils.ParseSixID(*req.AssignedTo)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignee ID format"})
			return
		}
		staffID = &parsed
	}

	if err := h.submissionService.AssignSubmission(c.Request.Context(), id, staffID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assigned_to": req.AssignedTo})
}

// promoteRequest carries the commercial fields for listing promotion.
type promoteRequest struct {
	Price             int64  `json:"price"`
	Description       string `json:"description"`
	WhyWeLikeIt       string `json:"why_we_like_it"`
	InspectionSummary string `json:"inspection_summary"`
}

// PromoteSubmission handles POST /v1/staff/submissions/:id/promote.
func (h *RestSubmissionHandler) PromoteSubmission(c *gin.Context) {
	id, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid submission ID format"})
		return
	}

	staffID, ok := staffIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req promoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	listing, err := h.submissionService.PromoteToListing(c.Request.Context(), id, staffID, services.PromotionInput{
		Price:             req.Price,
		Description:       req.Description,
		WhyWeLikeIt:       req.WhyWeLikeIt,
		InspectionSummary: req.InspectionSummary,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, listing)
}

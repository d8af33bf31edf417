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

// RestLeadHandler handles REST requests for buyer leads.
type RestLeadHandler struct {
	leadService    services.ILeadService
	listingService services.IListingService
	taskClient     *asynq.Client
}

// NewRestLeadHandler creates a new RestLeadHandler.
func NewRestLeadHandler(leadService services.ILeadService, listingService services.IListingService, taskClient *asynq.Client) *RestLeadHandler {
	return &RestLeadHandler{
		leadService:    leadService,
		listingService: listingService,
		taskClient:     taskClient,
	}
}

// leadRequest is the public inquiry form body. Any client-supplied status is
// ignored; new leads always start as NEW.
type leadRequest struct {
	BuyerName  string              `json:"buyer_name"`
	BuyerEmail string              `json:"buyer_email"`
	BuyerPhone string              `json:"buyer_phone"`
	Message    string              `json:"message"`
	Interest   models.LeadInterest `json:"interest"`
}

// CreateLead handles POST /v1/listings/:id/leads (public, captcha-protected).
func (h *RestLeadHandler) CreateLead(c *gin.Context) {
	listingID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing ID format"})
		return
	}

	var req leadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	lead, err := h.leadService.CreateLead(c.Request.Context(), listingID, services.LeadInput{
		BuyerName:  req.BuyerName,
		BuyerEmail: req.BuyerEmail,
		BuyerPhone: req.BuyerPhone,
		Message:    req.Message,
		Interest:   req.Interest,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if h.taskClient != nil {
		title := ""
		if listing, lerr := h.listingService.FindListingByID(c.Request.Context(), listingID, false); lerr == nil {
			title = listing.Title()
		}
		err := tasks.EnqueueLeadNotify(h.taskClient, tasks.LeadNotifyPayload{
			LeadID:       lead.ID.String(),
			ListingID:    listingID.String(),
			BuyerName:    lead.BuyerName,
			Interest:     string(lead.Interest),
			ListingTitle: title,
		})
		if err != nil {
			log.Printf("Failed to enqueue lead notification for %s: %v", lead.ID.String(), err)
		}
	}

	c.JSON(http.StatusCreated, gin.H{"id": lead.ID, "status": lead.Status})
}

// ListLeads handles GET /v1/staff/leads with an optional ?status= filter.
// Results carry joined listing and assignee summaries.
func (h *RestLeadHandler) ListLeads(c *gin.Context) {
	var status *models.LeadStatus
	if statusStr := c.Query("status"); statusStr != "" {
		s := models.LeadStatus(statusStr)
		if !models.ValidLeadStatus(s) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
			return
		}
		status = &s
	}

	leads, err := h.leadService.ListLeads(c.Request.Context(), status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": leads})
}

// leadStatusRequest carries a pipeline-state change.
type leadStatusRequest struct {
	Status models.LeadStatus `json:"status"`
}

// UpdateLeadStatus handles PATCH /v1/staff/leads/:id/status.
func (h *RestLeadHandler) UpdateLeadStatus(c *gin.Context) {
	id, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lead ID format"})
		return
	}

	var req leadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.leadService.UpdateLeadStatus(c.Request.Context(), id, req.Status); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}

// AssignLead handles PATCH /v1/staff/leads/:id/assign.
func (h *RestLeadHandler) AssignLead(c *gin.Context) {
	id, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lead ID format"})
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

	if err := h.leadService.AssignLead(c.Request.Context(), id, staffID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assigned_to": req.AssignedTo})
}

// DeleteLead handles DELETE /v1/staff/leads/:id.
func (h *RestLeadHandler) DeleteLead(c *gin.Context) {
	id, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lead ID format"})
		return
	}

	lead, err := h.leadService.DeleteLead(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// The guarded decrement can under-count; a low-priority recount keeps the
	// denormalized counter honest.
	if h.taskClient != nil {
		if err := tasks.EnqueueLeadRecount(h.taskClient, tasks.LeadRecountPayload{ListingID: lead.ListingID.String()}); err != nil {
			log.Printf("Failed to enqueue lead recount for listing %s: %v", lead.ListingID.String(), err)
		}
	}

	c.Status(http.StatusNoContent)
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ylvish/torque/internal/config"
	"github.com/ylvish/torque/internal/db"
	"github.com/ylvish/torque/internal/models"
	"github.com/ylvish/torque/internal/utils"
)

// LeadInput carries a buyer inquiry from the listing detail page.
type LeadInput struct {
	BuyerName  string
	BuyerEmail string
	BuyerPhone string
	Message    string
	Interest   models.LeadInterest
}

// ILeadService defines the interface for lead operations.
type ILeadService interface {
	CreateLead(ctx context.Context, listingID utils.SixID, input LeadInput) (*models.Lead, error)
	ListLeads(ctx context.Context, status *models.LeadStatus) ([]models.LeadWithRefs, error)
	UpdateLeadStatus(ctx context.Context, id utils.SixID, status models.LeadStatus) error
	AssignLead(ctx context.Context, id utils.SixID, staffID *utils.SixID) error
	DeleteLead(ctx context.Context, id utils.SixID) (*models.Lead, error)
}

const leadsCollection = "leads"

type leadService struct {
	db  *mongo.Database
	cfg *config.Config
}

// NewLeadService creates a new LeadService.
func NewLeadService(db *mongo.Database, cfg *config.Config) ILeadService {
	return &leadService{db: db, cfg: cfg}
}

// CreateLead records a buyer inquiry against an ACTIVE listing. The status is
// forced to NEW regardless of anything the caller supplies.
func (s *leadService) CreateLead(ctx context.Context, listingID utils.SixID, input LeadInput) (*models.Lead, error) {
	switch {
	case input.BuyerName == "":
		return nil, fmt.Errorf("%w: buyer_name is required", ErrValidation)
	case input.BuyerEmail == "":
		return nil, fmt.Errorf("%w: buyer_email is required", ErrValidation)
	case input.BuyerPhone == "":
		return nil, fmt.Errorf("%w: buyer_phone is required", ErrValidation)
	}
	if !models.ValidLeadInterest(input.Interest) {
		return nil, fmt.Errorf("%w: unknown interest %q", ErrValidation, input.Interest)
	}

	// The listing must resolve and be publicly visible.
	err := s.db.Collection(listingsCollection).
		FindOne(ctx, bson.M{"_id": listingID, "status": models.ListingActive}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: listing %s does not resolve", ErrValidation, listingID.String())
		}
		return nil, fmt.Errorf("error checking listing %s: %w", listingID.String(), err)
	}

	now := time.Now().UTC()
	lead := &models.Lead{
		ListingID:  listingID,
		Status:     models.LeadNew,
		Interest:   input.Interest,
		BuyerName:  input.BuyerName,
		BuyerEmail: input.BuyerEmail,
		BuyerPhone: input.BuyerPhone,
		Message:    input.Message,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := db.InsertOne(ctx, s.db.Collection(leadsCollection), lead); err != nil {
		return nil, fmt.Errorf("failed to insert lead after multiple retries: %w", err)
	}

	// lead_count is a cache; a lost increment is reconciled by the recount task.
	if _, incErr := s.db.Collection(listingsCollection).UpdateOne(ctx,
		bson.M{"_id": listingID}, bson.M{"$inc": bson.M{"lead_count": 1}}); incErr != nil {
		log.Printf("lead_count increment failed for listing %s: %v", listingID.String(), incErr)
	}

	return lead, nil
}

// ListLeads returns leads newest-first, joined with a listing summary and the
// assignee profile for dashboard display.
func (s *leadService) ListLeads(ctx context.Context, status *models.LeadStatus) ([]models.LeadWithRefs, error) {
	match := bson.M{}
	if status != nil {
		match["status"] = *status
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}}}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         listingsCollection,
			"localField":   "listing_id",
			"foreignField": "_id",
			"as":           "listing",
		}}},
		bson.D{{Key: "$unwind", Value: bson.M{"path": "$listing", "preserveNullAndEmptyArrays": true}}},
		bson.D{{Key: "$lookup", Value: bson.M{
			"from":         profilesCollection,
			"localField":   "assigned_to",
			"foreignField": "_id",
			"as":           "assignee",
		}}},
		bson.D{{Key: "$unwind", Value: bson.M{"path": "$assignee", "preserveNullAndEmptyArrays": true}}},
	}

	cursor, err := s.db.Collection(leadsCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer cursor.Close(ctx)

	results := []models.LeadWithRefs{}
	if err = cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode leads: %w", err)
	}
	return results, nil
}

// UpdateLeadStatus overwrites the lead status. Staff may move a lead between
// any two documented states (abandonment and corrections happen at any
// stage); only undocumented values are rejected.
func (s *leadService) UpdateLeadStatus(ctx context.Context, id utils.SixID, status models.LeadStatus) error {
	if !models.ValidLeadStatus(status) {
		return fmt.Errorf("%w: unknown lead status %q", ErrValidation, status)
	}

	result, err := s.db.Collection(leadsCollection).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}})
	if err != nil {
		return fmt.Errorf("db error updating lead %s: %w", id.String(), err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: lead %s", ErrNotFound, id.String())
	}
	return nil
}

// AssignLead sets or clears the lead assignee.
func (s *leadService) AssignLead(ctx context.Context, id utils.SixID, staffID *utils.SixID) error {
	update := bson.M{"$set": bson.M{"updated_at": time.Now().UTC()}}
	if staffID != nil {
		update["$set"].(bson.M)["assigned_to"] = *staffID
	} else {
		update["$unset"] = bson.M{"assigned_to": ""}
	}

	result, err := s.db.Collection(leadsCollection).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("db error assigning lead %s: %w", id.String(), err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: lead %s", ErrNotFound, id.String())
	}
	return nil
}

// DeleteLead hard-deletes a lead and returns the deleted document so callers
// can reconcile the listing counter. Irreversible, unlike submissions and
// listings which archive through status.
func (s *leadService) DeleteLead(ctx context.Context, id utils.SixID) (*models.Lead, error) {
	var lead models.Lead
	err := s.db.Collection(leadsCollection).FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&lead)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: lead %s", ErrNotFound, id.String())
		}
		return nil, fmt.Errorf("db error deleting lead %s: %w", id.String(), err)
	}

	if _, decErr := s.db.Collection(listingsCollection).UpdateOne(ctx,
		bson.M{"_id": lead.ListingID, "lead_count": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"lead_count": -1}}); decErr != nil {
		log.Printf("lead_count decrement failed for listing %s: %v", lead.ListingID.String(), decErr)
	}
	return &lead, nil
}

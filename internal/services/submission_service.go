package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ylvish/torque/internal/config"
	"github.com/ylvish/torque/internal/db"
	"github.com/ylvish/torque/internal/models"
	"github.com/ylvish/torque/internal/utils"
)

// SubmissionInput carries the seller intake form.
type SubmissionInput struct {
	UserID *utils.SixID

	SellerName           string
	SellerPhone          string
	SellerEmail          string
	SellerCity           string
	PreferredContactTime string
	WhatsappConsent      *bool

	Make             string
	Model            string
	Year             int
	Variant          string
	FuelType         models.FuelType
	Transmission     models.Transmission
	Mileage          int
	RegistrationCity string

	Owners          int
	AccidentHistory bool
	ServiceHistory  string
	InsuranceStatus string
	SellingReason   string

	Photos    []string
	Documents []string
}

// PromotionInput carries the commercial fields staff add when turning an
// approved submission into a draft listing.
type PromotionInput struct {
	Price             int64
	Description       string
	WhyWeLikeIt       string
	InspectionSummary string
}

// ISubmissionService defines the interface for seller-submission operations.
type ISubmissionService interface {
	CreateSubmission(ctx context.Context, input SubmissionInput) (*models.SellerSubmission, error)
	ListSubmissions(ctx context.Context, status *models.SubmissionStatus) ([]models.SellerSubmission, error)
	FindSubmissionByID(ctx context.Context, id utils.SixID) (*models.SellerSubmission, error)
	UpdateStatus(ctx context.Context, id, staffID utils.SixID, newStatus models.SubmissionStatus, note string, force bool) (*models.SellerSubmission, error)
	AssignSubmission(ctx context.Context, id utils.SixID, staffID *utils.SixID) error
	PromoteToListing(ctx context.Context, id, staffID utils.SixID, input PromotionInput) (*models.Listing, error)
}

const submissionsCollection = "seller_submissions"

type submissionService struct {
	db  *mongo.Database
	cfg *config.Config
}

// NewSubmissionService creates a new SubmissionService.
func NewSubmissionService(db *mongo.Database, cfg *config.Config) ISubmissionService {
	return &submissionService{db: db, cfg: cfg}
}

func validateSubmissionInput(input SubmissionInput) error {
	switch {
	case input.SellerName == "":
		return fmt.Errorf("%w: seller_name is required", ErrValidation)
	case input.SellerPhone == "":
		return fmt.Errorf("%w: seller_phone is required", ErrValidation)
	case input.SellerEmail == "":
		return fmt.Errorf("%w: seller_email is required", ErrValidation)
	case input.SellerCity == "":
		return fmt.Errorf("%w: seller_city is required", ErrValidation)
	case input.Make == "":
		return fmt.Errorf("%w: make is required", ErrValidation)
	case input.Model == "":
		return fmt.Errorf("%w: model is required", ErrValidation)
	case input.Year <= 0:
		return fmt.Errorf("%w: year must be positive", ErrValidation)
	case input.Mileage < 0:
		return fmt.Errorf("%w: mileage must not be negative", ErrValidation)
	case input.RegistrationCity == "":
		return fmt.Errorf("%w: registration_city is required", ErrValidation)
	case len(input.Photos) == 0:
		return fmt.Errorf("%w: at least one photo is required", ErrValidation)
	}
	if !models.ValidFuelType(input.FuelType) {
		return fmt.Errorf("%w: unknown fuel_type %q", ErrValidation, input.FuelType)
	}
	if !models.ValidTransmission(input.Transmission) {
		return fmt.Errorf("%w: unknown transmission %q", ErrValidation, input.Transmission)
	}
	return nil
}

// CreateSubmission records a seller intake form as a PENDING_REVIEW submission
// with a fresh reference code. Nothing is persisted when validation fails.
func (s *submissionService) CreateSubmission(ctx context.Context, input SubmissionInput) (*models.SellerSubmission, error) {
	if err := validateSubmissionInput(input); err != nil {
		return nil, err
	}

	owners := input.Owners
	if owners < 1 {
		owners = 1
	}
	consent := true
	if input.WhatsappConsent != nil {
		consent = *input.WhatsappConsent
	}
	documents := input.Documents
	if documents == nil {
		documents = []string{}
	}

	now := time.Now().UTC()
	collection := s.db.Collection(submissionsCollection)

	var submission *models.SellerSubmission
	// Reference codes are random; regenerate on the rare collision.
	operation := func() error {
		submission = &models.SellerSubmission{
			Base:                 models.NewBase(),
			ReferenceID:          utils.NewRefCode(),
			UserID:               input.UserID,
			Status:               models.SubmissionPendingReview,
			SellerName:           input.SellerName,
			SellerPhone:          input.SellerPhone,
			SellerEmail:          input.SellerEmail,
			SellerCity:           input.SellerCity,
			PreferredContactTime: input.PreferredContactTime,
			WhatsappConsent:      consent,
			Make:                 input.Make,
			Model:                input.Model,
			Year:                 input.Year,
			Variant:              input.Variant,
			FuelType:             input.FuelType,
			Transmission:         input.Transmission,
			Mileage:              input.Mileage,
			RegistrationCity:     input.RegistrationCity,
			Owners:               owners,
			AccidentHistory:      input.AccidentHistory,
			ServiceHistory:       input.ServiceHistory,
			InsuranceStatus:      input.InsuranceStatus,
			SellingReason:        input.SellingReason,
			Photos:               input.Photos,
			Documents:            documents,
			StaffNotes:           []models.StaffNote{},
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		_, insertErr := collection.InsertOne(ctx, submission)
		return insertErr
	}

	if err := db.Try(operation); err != nil {
		return nil, fmt.Errorf("failed to insert submission after multiple retries: %w", err)
	}

	return submission, nil
}

// ListSubmissions returns submissions newest-first, optionally filtered by status.
func (s *submissionService) ListSubmissions(ctx context.Context, status *models.SubmissionStatus) ([]models.SellerSubmission, error) {
	filter := bson.M{}
	if status != nil {
		filter["status"] = *status
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := s.db.Collection(submissionsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer cursor.Close(ctx)

	results := []models.SellerSubmission{}
	if err = cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode submissions: %w", err)
	}
	return results, nil
}

// FindSubmissionByID fetches a single submission.
func (s *submissionService) FindSubmissionByID(ctx context.Context, id utils.SixID) (*models.SellerSubmission, error) {
	var submission models.SellerSubmission
	err := s.db.Collection(submissionsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&submission)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: submission %s", ErrNotFound, id.String())
		}
		return nil, fmt.Errorf("error finding submission %s: %w", id.String(), err)
	}
	return &submission, nil
}

// UpdateStatus is the sole path to a submission status change. When a note is
// supplied it is appended atomically with the status write, timestamped and
// attributed to the acting staff member. The review-cycle graph is enforced
// unless force is set (staff override).
func (s *submissionService) UpdateStatus(ctx context.Context, id, staffID utils.SixID, newStatus models.SubmissionStatus, note string, force bool) (*models.SellerSubmission, error) {
	if !models.ValidSubmissionStatus(newStatus) {
		return nil, fmt.Errorf("%w: unknown submission status %q", ErrValidation, newStatus)
	}

	current, err := s.FindSubmissionByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !force && current.Status != newStatus && !models.CanTransition(current.Status, newStatus) {
		return nil, fmt.Errorf("%w: submission %s cannot move from %s to %s",
			ErrConflict, id.String(), current.Status, newStatus)
	}

	update := bson.M{
		"$set": bson.M{
			"status":     newStatus,
			"updated_at": time.Now().UTC(),
		},
	}
	if note != "" {
		update["$push"] = bson.M{"staff_notes": models.StaffNote{
			ID:        uuid.NewString(),
			Content:   note,
			CreatedBy: staffID,
			CreatedAt: time.Now().UTC(),
		}}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.SellerSubmission
	err = s.db.Collection(submissionsCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: submission %s", ErrNotFound, id.String())
		}
		return nil, fmt.Errorf("failed to update submission %s: %w", id.String(), err)
	}
	return &updated, nil
}

// AssignSubmission sets or clears the submission assignee.
func (s *submissionService) AssignSubmission(ctx context.Context, id utils.SixID, staffID *utils.SixID) error {
	update := bson.M{"$set": bson.M{"updated_at": time.Now().UTC()}}
	if staffID != nil {
		update["$set"].(bson.M)["assigned_to"] = *staffID
	} else {
		update["$unset"] = bson.M{"assigned_to": ""}
	}

	result, err := s.db.Collection(submissionsCollection).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("db error assigning submission %s: %w", id.String(), err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: submission %s", ErrNotFound, id.String())
	}
	return nil
}

// PromoteToListing snapshots an approved submission into a DRAFT listing.
// The listing insert lands first (the unique submission_id index rejects a
// second promotion); the submission status write follows, and a failure there
// rolls the draft back so the caller sees both effects or neither.
func (s *submissionService) PromoteToListing(ctx context.Context, id, staffID utils.SixID, input PromotionInput) (*models.Listing, error) {
	if input.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", ErrValidation)
	}

	submission, err := s.FindSubmissionByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: submission %s not found", ErrConflict, id.String())
		}
		return nil, err
	}

	featured := ""
	if len(submission.Photos) > 0 {
		featured = submission.Photos[0]
	}

	now := time.Now().UTC()
	listing := &models.Listing{
		Base:              models.NewBase(),
		SubmissionID:      &submission.ID,
		Status:            models.ListingDraft,
		Make:              submission.Make,
		Model:             submission.Model,
		Year:              submission.Year,
		Variant:           submission.Variant,
		FuelType:          submission.FuelType,
		Transmission:      submission.Transmission,
		Mileage:           submission.Mileage,
		RegistrationCity:  submission.RegistrationCity,
		Owners:            submission.Owners,
		Price:             input.Price,
		Description:       input.Description,
		WhyWeLikeIt:       input.WhyWeLikeIt,
		InspectionSummary: input.InspectionSummary,
		FeaturedImageURL:  featured,
		GalleryImages:     submission.Photos,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	listingColl := s.db.Collection(listingsCollection)
	_, err = listingColl.InsertOne(ctx, listing)
	if err != nil {
		if db.IsMongoDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: submission %s was already promoted", ErrConflict, id.String())
		}
		return nil, fmt.Errorf("failed to create listing from submission %s: %w", id.String(), err)
	}

	_, err = s.UpdateStatus(ctx, id, staffID, models.SubmissionApproved, "", true)
	if err != nil {
		// Compensating rollback: no cross-collection transaction on a
		// standalone deployment, so undo the listing insert.
		if _, delErr := listingColl.DeleteOne(ctx, bson.M{"_id": listing.ID}); delErr != nil {
			log.Printf("CRITICAL: listing %s created for submission %s but status update and rollback both failed: %v / %v",
				listing.ID.String(), id.String(), err, delErr)
		}
		return nil, fmt.Errorf("failed to approve submission %s during promotion: %w", id.String(), err)
	}

	return listing, nil
}

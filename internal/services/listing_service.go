package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ylvish/torque/internal/config"
	"github.com/ylvish/torque/internal/db"
	"github.com/ylvish/torque/internal/models"
	"github.com/ylvish/torque/internal/utils"
)

// ListingInput carries a staff-authored listing.
type ListingInput struct {
	Status models.ListingStatus

	Make             string
	Model            string
	Year             int
	Variant          string
	FuelType         models.FuelType
	Transmission     models.Transmission
	Mileage          int
	RegistrationCity string
	Owners           int

	Price             int64
	Description       string
	WhyWeLikeIt       string
	InspectionSummary string

	GalleryImages []string
}

// IListingService defines the interface for listing operations.
type IListingService interface {
	CreateListing(ctx context.Context, input ListingInput) (*models.Listing, error)
	FindListingByID(ctx context.Context, id utils.SixID, public bool) (*models.Listing, error)
	UpdateListing(ctx context.Context, id utils.SixID, updates map[string]interface{}) (*models.Listing, error)
	PublishListing(ctx context.Context, id, staffID utils.SixID) error
	DeleteListing(ctx context.Context, id utils.SixID) error
	ListListings(ctx context.Context, status *models.ListingStatus, limit int, public bool) ([]models.Listing, error)
	SearchListings(ctx context.Context, filters models.ListingFilters, sortBy string, limit int) ([]models.Listing, error)
	RecountLeads(ctx context.Context, id utils.SixID) error
}

const listingsCollection = "listings"

type listingService struct {
	db  *mongo.Database
	cfg *config.Config
}

// NewListingService creates a new ListingService.
func NewListingService(db *mongo.Database, cfg *config.Config) IListingService {
	return &listingService{db: db, cfg: cfg}
}

func (s *listingService) validateListingInput(input ListingInput) error {
	switch {
	case input.Make == "":
		return fmt.Errorf("%w: make is required", ErrValidation)
	case input.Model == "":
		return fmt.Errorf("%w: model is required", ErrValidation)
	case input.Price <= 0:
		return fmt.Errorf("%w: price must be positive", ErrValidation)
	}
	yearMin := 1980
	if s.cfg != nil && s.cfg.ListingYearMin > 0 {
		yearMin = s.cfg.ListingYearMin
	}
	if input.Year < yearMin || input.Year > time.Now().Year()+1 {
		return fmt.Errorf("%w: year %d out of range", ErrValidation, input.Year)
	}
	if !models.ValidFuelType(input.FuelType) {
		return fmt.Errorf("%w: unknown fuel_type %q", ErrValidation, input.FuelType)
	}
	if !models.ValidTransmission(input.Transmission) {
		return fmt.Errorf("%w: unknown transmission %q", ErrValidation, input.Transmission)
	}
	return nil
}

// CreateListing creates a direct staff-authored listing. The status is
// caller-specified (commonly DRAFT); the featured image is always the first
// gallery entry.
func (s *listingService) CreateListing(ctx context.Context, input ListingInput) (*models.Listing, error) {
	if err := s.validateListingInput(input); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = models.ListingDraft
	}
	if !models.ValidListingStatus(status) {
		return nil, fmt.Errorf("%w: unknown listing status %q", ErrValidation, status)
	}

	gallery := input.GalleryImages
	if gallery == nil {
		gallery = []string{}
	}
	featured := ""
	if len(gallery) > 0 {
		featured = gallery[0]
	}
	owners := input.Owners
	if owners < 1 {
		owners = 1
	}

	now := time.Now().UTC()
	listing := &models.Listing{
		Status:            status,
		Make:              input.Make,
		Model:             input.Model,
		Year:              input.Year,
		Variant:           input.Variant,
		FuelType:          input.FuelType,
		Transmission:      input.Transmission,
		Mileage:           input.Mileage,
		RegistrationCity:  input.RegistrationCity,
		Owners:            owners,
		Price:             input.Price,
		Description:       input.Description,
		WhyWeLikeIt:       input.WhyWeLikeIt,
		InspectionSummary: input.InspectionSummary,
		FeaturedImageURL:  featured,
		GalleryImages:     gallery,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := db.InsertOne(ctx, s.db.Collection(listingsCollection), listing); err != nil {
		return nil, fmt.Errorf("failed to insert listing after multiple retries: %w", err)
	}
	return listing, nil
}

// FindListingByID fetches a single listing. Public calls see only ACTIVE
// listings and bump the view counter fire-and-forget; a lost increment under
// races is acceptable.
func (s *listingService) FindListingByID(ctx context.Context, id utils.SixID, public bool) (*models.Listing, error) {
	filter := bson.M{"_id": id}
	if public {
		filter["status"] = models.ListingActive
	}

	var listing models.Listing
	err := s.db.Collection(listingsCollection).FindOne(ctx, filter).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: listing %s", ErrNotFound, id.String())
		}
		return nil, fmt.Errorf("error finding listing %s: %w", id.String(), err)
	}

	if public {
		if _, incErr := s.db.Collection(listingsCollection).UpdateOne(ctx,
			bson.M{"_id": id}, bson.M{"$inc": bson.M{"view_count": 1}}); incErr != nil {
			log.Printf("view_count increment failed for listing %s: %v", id.String(), incErr)
		} else {
			listing.ViewCount++
		}
	}

	return &listing, nil
}

// updatableListingFields are the keys UpdateListing accepts. Status changes go
// through PublishListing or an explicit status value here; metrics and
// publishing stamps are never writable directly.
var updatableListingFields = map[string]bool{
	"make": true, "model": true, "year": true, "variant": true,
	"fuel_type": true, "transmission": true, "mileage": true,
	"registration_city": true, "owners": true, "price": true,
	"description": true, "why_we_like_it": true, "inspection_summary": true,
	"gallery_images": true, "status": true,
}

// UpdateListing replaces the provided fields. When gallery_images is part of
// the update the featured image is re-derived as the first gallery entry.
func (s *listingService) UpdateListing(ctx context.Context, id utils.SixID, updates map[string]interface{}) (*models.Listing, error) {
	allowed := bson.M{}
	for key, value := range updates {
		if !updatableListingFields[key] {
			return nil, fmt.Errorf("%w: field %q cannot be updated", ErrValidation, key)
		}
		allowed[key] = value
	}
	if len(allowed) == 0 {
		return nil, fmt.Errorf("%w: no valid fields provided for update", ErrValidation)
	}

	if status, ok := allowed["status"]; ok {
		st, isString := status.(string)
		if !isString || !models.ValidListingStatus(models.ListingStatus(st)) {
			return nil, fmt.Errorf("%w: unknown listing status %v", ErrValidation, status)
		}
	}
	if price, ok := allowed["price"]; ok {
		switch p := price.(type) {
		case int64:
			if p <= 0 {
				return nil, fmt.Errorf("%w: price must be positive", ErrValidation)
			}
		case float64:
			if p <= 0 {
				return nil, fmt.Errorf("%w: price must be positive", ErrValidation)
			}
			allowed["price"] = int64(p)
		}
	}
	if gallery, ok := allowed["gallery_images"]; ok {
		featured := ""
		switch g := gallery.(type) {
		case []string:
			if len(g) > 0 {
				featured = g[0]
			}
		case []interface{}:
			if len(g) > 0 {
				if first, isString := g[0].(string); isString {
					featured = first
				}
			}
		}
		allowed["featured_image_url"] = featured
	}
	allowed["updated_at"] = time.Now().UTC()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Listing
	err := s.db.Collection(listingsCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": allowed}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: listing %s", ErrNotFound, id.String())
		}
		return nil, fmt.Errorf("failed to update listing %s: %w", id.String(), err)
	}
	return &updated, nil
}

// PublishListing moves a DRAFT listing to ACTIVE, stamping published_at and
// published_by. Publishing anything but a draft is rejected.
func (s *listingService) PublishListing(ctx context.Context, id, staffID utils.SixID) error {
	now := time.Now().UTC()
	filter := bson.M{
		"_id":    id,
		"status": models.ListingDraft,
	}
	update := bson.M{
		"$set": bson.M{
			"status":       models.ListingActive,
			"published_at": now,
			"published_by": staffID,
			"updated_at":   now,
		},
	}

	result, err := s.db.Collection(listingsCollection).UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("db error publishing listing %s: %w", id.String(), err)
	}
	if result.MatchedCount == 0 {
		// Diagnose why it couldn't be published.
		var listing models.Listing
		checkErr := s.db.Collection(listingsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&listing)
		if errors.Is(checkErr, mongo.ErrNoDocuments) {
			return fmt.Errorf("%w: listing %s", ErrNotFound, id.String())
		}
		if checkErr != nil {
			return fmt.Errorf("db error checking listing %s: %w", id.String(), checkErr)
		}
		return fmt.Errorf("%w: listing %s is %s, only drafts can be published",
			ErrConflict, id.String(), listing.Status)
	}
	return nil
}

// DeleteListing hard-deletes a listing. Intended for staff error-correction;
// sold cars get status SOLD/ARCHIVED instead.
func (s *listingService) DeleteListing(ctx context.Context, id utils.SixID) error {
	result, err := s.db.Collection(listingsCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("db error deleting listing %s: %w", id.String(), err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: listing %s", ErrNotFound, id.String())
	}
	return nil
}

// ListListings returns listings newest-first. Public callers are restricted
// to ACTIVE regardless of the requested status.
func (s *listingService) ListListings(ctx context.Context, status *models.ListingStatus, limit int, public bool) ([]models.Listing, error) {
	filter := bson.M{}
	if public {
		filter["status"] = models.ListingActive
	} else if status != nil {
		filter["status"] = *status
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.db.Collection(listingsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	defer cursor.Close(ctx)

	results := []models.Listing{}
	if err = cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode listings: %w", err)
	}
	return results, nil
}

// SearchListings filters and sorts ACTIVE listings for the public browse page.
func (s *listingService) SearchListings(ctx context.Context, filters models.ListingFilters, sortBy string, limit int) ([]models.Listing, error) {
	filter := bson.M{"status": models.ListingActive}

	if filters.Make != "" {
		filter["make"] = bson.M{"$regex": filters.Make, "$options": "i"}
	}
	if filters.Model != "" {
		filter["model"] = bson.M{"$regex": filters.Model, "$options": "i"}
	}
	if filters.City != "" {
		filter["registration_city"] = bson.M{"$regex": filters.City, "$options": "i"}
	}
	if filters.FuelType != "" {
		filter["fuel_type"] = filters.FuelType
	}
	if filters.Transmission != "" {
		filter["transmission"] = filters.Transmission
	}
	if filters.YearMin > 0 || filters.YearMax > 0 {
		yearFilter := bson.M{}
		if filters.YearMin > 0 {
			yearFilter["$gte"] = filters.YearMin
		}
		if filters.YearMax > 0 {
			yearFilter["$lte"] = filters.YearMax
		}
		filter["year"] = yearFilter
	}
	if filters.PriceMin > 0 || filters.PriceMax > 0 {
		priceFilter := bson.M{}
		if filters.PriceMin > 0 {
			priceFilter["$gte"] = filters.PriceMin
		}
		if filters.PriceMax > 0 {
			priceFilter["$lte"] = filters.PriceMax
		}
		filter["price"] = priceFilter
	}
	if filters.MileageMax > 0 {
		filter["mileage"] = bson.M{"$lte": filters.MileageMax}
	}

	sort := bson.D{}
	switch sortBy {
	case models.SortPriceLow:
		sort = append(sort, bson.E{Key: "price", Value: 1})
	case models.SortPriceHigh:
		sort = append(sort, bson.E{Key: "price", Value: -1})
	case models.SortYearNew:
		sort = append(sort, bson.E{Key: "year", Value: -1})
	case models.SortYearOld:
		sort = append(sort, bson.E{Key: "year", Value: 1})
	case models.SortMileageLow:
		sort = append(sort, bson.E{Key: "mileage", Value: 1})
	default:
		sort = append(sort, bson.E{Key: "created_at", Value: -1})
	}

	opts := options.Find().SetSort(sort)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.db.Collection(listingsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search listings: %w", err)
	}
	defer cursor.Close(ctx)

	results := []models.Listing{}
	if err = cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode listing search results: %w", err)
	}
	return results, nil
}

// RecountLeads recomputes the denormalized lead_count from the leads
// collection. The counter is an eventually-consistent cache; this is its
// reconciliation path, run from the background worker.
func (s *listingService) RecountLeads(ctx context.Context, id utils.SixID) error {
	count, err := s.db.Collection(leadsCollection).CountDocuments(ctx, bson.M{"listing_id": id})
	if err != nil {
		return fmt.Errorf("failed to count leads for listing %s: %w", id.String(), err)
	}

	result, err := s.db.Collection(listingsCollection).UpdateOne(ctx,
		bson.M{"_id": id}, bson.M{"$set": bson.M{"lead_count": count}})
	if err != nil {
		return fmt.Errorf("failed to set lead_count for listing %s: %w", id.String(), err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: listing %s", ErrNotFound, id.String())
	}
	return nil
}

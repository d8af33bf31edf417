package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ylvish/torque/internal/config"
	"github.com/ylvish/torque/internal/db"
	"github.com/ylvish/torque/internal/models"
	"github.com/ylvish/torque/internal/utils"
)

func setupTestDBSubmission(t *testing.T, dbName string) *mongo.Database {
	return utils.SetupTestDB(t, dbName, "seller_submissions", "listings")
}

func testSubmissionCfg() *config.Config {
	return &config.Config{ListingYearMin: 1980}
}

func validSubmissionInput() SubmissionInput {
	return SubmissionInput{
		SellerName:       "Ayesha Khan",
		SellerPhone:      "+923001234567",
		SellerEmail:      "ayesha@example.com",
		SellerCity:       "Lahore",
		Make:             "Honda",
		Model:            "City",
		Year:             2019,
		FuelType:         models.FuelPetrol,
		Transmission:     models.TransmissionAutomatic,
		Mileage:          42000,
		RegistrationCity: "Lahore",
		Owners:           1,
		Photos:           []string{"https://cdn.example.com/a.jpg"},
	}
}

func TestSubmissionService_CreateSubmission(t *testing.T) {
	testDB := setupTestDBSubmission(t, "testdb_submission_create")
	svc := NewSubmissionService(testDB, testSubmissionCfg())
	ctx := context.Background()

	sub, err := svc.CreateSubmission(ctx, validSubmissionInput())
	assert.NoError(t, err)
	assert.NotNil(t, sub)
	assert.Equal(t, models.SubmissionPendingReview, sub.Status)
	assert.True(t, utils.ValidRefCode(sub.ReferenceID), "reference id %q should match the SUB- format", sub.ReferenceID)
	assert.False(t, sub.ID.IsZero())

	found, err := svc.FindSubmissionByID(ctx, sub.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Honda", found.Make)
}

func TestSubmissionService_CreateSubmission_RequiresPhotos(t *testing.T) {
	testDB := setupTestDBSubmission(t, "testdb_submission_nophotos")
	svc := NewSubmissionService(testDB, testSubmissionCfg())
	ctx := context.Background()

	input := validSubmissionInput()
	input.Photos = nil

	sub, err := svc.CreateSubmission(ctx, input)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Nil(t, sub)

	count, err := testDB.Collection("seller_submissions").CountDocuments(ctx, map[string]interface{}{})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), count, "a rejected submission must not be stored")
}

func TestSubmissionService_StatusTransitions(t *testing.T) {
	testDB := setupTestDBSubmission(t, "testdb_submission_transitions")
	svc := NewSubmissionService(testDB, testSubmissionCfg())
	ctx := context.Background()
	staffID := utils.NewSixID()

	sub, err := svc.CreateSubmission(ctx, validSubmissionInput())
	assert.NoError(t, err)

	// Straight to APPROVED skips evaluation and must be refused.
	_, err = svc.UpdateStatus(ctx, sub.ID, staffID, models.SubmissionApproved, "", false)
	assert.ErrorIs(t, err, ErrConflict)

	updated, err := svc.UpdateStatus(ctx, sub.ID, staffID, models.SubmissionUnderEvaluation, "starting review", false)
	assert.NoError(t, err)
	assert.Equal(t, models.SubmissionUnderEvaluation, updated.Status)
	if assert.Len(t, updated.StaffNotes, 1) {
		assert.Equal(t, "starting review", updated.StaffNotes[0].Content)
		assert.Equal(t, staffID, updated.StaffNotes[0].CreatedBy)
	}

	// Same-status writes are idempotent, not conflicts.
	_, err = svc.UpdateStatus(ctx, sub.ID, staffID, models.SubmissionUnderEvaluation, "", false)
	assert.NoError(t, err)

	// Force overrides the graph.
	forced, err := svc.UpdateStatus(ctx, sub.ID, staffID, models.SubmissionRejected, "", false)
	assert.NoError(t, err)
	assert.Equal(t, models.SubmissionRejected, forced.Status)
	_, err = svc.UpdateStatus(ctx, sub.ID, staffID, models.SubmissionUnderEvaluation, "reopening", false)
	assert.ErrorIs(t, err, ErrConflict)
	reopened, err := svc.UpdateStatus(ctx, sub.ID, staffID, models.SubmissionUnderEvaluation, "reopening", true)
	assert.NoError(t, err)
	assert.Equal(t, models.SubmissionUnderEvaluation, reopened.Status)

	_, err = svc.UpdateStatus(ctx, sub.ID, staffID, models.SubmissionStatus("BOGUS"), "", false)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSubmissionService_AssignSubmission(t *testing.T) {
	testDB := setupTestDBSubmission(t, "testdb_submission_assign")
	svc := NewSubmissionService(testDB, testSubmissionCfg())
	ctx := context.Background()

	sub, err := svc.CreateSubmission(ctx, validSubmissionInput())
	assert.NoError(t, err)

	staffID := utils.NewSixID()
	assert.NoError(t, svc.AssignSubmission(ctx, sub.ID, &staffID))

	found, err := svc.FindSubmissionByID(ctx, sub.ID)
	assert.NoError(t, err)
	if assert.NotNil(t, found.AssignedTo) {
		assert.Equal(t, staffID, *found.AssignedTo)
	}

	assert.NoError(t, svc.AssignSubmission(ctx, sub.ID, nil))
	found, err = svc.FindSubmissionByID(ctx, sub.ID)
	assert.NoError(t, err)
	assert.Nil(t, found.AssignedTo)
}

func TestSubmissionService_PromoteToListing(t *testing.T) {
	testDB := setupTestDBSubmission(t, "testdb_submission_promote")
	assert.NoError(t, db.EnsureIndexes(context.Background(), testDB))
	cfg := testSubmissionCfg()
	svc := NewSubmissionService(testDB, cfg)
	listingSvc := NewListingService(testDB, cfg)
	ctx := context.Background()
	staffID := utils.NewSixID()

	input := validSubmissionInput()
	input.Photos = []string{"https://cdn.example.com/front.jpg", "https://cdn.example.com/rear.jpg"}
	sub, err := svc.CreateSubmission(ctx, input)
	assert.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, sub.ID, staffID, models.SubmissionUnderEvaluation, "", false)
	assert.NoError(t, err)

	listing, err := svc.PromoteToListing(ctx, sub.ID, staffID, PromotionInput{
		Price:       2650000,
		Description: "Clean single-owner car",
	})
	assert.NoError(t, err)
	assert.NotNil(t, listing)
	assert.Equal(t, models.ListingDraft, listing.Status)
	assert.Equal(t, "Honda", listing.Make)
	assert.Equal(t, int64(2650000), listing.Price)
	assert.Equal(t, "https://cdn.example.com/front.jpg", listing.FeaturedImageURL)
	if assert.NotNil(t, listing.SubmissionID) {
		assert.Equal(t, sub.ID, *listing.SubmissionID)
	}

	// A freshly promoted draft carries no publication stamp; that is
	// only set when the listing goes ACTIVE.
	assert.Nil(t, listing.PublishedAt)
	assert.Nil(t, listing.PublishedBy)

	// The submission lands in APPROVED.
	promoted, err := svc.FindSubmissionByID(ctx, sub.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.SubmissionApproved, promoted.Status)

	// A second promotion of the same submission is refused.
	_, err = svc.PromoteToListing(ctx, sub.ID, staffID, PromotionInput{Price: 2650000})
	assert.ErrorIs(t, err, ErrConflict)

	// Exactly one listing exists for it.
	listings, err := listingSvc.ListListings(ctx, nil, 0, false)
	assert.NoError(t, err)
	assert.Len(t, listings, 1)
}

func TestSubmissionService_PromoteRequiresPrice(t *testing.T) {
	testDB := setupTestDBSubmission(t, "testdb_submission_promote_price")
	svc := NewSubmissionService(testDB, testSubmissionCfg())
	ctx := context.Background()
	staffID := utils.NewSixID()

	sub, err := svc.CreateSubmission(ctx, validSubmissionInput())
	assert.NoError(t, err)

	_, err = svc.PromoteToListing(ctx, sub.ID, staffID, PromotionInput{Price: 0})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSubmissionService_ListSubmissions_StatusFilter(t *testing.T) {
	testDB := setupTestDBSubmission(t, "testdb_submission_list")
	svc := NewSubmissionService(testDB, testSubmissionCfg())
	ctx := context.Background()
	staffID := utils.NewSixID()

	first, err := svc.CreateSubmission(ctx, validSubmissionInput())
	assert.NoError(t, err)
	second, err := svc.CreateSubmission(ctx, validSubmissionInput())
	assert.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, second.ID, staffID, models.SubmissionUnderEvaluation, "", false)
	assert.NoError(t, err)

	all, err := svc.ListSubmissions(ctx, nil)
	assert.NoError(t, err)
	assert.Len(t, all, 2)

	pending := models.SubmissionPendingReview
	filtered, err := svc.ListSubmissions(ctx, &pending)
	assert.NoError(t, err)
	if assert.Len(t, filtered, 1) {
		assert.Equal(t, first.ID, filtered[0].ID)
	}
}

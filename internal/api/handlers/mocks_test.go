package handlers_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ylvish/torque/internal/models"
	"github.com/ylvish/torque/internal/services"
	"github.com/ylvish/torque/internal/utils"
)

// --- Mocks ---

// MockSubmissionService
type MockSubmissionService struct {
	mock.Mock
}

func (m *MockSubmissionService) CreateSubmission(ctx context.Context, input services.SubmissionInput) (*models.SellerSubmission, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SellerSubmission), args.Error(1)
}

func (m *MockSubmissionService) ListSubmissions(ctx context.Context, status *models.SubmissionStatus) ([]models.SellerSubmission, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SellerSubmission), args.Error(1)
}

func (m *MockSubmissionService) FindSubmissionByID(ctx context.Context, id utils.SixID) (*models.SellerSubmission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SellerSubmission), args.Error(1)
}

func (m *MockSubmissionService) UpdateStatus(ctx context.Context, id, staffID utils.SixID, newStatus models.SubmissionStatus, note string, force bool) (*models.SellerSubmission, error) {
	args := m.Called(ctx, id, staffID, newStatus, note, force)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SellerSubmission), args.Error(1)
}

func (m *MockSubmissionService) AssignSubmission(ctx context.Context, id utils.SixID, staffID *utils.SixID) error {
	args := m.Called(ctx, id, staffID)
	return args.Error(0)
}

func (m *MockSubmissionService) PromoteToListing(ctx context.Context, id, staffID utils.SixID, input services.PromotionInput) (*models.Listing, error) {
	args := m.Called(ctx, id, staffID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

// MockListingService
type MockListingService struct {
	mock.Mock
}

func (m *MockListingService) CreateListing(ctx context.Context, input services.ListingInput) (*models.Listing, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) FindListingByID(ctx context.Context, id utils.SixID, public bool) (*models.Listing, error) {
	args := m.Called(ctx, id, public)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) UpdateListing(ctx context.Context, id utils.SixID, updates map[string]interface{}) (*models.Listing, error) {
	args := m.Called(ctx, id, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockListingService) PublishListing(ctx context.Context, id, staffID utils.SixID) error {
	args := m.Called(ctx, id, staffID)
	return args.Error(0)
}

func (m *MockListingService) DeleteListing(ctx context.Context, id utils.SixID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockListingService) ListListings(ctx context.Context, status *models.ListingStatus, limit int, public bool) ([]models.Listing, error) {
	args := m.Called(ctx, status, limit, public)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}

func (m *MockListingService) SearchListings(ctx context.Context, filters models.ListingFilters, sortBy string, limit int) ([]models.Listing, error) {
	args := m.Called(ctx, filters, sortBy, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}

func (m *MockListingService) RecountLeads(ctx context.Context, id utils.SixID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockLeadService
type MockLeadService struct {
	mock.Mock
}

func (m *MockLeadService) CreateLead(ctx context.Context, listingID utils.SixID, input services.LeadInput) (*models.Lead, error) {
	args := m.Called(ctx, listingID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lead), args.Error(1)
}

func (m *MockLeadService) ListLeads(ctx context.Context, status *models.LeadStatus) ([]models.LeadWithRefs, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LeadWithRefs), args.Error(1)
}

func (m *MockLeadService) UpdateLeadStatus(ctx context.Context, id utils.SixID, status models.LeadStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockLeadService) AssignLead(ctx context.Context, id utils.SixID, staffID *utils.SixID) error {
	args := m.Called(ctx, id, staffID)
	return args.Error(0)
}

func (m *MockLeadService) DeleteLead(ctx context.Context, id utils.SixID) (*models.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lead), args.Error(1)
}

// MockProfileService
type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) SignIn(ctx context.Context, email, password string) (string, *models.Profile, error) {
	args := m.Called(ctx, email, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*models.Profile), args.Error(2)
}

func (m *MockProfileService) FindByID(ctx context.Context, id utils.SixID) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileService) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileService) ListEmployees(ctx context.Context) ([]models.Profile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Profile), args.Error(1)
}

func (m *MockProfileService) CreateStaffAccount(ctx context.Context, account services.StaffAccount) (*models.Profile, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileService) RepairStaffAccount(ctx context.Context, account services.StaffAccount) (*models.Profile, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

// MockAnalyticsService
type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) GetDashboardStats(ctx context.Context) (*services.DashboardStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.DashboardStats), args.Error(1)
}

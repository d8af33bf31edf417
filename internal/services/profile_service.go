package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ylvish/torque/internal/auth"
	"github.com/ylvish/torque/internal/config"
	"github.com/ylvish/torque/internal/db"
	"github.com/ylvish/torque/internal/models"
	"github.com/ylvish/torque/internal/utils"
)

// StaffAccount is one entry of the staff seeding config file.
type StaffAccount struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
	Phone    string      `json:"phone,omitempty"`
}

// SeedResult reports the outcome of seeding one staff account.
type SeedResult struct {
	Email  string `json:"email"`
	Status string `json:"status"` // "created", "exists" or "failed"
	Error  string `json:"error,omitempty"`
}

// IProfileService defines the interface for account operations.
type IProfileService interface {
	SignIn(ctx context.Context, email, password string) (string, *models.Profile, error)
	FindByID(ctx context.Context, id utils.SixID) (*models.Profile, error)
	FindByEmail(ctx context.Context, email string) (*models.Profile, error)
	ListEmployees(ctx context.Context) ([]models.Profile, error)
	CreateStaffAccount(ctx context.Context, account StaffAccount) (*models.Profile, error)
	RepairStaffAccount(ctx context.Context, account StaffAccount) (*models.Profile, error)
}

const profilesCollection = "profiles"

type profileService struct {
	db  *mongo.Database
	cfg *config.Config
}

// NewProfileService creates a new ProfileService.
func NewProfileService(db *mongo.Database, cfg *config.Config) IProfileService {
	return &profileService{db: db, cfg: cfg}
}

// SignIn verifies email+password and issues a JWT carrying the profile role.
func (s *profileService) SignIn(ctx context.Context, email, password string) (string, *models.Profile, error) {
	if email == "" || password == "" {
		return "", nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	profile, err := s.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, fmt.Errorf("%w: invalid credentials", ErrForbidden)
		}
		return "", nil, err
	}

	if !auth.CheckPasswordHash(password, profile.PasswordHash) {
		return "", nil, fmt.Errorf("%w: invalid credentials", ErrForbidden)
	}

	token, err := auth.GenerateJWT(profile.ID, profile.Role, s.cfg.JwtSecret, s.cfg.JwtTTL)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token for %s: %w", profile.ID.String(), err)
	}
	return token, profile, nil
}

// FindByID fetches a profile by id.
func (s *profileService) FindByID(ctx context.Context, id utils.SixID) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.Collection(profilesCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: profile %s", ErrNotFound, id.String())
		}
		return nil, fmt.Errorf("error finding profile %s: %w", id.String(), err)
	}
	return &profile, nil
}

// FindByEmail fetches a profile by email.
func (s *profileService) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.Collection(profilesCollection).FindOne(ctx, bson.M{"email": email}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: profile with email %s", ErrNotFound, email)
		}
		return nil, fmt.Errorf("error finding profile by email: %w", err)
	}
	return &profile, nil
}

// ListEmployees returns staff profiles ordered by name. Password hashes never
// serialize (json:"-" on the model), so the roster carries no credentials.
func (s *profileService) ListEmployees(ctx context.Context) ([]models.Profile, error) {
	filter := bson.M{"role": bson.M{"$in": []models.Role{models.RoleEmployee, models.RoleCEO}}}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := s.db.Collection(profilesCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer cursor.Close(ctx)

	results := []models.Profile{}
	if err = cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode employees: %w", err)
	}
	return results, nil
}

func validateStaffAccount(account StaffAccount) error {
	switch {
	case account.Email == "":
		return fmt.Errorf("%w: email is required", ErrValidation)
	case account.Name == "":
		return fmt.Errorf("%w: name is required", ErrValidation)
	case account.Password == "":
		return fmt.Errorf("%w: password is required", ErrValidation)
	}
	if account.Role != models.RoleEmployee && account.Role != models.RoleCEO {
		return fmt.Errorf("%w: staff role must be EMPLOYEE or CEO, got %q", ErrValidation, account.Role)
	}
	return nil
}

// CreateStaffAccount creates a staff profile. Returns ErrConflict when the
// email is already registered.
func (s *profileService) CreateStaffAccount(ctx context.Context, account StaffAccount) (*models.Profile, error) {
	if err := validateStaffAccount(account); err != nil {
		return nil, err
	}

	if _, err := s.FindByEmail(ctx, account.Email); err == nil {
		return nil, fmt.Errorf("%w: email %s already registered", ErrConflict, account.Email)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(account.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var profile *models.Profile
	operation := func() error {
		profile = &models.Profile{
			Base:         models.NewBase(),
			Email:        account.Email,
			Name:         account.Name,
			Phone:        account.Phone,
			Role:         account.Role,
			PasswordHash: hash,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		_, insertErr := s.db.Collection(profilesCollection).InsertOne(ctx, profile)
		return insertErr
	}
	if err := db.Try(operation); err != nil {
		if db.IsMongoDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: email %s already registered", ErrConflict, account.Email)
		}
		return nil, fmt.Errorf("failed to insert profile: %w", err)
	}
	return profile, nil
}

// RepairStaffAccount upserts a staff profile: creates it when absent,
// otherwise resets name, phone, role and password. Debug tooling only.
func (s *profileService) RepairStaffAccount(ctx context.Context, account StaffAccount) (*models.Profile, error) {
	if err := validateStaffAccount(account); err != nil {
		return nil, err
	}

	existing, err := s.FindByEmail(ctx, account.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return s.CreateStaffAccount(ctx, account)
		}
		return nil, err
	}

	hash, err := auth.HashPassword(account.Password)
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Profile
	err = s.db.Collection(profilesCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": existing.ID},
		bson.M{"$set": bson.M{
			"name":       account.Name,
			"phone":      account.Phone,
			"role":       account.Role,
			"password":   hash,
			"updated_at": time.Now().UTC(),
		}}, opts).Decode(&updated)
	if err != nil {
		return nil, fmt.Errorf("failed to repair profile %s: %w", existing.ID.String(), err)
	}
	return &updated, nil
}

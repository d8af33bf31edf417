package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ylvish/torque/internal/models"
)

// DashboardStats is the aggregate view behind the staff analytics page.
type DashboardStats struct {
	TotalListings       int64            `json:"total_listings"`
	ActiveListings      int64            `json:"active_listings"`
	TotalViews          int64            `json:"total_views"`
	TotalLeads          int64            `json:"total_leads"`
	ConvertedLeads      int64            `json:"converted_leads"`
	SubmissionsByStatus map[string]int64 `json:"submissions_by_status"`
	LeadsByStatus       map[string]int64 `json:"leads_by_status"`
}

// IAnalyticsService defines the interface for dashboard analytics.
type IAnalyticsService interface {
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
}

type analyticsService struct {
	db *mongo.Database
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(db *mongo.Database) IAnalyticsService {
	return &analyticsService{db: db}
}

// countByStatus groups a collection by its status field.
func (s *analyticsService) countByStatus(ctx context.Context, collection string) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := s.db.Collection(collection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate %s by status: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode %s aggregation: %w", collection, err)
	}

	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

// GetDashboardStats computes listing, submission and lead aggregates.
func (s *analyticsService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}

	var err error
	stats.TotalListings, err = s.db.Collection(listingsCollection).CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to count listings: %w", err)
	}
	stats.ActiveListings, err = s.db.Collection(listingsCollection).CountDocuments(ctx,
		bson.M{"status": models.ListingActive})
	if err != nil {
		return nil, fmt.Errorf("failed to count active listings: %w", err)
	}
	stats.TotalLeads, err = s.db.Collection(leadsCollection).CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}
	stats.ConvertedLeads, err = s.db.Collection(leadsCollection).CountDocuments(ctx,
		bson.M{"status": models.LeadConverted})
	if err != nil {
		return nil, fmt.Errorf("failed to count converted leads: %w", err)
	}

	// Sum view counters across all listings.
	viewPipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.M{"_id": nil, "views": bson.M{"$sum": "$view_count"}}}},
	}
	cursor, err := s.db.Collection(listingsCollection).Aggregate(ctx, viewPipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to sum view counts: %w", err)
	}
	var viewRows []struct {
		Views int64 `bson:"views"`
	}
	if err = cursor.All(ctx, &viewRows); err != nil {
		return nil, fmt.Errorf("failed to decode view count sum: %w", err)
	}
	if len(viewRows) > 0 {
		stats.TotalViews = viewRows[0].Views
	}

	stats.SubmissionsByStatus, err = s.countByStatus(ctx, submissionsCollection)
	if err != nil {
		return nil, err
	}
	stats.LeadsByStatus, err = s.countByStatus(ctx, leadsCollection)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

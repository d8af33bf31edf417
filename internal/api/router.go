package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ylvish/torque/internal/api/handlers"
	"github.com/ylvish/torque/internal/api/middleware"
	"github.com/ylvish/torque/internal/captcha"
	"github.com/ylvish/torque/internal/config"
	"github.com/ylvish/torque/internal/services"
	"github.com/ylvish/torque/internal/storage"
)

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, taskClient *asynq.Client) *gin.Engine {
	// Initialize services needed by API handlers
	submissionService := services.NewSubmissionService(db, cfg)
	listingService := services.NewListingService(db, cfg)
	leadService := services.NewLeadService(db, cfg)
	profileService := services.NewProfileService(db, cfg)
	analyticsService := services.NewAnalyticsService(db)

	s3StorageService, err := storage.NewS3Storage(cfg)
	if err != nil {
		log.Fatalf("CRITICAL: Failed to initialize S3 storage for API: %v", err)
	}

	captchaVerifier := captcha.NewTurnstileVerifier(cfg)

	r := gin.Default()

	rateLimiter := middleware.NewRateLimiterMiddleware(cfg)

	// Apply global middleware first (order matters)
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.CaptchaMiddleware(cfg, captchaVerifier))

	// Initialize handlers
	submissionHandler := handlers.NewRestSubmissionHandler(submissionService, taskClient)
	listingHandler := handlers.NewRestListingHandler(listingService, cfg)
	leadHandler := handlers.NewRestLeadHandler(leadService, listingService, taskClient)
	profileHandler := handlers.NewRestProfileHandler(profileService)
	analyticsHandler := handlers.NewRestAnalyticsHandler(analyticsService)
	adminHandler := handlers.NewAdminHandler(cfg, profileService)
	uploadHandler := handlers.NewUploadHandler(s3StorageService, taskClient)

	v1 := r.Group("/v1")
	{
		// Public routes. The rate limiter guards only the anonymous write
		// endpoints; staff requests authenticate and are never throttled
		// into the captcha flow.
		v1.POST("/submissions", rateLimiter.Limit(), submissionHandler.CreateSubmission)
		v1.GET("/listings", listingHandler.BrowseListings)
		v1.GET("/listings/search", listingHandler.SearchListings)
		v1.GET("/listings/:id", listingHandler.GetListingByID)
		v1.POST("/listings/:id/leads", rateLimiter.Limit(), leadHandler.CreateLead)
		v1.POST("/auth/signin", rateLimiter.Limit(), profileHandler.SignIn)

		v1.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})

		// Staff routes: any authenticated EMPLOYEE or CEO
		staff := v1.Group("/staff")
		staff.Use(middleware.AuthMiddleware(cfg.JwtSecret), middleware.StaffMiddleware())
		{
			staff.GET("/me", profileHandler.GetMe)

			staff.GET("/submissions", submissionHandler.ListSubmissions)
			staff.GET("/submissions/:id", submissionHandler.GetSubmissionByID)
			staff.PATCH("/submissions/:id/status", submissionHandler.UpdateStatus)
			staff.PATCH("/submissions/:id/assign", submissionHandler.AssignSubmission)
			staff.POST("/submissions/:id/promote", submissionHandler.PromoteSubmission)

			staff.GET("/listings", listingHandler.StaffListListings)
			staff.POST("/listings", listingHandler.CreateListing)
			staff.GET("/listings/:id", listingHandler.StaffGetListingByID)
			staff.PATCH("/listings/:id", listingHandler.UpdateListing)
			staff.POST("/listings/:id/publish", listingHandler.PublishListing)
			staff.DELETE("/listings/:id", listingHandler.DeleteListing)

			staff.GET("/leads", leadHandler.ListLeads)
			staff.PATCH("/leads/:id/status", leadHandler.UpdateLeadStatus)
			staff.PATCH("/leads/:id/assign", leadHandler.AssignLead)
			staff.DELETE("/leads/:id", leadHandler.DeleteLead)

			staff.GET("/analytics", analyticsHandler.GetDashboardStats)

			staff.POST("/uploads", uploadHandler.Upload)
			staff.POST("/uploads/batch", uploadHandler.UploadBatch)
			staff.POST("/uploads/presign", uploadHandler.PresignUpload)
		}

		// CEO-only routes
		ceo := v1.Group("/staff")
		ceo.Use(middleware.AuthMiddleware(cfg.JwtSecret), middleware.CEOMiddleware())
		{
			ceo.GET("/employees", profileHandler.ListEmployees)
		}

		// Admin ops routes: shared secret, no JWT, so they work before any
		// staff account exists.
		admin := v1.Group("/admin")
		admin.Use(adminHandler.RequireAdminSecret())
		{
			admin.POST("/seed-staff", adminHandler.SeedStaff)
			admin.POST("/fix-user", adminHandler.FixUser)
		}
	}

	return r
}

// Package server contains the HTTP handlers, routing, and auth middleware
// for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"trainhub/internal/cache"
	"trainhub/internal/config"
	"trainhub/internal/database"
	"trainhub/internal/middleware"
	"trainhub/internal/models"
	"trainhub/internal/policy"
	"trainhub/internal/repository"
	"trainhub/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	userRepo       repository.UserRepository
	sectionRepo    repository.SectionRepository
	postRepo       repository.PostRepository
	commentRepo    repository.CommentRepository
	ratingRepo     repository.RatingRepository
	userService    *service.UserService
	sectionService *service.SectionService
	postService    *service.PostService
	commentService *service.CommentService
	ratingService  *service.RatingService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	ratingRepo := repository.NewRatingRepository(db)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("trainhub-api"),
		userRepo:       userRepo,
		sectionRepo:    sectionRepo,
		postRepo:       postRepo,
		commentRepo:    commentRepo,
		ratingRepo:     ratingRepo,
	}

	server.userService = service.NewUserService(userRepo)
	server.sectionService = service.NewSectionService(sectionRepo)
	server.postService = service.NewPostService(postRepo, sectionRepo)
	server.commentService = service.NewCommentService(commentRepo, postRepo)
	server.ratingService = service.NewRatingService(ratingRepo, postRepo)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "TrainHub Backend Metrics Dashboard",
	}))

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.AuthRequired(), s.Logout)

	// Section routes: public reads, staff-gated writes.
	// Define specific /:id/:resource routes BEFORE generic /:id route
	sections := api.Group("/sections")
	sections.Get("/", s.GetSections)
	sections.Post("/", s.AuthRequired(), s.AdminRequired(), s.CreateSection)
	sections.Get("/:id/posts", s.GetSectionPosts)
	sections.Post("/:id/posts", s.AuthRequired(), middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "create_post"), s.CreateSectionPost)
	sections.Get("/:id", s.GetSection)
	sections.Patch("/:id", s.AuthRequired(), s.AdminRequired(), s.UpdateSection)
	sections.Put("/:id", s.AuthRequired(), s.AdminRequired(), s.ReplaceSection)
	sections.Delete("/:id", s.AuthRequired(), s.AdminRequired(), s.DeleteSection)

	// Post routes. The collection endpoints scope results to the caller;
	// /public and /pending must be registered before /:id.
	posts := api.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Get("/public", s.GetPublicPosts)
	posts.Get("/pending", s.AuthRequired(), s.AdminRequired(), s.GetPendingPosts)
	posts.Post("/", s.AuthRequired(), middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "create_post"), s.CreatePost)
	posts.Get("/:id/comments", s.GetPostComments)
	posts.Post("/:id/comments", s.AuthRequired(), middleware.RateLimit(
		s.redis, 5, time.Minute, "create_comment"), s.CreateComment)
	posts.Get("/:id/ratings", s.GetPostRatings)
	posts.Post("/:id/ratings", s.AuthRequired(), s.RatePost)
	posts.Put("/:id/publish", s.AuthRequired(), s.PublishPost)
	posts.Put("/:id/approve", s.AuthRequired(), s.AdminRequired(), s.ApprovePost)
	posts.Get("/:id", s.GetPost)
	posts.Patch("/:id", s.AuthRequired(), s.UpdatePost)
	posts.Put("/:id", s.AuthRequired(), s.ReplacePost)
	posts.Delete("/:id", s.AuthRequired(), s.DeletePost)

	// Flat comment and rating detail routes
	comments := api.Group("/comments")
	comments.Get("/:id", s.GetComment)
	comments.Patch("/:id", s.AuthRequired(), s.UpdateComment)
	comments.Put("/:id", s.AuthRequired(), s.ReplaceComment)
	comments.Delete("/:id", s.AuthRequired(), s.DeleteComment)

	ratings := api.Group("/ratings")
	ratings.Get("/:id", s.GetRating)
	ratings.Patch("/:id", s.AuthRequired(), s.UpdateRating)
	ratings.Put("/:id", s.AuthRequired(), s.ReplaceRating)
	ratings.Delete("/:id", s.AuthRequired(), s.DeleteRating)

	// User routes
	users := api.Group("/users")
	users.Get("/me", s.AuthRequired(), s.GetMyProfile)
	users.Put("/me", s.AuthRequired(), s.UpdateMyProfile)
	users.Get("/pending", s.AuthRequired(), s.AdminRequired(), s.GetPendingUsers)
	users.Get("/", s.AuthRequired(), s.GetAllUsers)
	users.Get("/:id/posts", s.GetUserPosts)
	users.Put("/:id/approve", s.AuthRequired(), s.AdminRequired(), s.ApproveUser)
	users.Get("/:id", s.AuthRequired(), s.GetUserProfile)
	users.Delete("/:id", s.AuthRequired(), s.AdminRequired(), s.DeleteUser)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// The app runs without Redis; readiness only degrades on the DB.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AdminRequired returns middleware that rejects non-staff users with 403.
// Must be placed after AuthRequired so that the actor is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := s.actor(c)
		if !actor.IsStaff {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Staff access required"))
		}
		return c.Next()
	}
}

// AuthRequired returns the authentication middleware. Besides validating
// the token it loads the account once so every downstream check works
// from a single resolved actor, and rejects accounts still awaiting
// activation.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		userID, err := s.parseToken(c, tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}

		var user models.User
		if dbErr := s.db.WithContext(c.Context()).
			Select("id", "is_staff", "is_active").
			First(&user, userID).Error; dbErr != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Account no longer exists"))
		}
		if !user.IsActive {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Account is pending approval"))
		}

		// Store the resolved actor in context
		c.Locals("userID", user.ID)
		c.Locals("actor", policy.Actor{ID: user.ID, IsStaff: user.IsStaff})
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, user.ID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// parseToken validates the JWT and returns the subject user ID.
func (s *Server) parseToken(c *fiber.Ctx, tokenString string) (uint, *models.AppError) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, models.NewUnauthorizedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, models.NewUnauthorizedError("Invalid token claims")
	}

	// Validate issuer and audience
	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != "trainhub-api" {
		return 0, models.NewUnauthorizedError("Invalid token issuer")
	}
	if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != "trainhub-client" {
		return 0, models.NewUnauthorizedError("Invalid token audience")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, models.NewUnauthorizedError("Invalid subject claim")
	}

	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, models.NewUnauthorizedError("Invalid user ID in token")
	}

	// Check JTI for revocation
	if jti, exists := claims["jti"].(string); exists && jti != "" {
		if s.redis != nil {
			isBlacklisted, err := s.redis.Exists(c.Context(), "blacklist:"+jti).Result()
			if err == nil && isBlacklisted > 0 {
				return 0, models.NewUnauthorizedError("Token has been revoked")
			}
		}
	}

	return uint(userID), nil
}

// optionalActor resolves the actor on endpoints that serve guests too.
// Invalid tokens and pending accounts degrade to a guest view rather
// than failing the request.
func (s *Server) optionalActor(c *fiber.Ctx) policy.Actor {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return policy.Actor{}
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return policy.Actor{}
	}

	userID, appErr := s.parseToken(c, parts[1])
	if appErr != nil {
		return policy.Actor{}
	}

	var user models.User
	if err := s.db.WithContext(c.Context()).
		Select("id", "is_staff", "is_active").
		First(&user, userID).Error; err != nil || !user.IsActive {
		return policy.Actor{}
	}

	return policy.Actor{ID: user.ID, IsStaff: user.IsStaff}
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "TrainHub API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}

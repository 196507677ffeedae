// Package server implements the Atrium HTTP API: authentication with an
// httpOnly session cookie, user administration, items, projects with
// document upload, and project chat.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/atrium-dev/atrium/internal/auth"
	"github.com/atrium-dev/atrium/internal/config"
	"github.com/atrium-dev/atrium/internal/models"
)

// Server represents the HTTP server
type Server struct {
	router      *gin.Engine
	db          *gorm.DB
	config      *config.Config
	logger      zerolog.Logger
	asynqClient *asynq.Client
	version     string
}

// New creates a new server instance
func New(cfg *config.Config, zlog zerolog.Logger, version string) (*Server, error) {
	db, err := initDatabase(cfg, zlog)
	if err != nil {
		return nil, err
	}

	if err := models.AutoMigrate(db); err != nil {
		return nil, err
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}
	auth.InitializeJWT(cfg.Auth.JWTSecret)

	// Asynq client for enqueueing document-processing tasks
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr: cfg.Redis.Address,
	})

	server := &Server{
		db:          db,
		config:      cfg,
		logger:      zlog,
		asynqClient: asynqClient,
		version:     version,
	}

	if cfg.Auth.SeedFixturePath != "" {
		if err := server.loadSeedFixture(cfg.Auth.SeedFixturePath); err != nil {
			return nil, fmt.Errorf("failed to load seed fixture: %w", err)
		}
	}

	server.setupRouter()

	return server, nil
}

// initDatabase initializes the database connection with production settings
func initDatabase(cfg *config.Config, zlog zerolog.Logger) (*gorm.DB, error) {
	const (
		maxOpenConns    = 8
		maxIdleConns    = 4
		connMaxLifetime = 300 * time.Second
		busyTimeout     = 5000
	)

	db, err := gorm.Open(sqlite.Open(cfg.Database.URL), &gorm.Config{
		Logger: gormlogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormlogger.Config{
				LogLevel:                  gormlogger.Error,
				IgnoreRecordNotFoundError: true,
				SlowThreshold:             200 * time.Millisecond,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// WAL mode must be set first for optimal concurrency
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeout),
		"PRAGMA foreign_keys=1",
		"PRAGMA temp_store=2",
	}

	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			zlog.Warn().Str("pragma", pragma).Err(err).Msg("Failed to apply pragma")
		}
	}

	return db, nil
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()

	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	// CORS with credentials so browser clients can carry the session cookie
	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint (no auth required)
	s.router.GET("/health", s.healthCheck)

	v1 := s.router.Group("/api/v1")

	// Public endpoints
	v1.POST("/login/access-token", s.login)
	v1.POST("/logout", s.logout)
	v1.POST("/users/signup", s.signup)
	v1.POST("/password-recovery/:email", s.recoverPassword)
	v1.POST("/reset-password", s.resetPassword)

	// Authenticated API routes (session cookie required)
	api := s.router.Group("/api/v1")
	api.Use(AuthMiddleware(s.db, s.logger))
	{
		// Users: /users/me is dispatched inside the :id handlers
		api.GET("/users", SuperuserMiddleware(s.logger), s.listUsers)
		api.POST("/users", SuperuserMiddleware(s.logger), s.createUser)
		api.GET("/users/:id", s.getUserOrMe)
		api.PATCH("/users/:id", s.updateUserOrMe)
		api.PATCH("/users/:id/password", s.updateMyPassword)
		api.DELETE("/users/:id", s.deleteUserOrMe)

		// Items
		api.GET("/items", s.listItems)
		api.POST("/items", s.createItem)
		api.GET("/items/:id", s.getItem)
		api.PATCH("/items/:id", s.updateItem)
		api.DELETE("/items/:id", s.deleteItem)

		// Projects & documents
		api.GET("/projects", s.listProjects)
		api.POST("/projects", s.createProject)
		api.GET("/projects/:id", s.getProject)
		api.PATCH("/projects/:id", s.updateProject)
		api.DELETE("/projects/:id", s.deleteProject)
		api.GET("/projects/:id/capacity", s.getProjectCapacity)
		api.GET("/projects/:id/documents", s.listDocuments)
		api.POST("/projects/:id/documents", s.uploadDocument)
		api.GET("/documents/:id", s.getDocument)
		api.GET("/documents/:id/progress", s.getDocumentProgress)
		api.POST("/documents/:id/retry", s.retryDocument)
		api.DELETE("/documents/:id", s.deleteDocument)

		// Chat: /chat/conversations/:id lists a project's conversations,
		// the deeper routes address a conversation
		api.GET("/chat/conversations", s.listConversations)
		api.POST("/chat/conversations", s.createConversation)
		api.GET("/chat/conversations/:id", s.listProjectConversations)
		api.PATCH("/chat/conversations/:id/title", s.updateConversationTitle)
		api.GET("/chat/conversations/:id/messages", s.listMessages)
		api.POST("/chat/conversations/:id/messages", s.sendMessage)
	}
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "atrium-api",
		"version":   s.version,
	})
}

// GetDB returns the database connection for use by workers
func (s *Server) GetDB() *gorm.DB {
	return s.db
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until shutdown
func (s *Server) Start() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	srv := &http.Server{
		Addr:              s.config.Server.Addr,
		Handler:           s.router,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 30 * time.Second,
		IdleTimeout:       300 * time.Second,
	}

	go func() {
		s.logger.Info().Str("addr", s.config.Server.Addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	<-sigChan
	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")

	if err := s.asynqClient.Close(); err != nil {
		s.logger.Warn().Err(err).Msg("Error closing Asynq client")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	// Close database connection to flush WAL writes
	if sqlDB, err := s.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			s.logger.Error().Err(err).Msg("Error closing database")
		}
	}

	s.logger.Info().Msg("Server shutdown complete")

	return nil
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"tripmind/backend/internal/adapter"
	"tripmind/backend/internal/advisor"
	"tripmind/backend/internal/extract"
	"tripmind/backend/internal/graph"
	"tripmind/backend/pkg/config"
	apperrors "tripmind/backend/pkg/errors"
	"tripmind/backend/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	// Initialize logger
	if err := logger.Init(cfg.Env); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting preference store server...")

	// Initialize Neo4j driver
	ctx := context.Background()
	driver, err := graph.Connect(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	if err != nil {
		log.Fatal("Failed to connect to Neo4j", zap.Error(err))
	}

	// Initialize dependencies
	store := graph.NewStore(driver)
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			log.Error("Failed to close store", zap.Error(err))
		}
	}()
	llm := adapter.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.ModelID)
	extractor := extract.NewExtractor(llm)
	adv := advisor.New(store, llm, extractor)

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API routes
	api := router.Group("/api")
	{
		// Chat: extract preferences, persist, reply
		api.POST("/chat", func(c *gin.Context) {
			ctx := c.Request.Context()

			var req struct {
				UserID  string `json:"user_id" binding:"required"`
				Message string `json:"message" binding:"required"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			reply, err := adv.Chat(ctx, req.UserID, req.Message)
			if err != nil {
				respondStoreError(c, log, err, "Failed to process chat message")
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"user_id":  req.UserID,
				"response": reply,
			})
		})

		// Flat preference snapshot
		api.GET("/users/:id/preferences", func(c *gin.Context) {
			snapshot, err := store.GetUserData(c.Request.Context(), c.Param("id"))
			if err != nil {
				respondStoreError(c, log, err, "Failed to fetch user data")
				return
			}
			c.JSON(http.StatusOK, snapshot)
		})

		// Merge a delta into the flat profile
		api.POST("/users/:id/preferences", func(c *gin.Context) {
			var delta graph.UserDelta
			if err := c.ShouldBindJSON(&delta); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			snapshot, err := store.UpdateUserData(c.Request.Context(), c.Param("id"), delta)
			if err != nil {
				respondStoreError(c, log, err, "Failed to update user data")
				return
			}
			c.JSON(http.StatusOK, snapshot)
		})

		// Save preferences against an explicit or inherited location
		api.POST("/users/:id/context", func(c *gin.Context) {
			var req struct {
				Location    string                   `json:"location"`
				Preferences []graph.PreferenceUpdate `json:"preferences"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			if err := store.SaveUserDataWithContext(c.Request.Context(), c.Param("id"), req.Location, req.Preferences); err != nil {
				respondStoreError(c, log, err, "Failed to save contextual preferences")
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "saved"})
		})

		// Location-grouped projection
		api.GET("/users/:id/context", func(c *gin.Context) {
			contextual, err := store.GetContextualData(c.Request.Context(), c.Param("id"))
			if err != nil {
				respondStoreError(c, log, err, "Failed to fetch contextual data")
				return
			}
			c.JSON(http.StatusOK, contextual)
		})
	}

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// respondStoreError maps store failures onto distinct HTTP responses.
// A missing location is the caller's condition to handle, not a server
// fault, so it must never collapse into a generic 500.
func respondStoreError(c *gin.Context, log *zap.Logger, err error, msg string) {
	if apperrors.IsNoLocationAvailable(err) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "no location available: supply a location or express one first",
			"code":  "no_location_available",
		})
		return
	}
	if apperrors.IsConnectionFailed(err) {
		log.Error(msg, zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "preference store unreachable",
			"code":  "store_unavailable",
		})
		return
	}
	log.Error(msg, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": msg,
		"code":  "internal_error",
	})
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sems/internal/auth"
	"sems/internal/checkin"
	"sems/internal/config"
	"sems/internal/httpmiddleware"
	"sems/internal/metrics"
	"sems/internal/queue"
	"sems/internal/store"
	"sems/internal/venue"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

type scanRequest struct {
	SessionID  string `json:"session_id" binding:"required"`
	StudentID  string `json:"student_id" binding:"required"`
	ObservedAt string `json:"observed_at"` // RFC3339; defaults to now
}

type slotRequest struct {
	Date     string            `json:"date" binding:"required"` // 2006-01-02
	Period   string            `json:"period"`
	OpensAt  checkin.TimeOfDay `json:"opens_at"`
	ClosesAt checkin.TimeOfDay `json:"closes_at"`
}

type availabilityRequest struct {
	VenueID string        `json:"venue_id" binding:"required"`
	Slots   []slotRequest `json:"slots"` // empty resolves to available
}

func runHTTP(cfg config.App) error {
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		if db == nil {
			return fmt.Errorf("open database: %w", err)
		}
		// Connection opened but ping failed; keep serving so /healthz can
		// report the outage while the database comes back.
		log.Printf("warning: db not reachable: %v", err)
	}
	defer func() {
		if db != nil {
			_ = db.Close()
		}
	}()

	redisClient := store.NewRedis(cfg.RedisAddr)
	tally := store.NewTally(redisClient.Client)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "sems:checkins")
	}

	repo := checkin.NewRepository(db.Client)
	svc := checkin.NewService(repo, repo)
	venueRepo := venue.NewRepository(db.Client)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewLimiter(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db != nil
		status := http.StatusOK
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	r.POST("/v1/scanners/register", func(c *gin.Context) {
		var req struct {
			ScannerID string `json:"scanner_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := repo.RegisterScanner(c.Request.Context(), req.ScannerID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		tokens, err := auth.Issue(req.ScannerID, auth.RoleScanner, cfg.JWTIssuer, cfg.JWTSigningKey, cfg.AccessTTL, cfg.RefreshTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
			return
		}

		_ = repo.SaveRefreshToken(c.Request.Context(), req.ScannerID, tokens.RefreshToken, tokens.RefreshExp)

		c.JSON(http.StatusCreated, gin.H{
			"access_token":  tokens.AccessToken,
			"refresh_token": tokens.RefreshToken,
			"expires_at":    tokens.AccessExp.Unix(),
		})
	})

	authGroup := r.Group("/v1", auth.ScannerAuth(cfg.JWTSigningKey, cfg.JWTIssuer))

	authGroup.POST("/scan", func(c *gin.Context) {
		var req scanRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		observedAt := time.Now().UTC()
		if req.ObservedAt != "" {
			parsed, err := time.Parse(time.RFC3339, req.ObservedAt)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "observed_at must be RFC3339"})
				return
			}
			observedAt = parsed
		}

		result, err := svc.Scan(c.Request.Context(), req.SessionID, req.StudentID, observedAt)
		if err != nil {
			switch {
			case errors.Is(err, checkin.ErrSessionNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
			case errors.Is(err, checkin.ErrStudentNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "unknown student"})
			default:
				log.Printf("scan failed: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "scan failed"})
			}
			return
		}

		metrics.ScanOutcomes.WithLabelValues(string(result.Status)).Inc()

		if result.Record != nil {
			msg, err := queue.NewCheckInMessage(queue.CheckIn{
				RecordID:  result.Record.ID,
				SessionID: result.Record.SessionID,
				Late:      result.Record.Status == checkin.StatusLate,
			})
			if err == nil {
				if err := q.Publish(c.Request.Context(), msg); err != nil {
					log.Printf("queue publish failed: %v", err)
				}
			}
		}

		c.JSON(http.StatusOK, result)
	})

	authGroup.GET("/sessions/:id/checkins", func(c *gin.Context) {
		records, err := repo.ListBySession(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"checkins": records})
	})

	authGroup.GET("/sessions/:id/summary", func(c *gin.Context) {
		sessionID := c.Param("id")
		sess, err := repo.Session(c.Request.Context(), sessionID)
		if err != nil {
			if errors.Is(err, checkin.ErrSessionNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		scanned, late, err := tally.Read(c.Request.Context(), sessionID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		remaining := int64(sess.Expected) - scanned
		if remaining < 0 {
			remaining = 0
		}
		c.JSON(http.StatusOK, gin.H{
			"session_id": sessionID,
			"scanned":    scanned,
			"late":       late,
			"remaining":  remaining,
		})
	})

	authGroup.POST("/venues/availability", func(c *gin.Context) {
		var req availabilityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		slots := make([]venue.Slot, 0, len(req.Slots))
		var from, to time.Time
		for _, s := range req.Slots {
			date, err := time.Parse("2006-01-02", s.Date)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "slot date must be YYYY-MM-DD"})
				return
			}
			if !s.OpensAt.Before(s.ClosesAt) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "slot opens_at must precede closes_at"})
				return
			}
			if from.IsZero() || date.Before(from) {
				from = date
			}
			if to.IsZero() || date.After(to) {
				to = date
			}
			slots = append(slots, venue.Slot{Date: date, Period: s.Period, OpensAt: s.OpensAt, ClosesAt: s.ClosesAt})
		}

		var bookings []venue.Booking
		if len(slots) > 0 {
			loaded, err := venueRepo.ListBookings(c.Request.Context(), req.VenueID, from, to)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			bookings = loaded
		}

		result := venue.Resolve(req.VenueID, slots, bookings)
		metrics.AvailabilityChecks.WithLabelValues(string(result.Status)).Inc()
		c.JSON(http.StatusOK, result)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}

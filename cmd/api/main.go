// cmd/api/main.go
// Main entry point for the application
// This file bootstraps all components and starts the server

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zawajhub/zawaj-backend/internal/auth"
	"github.com/zawajhub/zawaj-backend/internal/common/database"
	"github.com/zawajhub/zawaj-backend/internal/common/utils"
	"github.com/zawajhub/zawaj-backend/internal/config"
	"github.com/zawajhub/zawaj-backend/internal/matching"
	"github.com/zawajhub/zawaj-backend/internal/messaging"
	"github.com/zawajhub/zawaj-backend/internal/notification"
	"github.com/zawajhub/zawaj-backend/internal/profile"
)

var startTime = time.Now()

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	log.Println("========================================")
	log.Println("🚀 Starting ZawajHub Matchmaking API")
	log.Println("========================================")

	// 1. Load environment variables
	log.Println("📁 Step 1: Loading .env file...")
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found (%v), using environment variables", err)
	} else {
		log.Println("✅ .env file loaded")
	}

	// 2. Load and validate configuration
	log.Println("📋 Step 2: Loading configuration...")
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("❌ Configuration validation failed: ", err)
	}
	log.Println("✅ Configuration is valid")

	// 3. Initialize structured logging
	if err := utils.InitLogger(cfg.LogLevel, cfg.Environment); err != nil {
		log.Fatal("❌ Failed to initialize logger: ", err)
	}
	defer utils.Sync()

	// 4. Connect to PostgreSQL
	log.Println("🗄️  Step 4: Connecting to PostgreSQL...")
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("❌ Failed to connect to PostgreSQL: ", err)
	}
	defer db.Close()
	log.Println("✅ Connected to PostgreSQL")

	// 5. Connect to Redis (optional)
	log.Println("📮 Step 5: Connecting to Redis...")
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️  Redis unavailable (%v), continuing without it", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Println("✅ Connected to Redis")
		}
	} else {
		log.Println("⚠️  Redis URL not configured, skipping")
	}

	// 6. Run database migrations
	log.Println("🔨 Step 6: Running database migrations...")
	if err := runMigrations(db); err != nil {
		log.Fatal("❌ Failed to run migrations: ", err)
	}
	log.Println("✅ Database migrations completed")

	// 7. Initialize Auth system
	log.Println("🔐 Step 7: Initializing authentication...")
	authRepo := auth.NewPostgresRepository(db)
	authService := auth.NewService(authRepo, redisClient, &auth.Config{
		JWTSecret:          cfg.JWTSecret,
		AccessTokenExpiry:  cfg.AccessTokenExpiry,
		RefreshTokenExpiry: cfg.RefreshTokenExpiry,
		BCryptCost:         cfg.BCryptCost,
	})
	authHandler := auth.NewHandler(authService)
	authMiddleware := auth.NewMiddleware(authService)
	log.Println("✅ Authentication initialized")

	// 8. Initialize Profile system
	log.Println("👤 Step 8: Initializing profiles...")
	profileRepo := profile.NewPostgresRepository(db)
	profileService := profile.NewService(profileRepo)
	profileHandler := profile.NewHandler(profileService)
	log.Println("✅ Profiles initialized")

	// 9. Initialize Notification system
	log.Println("🔔 Step 9: Initializing notifications...")
	notificationRepo := notification.NewPostgresRepository(db)

	var emailSender notification.EmailSender
	switch cfg.EmailProvider {
	case "sendgrid":
		emailSender = notification.NewSendGridEmailService(cfg.SendGridAPIKey, cfg.EmailFrom)
		log.Println("   ✅ Using SendGrid for email")
	default:
		emailSender = notification.NewMockEmailService()
		log.Println("   ⚠️  Using mock email sender (development mode)")
	}

	var smsSender notification.SMSSender
	switch cfg.SMSProvider {
	case "twilio":
		smsSender = notification.NewTwilioSMSService(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber)
		log.Println("   ✅ Using Twilio for SMS")
	default:
		smsSender = notification.NewMockSMSService()
		log.Println("   ⚠️  Using mock SMS sender (development mode)")
	}

	notificationService := notification.NewService(notificationRepo, emailSender, smsSender, authService, notification.Config{
		EnableEmail: cfg.EnableEmailNotifications,
		EnableSMS:   cfg.EnableSMSNotifications,
	})
	notificationHandler := notification.NewHandler(notificationService)
	log.Println("✅ Notifications initialized")

	// 10. Initialize Matching engine
	log.Println("💞 Step 10: Initializing matching engine...")
	matchRepo := matching.NewPostgresRepository(db)

	ruleScorer := matching.NewRuleScorer(matching.Weights{
		Religious: cfg.ReligiousWeight,
		Location:  cfg.LocationWeight,
		AgeFit:    cfg.AgeWeight,
		Education: cfg.EducationWeight,
		Timeline:  cfg.TimelineWeight,
		Interests: cfg.InterestsWeight,
	})

	var scorer matching.Scorer = ruleScorer
	if cfg.AIScoringEnabled && cfg.AIAPIKey != "" {
		aiScorer := matching.NewAIScorer(matching.AIScorerConfig{
			APIKey:    cfg.AIAPIKey,
			APIURL:    cfg.AIAPIURL,
			Model:     cfg.AIModel,
			Timeout:   cfg.AITimeout,
			RateLimit: cfg.AIRateLimit,
			RateWait:  cfg.AIRateWindow,
		}, redisClient)
		scorer = matching.NewFallbackScorer(aiScorer, ruleScorer)
		log.Println("   ✅ AI scoring enabled with rule-based fallback")
	} else {
		log.Println("   ✅ Using rule-based scoring")
	}

	matchService := matching.NewService(matchRepo, profileRepo, scorer, notificationService, matching.Config{
		CompatibilityThreshold: cfg.CompatibilityThreshold,
		MaxMatchesPerRun:       cfg.MaxMatchesPerRun,
	})
	matchHandler := matching.NewHandler(matchService)
	matchAdminHandler := matching.NewAdminHandler(matchService)
	log.Println("✅ Matching engine initialized")

	// 11. Initialize Messaging
	log.Println("💬 Step 11: Initializing messaging...")
	messagingRepo := messaging.NewPostgresRepository(db)
	messagingHub := messaging.NewHub()
	messagingService := messaging.NewService(messagingRepo, matchService, notificationService, messagingHub)
	messagingHandler := messaging.NewHandler(messagingService, messagingHub)
	log.Println("✅ Messaging initialized")

	// 12. Setup routes
	log.Println("🛣️  Step 12: Setting up routes...")
	router := mux.NewRouter()

	router.HandleFunc("/health", healthCheck).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	auth.RegisterRoutes(router, authHandler, authMiddleware)
	log.Println("   ✅ Auth routes registered")

	profileRouter := chi.NewRouter()
	profile.RegisterRoutes(profileRouter, profileHandler, authMiddleware)
	router.PathPrefix("/api/v1/profile").Handler(profileRouter)
	router.PathPrefix("/api/v1/users").Handler(profileRouter)
	log.Println("   ✅ Profile routes registered")

	matching.RegisterRoutes(router, matchHandler, matchAdminHandler, authMiddleware)
	log.Println("   ✅ Match routes registered")

	messaging.RegisterRoutes(router, messagingHandler, authMiddleware)
	log.Println("   ✅ Messaging routes registered")

	notification.RegisterRoutes(router, notificationHandler, authMiddleware)
	log.Println("   ✅ Notification routes registered")

	router.Use(loggingMiddleware)
	router.Use(corsMiddleware)

	// 13. Start the daily generation scheduler
	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()
	scheduler := matching.NewScheduler(matchService, cfg.GenerationHour)
	go scheduler.Start(schedulerCtx)
	log.Println("✅ Generation scheduler started")

	// 14. Create and start HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Println("========================================")
		log.Printf("🚀 Server listening on http://localhost%s", srv.Addr)
		log.Printf("🌍 Environment: %s", cfg.Environment)
		log.Println("========================================")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("❌ Failed to start server: ", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("⚠️  Shutdown signal received...")
	stopScheduler()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("❌ Server forced to shutdown: ", err)
	}

	log.Println("✅ Server exited gracefully")
}

// healthCheck returns server health status
func healthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(startTime).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// loggingMiddleware logs all requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		log.Printf("← %s %s [%d] %v", r.Method, r.RequestURI, wrapped.statusCode, time.Since(start))
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

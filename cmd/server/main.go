// Package main is the entry point for the DBU student union portal server.
// It provides a REST API for union authentication (students via the
// institutional domain, officials via the credential registry), election
// voting with identity verification, complaint handling, and club
// registration.
//
// Architecture:
//   - Session state lives in Redis (or in-memory in development)
//   - Elections, complaints and clubs persist in PostgreSQL; without a
//     DATABASE_URL the server runs on seeded in-memory repositories
//   - Admin logins are recorded in a capped access log
//   - A Merkle root over vote receipts is published for tamper detection
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/dbu-union/portal-server/internal/config"
	"github.com/dbu-union/portal-server/internal/database"
	"github.com/dbu-union/portal-server/internal/handlers"
	"github.com/dbu-union/portal-server/internal/middleware"
	"github.com/dbu-union/portal-server/internal/registry"
	"github.com/dbu-union/portal-server/internal/services"
	"github.com/dbu-union/portal-server/internal/session"
	"github.com/dbu-union/portal-server/internal/storage/memory"
	"github.com/dbu-union/portal-server/internal/storage/postgres"
)

func main() {
	// Initialize structured logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	sugar := logger.Sugar()

	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		sugar.Fatalf("Failed to load config: %v", err)
	}

	sugar.Infow("Starting DBU Union Portal Server",
		"port", cfg.Port,
		"env", cfg.Environment,
		"domain", cfg.InstitutionDomain,
	)

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Storage: PostgreSQL when configured, seeded in-memory otherwise
	var (
		electionRepo  services.ElectionRepo
		complaintRepo services.ComplaintRepo
		clubRepo      services.ClubRepo
	)
	db, err := connectDatabase(rootCtx, cfg, sugar)
	if err != nil {
		sugar.Fatalf("Failed to connect to database: %v", err)
	}
	if db != nil {
		defer db.Close()
		electionRepo = postgres.NewElectionRepo(db)
		complaintRepo = postgres.NewComplaintRepo(db)
		clubRepo = postgres.NewClubRepo(db)
	} else {
		elections := memory.NewElectionRepo()
		memory.SeedElections(elections)
		clubs := memory.NewClubRepo()
		memory.SeedClubs(clubs)
		electionRepo = elections
		complaintRepo = memory.NewComplaintRepo()
		clubRepo = clubs
	}

	// Session store: Redis when reachable, in-memory fallback in development
	store := connectSessionStore(rootCtx, cfg, sugar)

	// Credential verification: bcrypt against the configured hash, or the
	// development mock that accepts any non-empty password
	var verifier services.CredentialVerifier
	if cfg.AdminPasswordHash != "" {
		verifier = services.NewBcryptVerifier(cfg.AdminPasswordHash)
	} else {
		sugar.Warn("ADMIN_PASSWORD_HASH not set, using mock credential verifier")
		verifier = &services.MockVerifier{Delay: 300 * time.Millisecond}
	}

	// Initialize services
	creds := registry.New()
	access := services.NewAccessController()
	sessions := services.NewSessionManager(creds, store, verifier,
		&services.MockGoogleProvider{Delay: 500 * time.Millisecond},
		cfg.InstitutionDomain, cfg.JWTSecret, sugar)
	ledgerSvc := services.NewLedgerService(sugar)
	electionSvc := services.NewElectionService(electionRepo, ledgerSvc, sugar)
	complaintSvc := services.NewComplaintService(complaintRepo, access, sugar)
	clubSvc := services.NewClubService(clubRepo, access, sugar)
	workflows := services.NewWorkflowSet(cfg.StudentIDPrefix)

	// Start background ledger worker (rebuilds the vote Merkle tree)
	ledgerWorker := services.NewLedgerWorker(electionSvc, sugar)
	go ledgerWorker.Start(rootCtx, time.Duration(cfg.LedgerRebuildInterval)*time.Minute)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(sessions, access, workflows, sugar)
	electionHandler := handlers.NewElectionHandler(electionSvc, workflows, sugar)
	complaintHandler := handlers.NewComplaintHandler(complaintSvc, sugar)
	clubHandler := handlers.NewClubHandler(clubSvc, sugar)
	adminHandler := handlers.NewAdminHandler(store, sugar)
	integrityHandler := handlers.NewIntegrityHandler(ledgerSvc, sugar)
	healthHandler := handlers.NewHealthHandler(db, store, sugar)

	// Build router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.SecurityHeaders())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Rate limiting
	r.Use(middleware.RateLimit(cfg.RateLimitRPM))

	requireSession := middleware.RequireSession(sessions)

	// API Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", healthHandler.Check)
		r.Get("/health/ready", healthHandler.Ready)

		// Auth endpoints
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/login/google", authHandler.GoogleLogin)

			r.Group(func(r chi.Router) {
				r.Use(requireSession)
				r.Post("/logout", authHandler.Logout)
				r.Get("/session", authHandler.Session)
			})
		})

		// Election endpoints
		r.Route("/elections", func(r chi.Router) {
			r.Get("/", electionHandler.List)
			r.Get("/{id}", electionHandler.Get)

			// Voting requires a session; verification state is per-session
			r.Group(func(r chi.Router) {
				r.Use(requireSession)
				r.Post("/{id}/verification", electionHandler.StartVerification)
				r.Delete("/{id}/verification", electionHandler.CancelVerification)
				r.Post("/{id}/verification/student-id", electionHandler.SubmitStudentID)
				r.Post("/{id}/verification/document", electionHandler.AttachDocument)
				r.Delete("/{id}/verification/document", electionHandler.RemoveDocument)
				r.Post("/{id}/verification/advance", electionHandler.AdvanceVerification)
				r.Post("/{id}/vote", electionHandler.CastVote)
			})
		})

		// Complaint endpoints
		r.Route("/complaints", func(r chi.Router) {
			r.Use(requireSession)
			r.Post("/", complaintHandler.Submit)
			r.Get("/", complaintHandler.List)
			r.Get("/stats", complaintHandler.Stats)
			r.Get("/{id}", complaintHandler.Get)
			r.Post("/{id}/responses", complaintHandler.Respond)
			r.Put("/{id}/status", complaintHandler.UpdateStatus)
		})

		// Club endpoints
		r.Route("/clubs", func(r chi.Router) {
			r.Get("/", clubHandler.List)
			r.Get("/{id}", clubHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(requireSession)
				r.Post("/", clubHandler.Register)
				r.Post("/{id}/approve", clubHandler.Approve)
			})
		})

		// Admin access log
		r.Route("/admin", func(r chi.Router) {
			r.Use(requireSession)
			r.Use(middleware.RequirePermission(access, "audit_all"))
			r.Get("/access-log", adminHandler.AccessLog)
		})

		// Integrity endpoints (vote ledger)
		r.Route("/integrity", func(r chi.Router) {
			r.Get("/root", integrityHandler.Root)
			r.Get("/proof/{index}", integrityHandler.Proof)
			r.Post("/verify", integrityHandler.Verify)
		})
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sugar.Infof("Server listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	sugar.Info("Shutting down gracefully...")
	rootCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		sugar.Fatalf("Forced shutdown: %v", err)
	}

	sugar.Info("Server stopped")
}

// connectDatabase opens the PostgreSQL pool when DATABASE_URL is set. In
// development the server may run without one; production config validation
// already requires it.
func connectDatabase(ctx context.Context, cfg *config.Config, sugar *zap.SugaredLogger) (*pgxpool.Pool, error) {
	if cfg.DatabaseURL == "" {
		sugar.Warn("DATABASE_URL not set, using seeded in-memory repositories")
		return nil, nil
	}
	return database.NewPool(ctx, cfg.DatabaseURL)
}

// connectSessionStore prefers Redis but falls back to the in-memory store
// outside production so the server starts without infrastructure.
func connectSessionStore(ctx context.Context, cfg *config.Config, sugar *zap.SugaredLogger) session.Store {
	store, err := session.NewRedisStore(ctx, cfg.RedisURL, cfg.AdminLogRetention)
	if err == nil {
		return store
	}
	if cfg.Environment == "production" {
		sugar.Fatalf("Failed to connect to Redis: %v", err)
	}
	sugar.Warnw("Redis unavailable, using in-memory session store", "error", err)
	return session.NewMemoryStore(cfg.AdminLogRetention)
}

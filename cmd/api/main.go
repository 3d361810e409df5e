package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sadh911122-sudo/Dark-Triad/internal/auth"
	"github.com/sadh911122-sudo/Dark-Triad/internal/background"
	"github.com/sadh911122-sudo/Dark-Triad/internal/config"
	"github.com/sadh911122-sudo/Dark-Triad/internal/database"
	"github.com/sadh911122-sudo/Dark-Triad/internal/handlers"
	"github.com/sadh911122-sudo/Dark-Triad/internal/middleware"
	"github.com/sadh911122-sudo/Dark-Triad/internal/models"
	"github.com/sadh911122-sudo/Dark-Triad/internal/repositories"
	"github.com/sadh911122-sudo/Dark-Triad/internal/routes"
	"github.com/sadh911122-sudo/Dark-Triad/internal/services"
	"github.com/sadh911122-sudo/Dark-Triad/internal/sessionguard"
	"github.com/sadh911122-sudo/Dark-Triad/internal/store"
	storepostgres "github.com/sadh911122-sudo/Dark-Triad/internal/store/postgres"
	storeremote "github.com/sadh911122-sudo/Dark-Triad/internal/store/remote"
	pkgauth "github.com/sadh911122-sudo/Dark-Triad/pkg/auth"
	pkglogger "github.com/sadh911122-sudo/Dark-Triad/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		slog.String("env", cfg.Server.Env),
		slog.String("store_backend", cfg.Store.Backend))

	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Repositories and stores
	adminRepo := repositories.NewAdminRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)

	resultQueue := storepostgres.NewResultQueue(db)

	var participantStore store.ParticipantStore
	var resultStore store.ResultStore
	var tester store.Tester

	emailService := buildEmailService(cfg, logger)

	if cfg.Store.Backend == config.BackendRemote {
		client := storeremote.NewClient(cfg.Store.RemoteURL, logger)
		participantStore = storeremote.NewParticipantStore(client)
		remoteResults := storeremote.NewResultStore(client)
		resultStore = remoteResults
		tester = remoteResults

		// The remote service owns the result mail template.
		emailService = services.NewRemoteEmailService(storeremote.NewMailer(client), emailService)
	} else {
		participantStore = storepostgres.NewParticipantStore(db)
		pgResults := storepostgres.NewResultStore(db)
		resultStore = pgResults
		tester = pgResults
	}

	// Services
	auditLogger := pkglogger.NewAuditLogger(logger)
	tokenManager := auth.NewTokenManager(cfg.Session.JWTSecret)

	authService, err := services.NewAuthService(adminRepo, sessionRepo, tokenManager, sessionguard.Config{
		Timeout:          cfg.Session.Timeout,
		WarningWindow:    cfg.Session.WarningWindow,
		ActivityDebounce: cfg.Session.ActivityDebounce,
	}, logger, auditLogger)
	if err != nil {
		logger.Error("failed to initialize auth service", slog.Any("error", err))
		os.Exit(1)
	}
	defer authService.Close()

	participantService := services.NewParticipantService(participantStore, emailService, cfg.Bootstrap.AdminID, logger, auditLogger)
	resultService := services.NewResultService(resultStore, resultQueue, participantService, emailService, logger)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, nil)
	participantHandler := handlers.NewParticipantHandler(participantService)
	resultHandler := handlers.NewResultHandler(resultService)
	storeHandler := handlers.NewStoreHandler(tester, cfg.Store.Backend)
	healthHandler := handlers.NewHealthHandler(db.HealthCheck)

	// Bootstrap the default admin account on an empty collection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ensureDefaultAdmin(ctx, adminRepo, cfg.Bootstrap, logger); err != nil {
		logger.Error("failed to ensure default admin", slog.Any("error", err))
	}
	cancel()

	// Background maintenance: idle session sweep + queue reconciliation
	manager := background.NewManager(
		sessionRepo,
		resultService,
		logger,
		auditLogger,
		cfg.Session.Timeout,
		cfg.Session.CleanupInterval,
		cfg.Store.ReconcileInterval,
	)

	// Router
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.SecurityHeaders(cfg.Server.Env))
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(middleware.SecureLogger(logger))
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.RateLimitByIP(middleware.DefaultGlobalRateLimit()))
	router.Use(chimiddleware.Timeout(60 * time.Second))

	routes.RegisterRoutes(router, authService, authHandler, participantHandler, resultHandler, storeHandler, healthHandler)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	managerCtx, managerCancel := context.WithCancel(context.Background())
	defer managerCancel()

	go manager.Start(managerCtx)

	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	managerCancel()
	manager.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

// buildEmailService picks SES or the logging no-op based on config.
func buildEmailService(cfg *config.Config, logger *slog.Logger) services.EmailService {
	if !cfg.Email.Enabled {
		return services.NewNoopEmailService(logger)
	}

	emailService, err := services.NewAWSSESEmailService(
		cfg.Email.AWSRegion,
		cfg.Email.FromAddress,
		cfg.Email.SurveyURLBase,
		logger,
	)
	if err != nil {
		logger.Error("failed to initialize SES, falling back to no-op mail", slog.Any("error", err))
		return services.NewNoopEmailService(logger)
	}

	return emailService
}

// ensureDefaultAdmin provisions the initial super_admin account when
// the collection is empty. The fixed initial password is hashed and
// expected to be rotated after first login.
func ensureDefaultAdmin(ctx context.Context, adminRepo *repositories.AdminRepository, cfg config.BootstrapConfig, logger *slog.Logger) error {
	count, err := adminRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	if _, err := adminRepo.GetByID(ctx, cfg.AdminID); err == nil {
		return nil
	} else if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to check for default admin: %w", err)
	}

	hashedPassword, err := pkgauth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash default admin password: %w", err)
	}

	_, err = adminRepo.Create(ctx, &models.Admin{
		ID:           cfg.AdminID,
		PasswordHash: hashedPassword,
		Name:         "Administrator",
		Email:        "",
		Role:         models.RoleSuperAdmin,
		Status:       models.StatusActive,
	})
	if err != nil {
		return fmt.Errorf("failed to create default admin: %w", err)
	}

	logger.Info("default admin account provisioned", slog.String("admin_id", cfg.AdminID))
	return nil
}

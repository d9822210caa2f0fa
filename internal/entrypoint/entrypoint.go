package entrypoint

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	auditrepo "github.com/mrlokans/bookshelf/internal/database/audit"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/database/posts"
	"github.com/mrlokans/bookshelf/internal/database/users"
	http_controllers "github.com/mrlokans/bookshelf/internal/http"
	"github.com/mrlokans/bookshelf/internal/scheduler"
	"github.com/mrlokans/bookshelf/internal/tasks"
)

const csrfSecretLength = 32

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill -9 can't be caught, so only SIGINT and SIGTERM are handled
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop taking requests before background workers go away
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

// csrfSecret decodes AUTH_SESSION_SECRET (base64) or generates a random one.
func csrfSecret(configured string) ([]byte, error) {
	if configured != "" {
		secret, err := base64.StdEncoding.DecodeString(configured)
		if err != nil || len(secret) < csrfSecretLength {
			return nil, fmt.Errorf("AUTH_SESSION_SECRET must be base64 encoding at least %d bytes", csrfSecretLength)
		}
		return secret[:csrfSecretLength], nil
	}

	secret := make([]byte, csrfSecretLength)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("failed to generate CSRF secret: %w", err)
	}
	log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	return secret, nil
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Bookshelf v%s", version)

	if cfg.Auth.BcryptCost < config.MinBcryptCost {
		log.Printf("WARNING: AUTH_BCRYPT_COST=%d is below %d. Use low costs only for tests.", cfg.Auth.BcryptCost, config.MinBcryptCost)
	}

	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	userRepo := users.NewRepository(db.DB, cfg.Auth.BcryptCost)
	postRepo := posts.NewRepository(db.DB)
	bookRepo := books.NewRepository(db.DB)
	auditService := audit.NewService(auditrepo.NewRepository(db.DB))

	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// The SQLite session store shares the main database file
	var sessionDB *sql.DB
	if db.Driver == config.DriverSQLite {
		sessionDB, err = db.SQLDB()
		if err != nil {
			log.Fatalf("Failed to get SQL DB for sessions: %v", err)
		}
	}

	sessionStore, err := auth.NewSessionStore(appCtx, cfg.Sessions, sessionDB)
	if err != nil {
		log.Fatalf("Failed to initialize session store: %v", err)
	}
	sessionManager := auth.NewSessionManager(sessionStore, cfg.Auth)
	log.Printf("Session store: %s", cfg.Sessions.Store)

	rateLimiter := auth.NewRateLimiter(auth.RateLimitConfigFromAuth(cfg.Auth))
	defer rateLimiter.Stop()

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.ConfigFromApp(cfg.Tasks))
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewPurgeUserContentQueue(postRepo, bookRepo),
			tasks.NewCleanupAuditEventsQueue(auditService),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(appCtx)
		go taskClient.Start(taskCtx)
	}

	var maintenance *scheduler.MaintenanceScheduler
	if cfg.Maintenance.Enabled {
		// A nil *tasks.Client must not become a non-nil interface
		var enqueuer scheduler.AuditCleanupEnqueuer
		if taskClient != nil {
			enqueuer = taskClient
		}
		maintenance = scheduler.NewMaintenanceScheduler(cfg.Maintenance.Schedule, cfg.Audit.RetentionDays,
			enqueuer, auditService, postRepo, bookRepo)
		if err := maintenance.Start(appCtx); err != nil {
			log.Fatalf("Failed to start maintenance scheduler: %v", err)
		}
	}

	routerCfg := http_controllers.RouterConfig{
		Users:         userRepo,
		Posts:         postRepo,
		Books:         bookRepo,
		Database:      db,
		Sessions:      sessionManager,
		RateLimiter:   rateLimiter,
		Auditor:       auditService,
		SecureCookies: cfg.Auth.SecureCookies,
		Version:       version,
	}
	if taskClient != nil {
		routerCfg.Purger = taskClient
	}
	if maintenance != nil {
		routerCfg.Maintenance = maintenance
	}
	if cfg.Auth.CSRFEnabled {
		routerCfg.CSRFSecret, err = csrfSecret(cfg.Auth.SessionSecret)
		if err != nil {
			log.Fatalf("Failed to configure CSRF protection: %v", err)
		}
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if maintenance != nil {
			maintenance.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
		auditService.Wait()
	}

	Serve(router, cfg, onShutdown)
}

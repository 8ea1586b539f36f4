package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cutroom/internal/auth"
	"cutroom/internal/config"
	"cutroom/internal/handler"
	"cutroom/internal/middleware"
	"cutroom/internal/repository/postgres"
	postgresMedia "cutroom/internal/repository/postgres/media"
	serviceAuth "cutroom/internal/service/auth"
	serviceMedia "cutroom/internal/service/media"
	"cutroom/internal/storage/blobfs"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logOutput, logCloser := config.SetupLogOutput(cfg, "server")
	defer logCloser.Close()
	logger := config.NewLogger(cfg, logOutput)
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"blob_root", cfg.BlobRoot,
		"max_folder_depth", cfg.MaxFolderDepth,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// JWT verification is optional in dev, where the X-User-ID header is accepted instead
	var jwtVerifier auth.JWTVerifier
	if cfg.JWKSURL != "" {
		v, err := auth.NewJWTVerifier(ctx, cfg.JWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer v.Close()
		jwtVerifier = v
	} else if !cfg.IsDev() {
		log.Fatal("JWKS_URL is required outside dev")
	} else {
		logger.Warn("DEV MODE: JWT auth disabled, trusting " + middleware.DevUserHeader + " header")
	}

	// Create pgx connection pool
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", pool.Config().MaxConns,
		"min_conns", pool.Config().MinConns,
	)

	if cfg.IsDev() {
		if err := postgres.Migrate(pool, postgres.MigrateUp, logger); err != nil {
			log.Fatalf("Failed to apply migrations: %v", err)
		}
	}

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(),
		Logger: logger,
	}
	repos := serviceMedia.Repositories{
		Folders:  postgresMedia.NewFolderRepository(repoConfig),
		Assets:   postgresMedia.NewAssetRepository(repoConfig),
		Versions: postgresMedia.NewVersionRepository(repoConfig),
	}
	collaboratorRepo := postgresMedia.NewCollaboratorRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)
	lockManager := postgres.NewAdvisoryLockManager(pool)

	// Blob storage
	blobStore, err := blobfs.NewOSStore(cfg.BlobRoot, cfg.BlobBaseURL)
	if err != nil {
		log.Fatalf("Failed to open blob store: %v", err)
	}

	// Capability policy
	policy, err := serviceAuth.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		log.Fatalf("Failed to load capability policy: %v", err)
	}
	authorizer := serviceAuth.NewPolicyAuthorizer(policy, serviceAuth.NewRoleGate(collaboratorRepo, logger.With("component", "role_gate")))
	logger.Info("capability policy loaded", "policy_file", cfg.PolicyFile)

	services := serviceMedia.SetupServices(repos, blobStore, txManager, lockManager, authorizer, cfg, logger)
	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()
	handler.NewRoutes(services.Folders, services.Deletion, services.Versions, pool, logger).Register(mux)

	// Serve blobs locally when the base URL points back at this server
	publicPaths := []string{"/health"}
	if blobPath := localBlobPath(cfg.BlobBaseURL); blobPath != "" {
		mux.Handle("GET "+blobPath+"/", http.StripPrefix(blobPath, blobStore.Handler()))
		logger.Info("serving blobs", "path", blobPath)
	}

	// Build middleware chain
	// Order: CORS → Recovery → Auth → Logging → Routes
	var h http.Handler = mux
	h = middleware.RequestLogger(logger)(h)
	h = middleware.AuthMiddleware(middleware.AuthOptions{
		Verifier:       jwtVerifier,
		AllowDevHeader: cfg.IsDev(),
		PublicPaths:    publicPaths,
		Logger:         logger,
	})(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.DevUserHeader},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  0, // Uploads can be large; bounded by MaxUploadBytes instead
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to start server: %v", err)
	}
	logger.Info("server stopped")
}

// localBlobPath returns the URL path to serve blobs under when baseURL is served by this process.
// A base URL on another host (a CDN or object store front) is served elsewhere.
func localBlobPath(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	host := u.Hostname()
	if host != "" && host != "localhost" && host != "127.0.0.1" {
		return ""
	}
	return strings.TrimRight(u.Path, "/")
}

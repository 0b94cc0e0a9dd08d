package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/cors"

	"sigedoc/internal/auth"
	"sigedoc/internal/authz"
	"sigedoc/internal/config"
	"sigedoc/internal/handler"
	"sigedoc/internal/middleware"
	"sigedoc/internal/obs"
	"sigedoc/internal/render"
	"sigedoc/internal/repository/postgres"
	"sigedoc/internal/service/actas"
	"sigedoc/internal/service/docflow"
	"sigedoc/internal/storage"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// JWT verifier against the identity provider's JWKS endpoint
	jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Repositories
	tables := postgres.NewTableNames(cfg.TablePrefix)
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	docRepo := postgres.NewDocumentRepository(repoConfig)
	actaRepo := postgres.NewActaRepository(repoConfig)
	permRepo := postgres.NewPermissionRepository(repoConfig)

	// Object storage client
	store := storage.NewClient(cfg.StorageURL, cfg.StorageBucket, cfg.StorageKey, logger)

	// Template rendering collaborator (optional)
	var renderer actas.Renderer
	if cfg.RenderURL != "" {
		renderer = render.NewClient(cfg.RenderURL, logger)
		logger.Info("render service configured", "url", cfg.RenderURL)
	}

	// Metrics
	metrics := obs.NewMetrics(prometheus.DefaultRegisterer)

	// Authorization engines: one permission namespace per record kind
	docEngine := authz.New("calidad:documentos")
	actaEngine := authz.New("auditorias:actas")

	// Services
	docflowService := docflow.NewService(docRepo, docRepo, store, docEngine, metrics, logger)
	actaService := actas.NewService(actaRepo, actaEngine, renderer, logger)

	// Actor resolution joins verified claims with granted permissions
	actorResolver := auth.NewActorResolver(permRepo, logger)

	// Handlers
	docHandler := handler.NewDocumentHandler(docflowService, logger)
	actaHandler := handler.NewActaHandler(actaService, logger)
	permHandler := handler.NewPermissionHandler(permRepo, logger)

	logger.Info("services initialized")

	// HTTP router (Go 1.22+ enhanced patterns). API routes sit behind
	// the auth middleware; health and metrics do not.
	api := http.NewServeMux()

	// Document routes
	api.HandleFunc("POST /api/documents", docHandler.Upload)
	api.HandleFunc("GET /api/documents", docHandler.List)
	api.HandleFunc("GET /api/documents/{id}", docHandler.Get)
	api.HandleFunc("GET /api/documents/{id}/versions", docHandler.ListVersions)
	api.HandleFunc("GET /api/documents/{id}/download", docHandler.Download)
	api.HandleFunc("GET /api/documents/{id}/signed-url", docHandler.SignedURL)
	api.HandleFunc("POST /api/documents/{id}/archive", docHandler.Archive)
	api.HandleFunc("POST /api/documents/{id}/approve", docHandler.Approve)

	// Acta routes
	api.HandleFunc("POST /api/actas", actaHandler.Create)
	api.HandleFunc("GET /api/actas", actaHandler.List)
	api.HandleFunc("GET /api/actas/{id}", actaHandler.Get)
	api.HandleFunc("GET /api/actas/{id}/document", actaHandler.RenderDocument)
	api.HandleFunc("POST /api/actas/{id}/approve", actaHandler.Approve)
	api.HandleFunc("POST /api/actas/{id}/archive", actaHandler.Archive)
	api.HandleFunc("DELETE /api/actas/{id}", actaHandler.Delete)

	// Permission routes
	api.HandleFunc("GET /api/permissions", permHandler.Catalog)
	api.HandleFunc("GET /api/users/{id}/permissions", permHandler.UserPermissions)
	api.HandleFunc("POST /api/users/{id}/permissions", permHandler.Assign)
	api.HandleFunc("DELETE /api/users/{id}/permissions", permHandler.Revoke)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	mux.Handle("GET /metrics", obs.Handler())
	mux.Handle("/api/", middleware.Auth(jwtVerifier, actorResolver)(api))

	// Build middleware chain, applied in reverse order (they wrap
	// each other). Order: CORS -> Recovery -> RequestID -> Routes
	var root http.Handler = mux
	root = middleware.RequestID(root)
	root = middleware.Recovery(logger)(root)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

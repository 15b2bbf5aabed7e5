package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"docsgraph/internal/auth"
	"docsgraph/internal/config"
	"docsgraph/internal/domain/models"
	"docsgraph/internal/domain/repositories"
	docsysRepo "docsgraph/internal/domain/repositories/docsystem"
	"docsgraph/internal/dspace"
	"docsgraph/internal/graph"
	"docsgraph/internal/httputil"
	"docsgraph/internal/loader"
	"docsgraph/internal/metrics"
	"docsgraph/internal/middleware"
	"docsgraph/internal/repository/memory"
	"docsgraph/internal/repository/postgres"
	postgresDocsys "docsgraph/internal/repository/postgres/docsystem"
	"docsgraph/internal/seed"
	serviceAuth "docsgraph/internal/service/auth"
	serviceDocsys "docsgraph/internal/service/docsystem"
	"docsgraph/internal/storage"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"
)

const maxDSpaceCalls = 3

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, logCloser, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// stores is the persistence backend chosen by STORAGE.
type stores struct {
	documents docsysRepo.DocumentRepository
	folders   docsysRepo.FolderRepository
	tx        repositories.TransactionManager
	close     func()
}

func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stores, error) {
	if cfg.Storage == "memory" {
		logger.Warn("using in-memory storage, data is lost on exit")
		store := memory.NewStore()
		return &stores{
			documents: memory.NewDocumentRepository(store),
			folders:   memory.NewFolderRepository(store),
			tx:        memory.NewTransactionManager(),
			close:     func() {},
		}, nil
	}

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("database connected", "table_prefix", cfg.TablePrefix)

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	return &stores{
		documents: postgresDocsys.NewDocumentRepository(repoConfig),
		folders:   postgresDocsys.NewFolderRepository(repoConfig),
		tx:        postgres.NewTransactionManager(pool, logger),
		close:     pool.Close,
	}, nil
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"storage", cfg.Storage,
		"dspace_url", cfg.DSpaceURL,
	)

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer st.close()

	if cfg.DemoData {
		data, err := seed.Load(cfg.DemoDataFile)
		if err != nil {
			return err
		}
		if _, err := seed.NewImporter(st.documents, st.folders, st.tx, logger).Import(ctx, data); err != nil {
			return fmt.Errorf("import demo data: %w", err)
		}
	}

	m := metrics.New()
	client := dspace.New(dspace.Config{
		BaseURL:  cfg.DSpaceURL,
		Username: cfg.DSpaceUser,
		Password: cfg.DSpacePassword,
		Language: cfg.DSpaceLanguage,
		Timeout:  cfg.DSpaceTimeout,
		Recorder: m,
		Logger:   logger,
	})

	// Create services
	factory := loader.NewFactory(st.documents, st.folders)
	docService := serviceDocsys.NewDocumentService(factory, client, storage.NewDirSource(cfg.BitstreamDir), logger)
	folderService := serviceDocsys.NewFolderService(factory, logger)
	repositoryService := serviceDocsys.NewRepositoryService(client, logger)

	policy, err := serviceAuth.LoadPolicy(cfg.AuthPolicyFile)
	if err != nil {
		return err
	}
	resolver := graph.NewResolver(graph.Services{
		Documents:  docService,
		Folders:    folderService,
		Repository: repositoryService,
	}, serviceAuth.NewRoleAuthorizer(policy), m, logger)
	schema, err := graph.NewSchema(resolver)
	if err != nil {
		return fmt.Errorf("parse graphql schema: %w", err)
	}

	// Gateway token verification; without a JWKS URL every request runs as the dev user
	var verifier auth.JWTVerifier
	var devUser *models.User
	if cfg.AuthJWKSURL != "" {
		verifier, err = auth.NewJWTVerifier(cfg.AuthJWKSURL, logger)
		if err != nil {
			return fmt.Errorf("create JWT verifier: %w", err)
		}
		defer verifier.Close()
	} else {
		devUser = &models.User{ID: cfg.DevUserID, Roles: cfg.DevRoles}
		logger.Warn("AUTH_JWKS_URL not set, requests run as the dev user", "user_id", devUser.ID, "roles", devUser.Roles)
	}

	logger.Info("services initialized")

	mux := http.NewServeMux()
	mux.Handle("POST /graphql", graph.NewHandler(schema, factory, logger))
	mux.Handle("GET /metrics", m.Handler())
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → RequestLogger → Recovery → Auth → Routes
	var handler http.Handler = mux
	handler = middleware.AuthMiddleware(verifier, devUser, logger)(handler)
	handler = middleware.Recovery(logger)(handler)
	handler = middleware.RequestLogger(logger)(handler)

	// CORS - Must be outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	handler = corsHandler.Handler(handler)

	// documentInsert and dspaceAddBitstream make up to three DSpace calls in sequence
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: maxDSpaceCalls*cfg.DSpaceTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

package main

import (
	"context"
	"flag"
	"log"

	"docsgraph/internal/config"
	"docsgraph/internal/repository/postgres"
	postgresDocsys "docsgraph/internal/repository/postgres/docsystem"
	"docsgraph/internal/seed"

	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't import demo data")
	clearData := flag.Bool("clear-data", false, "Clear all documents and folders (keep schema)")
	file := flag.String("file", "", "Demo data file (default: DEMODATA_FILE)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if *file == "" {
		*file = cfg.DemoDataFile
	}

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}

	logger, logCloser, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logCloser.Close()

	switch {
	case *clearData:
		log.Printf("🧹 Clearing data only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	case *schemaOnly:
		log.Printf("🏗️  Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	default:
		log.Printf("🌱 Seeding database from %s (environment: %s, prefix: %s)", *file, cfg.Environment, cfg.TablePrefix)
	}

	// Create database connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := postgres.DropSchema(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	log.Println("📋 Ensuring database schema is up to date...")
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	if *clearData {
		log.Println("🧹 Clearing existing documents and folders...")
		if err := postgres.ClearData(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Println("✅ Data cleared successfully")
		return
	}

	data, err := seed.Load(*file)
	if err != nil {
		log.Fatalf("Failed to read demo data: %v", err)
	}

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	importer := seed.NewImporter(
		postgresDocsys.NewDocumentRepository(repoConfig),
		postgresDocsys.NewFolderRepository(repoConfig),
		postgres.NewTransactionManager(pool, logger),
		logger,
	)

	summary, err := importer.Import(ctx, data)
	if err != nil {
		log.Fatalf("Failed to import demo data: %v", err)
	}
	log.Printf("✅ Folders: %d created, %d skipped", summary.FoldersCreated, summary.FoldersSkipped)
	log.Printf("✅ Documents: %d created, %d skipped", summary.DocumentsCreated, summary.DocumentsSkipped)
	log.Println("🎉 Seeding complete!")
}

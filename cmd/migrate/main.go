package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"wms/internal/config"
	"wms/internal/database"
	"wms/internal/logging"
)

func main() {
	config.LoadDotEnv()

	log, err := logging.New(true, config.Get("WMS_LOG_LEVEL", "info"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, dbURL, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal("Migration failed", zap.Error(err))
	}
	log.Info("Migration completed successfully!")

	repo := database.NewPostgresRepository(db)
	if err := database.SeedDrivers(ctx, repo, log); err != nil {
		log.Fatal("Seeding drivers failed", zap.Error(err))
	}
	if err := database.SeedBins(ctx, repo, log); err != nil {
		log.Fatal("Seeding bins failed", zap.Error(err))
	}
	if email := os.Getenv("WMS_ADMIN_EMAIL"); email != "" {
		if err := database.SeedAdmin(ctx, repo, email, os.Getenv("WMS_ADMIN_PASSWORD"), log); err != nil {
			log.Fatal("Seeding admin failed", zap.Error(err))
		}
	}

	var result struct {
		Drivers  int `db:"drivers"`
		Bins     int `db:"bins"`
		Warning  int `db:"warning"`
		Critical int `db:"critical"`
	}
	query := `
		SELECT
			(SELECT COUNT(*) FROM drivers) AS drivers,
			COUNT(*) AS bins,
			COUNT(CASE WHEN status >= 50 AND status < 80 THEN 1 END) AS warning,
			COUNT(CASE WHEN status >= 80 THEN 1 END) AS critical
		FROM bins
	`
	if err := db.GetContext(ctx, &result, query); err != nil {
		log.Fatal("Failed to query summary", zap.Error(err))
	}

	fmt.Println("\n============================================================")
	fmt.Println("MIGRATION SUMMARY")
	fmt.Println("============================================================")
	fmt.Printf("Drivers:                 %d\n", result.Drivers)
	fmt.Printf("Bins:                    %d\n", result.Bins)
	fmt.Printf("Bins at warning level:   %d\n", result.Warning)
	fmt.Printf("Bins at critical level:  %d\n", result.Critical)
	fmt.Println("============================================================")
}

package database_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"go.uber.org/zap"

	"wms/internal/database"
	"wms/internal/models"
)

func repositories(t *testing.T) map[string]database.Repository {
	repos := map[string]database.Repository{"memory": database.NewMemoryRepository()}

	dbURL := os.Getenv("WMS_TEST_DATABASE_URL")
	if dbURL == "" {
		return repos
	}
	ctx := context.Background()
	db, err := database.Connect(ctx, dbURL, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	for _, table := range []string{"driver_current_location", "bins", "drivers"} {
		_, _ = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table)
	}
	if err := database.Migrate(ctx, db); err != nil {
		t.Fatal(err)
	}
	repos["postgres"] = database.NewPostgresRepository(db)
	return repos
}

func TestDrivers(t *testing.T) {
	ctx := context.Background()
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			d := models.Driver{FirstName: "Ana", LastName: "Silva", Email: "ana@example.com", Password: "hash", Role: models.RoleDriver, Status: models.StatusPending}
			if err := repo.CreateDriver(ctx, &d); err != nil {
				t.Fatal(err)
			}
			if d.ID == 0 {
				t.Fatal("ID not set")
			}

			dup := d
			dup.ID = 0
			dup.Email = "ANA@example.com"
			if err := repo.CreateDriver(ctx, &dup); !errors.Is(err, database.ErrDuplicateEmail) {
				t.Fatalf("duplicate: %v", err)
			}

			got, err := repo.DriverByEmail(ctx, "ana@example.com")
			if err != nil || got.ID != d.ID || got.Password != "hash" {
				t.Fatalf("DriverByEmail = %+v, %v", got, err)
			}
			if _, err := repo.DriverByID(ctx, d.ID+100); !errors.Is(err, database.ErrNotFound) {
				t.Fatalf("missing driver: %v", err)
			}

			d.LastName = "Costa"
			if err := repo.UpdateDriver(ctx, &d); err != nil {
				t.Fatal(err)
			}
			got, _ = repo.DriverByID(ctx, d.ID)
			if got.LastName != "Costa" || got.Role != models.RoleDriver {
				t.Fatalf("after update: %+v", got)
			}

			other := models.Driver{FirstName: "Bo", LastName: "Li", Email: "bo@example.com", Password: "h", Role: models.RoleDriver, Status: models.StatusPending}
			if err := repo.CreateDriver(ctx, &other); err != nil {
				t.Fatal(err)
			}
			other.Email = "ana@example.com"
			if err := repo.UpdateDriver(ctx, &other); !errors.Is(err, database.ErrDuplicateEmail) {
				t.Fatalf("update to taken email: %v", err)
			}
		})
	}
}

func TestBins(t *testing.T) {
	ctx := context.Background()
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			if err := database.SeedBins(ctx, repo, zap.NewNop()); err != nil {
				t.Fatal(err)
			}
			// Seeding twice is a no-op.
			if err := database.SeedBins(ctx, repo, zap.NewNop()); err != nil {
				t.Fatal(err)
			}

			bins, err := repo.ListBins(ctx)
			if err != nil {
				t.Fatal(err)
			}
			n, _ := repo.CountBins(ctx)
			if len(bins) == 0 || len(bins) != n {
				t.Fatalf("%d bins listed, %d counted", len(bins), n)
			}
			for i := 1; i < len(bins); i++ {
				if bins[i-1].ID >= bins[i].ID {
					t.Fatal("bins not ordered by id")
				}
			}

			status := 97
			updated, err := repo.UpdateBin(ctx, bins[0].ID, models.UpdateBinRequest{Status: &status})
			if err != nil {
				t.Fatal(err)
			}
			if updated.Status != 97 || updated.SensorData != bins[0].SensorData {
				t.Fatalf("updated = %+v", updated)
			}
			if _, err := repo.BinByID(ctx, -1); !errors.Is(err, database.ErrNotFound) {
				t.Fatalf("missing bin: %v", err)
			}
			if _, err := repo.UpdateBin(ctx, -1, models.UpdateBinRequest{}); !errors.Is(err, database.ErrNotFound) {
				t.Fatalf("update missing bin: %v", err)
			}
		})
	}
}

func TestSeedDriversAndLocations(t *testing.T) {
	ctx := context.Background()
	repo := database.NewMemoryRepository()
	if err := database.SeedDrivers(ctx, repo, zap.NewNop()); err != nil {
		t.Fatal(err)
	}
	if err := database.SeedDrivers(ctx, repo, zap.NewNop()); err != nil {
		t.Fatal(err)
	}
	d, err := repo.DriverByEmail(ctx, database.DemoEmail)
	if err != nil {
		t.Fatal(err)
	}

	if err := repo.SaveLocation(ctx, models.LocationUpdate{DriverID: d.ID + 1}); !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("location for unknown driver: %v", err)
	}
	if err := repo.SaveLocation(ctx, models.LocationUpdate{DriverID: d.ID, Latitude: 1, Longitude: 2, Timestamp: 10}); err != nil {
		t.Fatal(err)
	}
	if err := repo.MarkDisconnected(ctx, d.ID); err != nil {
		t.Fatal(err)
	}
	u, connected, ok := repo.LastLocation(d.ID)
	if !ok || connected || u.Latitude != 1 {
		t.Fatalf("last location = %+v connected=%v ok=%v", u, connected, ok)
	}

	positions, err := repo.ListPositions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(positions) != 1 || positions[0].DriverName != "Demo Driver" || positions[0].Email != database.DemoEmail || positions[0].Connected {
		t.Fatalf("positions = %+v", positions)
	}
}

func TestSeedAdmin(t *testing.T) {
	ctx := context.Background()
	repo := database.NewMemoryRepository()

	if err := database.SeedAdmin(ctx, repo, "", "pw", zap.NewNop()); err == nil {
		t.Fatal("empty email accepted")
	}
	for i := 0; i < 2; i++ {
		if err := database.SeedAdmin(ctx, repo, "boss@wms.local", "Boss@2024", zap.NewNop()); err != nil {
			t.Fatal(err)
		}
	}
	d, err := repo.DriverByEmail(ctx, "boss@wms.local")
	if err != nil {
		t.Fatal(err)
	}
	if d.Role != models.RoleAdmin || d.Password == "Boss@2024" {
		t.Fatalf("admin = %+v", d)
	}
}

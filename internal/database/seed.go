package database

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"wms/internal/models"
)

// Demo account created by SeedDrivers.
const (
	DemoEmail    = "driver@wms.local"
	DemoPassword = "Driver@2024"
)

var seedBins = []models.Bin{
	{Latitude: 48.8566, Longitude: 2.3522, Status: 45, SensorData: "temp=18C;weight=42kg"},
	{Latitude: 48.8606, Longitude: 2.3376, Status: 67, SensorData: "temp=19C;weight=61kg"},
	{Latitude: 48.8530, Longitude: 2.3499, Status: 23, SensorData: "temp=17C;weight=20kg"},
	{Latitude: 48.8584, Longitude: 2.2945, Status: 89, SensorData: "temp=21C;weight=83kg"},
	{Latitude: 48.8738, Longitude: 2.2950, Status: 12, SensorData: "temp=16C;weight=9kg"},
	{Latitude: 48.8867, Longitude: 2.3431, Status: 78, SensorData: "temp=20C;weight=70kg"},
	{Latitude: 48.8462, Longitude: 2.3371, Status: 56, SensorData: "temp=18C;weight=50kg"},
	{Latitude: 48.8421, Longitude: 2.3219, Status: 34, SensorData: "temp=17C;weight=31kg"},
	{Latitude: 48.8649, Longitude: 2.3800, Status: 91, SensorData: "temp=22C;weight=88kg"},
	{Latitude: 48.8339, Longitude: 2.3619, Status: 15, SensorData: "temp=16C;weight=13kg"},
	{Latitude: 48.8809, Longitude: 2.3553, Status: 82, SensorData: "temp=21C;weight=77kg"},
	{Latitude: 48.8499, Longitude: 2.3950, Status: 47, SensorData: "temp=18C;weight=44kg"},
}

// SeedBins inserts the demo bins when the table is empty.
func SeedBins(ctx context.Context, repo Repository, log *zap.Logger) error {
	count, err := repo.CountBins(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		log.Info("✓ Bins already seeded, skipping", zap.Int("count", count))
		return nil
	}

	log.Info("🌱 Seeding bins", zap.Int("count", len(seedBins)))
	for i := range seedBins {
		b := seedBins[i]
		if err := repo.CreateBin(ctx, &b); err != nil {
			return fmt.Errorf("seed bin %d: %w", i+1, err)
		}
	}
	return nil
}

// SeedDrivers creates the demo driver account unless it exists.
func SeedDrivers(ctx context.Context, repo Repository, log *zap.Logger) error {
	if _, err := repo.DriverByEmail(ctx, DemoEmail); err == nil {
		log.Info("✓ Demo driver already exists, skipping")
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	d := models.Driver{
		FirstName:     "Demo",
		LastName:      "Driver",
		ContactNumber: "+33600000000",
		Email:         DemoEmail,
		Password:      string(hash),
		Role:          models.RoleDriver,
		Status:        models.StatusPending,
	}
	if err := repo.CreateDriver(ctx, &d); err != nil {
		return err
	}
	log.Info("✅ Demo driver created", zap.String("email", DemoEmail), zap.Int("id", d.ID))
	return nil
}

// SeedAdmin creates a manager account that receives live driver positions.
// An existing account with the same email is left untouched.
func SeedAdmin(ctx context.Context, repo Repository, email, password string, log *zap.Logger) error {
	if email == "" || password == "" {
		return errors.New("admin email and password are required")
	}
	if _, err := repo.DriverByEmail(ctx, email); err == nil {
		log.Info("✓ Admin already exists, skipping", zap.String("email", email))
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	d := models.Driver{
		FirstName: "Fleet",
		LastName:  "Manager",
		Email:     email,
		Password:  string(hash),
		Role:      models.RoleAdmin,
		Status:    "ACTIVE",
	}
	if err := repo.CreateDriver(ctx, &d); err != nil {
		return err
	}
	log.Info("✅ Admin created", zap.String("email", email), zap.Int("id", d.ID))
	return nil
}

package database

import (
	"context"
	"errors"

	"wms/internal/models"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email is already registered")
)

// Repository is the storage used by the development backend.
type Repository interface {
	// CreateDriver inserts d and sets its ID.
	CreateDriver(ctx context.Context, d *models.Driver) error
	DriverByEmail(ctx context.Context, email string) (models.Driver, error)
	DriverByID(ctx context.Context, id int) (models.Driver, error)
	// UpdateDriver rewrites the profile fields of d.
	UpdateDriver(ctx context.Context, d *models.Driver) error

	// ListBins returns every bin ordered by id.
	ListBins(ctx context.Context) ([]models.Bin, error)
	BinByID(ctx context.Context, id int64) (models.Bin, error)
	// CreateBin inserts b and sets its ID.
	CreateBin(ctx context.Context, b *models.Bin) error
	// UpdateBin applies the non-nil fields of req and stamps the update time.
	UpdateBin(ctx context.Context, id int64, req models.UpdateBinRequest) (models.Bin, error)
	CountBins(ctx context.Context) (int, error)

	// SaveLocation upserts the driver's current position.
	SaveLocation(ctx context.Context, u models.LocationUpdate) error
	// MarkDisconnected flags the driver's last position as stale.
	MarkDisconnected(ctx context.Context, driverID int) error
	// ListPositions returns the last position of every driver that has
	// streamed one, ordered by driver id.
	ListPositions(ctx context.Context) ([]models.DriverPosition, error)
}

package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"wms/internal/models"
)

// unique_violation
const pqUniqueViolation = "23505"

// PostgresRepository stores drivers, bins and locations in Postgres.
type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func mapErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return ErrDuplicateEmail
	}
	return err
}

const driverColumns = `id, first_name, last_name, contact_number, email, password, role, status, created_at, updated_at`

func (p *PostgresRepository) CreateDriver(ctx context.Context, d *models.Driver) error {
	query := `
		INSERT INTO drivers (first_name, last_name, contact_number, email, password, role, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	row := p.db.QueryRowxContext(ctx, query,
		d.FirstName, d.LastName, d.ContactNumber, d.Email, d.Password, d.Role, d.Status)
	return mapErr(row.Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt))
}

func (p *PostgresRepository) DriverByEmail(ctx context.Context, email string) (models.Driver, error) {
	var d models.Driver
	err := p.db.GetContext(ctx, &d, `SELECT `+driverColumns+` FROM drivers WHERE LOWER(email) = LOWER($1)`, email)
	return d, mapErr(err)
}

func (p *PostgresRepository) DriverByID(ctx context.Context, id int) (models.Driver, error) {
	var d models.Driver
	err := p.db.GetContext(ctx, &d, `SELECT `+driverColumns+` FROM drivers WHERE id = $1`, id)
	return d, mapErr(err)
}

func (p *PostgresRepository) UpdateDriver(ctx context.Context, d *models.Driver) error {
	d.Touch()
	query := `
		UPDATE drivers
		SET first_name = $1, last_name = $2, contact_number = $3, email = $4, updated_at = $5
		WHERE id = $6
		RETURNING ` + driverColumns
	return mapErr(p.db.GetContext(ctx, d, query,
		d.FirstName, d.LastName, d.ContactNumber, d.Email, d.UpdatedAt, d.ID))
}

const binColumns = `id, latitude, longitude, status, last_updated, sensor_data`

func (p *PostgresRepository) ListBins(ctx context.Context) ([]models.Bin, error) {
	bins := []models.Bin{}
	if err := p.db.SelectContext(ctx, &bins, `SELECT `+binColumns+` FROM bins ORDER BY id ASC`); err != nil {
		return nil, err
	}
	return bins, nil
}

func (p *PostgresRepository) BinByID(ctx context.Context, id int64) (models.Bin, error) {
	var b models.Bin
	err := p.db.GetContext(ctx, &b, `SELECT `+binColumns+` FROM bins WHERE id = $1`, id)
	return b, mapErr(err)
}

func (p *PostgresRepository) CreateBin(ctx context.Context, b *models.Bin) error {
	if b.LastUpdated == "" {
		b.LastUpdated = models.Now()
	}
	query := `
		INSERT INTO bins (latitude, longitude, status, last_updated, sensor_data)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	return p.db.QueryRowxContext(ctx, query,
		b.Latitude, b.Longitude, b.Status, b.LastUpdated, b.SensorData).Scan(&b.ID)
}

func (p *PostgresRepository) UpdateBin(ctx context.Context, id int64, req models.UpdateBinRequest) (models.Bin, error) {
	query := `
		UPDATE bins
		SET status = COALESCE($1, status),
		    sensor_data = COALESCE($2, sensor_data),
		    last_updated = $3
		WHERE id = $4
		RETURNING ` + binColumns
	var b models.Bin
	err := p.db.GetContext(ctx, &b, query, req.Status, req.SensorData, models.Now(), id)
	return b, mapErr(err)
}

func (p *PostgresRepository) CountBins(ctx context.Context) (int, error) {
	var n int
	err := p.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM bins`)
	return n, err
}

func (p *PostgresRepository) SaveLocation(ctx context.Context, u models.LocationUpdate) error {
	query := `
		INSERT INTO driver_current_location (
			driver_id, latitude, longitude, heading, speed, accuracy, bin_id, timestamp, is_connected, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE, EXTRACT(EPOCH FROM NOW())::BIGINT)
		ON CONFLICT (driver_id)
		DO UPDATE SET
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			heading = EXCLUDED.heading,
			speed = EXCLUDED.speed,
			accuracy = EXCLUDED.accuracy,
			bin_id = EXCLUDED.bin_id,
			timestamp = EXCLUDED.timestamp,
			is_connected = TRUE,
			updated_at = EXTRACT(EPOCH FROM NOW())::BIGINT
	`
	_, err := p.db.ExecContext(ctx, query,
		u.DriverID, u.Latitude, u.Longitude, u.Heading, u.Speed, u.Accuracy, u.BinID, u.Timestamp)
	return err
}

func (p *PostgresRepository) MarkDisconnected(ctx context.Context, driverID int) error {
	query := `
		UPDATE driver_current_location
		SET is_connected = FALSE,
		    updated_at = EXTRACT(EPOCH FROM NOW())::BIGINT
		WHERE driver_id = $1
	`
	_, err := p.db.ExecContext(ctx, query, driverID)
	return err
}

func (p *PostgresRepository) ListPositions(ctx context.Context) ([]models.DriverPosition, error) {
	query := `
		SELECT
			l.driver_id, l.latitude, l.longitude, l.heading, l.speed, l.accuracy, l.bin_id, l.timestamp,
			d.first_name || ' ' || d.last_name AS driver_name,
			d.email,
			l.is_connected
		FROM driver_current_location l
		INNER JOIN drivers d ON d.id = l.driver_id
		ORDER BY l.driver_id
	`
	out := []models.DriverPosition{}
	if err := p.db.SelectContext(ctx, &out, query); err != nil {
		return nil, err
	}
	return out, nil
}

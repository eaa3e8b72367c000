package database

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"wms/internal/models"
)

type locationRow struct {
	models.LocationUpdate
	Connected bool
}

// MemoryRepository keeps everything in process memory. It backs the server
// when no DATABASE_URL is configured and the end-to-end tests.
type MemoryRepository struct {
	mu        sync.RWMutex
	drivers   map[int]models.Driver
	bins      map[int64]models.Bin
	locations map[int]locationRow
	nextDrv   int
	nextBin   int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		drivers:   make(map[int]models.Driver),
		bins:      make(map[int64]models.Bin),
		locations: make(map[int]locationRow),
	}
}

func (m *MemoryRepository) emailTaken(email string, except int) bool {
	for id, d := range m.drivers {
		if id != except && strings.EqualFold(d.Email, email) {
			return true
		}
	}
	return false
}

func (m *MemoryRepository) CreateDriver(_ context.Context, d *models.Driver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.emailTaken(d.Email, 0) {
		return ErrDuplicateEmail
	}
	m.nextDrv++
	now := time.Now().Unix()
	d.ID = m.nextDrv
	d.CreatedAt, d.UpdatedAt = now, now
	m.drivers[d.ID] = *d
	return nil
}

func (m *MemoryRepository) DriverByEmail(_ context.Context, email string) (models.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.drivers {
		if strings.EqualFold(d.Email, email) {
			return d, nil
		}
	}
	return models.Driver{}, ErrNotFound
}

func (m *MemoryRepository) DriverByID(_ context.Context, id int) (models.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.drivers[id]
	if !ok {
		return models.Driver{}, ErrNotFound
	}
	return d, nil
}

func (m *MemoryRepository) UpdateDriver(_ context.Context, d *models.Driver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.drivers[d.ID]
	if !ok {
		return ErrNotFound
	}
	if m.emailTaken(d.Email, d.ID) {
		return ErrDuplicateEmail
	}
	d.Touch()
	cur.FirstName = d.FirstName
	cur.LastName = d.LastName
	cur.ContactNumber = d.ContactNumber
	cur.Email = d.Email
	cur.UpdatedAt = d.UpdatedAt
	m.drivers[d.ID] = cur
	*d = cur
	return nil
}

func (m *MemoryRepository) ListBins(context.Context) ([]models.Bin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	bins := make([]models.Bin, 0, len(m.bins))
	for _, b := range m.bins {
		bins = append(bins, b)
	}
	sort.Slice(bins, func(i, j int) bool { return bins[i].ID < bins[j].ID })
	return bins, nil
}

func (m *MemoryRepository) BinByID(_ context.Context, id int64) (models.Bin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bins[id]
	if !ok {
		return models.Bin{}, ErrNotFound
	}
	return b, nil
}

func (m *MemoryRepository) CreateBin(_ context.Context, b *models.Bin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextBin++
	b.ID = m.nextBin
	if b.LastUpdated == "" {
		b.LastUpdated = models.Now()
	}
	m.bins[b.ID] = *b
	return nil
}

func (m *MemoryRepository) UpdateBin(_ context.Context, id int64, req models.UpdateBinRequest) (models.Bin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bins[id]
	if !ok {
		return models.Bin{}, ErrNotFound
	}
	if req.Status != nil {
		b.Status = *req.Status
	}
	if req.SensorData != nil {
		b.SensorData = *req.SensorData
	}
	b.LastUpdated = models.Now()
	m.bins[id] = b
	return b, nil
}

func (m *MemoryRepository) CountBins(context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bins), nil
}

func (m *MemoryRepository) SaveLocation(_ context.Context, u models.LocationUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drivers[u.DriverID]; !ok {
		return ErrNotFound
	}
	m.locations[u.DriverID] = locationRow{LocationUpdate: u, Connected: true}
	return nil
}

func (m *MemoryRepository) MarkDisconnected(_ context.Context, driverID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.locations[driverID]
	if !ok {
		return nil
	}
	row.Connected = false
	m.locations[driverID] = row
	return nil
}

func (m *MemoryRepository) ListPositions(context.Context) ([]models.DriverPosition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.DriverPosition, 0, len(m.locations))
	for id, row := range m.locations {
		d := m.drivers[id]
		out = append(out, models.DriverPosition{
			LocationUpdate: row.LocationUpdate,
			DriverName:     d.FirstName + " " + d.LastName,
			Email:          d.Email,
			Connected:      row.Connected,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DriverID < out[j].DriverID })
	return out, nil
}

// LastLocation returns the stored position of a driver and whether the
// driver is still connected.
func (m *MemoryRepository) LastLocation(driverID int) (u models.LocationUpdate, connected, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	row, ok := m.locations[driverID]
	return row.LocationUpdate, row.Connected, ok
}

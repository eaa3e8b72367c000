package models

// LatLng is a geographic coordinate.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LocationUpdate is a GPS fix streamed by a driver while navigating to a bin.
type LocationUpdate struct {
	DriverID  int      `json:"driver_id" db:"driver_id"`
	Latitude  float64  `json:"latitude" db:"latitude"`
	Longitude float64  `json:"longitude" db:"longitude"`
	Heading   *float64 `json:"heading,omitempty" db:"heading"`   // Bearing towards the destination (0-360 degrees)
	Speed     *float64 `json:"speed,omitempty" db:"speed"`       // Speed in m/s
	Accuracy  *float64 `json:"accuracy,omitempty" db:"accuracy"` // GPS accuracy in meters
	BinID     *int64   `json:"bin_id,omitempty" db:"bin_id"`     // Destination bin
	Timestamp int64    `json:"timestamp" db:"timestamp"`         // Client-side timestamp
}

// Position returns the update's coordinates.
func (u LocationUpdate) Position() LatLng {
	return LatLng{Latitude: u.Latitude, Longitude: u.Longitude}
}

// DriverPosition is a driver's last stored position as listed to managers.
type DriverPosition struct {
	LocationUpdate
	DriverName string `json:"driver_name" db:"driver_name"`
	Email      string `json:"email" db:"email"`
	Connected  bool   `json:"is_connected" db:"is_connected"`
}

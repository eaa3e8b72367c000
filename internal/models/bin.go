package models

import "time"

// Bin is a waste container as served by GET /api/bins and GET /api/bins/{id}.
// Status is the fill percentage (0-100) and is passed through as received.
type Bin struct {
	ID          int64   `json:"id" db:"id"`
	Latitude    float64 `json:"latitude" db:"latitude"`
	Longitude   float64 `json:"longitude" db:"longitude"`
	Status      int     `json:"status" db:"status"`
	LastUpdated string  `json:"lastUpdated" db:"last_updated"`
	SensorData  string  `json:"sensorData" db:"sensor_data"`
}

// BinDetails is the detail view of a bin. The list and detail payloads share
// one shape; SensorData is only meaningful here.
type BinDetails = Bin

// UpdateBinRequest is the request body for PATCH /api/bins/{id}
type UpdateBinRequest struct {
	Status     *int    `json:"status,omitempty"`
	SensorData *string `json:"sensorData,omitempty"`
}

// FillLevel is the display band of a bin's fill status.
type FillLevel string

const (
	FillNormal   FillLevel = "Normal"
	FillWarning  FillLevel = "Warning"
	FillCritical FillLevel = "Critical"
)

// ClassifyFill maps a fill percentage to its band.
func ClassifyFill(status int) FillLevel {
	switch {
	case status >= 80:
		return FillCritical
	case status >= 50:
		return FillWarning
	default:
		return FillNormal
	}
}

// FillLevel returns the band of the bin's current fill status.
func (b Bin) FillLevel() FillLevel {
	return ClassifyFill(b.Status)
}

// MarkerColor is the map marker colour used for a bin.
type MarkerColor string

const (
	MarkerGreen  MarkerColor = "green"
	MarkerYellow MarkerColor = "yellow"
	MarkerRed    MarkerColor = "red"
)

// Marker returns the map marker colour for the bin. The map uses tighter
// thresholds than the list view.
func (b Bin) Marker() MarkerColor {
	switch {
	case b.Status < 30:
		return MarkerGreen
	case b.Status < 70:
		return MarkerYellow
	default:
		return MarkerRed
	}
}

// Position returns the bin's coordinates.
func (b Bin) Position() LatLng {
	return LatLng{Latitude: b.Latitude, Longitude: b.Longitude}
}

// Timestamp layouts. Wire timestamps carry no zone.
const (
	TimestampLayout = "2006-01-02T15:04:05"

	ListLayout   = "Jan 02, 2006 03:04 PM"
	DetailLayout = "Jan 02, 2006 15:04"
	MapLayout    = "Jan 02, 15:04"
)

// FormatTimestamp renders a wire timestamp with layout. Unparseable input is
// returned unchanged.
func FormatTimestamp(raw, layout string) string {
	t, err := time.Parse(TimestampLayout, raw)
	if err != nil {
		return raw
	}
	return t.Format(layout)
}

// Now returns the current time as a wire timestamp.
func Now() string {
	return time.Now().UTC().Format(TimestampLayout)
}

package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"wms/internal/database"
	"wms/internal/models"
	"wms/pkg/utils"
)

// GetActiveDrivers lists the last known position of every tracked driver.
// With ?connected=true only drivers with an open tracking socket are listed.
func GetActiveDrivers(repo database.Repository, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("📋 GetActiveDrivers: Fetching driver positions...")

		positions, err := repo.ListPositions(r.Context())
		if err != nil {
			log.Error("❌ Database error", zap.Error(err))
			utils.Problem(w, r, http.StatusInternalServerError, "Failed to fetch active drivers")
			return
		}

		if r.URL.Query().Get("connected") == "true" {
			connected := positions[:0]
			for _, p := range positions {
				if p.Connected {
					connected = append(connected, p)
				}
			}
			positions = connected
		}
		if positions == nil {
			positions = []models.DriverPosition{}
		}

		log.Debug("✅ Found driver positions", zap.Int("count", len(positions)))
		utils.Success(w, map[string]interface{}{
			"success": true,
			"data":    positions,
		})
	}
}

package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"wms/internal/database"
	"wms/internal/models"
	"wms/pkg/utils"
)

// Alerter is notified when a bin crosses into the critical band.
type Alerter interface {
	BinCritical(ctx context.Context, bin models.Bin) error
}

// Broadcaster pushes a frame to every websocket client with the given role.
type Broadcaster interface {
	BroadcastToRole(role string, data interface{})
}

// BinEvents collects the side effects of a bin update. Any field may be nil.
type BinEvents struct {
	Alerter  Alerter
	Hub      Broadcaster
	Critical prometheus.Counter
}

func binID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		utils.Problem(w, r, http.StatusBadRequest, "Invalid bin id")
		return 0, false
	}
	return id, true
}

// GetBins returns every bin. An empty store answers with [].
func GetBins(repo database.Repository, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bins, err := repo.ListBins(r.Context())
		if err != nil {
			log.Error("❌ Failed to fetch bins", zap.Error(err))
			utils.Problem(w, r, http.StatusInternalServerError, "Failed to fetch bins")
			return
		}
		if bins == nil {
			bins = []models.Bin{}
		}
		utils.Success(w, bins)
	}
}

// GetBin returns a single bin.
func GetBin(repo database.Repository, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := binID(w, r)
		if !ok {
			return
		}
		bin, err := repo.BinByID(r.Context(), id)
		if errors.Is(err, database.ErrNotFound) {
			utils.Problem(w, r, http.StatusNotFound, "Bin not found")
			return
		}
		if err != nil {
			log.Error("❌ Failed to fetch bin", zap.Int64("bin_id", id), zap.Error(err))
			utils.Problem(w, r, http.StatusInternalServerError, "Failed to fetch bin")
			return
		}
		utils.Success(w, bin)
	}
}

// UpdateBin applies a sensor reading. Fill status is clamped to 0..100.
// A bin entering the critical band raises an alert, bumps the critical
// counter and is pushed to admins as a bin_update frame.
func UpdateBin(repo database.Repository, events BinEvents, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := binID(w, r)
		if !ok {
			return
		}

		var req models.UpdateBinRequest
		if err := decodeJSON(w, r, &req); err != nil {
			utils.Problem(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if req.Status == nil && req.SensorData == nil {
			utils.Problem(w, r, http.StatusBadRequest, "Nothing to update")
			return
		}
		if req.Status != nil {
			s := min(max(*req.Status, 0), 100)
			req.Status = &s
		}

		before, err := repo.BinByID(r.Context(), id)
		if errors.Is(err, database.ErrNotFound) {
			utils.Problem(w, r, http.StatusNotFound, "Bin not found")
			return
		}
		if err != nil {
			log.Error("❌ Failed to fetch bin", zap.Int64("bin_id", id), zap.Error(err))
			utils.Problem(w, r, http.StatusInternalServerError, "Failed to fetch bin")
			return
		}

		bin, err := repo.UpdateBin(r.Context(), id, req)
		if err != nil {
			log.Error("❌ Failed to update bin", zap.Int64("bin_id", id), zap.Error(err))
			utils.Problem(w, r, http.StatusInternalServerError, "Failed to update bin")
			return
		}

		log.Info("🗑️ Bin updated",
			zap.Int64("bin_id", bin.ID),
			zap.Int("status", bin.Status),
			zap.String("fill", string(bin.FillLevel())))

		if bin.FillLevel() == models.FillCritical && before.FillLevel() != models.FillCritical {
			events.binCritical(r.Context(), bin, log)
		}

		utils.Success(w, bin)
	}
}

func (e BinEvents) binCritical(ctx context.Context, bin models.Bin, log *zap.Logger) {
	log.Warn("🚨 Bin reached critical level", zap.Int64("bin_id", bin.ID), zap.Int("status", bin.Status))

	if e.Critical != nil {
		e.Critical.Inc()
	}
	if e.Hub != nil {
		e.Hub.BroadcastToRole(models.RoleAdmin, map[string]interface{}{
			"type":      "bin_update",
			"timestamp": time.Now().Format(time.RFC3339),
			"data":      bin,
		})
	}
	if e.Alerter != nil {
		if err := e.Alerter.BinCritical(ctx, bin); err != nil {
			log.Error("❌ Failed to send critical bin alert", zap.Int64("bin_id", bin.ID), zap.Error(err))
		}
	}
}

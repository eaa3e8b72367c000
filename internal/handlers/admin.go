package handlers

import (
	"net/http"
	"strconv"

	"wms/internal/models"
	"wms/pkg/utils"
)

// ConnectionStats reports on live tracking sockets.
type ConnectionStats interface {
	GetClientCount() int
	IsUserConnected(userID string) bool
}

// Connections reports how many tracking sockets are open. With ?driver=<id>
// it also reports whether that driver is connected.
func Connections(stats ConnectionStats) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{"clients": stats.GetClientCount()}

		if raw := r.URL.Query().Get("driver"); raw != "" {
			id, err := strconv.Atoi(raw)
			if err != nil || id <= 0 {
				utils.Problem(w, r, http.StatusBadRequest, "Invalid driver id")
				return
			}
			resp["driverId"] = id
			resp["connected"] = stats.IsUserConnected(models.DriverKey(id))
		}
		utils.Success(w, resp)
	}
}

package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"wms/internal/database"
	"wms/internal/middleware"
	"wms/pkg/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket upgrades HTTP connection to WebSocket. The token comes from
// the query string since browsers and mobile sockets cannot set headers.
func HandleWebSocket(hub *Hub, repo database.Repository, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var userClaims middleware.UserClaims
		if tokenString := r.URL.Query().Get("token"); tokenString != "" {
			claims, err := middleware.ParseToken(secret, tokenString)
			if err != nil {
				hub.log.Debug("❌ Invalid token in query parameter", zap.Error(err))
				utils.Problem(w, r, http.StatusUnauthorized, "Unauthorized")
				return
			}
			userClaims = claims
		} else {
			claims, ok := middleware.GetUserFromContext(r)
			if !ok {
				utils.Problem(w, r, http.StatusUnauthorized, "Unauthorized")
				return
			}
			userClaims = claims
		}

		driverID, err := userClaims.ID()
		if err != nil {
			utils.Problem(w, r, http.StatusUnauthorized, "Unauthorized")
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			hub.log.Warn("❌ WebSocket upgrade failed", zap.Error(err))
			return
		}

		client := NewClient(driverID, userClaims.Role, conn, hub, repo)
		hub.register <- client

		go client.WritePump()
		go client.ReadPump()
	}
}

package utils

import (
	"encoding/json"
	"net/http"
	"time"

	"wms/internal/models"
)

func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

// Problem writes the error body clients decode on non-2xx answers.
func Problem(w http.ResponseWriter, r *http.Request, status int, message string) {
	JSON(w, status, models.ErrorResponse{
		Path:      r.URL.Path,
		Error:     http.StatusText(status),
		Message:   message,
		Timestamp: time.Now().UTC().Format(models.TimestampLayout),
		Status:    status,
	})
}

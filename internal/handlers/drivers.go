package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"wms/internal/database"
	"wms/internal/middleware"
	"wms/internal/models"
	"wms/pkg/utils"
)

// ownDriverID resolves the {id} path parameter and checks that the caller
// may access it. It writes the error response itself.
func ownDriverID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		utils.Problem(w, r, http.StatusBadRequest, "Invalid driver id")
		return 0, false
	}
	claims, ok := middleware.GetUserFromContext(r)
	if !ok {
		utils.Problem(w, r, http.StatusUnauthorized, "Unauthorized")
		return 0, false
	}
	if claims.UserID != models.DriverKey(id) && claims.Role != models.RoleAdmin {
		utils.Problem(w, r, http.StatusForbidden, "Forbidden")
		return 0, false
	}
	return id, true
}

// GetDriver returns the profile of a driver.
func GetDriver(repo database.Repository, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := ownDriverID(w, r)
		if !ok {
			return
		}

		d, err := repo.DriverByID(r.Context(), id)
		if errors.Is(err, database.ErrNotFound) {
			utils.Problem(w, r, http.StatusNotFound, "Driver not found")
			return
		}
		if err != nil {
			log.Error("❌ Database error", zap.Error(err))
			utils.Problem(w, r, http.StatusInternalServerError, "Database error")
			return
		}
		utils.Success(w, d.ToLoginResponse(""))
	}
}

// UpdateDriver replaces the editable profile fields and returns the stored
// profile with a fresh token.
func UpdateDriver(repo database.Repository, secret string, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := ownDriverID(w, r)
		if !ok {
			return
		}

		var req models.UserData
		if err := decodeJSON(w, r, &req); err != nil {
			utils.Problem(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if errs := fieldErrors(req); errs != nil {
			msg := "Validation failed"
			utils.JSON(w, http.StatusBadRequest, models.LoginResponse{Message: &msg, Errors: errs})
			return
		}

		d := models.Driver{
			ID:            id,
			FirstName:     strings.TrimSpace(req.FirstName),
			LastName:      strings.TrimSpace(req.LastName),
			ContactNumber: strings.TrimSpace(req.ContactNumber),
			Email:         strings.TrimSpace(req.Email),
		}
		switch err := repo.UpdateDriver(r.Context(), &d); {
		case errors.Is(err, database.ErrNotFound):
			utils.Problem(w, r, http.StatusNotFound, "Driver not found")
			return
		case errors.Is(err, database.ErrDuplicateEmail):
			utils.Problem(w, r, http.StatusConflict, "Email is already registered")
			return
		case err != nil:
			log.Error("❌ Failed to update driver", zap.Error(err))
			utils.Problem(w, r, http.StatusInternalServerError, "Failed to update profile")
			return
		}

		token, err := middleware.IssueToken(secret, d)
		if err != nil {
			log.Error("❌ Failed to create token", zap.Error(err))
			utils.Problem(w, r, http.StatusInternalServerError, "Failed to create token")
			return
		}

		log.Info("✅ Profile updated", zap.Int("id", d.ID))
		msg := "Profile updated"
		resp := d.ToLoginResponse(token)
		resp.Message = &msg
		utils.Success(w, resp)
	}
}

package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"wms/internal/database"
	"wms/internal/middleware"
	"wms/internal/models"
	"wms/pkg/utils"
)

// SignUp registers a driver. Field problems come back as a 200 with an
// errors map; the account starts with role DRIVER and status PENDING.
func SignUp(repo database.Repository, secret string, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.SignUpRequest
		if err := decodeJSON(w, r, &req); err != nil {
			utils.Problem(w, r, http.StatusBadRequest, err.Error())
			return
		}
		req.Email = strings.TrimSpace(req.Email)

		log.Info("📝 Sign up attempt", zap.String("email", req.Email))

		if errs := fieldErrors(req); errs != nil {
			utils.Success(w, models.SignUpResponse{Message: "Validation failed", Errors: errs})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Error("❌ Failed to hash password", zap.Error(err))
			utils.Problem(w, r, http.StatusInternalServerError, "Failed to hash password")
			return
		}

		d := models.Driver{
			FirstName:     strings.TrimSpace(req.FirstName),
			LastName:      strings.TrimSpace(req.LastName),
			ContactNumber: strings.TrimSpace(req.ContactNumber),
			Email:         req.Email,
			Password:      string(hash),
			Role:          models.RoleDriver,
			Status:        models.StatusPending,
		}
		if err := repo.CreateDriver(r.Context(), &d); err != nil {
			if errors.Is(err, database.ErrDuplicateEmail) {
				log.Info("❌ Email already registered", zap.String("email", req.Email))
				utils.Success(w, models.SignUpResponse{
					Message: "Validation failed",
					Errors:  map[string]string{"email": "Email is already registered"},
				})
				return
			}
			log.Error("❌ Failed to create driver", zap.Error(err))
			utils.Problem(w, r, http.StatusInternalServerError, "Failed to create account")
			return
		}

		token, err := middleware.IssueToken(secret, d)
		if err != nil {
			log.Error("❌ Failed to create token", zap.Error(err))
			utils.Problem(w, r, http.StatusInternalServerError, "Failed to create token")
			return
		}

		log.Info("✅ Driver registered", zap.String("email", d.Email), zap.Int("id", d.ID))
		utils.JSON(w, http.StatusCreated, models.SignUpResponse{
			UserID:        d.ID,
			Message:       "Sign up successful",
			FirstName:     d.FirstName,
			LastName:      d.LastName,
			ContactNumber: d.ContactNumber,
			Email:         d.Email,
			Role:          d.Role,
			Token:         token,
		})
	}
}

// Login authenticates a driver. Unknown accounts and wrong passwords are
// both answered with 401.
func Login(repo database.Repository, secret string, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			utils.Problem(w, r, http.StatusBadRequest, err.Error())
			return
		}
		req.Email = strings.TrimSpace(req.Email)

		log.Info("🔐 Login attempt", zap.String("email", req.Email))

		if errs := fieldErrors(req); errs != nil {
			msg := "Validation failed"
			utils.Success(w, models.LoginResponse{Message: &msg, Errors: errs})
			return
		}

		d, err := repo.DriverByEmail(r.Context(), req.Email)
		if err != nil {
			if !errors.Is(err, database.ErrNotFound) {
				log.Error("❌ Database error", zap.Error(err))
				utils.Problem(w, r, http.StatusInternalServerError, "Database error")
				return
			}
			log.Info("❌ User not found", zap.String("email", req.Email))
			utils.Problem(w, r, http.StatusUnauthorized, "Invalid email or password")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(d.Password), []byte(req.Password)); err != nil {
			log.Info("❌ Invalid password", zap.String("email", req.Email))
			utils.Problem(w, r, http.StatusUnauthorized, "Invalid email or password")
			return
		}

		token, err := middleware.IssueToken(secret, d)
		if err != nil {
			log.Error("❌ Failed to create token", zap.Error(err))
			utils.Problem(w, r, http.StatusInternalServerError, "Failed to create token")
			return
		}

		log.Info("✅ Login successful", zap.String("email", d.Email), zap.String("role", d.Role))
		msg := "Login successful"
		resp := d.ToLoginResponse(token)
		resp.Message = &msg
		utils.Success(w, resp)
	}
}

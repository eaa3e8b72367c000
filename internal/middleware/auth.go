package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"wms/internal/models"
	"wms/pkg/utils"
)

type contextKey string

const UserContextKey contextKey = "user"

// TokenTTL is the lifetime of issued tokens.
const TokenTTL = 7 * 24 * time.Hour

type UserClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// ID returns the numeric driver id carried by the claims.
func (c UserClaims) ID() (int, error) {
	return strconv.Atoi(c.UserID)
}

// IssueToken signs a token for d.
func IssueToken(secret string, d models.Driver) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": models.DriverKey(d.ID),
		"email":   d.Email,
		"role":    d.Role,
		"jti":     uuid.NewString(),
		"iat":     now.Unix(),
		"exp":     now.Add(TokenTTL).Unix(),
	})
	return token.SignedString([]byte(secret))
}

// ParseToken validates tokenString and returns its claims.
func ParseToken(secret, tokenString string) (UserClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return UserClaims{}, err
	}
	if !token.Valid {
		return UserClaims{}, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return UserClaims{}, errors.New("unexpected claims type")
	}
	userID, _ := claims["user_id"].(string)
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	if userID == "" {
		return UserClaims{}, fmt.Errorf("token has no user_id")
	}
	return UserClaims{UserID: userID, Email: email, Role: role}, nil
}

// Auth validates the bearer token and adds the user claims to the context.
func Auth(secret string, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				log.Debug("❌ No authorization header", zap.String("path", r.URL.Path))
				utils.Problem(w, r, http.StatusUnauthorized, "Unauthorized")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				log.Debug("❌ Invalid authorization header format", zap.Int("parts", len(parts)))
				utils.Problem(w, r, http.StatusUnauthorized, "Unauthorized")
				return
			}

			userClaims, err := ParseToken(secret, parts[1])
			if err != nil {
				log.Debug("❌ Invalid token", zap.Error(err))
				utils.Problem(w, r, http.StatusUnauthorized, "Unauthorized")
				return
			}

			log.Debug("✅ Authenticated", zap.String("email", userClaims.Email), zap.String("role", userClaims.Role))
			ctx := context.WithValue(r.Context(), UserContextKey, userClaims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole middleware checks if user has required role (must be used after Auth)
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userClaims, ok := GetUserFromContext(r)
			if !ok {
				utils.Problem(w, r, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if userClaims.Role != role {
				utils.Problem(w, r, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetUserFromContext extracts user claims from request context
func GetUserFromContext(r *http.Request) (UserClaims, bool) {
	userClaims, ok := r.Context().Value(UserContextKey).(UserClaims)
	return userClaims, ok
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultBaseURL = "http://192.168.1.2:8080/"
	DefaultTimeout = 15 * time.Second
	DefaultPort    = "8080"
)

// Client holds the settings of the wms command line client.
type Client struct {
	BaseURL  string
	Timeout  time.Duration
	Home     string // session directory
	Env      string // "development" or "production"
	LogLevel string
}

// Server holds the settings of the development backend.
type Server struct {
	Port                string
	DatabaseURL         string // empty selects the in-memory repository
	JWTSecret           string
	FirebaseCredsBase64 string
	FirebaseCredsFile   string
	AdminEmail          string // optional manager account created at startup
	AdminPassword       string
	Env                 string
	LogLevel            string
}

// Development reports whether the client runs with development logging.
func (c Client) Development() bool { return c.Env != "production" }

// Development reports whether the server runs with development logging.
func (s Server) Development() bool { return s.Env != "production" }

// Get returns the environment variable for key or defaultValue when unset or empty.
func Get(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// LoadDotEnv loads a .env file from the working directory when present.
// It reports whether a file was loaded.
func LoadDotEnv() bool {
	return godotenv.Load() == nil
}

// LoadClient reads the client settings from the environment.
func LoadClient() (Client, error) {
	timeout, err := time.ParseDuration(Get("WMS_TIMEOUT", DefaultTimeout.String()))
	if err != nil {
		return Client{}, fmt.Errorf("WMS_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return Client{}, errors.New("WMS_TIMEOUT must be positive")
	}

	home := os.Getenv("WMS_HOME")
	if home == "" {
		dir, err := os.UserHomeDir()
		if err != nil {
			return Client{}, err
		}
		home = filepath.Join(dir, ".wms")
	}

	baseURL := Get("WMS_BASE_URL", DefaultBaseURL)
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return Client{}, fmt.Errorf("WMS_BASE_URL must be an http(s) URL, got %q", baseURL)
	}

	return Client{
		BaseURL:  baseURL,
		Timeout:  timeout,
		Home:     home,
		Env:      Get("WMS_ENV", "development"),
		LogLevel: Get("WMS_LOG_LEVEL", "warn"),
	}, nil
}

// LoadServer reads the backend settings from the environment.
func LoadServer() (Server, error) {
	secret := os.Getenv("APP_JWT_SECRET")
	if secret == "" {
		return Server{}, errors.New("APP_JWT_SECRET environment variable is required")
	}

	return Server{
		Port:                Get("PORT", DefaultPort),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		JWTSecret:           secret,
		FirebaseCredsBase64: os.Getenv("FIREBASE_CREDENTIALS_BASE64"),
		FirebaseCredsFile:   os.Getenv("FIREBASE_CREDENTIALS_FILE"),
		AdminEmail:          os.Getenv("WMS_ADMIN_EMAIL"),
		AdminPassword:       os.Getenv("WMS_ADMIN_PASSWORD"),
		Env:                 Get("WMS_ENV", "development"),
		LogLevel:            Get("WMS_LOG_LEVEL", "info"),
	}, nil
}

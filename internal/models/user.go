package models

import (
	"strconv"
	"time"
)

// Values the client always sends on sign up.
const (
	RoleDriver    = "DRIVER"
	StatusPending = "PENDING"
)

// RoleAdmin receives live driver positions on the websocket.
const RoleAdmin = "ADMIN"

// LoginRequest is the request body for POST /api/auth/login. It doubles as
// the user's credentials and is never persisted.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignUpRequest is the request body for POST /api/auth/signup
type SignUpRequest struct {
	FirstName     string `json:"firstName" validate:"required"`
	LastName      string `json:"lastName" validate:"required"`
	ContactNumber string `json:"contactNumber" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8"`
	UserRole      string `json:"userRole"`
	UserStatus    string `json:"userStatus"`
}

// NewSignUpRequest builds a driver registration with the fixed role and status.
func NewSignUpRequest(firstName, lastName, contactNumber, email, password string) SignUpRequest {
	return SignUpRequest{
		FirstName:     firstName,
		LastName:      lastName,
		ContactNumber: contactNumber,
		Email:         email,
		Password:      password,
		UserRole:      RoleDriver,
		UserStatus:    StatusPending,
	}
}

// LoginResponse is returned by login and reused by the driver endpoints as
// the profile payload.
type LoginResponse struct {
	UserID        int               `json:"userId"`
	FirstName     string            `json:"firstName"`
	LastName      string            `json:"lastName"`
	ContactNumber string            `json:"contactNumber"`
	Email         string            `json:"email"`
	Role          string            `json:"userRole"`
	Token         string            `json:"token"`
	Message       *string           `json:"message,omitempty"`
	Errors        map[string]string `json:"errors,omitempty"`
}

// SignUpResponse is returned by POST /api/auth/signup
type SignUpResponse struct {
	UserID        int               `json:"userId,omitempty"`
	Message       string            `json:"message"`
	Errors        map[string]string `json:"errors,omitempty"`
	FirstName     string            `json:"firstName"`
	LastName      string            `json:"lastName"`
	ContactNumber string            `json:"contactNumber"`
	Email         string            `json:"email"`
	Role          string            `json:"userRole"`
	Token         string            `json:"token"`
}

// UserData is the editable driver profile sent with PUT /api/drivers/{id}.
type UserData struct {
	FirstName     string `json:"firstName" validate:"required"`
	LastName      string `json:"lastName" validate:"required"`
	ContactNumber string `json:"contactNumber"`
	Email         string `json:"email" validate:"required,email"`
	Role          string `json:"userRole"`
	Token         string `json:"token"`
}

// ProfileUpdate is the answer to PUT /api/drivers/{id}. A field the server
// leaves out stays nil; an explicit empty string is kept.
type ProfileUpdate struct {
	FirstName     *string `json:"firstName"`
	LastName      *string `json:"lastName"`
	ContactNumber *string `json:"contactNumber"`
	Email         *string `json:"email"`
	Role          *string `json:"userRole"`
	Token         *string `json:"token"`
}

// UserProfile is the in-memory profile shown to the driver.
type UserProfile = UserData

// ProfileFromResponse copies the profile fields of a driver payload.
func ProfileFromResponse(r LoginResponse) UserData {
	return UserData{
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		ContactNumber: r.ContactNumber,
		Email:         r.Email,
		Role:          r.Role,
		Token:         r.Token,
	}
}

// ApiResponse is the generic acknowledgement body.
type ApiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorResponse is the error body written by the backend on non-2xx answers.
type ErrorResponse struct {
	Path      string `json:"path"`
	Error     string `json:"error"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Status    int    `json:"status"`
}

// Driver is the backend's record of a registered user.
type Driver struct {
	ID            int    `json:"id" db:"id"`
	FirstName     string `json:"firstName" db:"first_name"`
	LastName      string `json:"lastName" db:"last_name"`
	ContactNumber string `json:"contactNumber" db:"contact_number"`
	Email         string `json:"email" db:"email"`
	Password      string `json:"-" db:"password"` // Never return password in JSON
	Role          string `json:"userRole" db:"role"`
	Status        string `json:"userStatus" db:"status"`
	CreatedAt     int64  `json:"created_at" db:"created_at"`
	UpdatedAt     int64  `json:"updated_at" db:"updated_at"`
}

// ToLoginResponse converts a Driver to the login/profile payload.
func (d *Driver) ToLoginResponse(token string) LoginResponse {
	return LoginResponse{
		UserID:        d.ID,
		FirstName:     d.FirstName,
		LastName:      d.LastName,
		ContactNumber: d.ContactNumber,
		Email:         d.Email,
		Role:          d.Role,
		Token:         token,
	}
}

// Touch stamps the record's update time.
func (d *Driver) Touch() {
	d.UpdatedAt = time.Now().Unix()
}

// DriverKey is the string form of a driver id used in token claims and
// websocket routing.
func DriverKey(id int) string {
	return strconv.Itoa(id)
}
